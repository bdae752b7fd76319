package telemetry

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestWriteEmitsJSONLine(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Warn("notify.failed", map[string]any{"token": "app-1", "kind": "admin_alert"})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if entry["level"] != "warn" || entry["msg"] != "notify.failed" || entry["token"] != "app-1" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatal("missing ts")
	}
}

package queue

import (
	"strings"
	"testing"
)

func TestDecodeMessageKeepsFields(t *testing.T) {
	payload := `{"kind":"applicant_receipt","token":"app-0123456789abcdef0123456789abcdef","name":"Asha Rao","email":"asha@example.com","role":"Data Intern","trackingUrl":"https://careers.example.com/applications/app-0123456789abcdef0123456789abcdef","submittedAt":"2026-01-30T22:00:00Z","enqueuedAt":"2026-01-30T22:00:01Z","version":1}`

	msg, err := DecodeMessage([]byte(payload))
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if msg.Kind != "applicant_receipt" || msg.Name != "Asha Rao" || msg.Version != MessageVersion {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.SubmittedAt.IsZero() {
		t.Fatalf("expected submittedAt parsed")
	}
}

func TestEncodeMessageOmitsEmptyRequestID(t *testing.T) {
	payload, err := EncodeMessage(Message{Kind: "admin_alert", Token: "app-1", Version: MessageVersion})
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}
	if strings.Contains(string(payload), "requestId") {
		t.Fatalf("expected requestId omitted: %s", payload)
	}
}

func TestDecodeMessageRejectsGarbage(t *testing.T) {
	if _, err := DecodeMessage([]byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

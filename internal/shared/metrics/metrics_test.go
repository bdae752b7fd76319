package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(ApplicationsRejectedTotal.WithLabelValues("missing_required"))
	IncRejected("missing_required")
	after := testutil.ToFloat64(ApplicationsRejectedTotal.WithLabelValues("missing_required"))
	if after-before != 1 {
		t.Fatalf("expected rejected counter to grow by 1, got %v", after-before)
	}

	before = testutil.ToFloat64(StatusTransitionsTotal.WithLabelValues("Interview"))
	IncStatusTransition("Interview")
	if got := testutil.ToFloat64(StatusTransitionsTotal.WithLabelValues("Interview")); got-before != 1 {
		t.Fatalf("expected transition counter to grow by 1")
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncSubmitted()
	IncNotification("applicant_receipt", "sent")
	ObserveAttachmentBytes(2048)
	ObserveRequest("/apply", http.StatusOK, 15*time.Millisecond)

	r := gin.New()
	r.GET("/metrics", Handler())
	Register()

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, name := range []string{
		"applications_submitted_total",
		"notifications_total",
		"attachments_stored_bytes_bucket",
		"http_request_duration_seconds_bucket",
	} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}

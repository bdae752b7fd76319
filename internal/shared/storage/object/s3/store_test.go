package s3

import (
	"errors"
	"net/http"
	"testing"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "3f2a.pdf", want: "3f2a.pdf"},
		{name: "simple prefix", prefix: "uploads", key: "3f2a.pdf", want: "uploads/3f2a.pdf"},
		{name: "prefix trailing slash", prefix: "uploads/", key: "3f2a.pdf", want: "uploads/3f2a.pdf"},
		{name: "prefix and key slashes", prefix: "/uploads/", key: "/3f2a.pdf", want: "uploads/3f2a.pdf"},
		{name: "nested prefix", prefix: "tracker/uploads", key: "3f2a.pdf", want: "tracker/uploads/3f2a.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	t.Parallel()

	respErr := &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusPreconditionFailed}},
			Err:      errors.New("precondition failed"),
		},
	}
	if got := statusCode(respErr); got != http.StatusPreconditionFailed {
		t.Fatalf("expected 412, got %d", got)
	}
	if got := statusCode(errors.New("plain")); got != 0 {
		t.Fatalf("expected 0 for plain error, got %d", got)
	}
}

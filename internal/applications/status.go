package applications

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"application-tracker/internal/shared/metrics"
)

// Authorizer decides whether a credential may change application status.
type Authorizer interface {
	Authorize(credential string) bool
}

// SecretAuthorizer accepts exactly one shared secret. An empty secret accepts nobody.
type SecretAuthorizer struct {
	secret []byte
}

func NewSecretAuthorizer(secret string) *SecretAuthorizer {
	return &SecretAuthorizer{secret: []byte(strings.TrimSpace(secret))}
}

func (a *SecretAuthorizer) Authorize(credential string) bool {
	if a == nil || len(a.secret) == 0 || credential == "" {
		return false
	}
	return subtle.ConstantTimeCompare(a.secret, []byte(credential)) == 1
}

// StatusService reads records and applies operator status updates.
type StatusService struct {
	Repo Repo
	Auth Authorizer
	Now  func() time.Time
}

func (s *StatusService) Get(ctx context.Context, token string) (Record, error) {
	return s.Repo.Get(ctx, token)
}

// UpdateStatus appends newStatus to the history. Authorization is checked
// before the store is touched.
func (s *StatusService) UpdateStatus(ctx context.Context, token, newStatus, credential string) (Record, error) {
	if s.Auth == nil || !s.Auth.Authorize(credential) {
		return Record{}, ErrForbidden
	}
	status := strings.TrimSpace(newStatus)
	if status == "" {
		return Record{}, ErrInvalidArgument
	}

	rec, err := s.Repo.AppendHistory(ctx, token, status, storedTime(s.Now))
	if err != nil {
		return Record{}, err
	}
	metrics.IncStatusTransition(status)
	return rec, nil
}

// PreviousStatus returns the status before the latest history entry, or "".
func PreviousStatus(rec Record) string {
	if len(rec.History) < 2 {
		return ""
	}
	return rec.History[len(rec.History)-2].Status
}

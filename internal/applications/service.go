package applications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"application-tracker/internal/notify"
	"application-tracker/internal/shared/metrics"
	"application-tracker/internal/tokens"
	"application-tracker/internal/uploads"
)

const maxTokenAttempts = 5

// Service turns submissions into stored, tokenized records.
type Service struct {
	Repo     Repo
	Sink     *uploads.Sink
	Tokens   tokens.Issuer
	Notifier *notify.Dispatcher
	// BaseURL prefixes tracking links. When empty the origin stored with
	// WithBaseURL is used, and links are relative only if neither is set.
	BaseURL string
	Now     func() time.Time
}

// Submit validates the submission, stores any attachment, and persists a new
// record in status Applied. Notifications are fired after the record is saved.
func (s *Service) Submit(ctx context.Context, sub Submission) (Receipt, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Role = strings.TrimSpace(sub.Role)
	sub.Skills = strings.TrimSpace(sub.Skills)
	sub.Message = strings.TrimSpace(sub.Message)

	for _, f := range []struct{ name, value string }{
		{"name", sub.Name},
		{"email", sub.Email},
		{"role", sub.Role},
	} {
		if f.value == "" {
			metrics.IncRejected("missing_required")
			return Receipt{}, &ValidationError{Field: f.name}
		}
	}

	var resumeRef *string
	if sub.Attachment != nil {
		ref, err := s.storeAttachment(ctx, *sub.Attachment)
		if err != nil {
			return Receipt{}, err
		}
		resumeRef = &ref
	}

	now := s.now()
	rec := Record{
		Name:        sub.Name,
		Email:       sub.Email,
		Role:        sub.Role,
		Skills:      sub.Skills,
		Message:     sub.Message,
		ResumeRef:   resumeRef,
		Quiz:        sub.Quiz,
		Status:      StatusApplied,
		History:     []HistoryEntry{{Status: StatusApplied, At: now}},
		SubmittedAt: now,
	}

	if err := s.create(ctx, &rec); err != nil {
		return Receipt{}, err
	}
	metrics.IncSubmitted()

	receipt := Receipt{Token: rec.Token, TrackingURL: s.trackingURL(ctx, rec.Token)}
	requestID := RequestIDFromContext(ctx)
	for _, kind := range []string{notify.KindApplicantReceipt, notify.KindAdminAlert} {
		s.Notifier.Fire(notify.Event{
			Kind:        kind,
			Token:       rec.Token,
			Name:        rec.Name,
			Email:       rec.Email,
			Role:        rec.Role,
			TrackingURL: receipt.TrackingURL,
			SubmittedAt: rec.SubmittedAt,
			RequestID:   requestID,
		})
	}
	return receipt, nil
}

// TrackingURL returns the status page link for token.
func (s *Service) TrackingURL(token string) string {
	return joinTrackingURL(s.BaseURL, token)
}

func (s *Service) trackingURL(ctx context.Context, token string) string {
	base := s.BaseURL
	if base == "" {
		base = BaseURLFromContext(ctx)
	}
	return joinTrackingURL(base, token)
}

func joinTrackingURL(base, token string) string {
	return strings.TrimRight(base, "/") + "/applications/" + token
}

func (s *Service) storeAttachment(ctx context.Context, att uploads.Attachment) (string, error) {
	if s.Sink == nil {
		return "", fmt.Errorf("attachments are not configured")
	}
	if err := s.Sink.Validate(att); err != nil {
		metrics.IncRejected(rejectReason(err))
		return "", err
	}
	ref, err := s.Sink.Store(ctx, att)
	if err != nil {
		metrics.IncRejected(rejectReason(err))
		return "", err
	}
	return ref, nil
}

func (s *Service) create(ctx context.Context, rec *Record) error {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		rec.Token = s.Tokens.Issue()
		err := s.Repo.Create(ctx, *rec)
		if errors.Is(err, ErrTokenTaken) {
			continue
		}
		if err != nil {
			return fmt.Errorf("persist application: %w", err)
		}
		return nil
	}
	return fmt.Errorf("persist application after %d attempts: %w", maxTokenAttempts, ErrTokenTaken)
}

// now is truncated to microseconds so every store round-trips the same instant.
func (s *Service) now() time.Time {
	return storedTime(s.Now)
}

func storedTime(clock func() time.Time) time.Time {
	t := time.Now()
	if clock != nil {
		t = clock()
	}
	return t.UTC().Truncate(time.Microsecond)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, uploads.ErrPayloadTooLarge):
		return "payload_too_large"
	case errors.Is(err, uploads.ErrUnsupportedType):
		return "unsupported_type"
	default:
		return "storage_error"
	}
}

package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"application-tracker/internal/shared/metrics"
	"application-tracker/internal/shared/storage/object"
	"application-tracker/internal/shared/telemetry"
)

const (
	// DefaultMaxBytes is the attachment size limit when none is configured.
	DefaultMaxBytes = int64(5 << 20)

	mimePDF = "application/pdf"
	extPDF  = ".pdf"
)

var (
	refPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}(\.[a-z0-9]{1,10})?$`)
	extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)
)

// Attachment is an uploaded file as received from the client.
// Size is the declared size in bytes, or -1 when unknown.
type Attachment struct {
	OriginalName string
	DeclaredType string
	Size         int64
	Body         io.Reader
}

// Sink validates attachments and persists them in an object store under fresh names.
type Sink struct {
	store    object.ObjectStore
	maxBytes int64
	strict   bool
	newName  func() string
}

// NewSink builds a Sink. maxBytes <= 0 selects DefaultMaxBytes. In strict mode
// the bytes must parse as a PDF with at least one page.
func NewSink(store object.ObjectStore, maxBytes int64, strict bool) *Sink {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Sink{
		store:    store,
		maxBytes: maxBytes,
		strict:   strict,
		newName:  uuid.NewString,
	}
}

// MaxBytes reports the configured size limit.
func (s *Sink) MaxBytes() int64 {
	return s.maxBytes
}

// Validate checks size and type without touching storage.
func (s *Sink) Validate(att Attachment) error {
	if att.Size > s.maxBytes {
		return ErrPayloadTooLarge
	}
	if !IsPDF(att.OriginalName, att.DeclaredType) {
		return ErrUnsupportedType
	}
	return nil
}

// Store validates and durably writes the attachment, returning its ref.
// Nothing is left in storage when an error is returned.
func (s *Sink) Store(ctx context.Context, att Attachment) (string, error) {
	if err := s.Validate(att); err != nil {
		return "", err
	}
	if att.Body == nil {
		return "", fmt.Errorf("store attachment: empty body")
	}

	var body io.Reader = &limitedReader{r: att.Body, remaining: s.maxBytes}
	if s.strict {
		data, err := io.ReadAll(body)
		if err != nil {
			if errors.Is(err, ErrPayloadTooLarge) {
				return "", ErrPayloadTooLarge
			}
			return "", fmt.Errorf("read attachment: %w", err)
		}
		if err := verifyPDF(data); err != nil {
			return "", err
		}
		body = bytes.NewReader(data)
	}

	ref := s.newName() + storedExt(att.OriginalName)
	n, err := s.store.Save(ctx, ref, mimePDF, body)
	if err != nil {
		if errors.Is(err, object.ErrExists) {
			return "", fmt.Errorf("store attachment ref=%s: %w", ref, err)
		}
		if delErr := s.store.Delete(ctx, ref); delErr != nil {
			telemetry.Warn("uploads.cleanup_failed", map[string]any{"ref": ref, "error": delErr.Error()})
		}
		if errors.Is(err, ErrPayloadTooLarge) {
			return "", ErrPayloadTooLarge
		}
		return "", fmt.Errorf("store attachment: %w", err)
	}
	metrics.ObserveAttachmentBytes(n)
	return ref, nil
}

// Open resolves a ref returned by Store.
func (s *Sink) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if !refPattern.MatchString(ref) {
		return nil, ErrNotFound
	}
	rc, err := s.store.Open(ctx, ref)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open attachment ref=%s: %w", ref, err)
	}
	return rc, nil
}

// IsPDF applies the lenient check: a .pdf extension or a declared application/pdf type.
func IsPDF(name, declaredType string) bool {
	if strings.EqualFold(filepath.Ext(strings.TrimSpace(name)), extPDF) {
		return true
	}
	mediaType := strings.TrimSpace(strings.SplitN(declaredType, ";", 2)[0])
	return strings.EqualFold(mediaType, mimePDF)
}

// storedExt keeps the original extension, lower-cased, when it is safe to put in a ref.
func storedExt(name string) string {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}

// ContentTypeFor returns the response type for a stored ref.
func ContentTypeFor(ref string) string {
	if strings.EqualFold(filepath.Ext(ref), extPDF) {
		return mimePDF
	}
	return "application/octet-stream"
}

// limitedReader fails with ErrPayloadTooLarge once more than remaining bytes are read.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrPayloadTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrPayloadTooLarge
	}
	return n, err
}

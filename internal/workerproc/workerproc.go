package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"application-tracker/internal/notify"
	"application-tracker/internal/queue"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{BodyLen: 0, BodySHA: ""}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ErrInvalidMessage indicates a decoded message that can never be delivered.
type ErrInvalidMessage struct {
	Meta      MessageMeta
	RequestID string
	Reason    string
}

func (e ErrInvalidMessage) Error() string { return "invalid message: " + e.Reason }

// ErrProcess indicates delivery failed after successful parsing.
type ErrProcess struct {
	Kind      string
	Token     string
	RequestID string
	Err       error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "deliver notification"
	}
	return "deliver notification: " + e.Err.Error()
}

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if reason := validate(msg); reason != "" {
		return msg, meta, ErrInvalidMessage{Meta: meta, RequestID: msg.RequestID, Reason: reason}
	}
	return msg, meta, nil
}

func validate(msg queue.Message) string {
	switch {
	case msg.Version > queue.MessageVersion:
		return "unsupported version"
	case msg.Kind != notify.KindApplicantReceipt && msg.Kind != notify.KindAdminAlert:
		return "unknown kind"
	case strings.TrimSpace(msg.Token) == "":
		return "missing token"
	case msg.Kind == notify.KindApplicantReceipt && strings.TrimSpace(msg.Email) == "":
		return "missing email"
	}
	return ""
}

type parsedMessageKey struct{}

// WithParsedMessage stores a decoded message in the context for reuse.
func WithParsedMessage(ctx context.Context, msg queue.Message) context.Context {
	return context.WithValue(ctx, parsedMessageKey{}, msg)
}

func parsedMessageFromContext(ctx context.Context) (queue.Message, bool) {
	if ctx == nil {
		return queue.Message{}, false
	}
	msg, ok := ctx.Value(parsedMessageKey{}).(queue.Message)
	return msg, ok
}

// HandleMessage parses, validates, and delivers a message payload.
func HandleMessage(ctx context.Context, deliverer notify.Notifier, body string) error {
	if deliverer == nil {
		return errors.New("notification delivery not configured")
	}

	msg, ok := parsedMessageFromContext(ctx)
	if !ok {
		var err error
		msg, _, err = ParseMessage(body)
		if err != nil {
			return err
		}
	}

	if err := deliverer.Notify(ctx, notify.FromMessage(msg)); err != nil {
		return ErrProcess{Kind: msg.Kind, Token: msg.Token, RequestID: msg.RequestID, Err: err}
	}
	return nil
}

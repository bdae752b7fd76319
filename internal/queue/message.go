package queue

import (
	"encoding/json"
	"time"
)

// MessageVersion is bumped whenever Message changes incompatibly.
const MessageVersion = 1

// Message is a pending notification handed to the worker.
type Message struct {
	Kind        string    `json:"kind"`
	Token       string    `json:"token"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	TrackingURL string    `json:"trackingUrl"`
	SubmittedAt time.Time `json:"submittedAt"`
	RequestID   string    `json:"requestId,omitempty"`
	EnqueuedAt  string    `json:"enqueuedAt"`
	Version     int       `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// Package webhook receives inbound gateway events, tells message payloads apart from
// delivery-status payloads and republishes them to in-process subscribers.
package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrMalformedPayload means the body is not a JSON object
	ErrMalformedPayload = errors.New("malformed webhook payload")
	// ErrInvalidStatus means a status-shaped payload misses a required field
	ErrInvalidStatus = errors.New("invalid status update payload")
)

// EventKind discriminates decoded events
type EventKind string

const (
	KindMessage EventKind = "message"
	KindStatus  EventKind = "status"
)

const statusType = "status"

// MessageData is a chat message event. Every field is optional.
type MessageData struct {
	MessageID *string `json:"messageId,omitempty"`
	From      *string `json:"from,omitempty"`
	Timestamp *string `json:"timestamp,omitempty"`
	Type      *string `json:"type,omitempty"`
	Text      *string `json:"text,omitempty"`
	IsFromMe  *bool   `json:"isFromMe,omitempty"`
	To        *string `json:"to,omitempty"`
	Status    *string `json:"status,omitempty"`
	IsAIReply *bool   `json:"isAIReply,omitempty"`
	AIStatus  *string `json:"aiStatus,omitempty"`
}

// StatusUpdateData is a delivery-status event
type StatusUpdateData struct {
	Type        string `json:"type"`
	MessageID   string `json:"messageId"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipientId"`
}

// Event is one decoded webhook delivery; exactly one of Message or Status is set
type Event struct {
	Kind       EventKind         `json:"kind"`
	Message    *MessageData      `json:"message,omitempty"`
	Status     *StatusUpdateData `json:"status,omitempty"`
	ReceivedAt time.Time         `json:"received_at"`
}

// Decode discriminates and decodes a raw payload.
// An explicit "type":"status" wins; otherwise the co-occurrence of status, messageId
// and recipientId marks a status update; anything else is a message.
func Decode(raw []byte) (Event, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if fields == nil {
		return Event{}, fmt.Errorf("%w: null body", ErrMalformedPayload)
	}

	now := time.Now()

	if isStatusShape(fields) {
		status, err := decodeStatus(fields)
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: KindStatus, Status: status, ReceivedAt: now}, nil
	}

	return Event{Kind: KindMessage, Message: decodeMessage(fields), ReceivedAt: now}, nil
}

func isStatusShape(fields map[string]json.RawMessage) bool {
	if t, ok := stringField(fields, "type"); ok && t == statusType {
		return true
	}
	_, hasStatus := fields["status"]
	_, hasMessageID := fields["messageId"]
	_, hasRecipient := fields["recipientId"]
	return hasStatus && hasMessageID && hasRecipient
}

func decodeStatus(fields map[string]json.RawMessage) (*StatusUpdateData, error) {
	out := &StatusUpdateData{Type: statusType}
	if t, ok := stringField(fields, "type"); ok {
		out.Type = t
	}

	required := []struct {
		key string
		dst *string
	}{
		{"messageId", &out.MessageID},
		{"status", &out.Status},
		{"timestamp", &out.Timestamp},
		{"recipientId", &out.RecipientID},
	}
	for _, r := range required {
		v, ok := stringField(fields, r.key)
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidStatus, r.key)
		}
		*r.dst = v
	}
	return out, nil
}

func decodeMessage(fields map[string]json.RawMessage) *MessageData {
	return &MessageData{
		MessageID: optString(fields, "messageId"),
		From:      optString(fields, "from"),
		Timestamp: optTimestamp(fields, "timestamp"),
		Type:      optString(fields, "type"),
		Text:      optString(fields, "text"),
		IsFromMe:  optBool(fields, "isFromMe"),
		To:        optString(fields, "to"),
		Status:    optString(fields, "status"),
		IsAIReply: optBool(fields, "isAIReply"),
		AIStatus:  optString(fields, "aiStatus"),
	}
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", false
	}
	return s, true
}

func optString(fields map[string]json.RawMessage, key string) *string {
	s, ok := stringField(fields, key)
	if !ok {
		return nil
	}
	return &s
}

func optBool(fields map[string]json.RawMessage, key string) *bool {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var b *bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil
	}
	return b
}

// optTimestamp keeps numeric timestamps as their decimal text
func optTimestamp(fields map[string]json.RawMessage, key string) *string {
	if s := optString(fields, key); s != nil {
		return s
	}
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return nil
	}
	s := n.String()
	return &s
}

// Value helpers so consumers don't juggle nil pointers.

func (m *MessageData) FromValue() string      { return deref(m.From) }
func (m *MessageData) TextValue() string      { return deref(m.Text) }
func (m *MessageData) MessageIDValue() string { return deref(m.MessageID) }
func (m *MessageData) FromMe() bool           { return m.IsFromMe != nil && *m.IsFromMe }
func (m *MessageData) AIReply() bool          { return m.IsAIReply != nil && *m.IsAIReply }

// SentAt parses the timestamp as unix seconds, unix millis or RFC3339; zero if none apply
func (m *MessageData) SentAt() time.Time {
	return parseTimestamp(deref(m.Timestamp))
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		if n > 1e12 {
			return time.UnixMilli(n)
		}
		return time.Unix(n, 0)
	}
	return time.Time{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

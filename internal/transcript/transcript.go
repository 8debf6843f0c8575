// Package transcript stores the full, durable conversation history for each
// tutoring language. A transcript is append-only from the application's point
// of view: messages are only ever added after a completed exchange, or the
// whole record is deleted by an explicit clear.
package transcript

import (
	"context"
	"strings"
)

// Wire roles. The model side is "model" (rendered as "Model" in exports),
// the student side is "user" (rendered as "Student").
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Part is one text fragment of a message.
type Part struct {
	Text string `json:"text"`
}

// Message is one turn of a conversation. Immutable once created.
type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Transcript is the ordered message history for one language code.
type Transcript []Message

// New builds a single-part message.
func New(role, text string) Message {
	return Message{Role: role, Parts: []Part{{Text: text}}}
}

// Text returns the first text part, or "" for a message without parts.
func (m Message) Text() string {
	if len(m.Parts) == 0 {
		return ""
	}
	return m.Parts[0].Text
}

// Store persists one transcript per language code.
//
// Load must treat a missing or corrupt record as an empty transcript with a
// nil error; only genuine I/O failures are reported, and even then the empty
// transcript is returned so callers can proceed.
type Store interface {
	Load(ctx context.Context, langCode string) (Transcript, error)
	Save(ctx context.Context, langCode string, t Transcript) error
	Clear(ctx context.Context, langCode string) error
}

// NormalizeCode maps a language code to its storage key by stripping every
// non-alphanumeric rune. This is a normalization, not an escape: distinct
// codes that normalize to the same token share one record. Known limitation.
func NormalizeCode(langCode string) string {
	var b strings.Builder
	for _, r := range langCode {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

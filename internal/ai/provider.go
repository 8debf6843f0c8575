// Package ai is the gateway to the external generative model. Providers take
// the rolling conversation plus one new turn and return assistant text; they
// never retry on their own — retry is always a user action upstream.
package ai

import "context"

// Message is a provider-agnostic chat turn. Role is "user" or "model";
// providers map it to their own wire vocabulary.
type Message struct {
	Role string
	Text string
}

// Provider is a live conversation endpoint, already bound to a model and a
// system instruction.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

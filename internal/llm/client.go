// Package llm wraps the text-generation provider behind the single
// capability this service needs: submit a prompt, receive a completion.
package llm

import "context"

// Client is the completion client contract. Implementations carry no retry
// logic of their own; resilience is layered on by the Retryer.
type Client interface {
	// Complete submits a text prompt and returns the raw completion text.
	//
	// "ctx" is the context for the request.
	// "prompt" is the full prompt text to submit.
	//
	// Returns the completion text and an error if any.
	Complete(ctx context.Context, prompt string) (string, error)
}

package llm

import (
	"context"
)

// Client is a single-shot text completion provider.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is one completion call.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

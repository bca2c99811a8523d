package llm

import (
	"context"
	"encoding/json"
	"errors"

	"resume-enhancer/resume/schema"
)

// Request is a single schema-constrained JSON completion.
type Request struct {
	// Name identifies the prompt in logs, e.g. "score".
	Name   string
	System string
	Prompt string
	// Schema constrains the response. Providers without native structured
	// output receive it as prompt text.
	Schema *schema.Schema
}

// Completer abstracts model providers that answer with a JSON document.
type Completer interface {
	CompleteJSON(ctx context.Context, req Request) (json.RawMessage, error)
}

var (
	// ErrRateLimited marks provider answers that should be retried after a backoff.
	ErrRateLimited = errors.New("llm rate limited")
	// ErrBlocked is returned when the provider refused to answer the prompt.
	ErrBlocked = errors.New("llm response blocked")
	// ErrEmptyResponse is returned when the provider returned no content.
	ErrEmptyResponse = errors.New("llm response empty")
	// ErrInvalidJSON is returned when the content is not a JSON document.
	ErrInvalidJSON = errors.New("llm response is not valid JSON")
	// ErrNotConfigured is returned by the placeholder completer.
	ErrNotConfigured = errors.New("llm provider not configured")
)

type extraSystemKey struct{}
type promptHashSinkKey struct{}

// WithExtraSystemMessage returns a context carrying an additional system
// message, used for repair retries.
func WithExtraSystemMessage(ctx context.Context, msg string) context.Context {
	return context.WithValue(ctx, extraSystemKey{}, msg)
}

// ExtraSystemMessageFromContext returns the extra system message, if any.
func ExtraSystemMessageFromContext(ctx context.Context) (string, bool) {
	msg, ok := ctx.Value(extraSystemKey{}).(string)
	return msg, ok
}

// WithPromptHashSink asks the provider to store the hash of the prompt it sent.
func WithPromptHashSink(ctx context.Context, sink *string) context.Context {
	return context.WithValue(ctx, promptHashSinkKey{}, sink)
}

// PromptHashSinkFromContext returns the prompt hash sink, if any.
func PromptHashSinkFromContext(ctx context.Context) (*string, bool) {
	sink, ok := ctx.Value(promptHashSinkKey{}).(*string)
	return sink, ok
}

// PlaceholderCompleter fails every request with ErrNotConfigured.
type PlaceholderCompleter struct{}

func (PlaceholderCompleter) CompleteJSON(ctx context.Context, req Request) (json.RawMessage, error) {
	_ = ctx
	_ = req
	return nil, ErrNotConfigured
}

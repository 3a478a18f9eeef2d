// Package assist talks to a hosted generative-language model to produce
// clarifying questions and a pass/fail audit for a 3F reflection.
package assist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrNoCredential is returned when no API key is configured.
var ErrNoCredential = errors.New("no API key configured")

// Request is one generation call. An empty System omits the system
// instruction. MaxOutputTokens is ignored when JSON is set.
type Request struct {
	System          string
	Prompt          string
	Temperature     float64
	MaxOutputTokens int
	JSON            bool
}

// Generator produces text for a request. An empty result with a nil error
// means the model returned nothing usable (no candidate, empty text or a
// filtered response).
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// APIError is a non-2xx answer from the endpoint.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.Status, e.Body)
}

// Backends accepted by NewGenerator.
const (
	BackendREST = "rest"
	BackendSDK  = "sdk"
)

// Options configures a Generator.
type Options struct {
	Backend string
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Log     *zap.Logger
}

const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultTimeout = 30 * time.Second
)

func (o Options) withDefaults() Options {
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	return o
}

// NewGenerator builds the generator for opts.Backend.
func NewGenerator(ctx context.Context, opts Options) (Generator, error) {
	if opts.APIKey == "" {
		return nil, ErrNoCredential
	}
	switch opts.Backend {
	case "", BackendREST:
		return NewREST(opts), nil
	case BackendSDK:
		return NewSDK(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Backend)
	}
}

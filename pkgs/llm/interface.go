package llm

import (
	"context"
	"errors"
)

// Client represents an LLM provider client
type Client interface {
	Prompt(ctx context.Context, req *Request) (*Response, error)
}

// Common error types
var (
	ErrRateLimit      = errors.New("rate limit exceeded")
	ErrInvalidInput   = errors.New("invalid input")
	ErrAuthentication = errors.New("authentication failed")
	ErrQuotaExceeded  = errors.New("quota exceeded")
	ErrNotFound       = errors.New("resource not found")
	ErrServerError    = errors.New("server error")
	ErrBlocked        = errors.New("response blocked")
)

func NewClient(ctx context.Context, providerName, modelName, apiKey string, opts ...Option) (Client, error) {
	switch providerName {
	case GEMINI_PROVIDER_NAME:
		return NewGeminiClient(ctx, GeminiModel(modelName), apiKey, opts...)
	default:
		return nil, errors.New("unsupported provider")
	}
}

// Package llmtest provides an in-memory llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"moviebot/whatsapp-bot/pkgs/llm"
)

// Reply is one scripted outcome for a Prompt call.
type Reply struct {
	Content string
	Err     error
}

// StubClient records every request and answers from a script. When the script
// is exhausted it falls back to Default.
type StubClient struct {
	mu       sync.Mutex
	requests []llm.Request
	script   []Reply
	Default  Reply

	// OnPrompt, if set, runs before the reply is chosen.
	OnPrompt func(ctx context.Context, req *llm.Request)
}

// NewStubClient returns a client that answers with the given replies in order.
func NewStubClient(replies ...Reply) *StubClient {
	return &StubClient{script: replies}
}

// Respond returns a client that always answers content.
func Respond(content string) *StubClient {
	return &StubClient{Default: Reply{Content: content}}
}

// Fail returns a client whose every call fails with err.
func Fail(err error) *StubClient {
	return &StubClient{Default: Reply{Err: err}}
}

func (s *StubClient) Prompt(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if s.OnPrompt != nil {
		s.OnPrompt(ctx, req)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *req
	copied.Messages = append([]llm.Message(nil), req.Messages...)
	s.requests = append(s.requests, copied)

	reply := s.Default
	if len(s.script) > 0 {
		reply = s.script[0]
		s.script = s.script[1:]
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return &llm.Response{Content: reply.Content}, nil
}

// Requests returns a copy of the recorded requests.
func (s *StubClient) Requests() []llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.Request(nil), s.requests...)
}

// Calls returns how many times Prompt was called.
func (s *StubClient) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

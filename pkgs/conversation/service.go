// Package conversation keeps a per-sender chat with the model. Each call
// appends the user's turn to the stored history, sends the window to the
// completion client and records the reply.
package conversation

import (
	"context"
	"log"
	"time"

	"moviebot/whatsapp-bot/pkgs/llm"
	"moviebot/whatsapp-bot/pkgs/locker"
	"moviebot/whatsapp-bot/pkgs/session"
	"moviebot/whatsapp-bot/pkgs/utils"

	"github.com/juju/errors"
)

var (
	ErrEmptyMessage = errors.New("message text is empty")
	ErrNoSender     = errors.New("sender id is empty")
)

const (
	DefaultMaxMessages = 40
	DefaultMaxTokens   = 16000
	DefaultTimeout     = 30 * time.Second
	DefaultLockTimeout = 30 * time.Second
)

// Options tunes a Service. Zero values fall back to the defaults above.
type Options struct {
	Config      llm.Config
	MaxMessages int
	MaxTokens   int
	Timeout     time.Duration
	LockTimeout time.Duration
	Now         func() time.Time
}

// Completion is the outcome of one exchange. Exactly one of Text and Err is set.
type Completion struct {
	Text  string
	Usage llm.TokenUsage
	Err   error
}

func (c Completion) OK() bool {
	return c.Err == nil
}

type Service struct {
	store  session.Store
	locker locker.Locker
	client llm.Client
	opts   Options
}

// New builds a Service. A nil locker gets an in-process one.
func New(store session.Store, lk locker.Locker, client llm.Client, opts Options) *Service {
	if lk == nil {
		lk = locker.NewMemoryLocker()
	}
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = DefaultMaxMessages
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:  store,
		locker: lk,
		client: client,
		opts:   opts,
	}
}

// Resolve returns the sender's session, creating it on first contact.
func (s *Service) Resolve(ctx context.Context, senderID string) (*session.Session, error) {
	if senderID == "" {
		return nil, ErrNoSender
	}
	sess, err := s.store.Resolve(ctx, senderID)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to resolve session for %s", senderID)
	}
	return sess, nil
}

// Reset forgets the sender's history.
func (s *Service) Reset(ctx context.Context, senderID string) error {
	if senderID == "" {
		return ErrNoSender
	}
	return s.store.Delete(ctx, senderID)
}

// AppendAndComplete sends userText in the context of the sender's history and
// returns the model's reply. Both turns are stored only when the call succeeds.
// Calls for the same sender are serialized.
func (s *Service) AppendAndComplete(ctx context.Context, senderID, userText string) Completion {
	if senderID == "" {
		return Completion{Err: ErrNoSender}
	}
	if userText == "" {
		return Completion{Err: ErrEmptyMessage}
	}

	lockCtx, cancelLock := context.WithTimeout(ctx, s.opts.LockTimeout)
	lock, err := s.locker.Obtain(lockCtx, senderID)
	cancelLock()
	if err != nil {
		return Completion{Err: errors.Annotatef(err, "failed to lock conversation for %s", senderID)}
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			log.Printf("Failed to release lock for %s: %v", senderID, err)
		}
	}()

	sess, err := s.Resolve(ctx, senderID)
	if err != nil {
		return Completion{Err: err}
	}

	history := session.AddTurn(sess.History, session.RoleUser, userText, s.opts.Now())
	window := session.TruncateHistory(history, s.opts.MaxMessages, s.opts.MaxTokens)

	req := &llm.Request{
		Messages: toMessages(window),
		Config:   s.opts.Config,
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.client.Prompt(callCtx, req)
	if err != nil {
		return Completion{Err: errors.Annotatef(err, "completion failed for %s", senderID)}
	}
	log.Printf("Completion for %s in %s (%d turns sent, %d tokens): %q",
		senderID, time.Since(start).Round(time.Millisecond), len(window), resp.Usage.TotalTokens, utils.Ellipsize(resp.Content, 60))

	history = session.AddTurn(history, session.RoleAssistant, resp.Content, s.opts.Now())
	sess.History = session.TruncateHistory(history, s.opts.MaxMessages, s.opts.MaxTokens)

	if err := s.store.Save(ctx, sess); err != nil {
		return Completion{Err: errors.Annotatef(err, "failed to save session for %s", senderID)}
	}

	return Completion{Text: resp.Content, Usage: resp.Usage}
}

func toMessages(turns []session.Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := llm.RoleUser
		if t.Role == session.RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Text: t.Content})
	}
	return messages
}

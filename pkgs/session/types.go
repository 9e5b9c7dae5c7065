package session

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message exchanged with the model.
type Turn struct {
	Role       Role      `json:"role" validate:"required,oneof=user assistant"`
	Content    string    `json:"content"`
	TokenCount int       `json:"token_count"` // Estimated tokens
	Timestamp  time.Time `json:"timestamp"`
}

// Session is the conversation held for one sender. History is append-only
// apart from truncation to the configured cap.
type Session struct {
	ID        string    `json:"id" validate:"required"`
	SenderID  string    `json:"sender_id" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	History   []Turn    `json:"history" validate:"dive"`
}

func newSession(senderID string, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		CreatedAt: now,
		UpdatedAt: now,
		History:   []Turn{},
	}
}

// Append adds a turn with an estimated token count.
func (s *Session) Append(role Role, content string, at time.Time) {
	s.History = AddTurn(s.History, role, content, at)
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.History = append([]Turn(nil), s.History...)
	if c.History == nil {
		c.History = []Turn{}
	}
	return &c
}

// Expired reports whether the session has been idle longer than ttl.
// A non-positive ttl never expires.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(s.UpdatedAt) > ttl
}

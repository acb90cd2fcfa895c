package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the author of a chat message
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleModel
}

// Message is one turn of a conversation. Unmatched is set by the caller on user
// turns whose reply came from the fallback engine.
type Message struct {
	Role      Role
	Text      string
	Unmatched bool
}

// ClientInfo is what can be inferred about a customer from a whole conversation
type ClientInfo struct {
	Name    string
	Summary string
	Emotion Emotion
}

// Defaults used when nothing better can be extracted.
const (
	DefaultClientName = "زائر"
	DefaultSummary    = "محادثة عامة"
)

// ChatLog is a persisted transcript, written once at session end
type ChatLog struct {
	ID                string
	StartedAt         time.Time
	DurationSeconds   float64
	Transcript        string
	Summary           string
	ClientName        string
	Emotion           Emotion
	UnmatchedQuestion *string
	CreatedAt         time.Time
}

// CandidateQuestion is an unanswered question that keeps coming back
type CandidateQuestion struct {
	Question  string
	Count     int
	Category  Category
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewChatLog creates a new ChatLog instance
func NewChatLog(
	id string,
	startedAt time.Time,
	duration time.Duration,
	transcript string,
	info ClientInfo,
	unmatched *string,
	createdAt time.Time,
) *ChatLog {
	return &ChatLog{
		ID:                id,
		StartedAt:         startedAt,
		DurationSeconds:   duration.Seconds(),
		Transcript:        transcript,
		Summary:           info.Summary,
		ClientName:        info.Name,
		Emotion:           info.Emotion,
		UnmatchedQuestion: unmatched,
		CreatedAt:         createdAt,
	}
}

// ValidateMessages checks roles and rejects empty user turns
func ValidateMessages(msgs []Message) error {
	for i, m := range msgs {
		if !m.Role.IsValid() {
			return NewDomainErrorWithCause(ErrCodeValidation, "invalid message role",
				fmt.Errorf("message %d has role %q", i, m.Role))
		}
		if m.Role == RoleUser && strings.TrimSpace(m.Text) == "" {
			return NewDomainErrorWithCause(ErrCodeValidation, "message text is empty",
				fmt.Errorf("message %d", i))
		}
	}
	return nil
}

// ValidateChatLog validates a ChatLog instance
func ValidateChatLog(l *ChatLog) error {
	if l == nil {
		return fmt.Errorf("chat log cannot be nil")
	}

	if l.ID == "" {
		return fmt.Errorf("chat log ID is required")
	}

	if !l.Emotion.IsValid() {
		return fmt.Errorf("chat log Emotion is invalid: %s", l.Emotion)
	}

	if l.DurationSeconds < 0 {
		return fmt.Errorf("chat log DurationSeconds must not be negative")
	}

	return nil
}

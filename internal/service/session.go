package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cloo-solutions/supportdesk/internal/domain"
	"github.com/cloo-solutions/supportdesk/internal/pagination"
	"github.com/cloo-solutions/supportdesk/internal/telemetry"
)

// ChatLogRepositoryInterface defines the repository interface for chat log persistence
type ChatLogRepositoryInterface interface {
	Create(ctx context.Context, l *domain.ChatLog) error
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*ChatLogPageResult, error)
}

type ChatLogPageResult struct {
	Items      []*domain.ChatLog
	NextCursor string
	HasMore    bool
}

// FeederTrigger wakes the log miner without waiting for it.
type FeederTrigger interface {
	Trigger()
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

const (
	transcriptUserLabel = "👤 العميل"
	transcriptSeparator = "\n\n"
)

// EndSessionInput is what a client sends when a conversation closes.
type EndSessionInput struct {
	// SessionID becomes the log id when it is a valid UUID.
	SessionID string
	StartedAt time.Time
	Messages  []domain.Message
}

// SessionService closes conversations into chat logs.
type SessionService struct {
	logs    ChatLogRepositoryInterface
	feeder  FeederTrigger
	persona Persona
	uuidGen UUIDGenerator
	now     func() time.Time
	logger  *zap.Logger
}

// NewSessionService creates a new SessionService instance. feeder may be nil.
func NewSessionService(logs ChatLogRepositoryInterface, feeder FeederTrigger, persona Persona, logger *zap.Logger) *SessionService {
	return NewSessionServiceWithUUIDGen(logs, feeder, persona, logger, &DefaultUUIDGenerator{})
}

// NewSessionServiceWithUUIDGen creates a new SessionService with custom UUID generator (for testing)
func NewSessionServiceWithUUIDGen(logs ChatLogRepositoryInterface, feeder FeederTrigger, persona Persona, logger *zap.Logger, uuidGen UUIDGenerator) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if persona.Product == "" {
		persona.Product = DefaultPersona().Product
	}
	return &SessionService{
		logs:    logs,
		feeder:  feeder,
		persona: persona,
		uuidGen: uuidGen,
		now:     time.Now,
		logger:  logger,
	}
}

// EndSession persists the conversation as a chat log and wakes the log miner.
func (s *SessionService) EndSession(ctx context.Context, input EndSessionInput) (*domain.ChatLog, error) {
	ctx, span := telemetry.StartSpan(ctx, "SessionService.EndSession", telemetry.SpanAttributes{
		SessionID: input.SessionID,
		Operation: "end_session",
	})
	defer span.End()

	if err := domain.ValidateMessages(input.Messages); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	startedAt := input.StartedAt.UTC()
	if input.StartedAt.IsZero() || startedAt.After(now) {
		startedAt = now
	}

	id := input.SessionID
	if _, err := uuid.Parse(id); err != nil {
		id = s.uuidGen.NewString()
	}

	info := ExtractClientInfo(input.Messages)
	log := domain.NewChatLog(
		id,
		startedAt,
		now.Sub(startedAt),
		s.Transcript(input.Messages),
		info,
		lastUnmatchedQuestion(input.Messages),
		now,
	)
	if err := domain.ValidateChatLog(log); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid chat log", err)
	}

	if err := s.logs.Create(ctx, log); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to save chat log: %w", err)
	}

	s.logger.Info("session ended",
		zap.String("log_id", log.ID),
		zap.String("client_name", log.ClientName),
		zap.String("emotion", string(log.Emotion)),
		zap.Bool("unmatched", log.UnmatchedQuestion != nil))

	if s.feeder != nil {
		s.feeder.Trigger()
	}

	return log, nil
}

// ListLogs returns chat logs newest first.
func (s *SessionService) ListLogs(ctx context.Context, cursor string, limit int) (*ChatLogPageResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "SessionService.ListLogs", telemetry.SpanAttributes{
		Operation: "list_logs",
	})
	defer span.End()

	c, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}
	return s.logs.ListWithCursor(ctx, c, pagination.ClampLimit(limit))
}

// Transcript renders messages one per paragraph with a speaker label.
func (s *SessionService) Transcript(messages []domain.Message) string {
	botLabel := "🤖 " + s.persona.Product + " Bot"
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		label := botLabel
		if m.Role == domain.RoleUser {
			label = transcriptUserLabel
		}
		parts = append(parts, label+": "+m.Text)
	}
	return strings.Join(parts, transcriptSeparator)
}

func lastUnmatchedQuestion(messages []domain.Message) *string {
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.Role == domain.RoleUser && m.Unmatched {
			q := m.Text
			return &q
		}
	}
	return nil
}

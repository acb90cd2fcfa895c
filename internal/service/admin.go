package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cloo-solutions/supportdesk/internal/domain"
	"github.com/cloo-solutions/supportdesk/internal/pagination"
	"github.com/cloo-solutions/supportdesk/internal/telemetry"
)

// KnowledgeRepositoryInterface defines the repository interface for structured
// and flat knowledge persistence
type KnowledgeRepositoryInterface interface {
	ListStructured(ctx context.Context) ([]domain.KnowledgeItemFull, error)
	ListFlat(ctx context.Context) ([]domain.KnowledgeItem, error)
	GetByID(ctx context.Context, id string) (*domain.KnowledgeItemFull, error)
	Upsert(ctx context.Context, item *domain.KnowledgeItemFull) error
	// ReplaceFlat drops the flat rows derived from itemID and writes flat instead.
	ReplaceFlat(ctx context.Context, itemID string, flat []domain.KnowledgeItem) error
	Delete(ctx context.Context, id string) error
}

// SnippetRepositoryInterface defines the repository interface for snippet persistence
type SnippetRepositoryInterface interface {
	Create(ctx context.Context, s *domain.Snippet) error
	// List returns snippets newest first.
	List(ctx context.Context) ([]domain.Snippet, error)
	Delete(ctx context.Context, id string) error
}

// LandingRepositoryInterface persists the customer-facing contact details.
type LandingRepositoryInterface interface {
	GetLandingConfig(ctx context.Context) (*domain.LandingConfig, error)
	SaveLandingConfig(ctx context.Context, cfg domain.LandingConfig) error
}

// ManualStore holds the admin-supplied manual text appended to the core docs.
// GetManual returns an empty string when no manual was uploaded.
type ManualStore interface {
	GetManual(ctx context.Context) (string, error)
	SaveManual(ctx context.Context, content string) error
	DeleteManual(ctx context.Context) error
}

// CandidateRepositoryInterface defines the repository interface for candidate questions
type CandidateRepositoryInterface interface {
	ListWithCursor(ctx context.Context, cursor *pagination.CountCursor, limit int) (*CandidatePageResult, error)
}

type CandidatePageResult struct {
	Items      []*domain.CandidateQuestion
	NextCursor string
	HasMore    bool
}

// Expander runs the log miner once.
type Expander interface {
	Run(ctx context.Context) (int, error)
}

// AdminRepositories bundles the stores the admin service writes to.
type AdminRepositories struct {
	Knowledge  KnowledgeRepositoryInterface
	Snippets   SnippetRepositoryInterface
	Landing    LandingRepositoryInterface
	Manual     ManualStore
	Candidates CandidateRepositoryInterface
	Tx         TxRunner
}

// SaveKnowledgeInput is a structured item as submitted by an admin.
type SaveKnowledgeInput struct {
	// ID is generated when empty.
	ID        string
	Category  domain.Category
	Questions []string
	Answer    string
}

// AdminService handles business logic for knowledge administration
type AdminService struct {
	repos    AdminRepositories
	expander Expander
	uuidGen  UUIDGenerator
	now      func() time.Time
	logger   *zap.Logger
}

// NewAdminService creates a new AdminService instance
func NewAdminService(repos AdminRepositories, expander Expander, logger *zap.Logger) *AdminService {
	return NewAdminServiceWithUUIDGen(repos, expander, logger, &DefaultUUIDGenerator{})
}

// NewAdminServiceWithUUIDGen creates a new AdminService with custom UUID generator (for testing)
func NewAdminServiceWithUUIDGen(repos AdminRepositories, expander Expander, logger *zap.Logger, uuidGen UUIDGenerator) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		repos:    repos,
		expander: expander,
		uuidGen:  uuidGen,
		now:      time.Now,
		logger:   logger,
	}
}

// ListSnippets returns every snippet, newest first.
func (s *AdminService) ListSnippets(ctx context.Context) ([]domain.Snippet, error) {
	ctx, span := telemetry.StartSpan(ctx, "AdminService.ListSnippets", telemetry.SpanAttributes{
		Operation: "list_snippets",
	})
	defer span.End()

	snippets, err := s.repos.Snippets.List(ctx)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to list snippets: %w", err)
	}
	return snippets, nil
}

// AddSnippet stores a new snippet.
func (s *AdminService) AddSnippet(ctx context.Context, content string) (*domain.Snippet, error) {
	ctx, span := telemetry.StartSpan(ctx, "AdminService.AddSnippet", telemetry.SpanAttributes{
		Operation: "add_snippet",
	})
	defer span.End()

	snippet := &domain.Snippet{
		ID:        s.uuidGen.NewString(),
		Content:   strings.TrimSpace(content),
		CreatedAt: s.now().UTC(),
	}
	if err := domain.ValidateSnippet(snippet); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid snippet", err)
	}

	if err := s.repos.Snippets.Create(ctx, snippet); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to create snippet: %w", err)
	}
	s.logger.Info("snippet added", zap.String("snippet_id", snippet.ID))
	return snippet, nil
}

// DeleteSnippet removes a snippet by id.
func (s *AdminService) DeleteSnippet(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "AdminService.DeleteSnippet", telemetry.SpanAttributes{
		Operation: "delete_snippet",
	})
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return domain.ErrMissingRequiredField
	}
	if err := s.repos.Snippets.Delete(ctx, id); err != nil {
		span.SetError(err)
		return err
	}
	s.logger.Info("snippet deleted", zap.String("snippet_id", id))
	return nil
}

// ListKnowledge returns every structured knowledge item.
func (s *AdminService) ListKnowledge(ctx context.Context) ([]domain.KnowledgeItemFull, error) {
	ctx, span := telemetry.StartSpan(ctx, "AdminService.ListKnowledge", telemetry.SpanAttributes{
		Operation: "list_knowledge",
	})
	defer span.End()

	items, err := s.repos.Knowledge.ListStructured(ctx)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to list knowledge: %w", err)
	}
	return items, nil
}

// SaveKnowledge upserts a structured item and regenerates its flat rows in
// one transaction.
func (s *AdminService) SaveKnowledge(ctx context.Context, input SaveKnowledgeInput) (*domain.KnowledgeItemFull, error) {
	ctx, span := telemetry.StartSpan(ctx, "AdminService.SaveKnowledge", telemetry.SpanAttributes{
		Operation: "save_knowledge",
	})
	defer span.End()

	now := s.now().UTC()
	item := &domain.KnowledgeItemFull{
		ID:        strings.TrimSpace(input.ID),
		Category:  input.Category,
		Questions: trimQuestions(input.Questions),
		Answer:    strings.TrimSpace(input.Answer),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if item.ID == "" {
		item.ID = "kb_" + s.uuidGen.NewString()
	}
	if err := domain.ValidateKnowledgeItemFull(item); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid knowledge item", err)
	}

	err := s.repos.Tx.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Knowledge().Upsert(ctx, item); err != nil {
			return fmt.Errorf("failed to upsert knowledge item: %w", err)
		}
		if err := repos.Knowledge().ReplaceFlat(ctx, item.ID, domain.FlattenKnowledge(item)); err != nil {
			return fmt.Errorf("failed to regenerate flat knowledge: %w", err)
		}
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	s.logger.Info("knowledge item saved",
		zap.String("item_id", item.ID),
		zap.String("category", string(item.Category)),
		zap.Int("questions", len(item.Questions)))
	return item, nil
}

// DeleteKnowledge removes a structured item together with its flat rows.
func (s *AdminService) DeleteKnowledge(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "AdminService.DeleteKnowledge", telemetry.SpanAttributes{
		Operation: "delete_knowledge",
	})
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return domain.ErrMissingRequiredField
	}
	err := s.repos.Tx.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Knowledge().ReplaceFlat(ctx, id, nil); err != nil {
			return err
		}
		return repos.Knowledge().Delete(ctx, id)
	})
	if err != nil {
		span.SetError(err)
		return err
	}
	return nil
}

// SetManual replaces the supplementary manual text.
func (s *AdminService) SetManual(ctx context.Context, content string) error {
	ctx, span := telemetry.StartSpan(ctx, "AdminService.SetManual", telemetry.SpanAttributes{
		Operation: "set_manual",
	})
	defer span.End()

	content = strings.TrimSpace(content)
	if content == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "manual content is empty")
	}
	if err := s.repos.Manual.SaveManual(ctx, content); err != nil {
		span.SetError(err)
		return fmt.Errorf("failed to save manual: %w", err)
	}
	s.logger.Info("manual updated", zap.Int("length", runeLen(content)))
	return nil
}

// ResetManual drops the supplementary manual so only the core docs remain.
func (s *AdminService) ResetManual(ctx context.Context) error {
	ctx, span := telemetry.StartSpan(ctx, "AdminService.ResetManual", telemetry.SpanAttributes{
		Operation: "reset_manual",
	})
	defer span.End()

	if err := s.repos.Manual.DeleteManual(ctx); err != nil {
		span.SetError(err)
		return fmt.Errorf("failed to reset manual: %w", err)
	}
	s.logger.Info("manual reset")
	return nil
}

// GetLanding returns the contact details with defaults filled in.
func (s *AdminService) GetLanding(ctx context.Context) (domain.LandingConfig, error) {
	ctx, span := telemetry.StartSpan(ctx, "AdminService.GetLanding", telemetry.SpanAttributes{
		Operation: "get_landing",
	})
	defer span.End()

	cfg, err := s.repos.Landing.GetLandingConfig(ctx)
	if err != nil {
		span.SetError(err)
		return domain.LandingConfig{}, fmt.Errorf("failed to load landing config: %w", err)
	}
	return cfg.WithDefaults(), nil
}

// SetLanding stores the contact details as given.
func (s *AdminService) SetLanding(ctx context.Context, cfg domain.LandingConfig) (domain.LandingConfig, error) {
	ctx, span := telemetry.StartSpan(ctx, "AdminService.SetLanding", telemetry.SpanAttributes{
		Operation: "set_landing",
	})
	defer span.End()

	cfg.ContactPhone = strings.TrimSpace(cfg.ContactPhone)
	cfg.ContactEmail = strings.TrimSpace(cfg.ContactEmail)
	cfg.ContactAddress = strings.TrimSpace(cfg.ContactAddress)
	cfg.WhatsappNumber = strings.TrimSpace(cfg.WhatsappNumber)

	if err := s.repos.Landing.SaveLandingConfig(ctx, cfg); err != nil {
		span.SetError(err)
		return domain.LandingConfig{}, fmt.Errorf("failed to save landing config: %w", err)
	}
	return cfg.WithDefaults(), nil
}

// ListCandidates returns candidate questions, most frequent first.
func (s *AdminService) ListCandidates(ctx context.Context, cursor string, limit int) (*CandidatePageResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "AdminService.ListCandidates", telemetry.SpanAttributes{
		Operation: "list_candidates",
	})
	defer span.End()

	c, err := pagination.DecodeCountCursor(cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}
	page, err := s.repos.Candidates.ListWithCursor(ctx, c, pagination.ClampLimit(limit))
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return page, nil
}

// Expand runs the log miner synchronously and reports how many candidates it wrote.
func (s *AdminService) Expand(ctx context.Context) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "AdminService.Expand", telemetry.SpanAttributes{
		Operation: "expand",
	})
	defer span.End()

	saved, err := s.expander.Run(ctx)
	if err != nil {
		span.SetError(err)
		return saved, err
	}
	return saved, nil
}

// Seed upserts every item and stores landing when no landing config exists yet.
// It returns how many items were written.
func (s *AdminService) Seed(ctx context.Context, items []domain.KnowledgeItemFull, landing domain.LandingConfig) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "AdminService.Seed", telemetry.SpanAttributes{
		Operation: "seed",
	})
	defer span.End()

	for i, item := range items {
		if _, err := s.SaveKnowledge(ctx, SaveKnowledgeInput{
			ID:        item.ID,
			Category:  item.Category,
			Questions: item.Questions,
			Answer:    item.Answer,
		}); err != nil {
			span.SetError(err)
			return i, err
		}
	}

	existing, err := s.repos.Landing.GetLandingConfig(ctx)
	if err != nil {
		span.SetError(err)
		return len(items), fmt.Errorf("failed to load landing config: %w", err)
	}
	if existing == nil {
		if err := s.repos.Landing.SaveLandingConfig(ctx, landing); err != nil {
			span.SetError(err)
			return len(items), fmt.Errorf("failed to save landing config: %w", err)
		}
	}
	return len(items), nil
}

func trimQuestions(questions []string) []string {
	out := make([]string, 0, len(questions))
	for _, q := range questions {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}

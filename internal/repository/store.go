package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/supportdesk/internal/domain"
	"github.com/cloo-solutions/supportdesk/internal/service"
)

// Store is the Postgres-backed knowledge and log store. It answers the
// responder and the log miner from the per-table repositories, and appends
// the uploaded manual to the built-in core docs.
type Store struct {
	Knowledge  *KnowledgeRepository
	Snippets   *SnippetRepository
	Settings   *SettingsRepository
	ChatLogs   *ChatLogRepository
	Candidates *CandidateRepository

	manual   service.ManualStore
	coreDocs string
}

// NewStore wires the repositories over pool. manual may be nil, in which case
// the manual text lives in the settings table.
func NewStore(pool *pgxpool.Pool, coreDocs string, manual service.ManualStore) *Store {
	s := &Store{
		Knowledge:  NewKnowledgeRepository(pool),
		Snippets:   NewSnippetRepository(pool),
		Settings:   NewSettingsRepository(pool),
		ChatLogs:   NewChatLogRepository(pool),
		Candidates: NewCandidateRepository(pool),
		coreDocs:   coreDocs,
	}
	s.manual = manual
	if s.manual == nil {
		s.manual = s.Settings
	}
	return s
}

// Manual returns the store that holds the uploaded manual.
func (s *Store) Manual() service.ManualStore {
	return s.manual
}

func (s *Store) GetFlatKB(ctx context.Context) ([]domain.KnowledgeItem, error) {
	return s.Knowledge.ListFlat(ctx)
}

func (s *Store) GetStructuredKB(ctx context.Context) ([]domain.KnowledgeItemFull, error) {
	return s.Knowledge.ListStructured(ctx)
}

// GetDocText returns the core docs followed by the uploaded manual, if any.
func (s *Store) GetDocText(ctx context.Context) (string, error) {
	manual, err := s.manual.GetManual(ctx)
	if err != nil {
		return "", fmt.Errorf("read manual: %w", err)
	}
	return joinDocs(s.coreDocs, manual), nil
}

func (s *Store) GetSnippets(ctx context.Context) ([]domain.Snippet, error) {
	return s.Snippets.List(ctx)
}

func (s *Store) GetLandingConfig(ctx context.Context) (*domain.LandingConfig, error) {
	return s.Settings.GetLandingConfig(ctx)
}

func (s *Store) GetRecentLogs(ctx context.Context, limit int) ([]domain.ChatLog, error) {
	return s.ChatLogs.GetRecent(ctx, limit)
}

func (s *Store) SaveCandidateQuestion(ctx context.Context, question string, category domain.Category) error {
	return s.Candidates.Save(ctx, question, category)
}

func joinDocs(core, manual string) string {
	if strings.TrimSpace(manual) == "" {
		return core
	}
	return core + "\n\n" + manual
}

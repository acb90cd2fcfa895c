package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cloo-solutions/supportdesk/internal/domain"
)

// KnowledgeStore is the read side of the knowledge store consumed by the responder.
type KnowledgeStore interface {
	GetFlatKB(ctx context.Context) ([]domain.KnowledgeItem, error)
	GetStructuredKB(ctx context.Context) ([]domain.KnowledgeItemFull, error)
	GetDocText(ctx context.Context) (string, error)
	// GetSnippets returns snippets newest first.
	GetSnippets(ctx context.Context) ([]domain.Snippet, error)
	GetLandingConfig(ctx context.Context) (*domain.LandingConfig, error)
}

// Snapshot is an immutable view of every knowledge source, loaded in one go.
// Nothing mutates a Snapshot after LoadSnapshot returns it.
type Snapshot struct {
	FlatKB       []domain.KnowledgeItem
	StructuredKB []domain.KnowledgeItemFull
	Docs         string
	Sections     []DocSection
	Snippets     []domain.Snippet
	Landing      domain.LandingConfig
	LoadedAt     time.Time
}

// LoadSnapshot reads all five knowledge sources concurrently.
func LoadSnapshot(ctx context.Context, store KnowledgeStore) (*Snapshot, error) {
	var (
		snap    Snapshot
		landing *domain.LandingConfig
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := store.GetFlatKB(gctx)
		if err != nil {
			return fmt.Errorf("load flat kb: %w", err)
		}
		snap.FlatKB = items
		return nil
	})
	g.Go(func() error {
		items, err := store.GetStructuredKB(gctx)
		if err != nil {
			return fmt.Errorf("load structured kb: %w", err)
		}
		snap.StructuredKB = items
		return nil
	})
	g.Go(func() error {
		docs, err := store.GetDocText(gctx)
		if err != nil {
			return fmt.Errorf("load docs: %w", err)
		}
		snap.Docs = docs
		return nil
	})
	g.Go(func() error {
		snippets, err := store.GetSnippets(gctx)
		if err != nil {
			return fmt.Errorf("load snippets: %w", err)
		}
		snap.Snippets = snippets
		return nil
	})
	g.Go(func() error {
		cfg, err := store.GetLandingConfig(gctx)
		if err != nil {
			return fmt.Errorf("load landing config: %w", err)
		}
		landing = cfg
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStoreUnavailable, "failed to load knowledge snapshot", err)
	}

	snap.Sections = SplitSections(snap.Docs)
	snap.Landing = landing.WithDefaults()
	snap.LoadedAt = time.Now()
	return &snap, nil
}

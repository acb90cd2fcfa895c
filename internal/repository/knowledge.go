package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/supportdesk/internal/domain"
)

type KnowledgeRepository struct {
	db dbtx
}

func NewKnowledgeRepository(pool *pgxpool.Pool) *KnowledgeRepository {
	return &KnowledgeRepository{db: pool}
}

func NewKnowledgeRepositoryWithTx(tx pgx.Tx) *KnowledgeRepository {
	return &KnowledgeRepository{db: tx}
}

func (r *KnowledgeRepository) ListStructured(ctx context.Context) ([]domain.KnowledgeItemFull, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, category, questions, answer, created_at, updated_at
		 FROM kb_items ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query kb_items: %w", err)
	}
	defer rows.Close()

	var items []domain.KnowledgeItemFull
	for rows.Next() {
		var k domain.KnowledgeItemFull
		if err := rows.Scan(&k.ID, &k.Category, &k.Questions, &k.Answer, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan kb_items: %w", err)
		}
		if len(k.Questions) == 0 || !k.Category.IsValid() {
			continue
		}
		items = append(items, k)
	}
	return items, rows.Err()
}

func (r *KnowledgeRepository) ListFlat(ctx context.Context) ([]domain.KnowledgeItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, question, answer, tags FROM kb_flat ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query kb_flat: %w", err)
	}
	defer rows.Close()

	var items []domain.KnowledgeItem
	for rows.Next() {
		var k domain.KnowledgeItem
		if err := rows.Scan(&k.ID, &k.Question, &k.Answer, &k.Tags); err != nil {
			return nil, fmt.Errorf("scan kb_flat: %w", err)
		}
		items = append(items, k)
	}
	return items, rows.Err()
}

func (r *KnowledgeRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeItemFull, error) {
	var k domain.KnowledgeItemFull
	err := r.db.QueryRow(ctx,
		`SELECT id, category, questions, answer, created_at, updated_at
		 FROM kb_items WHERE id = $1`,
		id,
	).Scan(&k.ID, &k.Category, &k.Questions, &k.Answer, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrKnowledgeNotFound
		}
		return nil, err
	}
	return &k, nil
}

// Upsert inserts the item or overwrites everything but created_at.
func (r *KnowledgeRepository) Upsert(ctx context.Context, k *domain.KnowledgeItemFull) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO kb_items (id, category, questions, answer, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET category = EXCLUDED.category,
		     questions = EXCLUDED.questions,
		     answer = EXCLUDED.answer,
		     updated_at = EXCLUDED.updated_at`,
		k.ID, k.Category, k.Questions, k.Answer, k.CreatedAt, k.UpdatedAt,
	)
	return err
}

func (r *KnowledgeRepository) ReplaceFlat(ctx context.Context, itemID string, flat []domain.KnowledgeItem) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM kb_flat WHERE item_id = $1`, itemID); err != nil {
		return fmt.Errorf("delete kb_flat: %w", err)
	}
	for _, f := range flat {
		_, err := r.db.Exec(ctx,
			`INSERT INTO kb_flat (id, item_id, question, answer, tags)
			 VALUES ($1, $2, $3, $4, $5)`,
			f.ID, itemID, f.Question, f.Answer, f.Tags,
		)
		if err != nil {
			return fmt.Errorf("insert kb_flat %s: %w", f.ID, err)
		}
	}
	return nil
}

func (r *KnowledgeRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM kb_items WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrKnowledgeNotFound
	}
	return nil
}

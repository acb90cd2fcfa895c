package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/supportdesk/internal/domain"
)

type SnippetRepository struct {
	db dbtx
}

func NewSnippetRepository(pool *pgxpool.Pool) *SnippetRepository {
	return &SnippetRepository{db: pool}
}

func (r *SnippetRepository) Create(ctx context.Context, s *domain.Snippet) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO snippets (id, content, created_at) VALUES ($1, $2, $3)`,
		s.ID, s.Content, s.CreatedAt,
	)
	return err
}

func (r *SnippetRepository) List(ctx context.Context) ([]domain.Snippet, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, content, created_at FROM snippets ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query snippets: %w", err)
	}
	defer rows.Close()

	var snippets []domain.Snippet
	for rows.Next() {
		var s domain.Snippet
		if err := rows.Scan(&s.ID, &s.Content, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snippets: %w", err)
		}
		snippets = append(snippets, s)
	}
	return snippets, rows.Err()
}

func (r *SnippetRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM snippets WHERE id::text = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSnippetNotFound
	}
	return nil
}

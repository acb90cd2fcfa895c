package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/supportdesk/internal/domain"
	"github.com/cloo-solutions/supportdesk/internal/pagination"
	"github.com/cloo-solutions/supportdesk/internal/service"
)

type CandidateRepository struct {
	db dbtx
}

func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{db: pool}
}

// Save inserts question with count 1, or increments its count. The category
// of the first insert is kept.
func (r *CandidateRepository) Save(ctx context.Context, question string, category domain.Category) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO candidate_questions (question, count, category, created_at, updated_at)
		 VALUES ($1, 1, $2, $3, $3)
		 ON CONFLICT (question) DO UPDATE
		 SET count = candidate_questions.count + 1, updated_at = EXCLUDED.updated_at`,
		question, category, now,
	)
	return err
}

func (r *CandidateRepository) ListWithCursor(ctx context.Context, cursor *pagination.CountCursor, limit int) (*service.CandidatePageResult, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT question, count, category, created_at, updated_at
			 FROM candidate_questions
			 WHERE count < $1 OR (count = $1 AND question > $2)
			 ORDER BY count DESC, question ASC
			 LIMIT $3`,
			cursor.Count, cursor.LastKey, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT question, count, category, created_at, updated_at
			 FROM candidate_questions
			 ORDER BY count DESC, question ASC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("query candidate_questions: %w", err)
	}
	defer rows.Close()

	var items []*domain.CandidateQuestion
	for rows.Next() {
		var c domain.CandidateQuestion
		if err := rows.Scan(&c.Question, &c.Count, &c.Category, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan candidate_questions: %w", err)
		}
		items = append(items, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCountCursor(last.Question, last.Count)
	}

	return &service.CandidatePageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

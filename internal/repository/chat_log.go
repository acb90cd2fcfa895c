package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/supportdesk/internal/domain"
	"github.com/cloo-solutions/supportdesk/internal/pagination"
	"github.com/cloo-solutions/supportdesk/internal/service"
)

const chatLogColumns = `id, started_at, duration_seconds, transcript, summary, client_name, emotion, unmatched_question, created_at`

type ChatLogRepository struct {
	db dbtx
}

func NewChatLogRepository(pool *pgxpool.Pool) *ChatLogRepository {
	return &ChatLogRepository{db: pool}
}

func (r *ChatLogRepository) Create(ctx context.Context, l *domain.ChatLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO chat_logs (`+chatLogColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.StartedAt, l.DurationSeconds, l.Transcript, l.Summary, l.ClientName, l.Emotion,
		nullableString(l.UnmatchedQuestion), l.CreatedAt,
	)
	return err
}

// GetRecent returns at most limit logs, newest first.
func (r *ChatLogRepository) GetRecent(ctx context.Context, limit int) ([]domain.ChatLog, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+chatLogColumns+`
		 FROM chat_logs
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query chat_logs: %w", err)
	}
	defer rows.Close()

	logs, err := scanChatLogRows(rows)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ChatLog, 0, len(logs))
	for _, l := range logs {
		out = append(out, *l)
	}
	return out, nil
}

func (r *ChatLogRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.ChatLogPageResult, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+chatLogColumns+`
			 FROM chat_logs
			 WHERE (created_at, id::text) < ($1, $2)
			 ORDER BY created_at DESC, id::text DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+chatLogColumns+`
			 FROM chat_logs
			 ORDER BY created_at DESC, id::text DESC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("query chat_logs: %w", err)
	}
	defer rows.Close()

	items, err := scanChatLogRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &service.ChatLogPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func scanChatLogRows(rows pgx.Rows) ([]*domain.ChatLog, error) {
	var results []*domain.ChatLog
	for rows.Next() {
		var l domain.ChatLog
		var unmatched *string
		if err := rows.Scan(&l.ID, &l.StartedAt, &l.DurationSeconds, &l.Transcript, &l.Summary,
			&l.ClientName, &l.Emotion, &unmatched, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat_logs: %w", err)
		}
		l.UnmatchedQuestion = unmatched
		results = append(results, &l)
	}
	return results, rows.Err()
}

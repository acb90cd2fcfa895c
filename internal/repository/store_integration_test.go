//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/supportdesk/internal/domain"
	"github.com/cloo-solutions/supportdesk/internal/testutil"
)

func newPostgresFixture(pool *pgxpool.Pool) func(t *testing.T) storeFixture {
	return func(t *testing.T) storeFixture {
		require.NoError(t, testutil.TruncateAll(context.Background(), pool))
		s := NewStore(pool, contractCoreDocs, nil)
		return storeFixture{
			store:      s,
			knowledge:  s.Knowledge,
			snippets:   s.Snippets,
			landing:    s.Settings,
			manual:     s.Manual(),
			chatLogs:   s.ChatLogs,
			candidates: s.Candidates,
			tx:         NewTxRunner(pool),
		}
	}
}

func TestStore_Contract(t *testing.T) {
	pool := testutil.SetupPostgres(t, "../../migrations")
	runStoreContract(t, newPostgresFixture(pool))
}

func TestSettingsRepository_UndecodableLandingIsAbsent(t *testing.T) {
	pool := testutil.SetupPostgres(t, "../../migrations")
	ctx := context.Background()

	_, err := pool.Exec(ctx, `INSERT INTO settings (key, value) VALUES ('landing', '"not an object"')`)
	require.NoError(t, err)

	landing, err := NewSettingsRepository(pool).GetLandingConfig(ctx)
	require.NoError(t, err)
	assert.Nil(t, landing)
}

func TestKnowledgeRepository_SkipsInvalidRows(t *testing.T) {
	pool := testutil.SetupPostgres(t, "../../migrations")
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO kb_items (id, category, questions, answer) VALUES
		 ('kb_ok', 'sales', ARRAY['فاتورة'], 'اجابة'),
		 ('kb_bad', 'billing', ARRAY['سؤال'], 'اجابة')`)
	require.NoError(t, err)

	items, err := NewKnowledgeRepository(pool).ListStructured(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "kb_ok", items[0].ID)
	assert.Equal(t, domain.CategorySales, items[0].Category)
}

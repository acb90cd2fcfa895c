package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/supportdesk/internal/domain"
	"github.com/cloo-solutions/supportdesk/internal/pagination"
	"github.com/cloo-solutions/supportdesk/internal/service"
)

const contractCoreDocs = "دليل النظام الأساسي"

// storeFixture exposes one backend through the interfaces the services use.
// Every fixture starts empty and holds contractCoreDocs as its core docs.
type storeFixture struct {
	store interface {
		service.KnowledgeStore
		service.LogStore
	}
	knowledge  service.KnowledgeRepositoryInterface
	snippets   service.SnippetRepositoryInterface
	landing    service.LandingRepositoryInterface
	manual     service.ManualStore
	chatLogs   service.ChatLogRepositoryInterface
	candidates service.CandidateRepositoryInterface
	tx         service.TxRunner
}

// runStoreContract checks the behavior both backends share. newFixture is
// called once per subtest.
func runStoreContract(t *testing.T, newFixture func(t *testing.T) storeFixture) {
	t.Run("knowledge upsert and flatten", func(t *testing.T) {
		testKnowledgeUpsert(t, newFixture(t))
	})
	t.Run("knowledge transaction rollback", func(t *testing.T) {
		testKnowledgeRollback(t, newFixture(t))
	})
	t.Run("snippets newest first", func(t *testing.T) {
		testSnippets(t, newFixture(t))
	})
	t.Run("landing and manual", func(t *testing.T) {
		testSettings(t, newFixture(t))
	})
	t.Run("chat logs", func(t *testing.T) {
		testChatLogs(t, newFixture(t))
	})
	t.Run("candidate questions", func(t *testing.T) {
		testCandidates(t, newFixture(t))
	})
}

func contractTime(offset time.Duration) time.Time {
	return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC).Add(offset)
}

func saveItem(ctx context.Context, f storeFixture, item *domain.KnowledgeItemFull) error {
	return f.tx.WithTx(ctx, func(repos service.TxRepositories) error {
		if err := repos.Knowledge().Upsert(ctx, item); err != nil {
			return err
		}
		return repos.Knowledge().ReplaceFlat(ctx, item.ID, domain.FlattenKnowledge(item))
	})
}

func testKnowledgeUpsert(t *testing.T, f storeFixture) {
	ctx := context.Background()

	item := &domain.KnowledgeItemFull{
		ID:        "kb_invoice",
		Category:  domain.CategorySales,
		Questions: []string{"ازاي اعمل فاتورة", "فاتورة بيع جديدة"},
		Answer:    "من شاشة المبيعات اختار فاتورة جديدة",
		CreatedAt: contractTime(0),
		UpdatedAt: contractTime(0),
	}
	require.NoError(t, saveItem(ctx, f, item))

	structured, err := f.store.GetStructuredKB(ctx)
	require.NoError(t, err)
	require.Len(t, structured, 1)
	assert.Equal(t, item.Questions, structured[0].Questions)
	assert.Equal(t, domain.CategorySales, structured[0].Category)

	flat, err := f.store.GetFlatKB(ctx)
	require.NoError(t, err)
	require.Len(t, flat, 2)
	assert.Equal(t, "kb_invoice_q0", flat[0].ID)
	assert.Equal(t, []string{"sales"}, flat[1].Tags)

	updated := *item
	updated.Questions = []string{"فاتورة"}
	updated.CreatedAt = contractTime(time.Hour)
	updated.UpdatedAt = contractTime(time.Hour)
	require.NoError(t, saveItem(ctx, f, &updated))

	got, err := f.knowledge.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"فاتورة"}, got.Questions)
	assert.True(t, got.CreatedAt.Equal(contractTime(0)), "created_at survives an update")
	assert.True(t, got.UpdatedAt.Equal(contractTime(time.Hour)))

	flat, err = f.store.GetFlatKB(ctx)
	require.NoError(t, err)
	assert.Len(t, flat, 1, "stale flat rows are replaced")

	require.NoError(t, f.knowledge.Delete(ctx, item.ID))
	flat, err = f.store.GetFlatKB(ctx)
	require.NoError(t, err)
	assert.Empty(t, flat, "deleting an item drops its flat rows")

	assert.True(t, errors.Is(f.knowledge.Delete(ctx, item.ID), domain.ErrKnowledgeNotFound))
	_, err = f.knowledge.GetByID(ctx, "kb_missing")
	assert.True(t, errors.Is(err, domain.ErrKnowledgeNotFound))
}

func testKnowledgeRollback(t *testing.T, f storeFixture) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := f.tx.WithTx(ctx, func(repos service.TxRepositories) error {
		item := &domain.KnowledgeItemFull{
			ID:        "kb_rollback",
			Category:  domain.CategoryGeneral,
			Questions: []string{"سؤال"},
			Answer:    "اجابة",
			CreatedAt: contractTime(0),
			UpdatedAt: contractTime(0),
		}
		require.NoError(t, repos.Knowledge().Upsert(ctx, item))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	structured, err := f.store.GetStructuredKB(ctx)
	require.NoError(t, err)
	assert.Empty(t, structured)
}

func testSnippets(t *testing.T, f storeFixture) {
	ctx := context.Background()

	ids := make([]string, 3)
	for i := range ids {
		ids[i] = uuid.NewString()
		require.NoError(t, f.snippets.Create(ctx, &domain.Snippet{
			ID:        ids[i],
			Content:   "تصحيح رقم " + string(rune('1'+i)),
			CreatedAt: contractTime(time.Duration(i) * time.Minute),
		}))
	}

	list, err := f.store.GetSnippets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[0], list[2].ID)

	require.NoError(t, f.snippets.Delete(ctx, ids[1]))
	assert.True(t, errors.Is(f.snippets.Delete(ctx, ids[1]), domain.ErrSnippetNotFound))

	list, err = f.snippets.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func testSettings(t *testing.T, f storeFixture) {
	ctx := context.Background()

	landing, err := f.store.GetLandingConfig(ctx)
	require.NoError(t, err)
	assert.Nil(t, landing)

	want := domain.LandingConfig{ContactPhone: "01000000000", ContactEmail: "help@example.com"}
	require.NoError(t, f.landing.SaveLandingConfig(ctx, want))
	landing, err = f.store.GetLandingConfig(ctx)
	require.NoError(t, err)
	require.NotNil(t, landing)
	assert.Equal(t, want, *landing)

	docs, err := f.store.GetDocText(ctx)
	require.NoError(t, err)
	assert.Equal(t, contractCoreDocs, docs)

	require.NoError(t, f.manual.SaveManual(ctx, "دليل التشغيل المرفوع"))
	docs, err = f.store.GetDocText(ctx)
	require.NoError(t, err)
	assert.Equal(t, contractCoreDocs+"\n\nدليل التشغيل المرفوع", docs)

	require.NoError(t, f.manual.DeleteManual(ctx))
	docs, err = f.store.GetDocText(ctx)
	require.NoError(t, err)
	assert.Equal(t, contractCoreDocs, docs)
}

func testChatLogs(t *testing.T, f storeFixture) {
	ctx := context.Background()

	question := "الطابعة مش بتطبع الباركود"
	ids := make([]string, 3)
	for i := range ids {
		ids[i] = uuid.NewString()
		l := &domain.ChatLog{
			ID:              ids[i],
			StartedAt:       contractTime(time.Duration(i) * time.Hour),
			DurationSeconds: 42.5,
			Transcript:      "user: مرحبا",
			Summary:         "محادثة عامة",
			ClientName:      "زائر",
			Emotion:         domain.EmotionNormal,
			CreatedAt:       contractTime(time.Duration(i)*time.Hour + time.Minute),
		}
		if i == 2 {
			l.UnmatchedQuestion = &question
		}
		require.NoError(t, f.chatLogs.Create(ctx, l))
	}

	recent, err := f.store.GetRecentLogs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	require.NotNil(t, recent[0].UnmatchedQuestion)
	assert.Equal(t, question, *recent[0].UnmatchedQuestion)
	assert.Nil(t, recent[1].UnmatchedQuestion)
	assert.Equal(t, 42.5, recent[1].DurationSeconds)

	page, err := f.chatLogs.ListWithCursor(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	require.NotEmpty(t, page.NextCursor)

	cursor, err := pagination.DecodeCursor(page.NextCursor)
	require.NoError(t, err)
	page, err = f.chatLogs.ListWithCursor(ctx, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ids[0], page.Items[0].ID)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)
}

func testCandidates(t *testing.T, f storeFixture) {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, f.store.SaveCandidateQuestion(ctx, "الطابعة مش بتطبع", domain.CategoryTroubleshooting))
	}
	require.NoError(t, f.store.SaveCandidateQuestion(ctx, "الطابعة مش بتطبع", domain.CategoryGeneral))
	require.NoError(t, f.store.SaveCandidateQuestion(ctx, "ازاي اغير الباسورد", domain.CategoryHowTo))
	require.NoError(t, f.store.SaveCandidateQuestion(ctx, "اضافة صنف جديد", domain.CategoryInventory))

	page, err := f.candidates.ListWithCursor(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "الطابعة مش بتطبع", page.Items[0].Question)
	assert.Equal(t, 4, page.Items[0].Count)
	assert.Equal(t, domain.CategoryTroubleshooting, page.Items[0].Category, "first category is kept")
	assert.Equal(t, "ازاي اغير الباسورد", page.Items[1].Question, "ties break by question")
	assert.True(t, page.HasMore)

	cursor, err := pagination.DecodeCountCursor(page.NextCursor)
	require.NoError(t, err)
	page, err = f.candidates.ListWithCursor(ctx, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "اضافة صنف جديد", page.Items[0].Question)
	assert.False(t, page.HasMore)
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/supportdesk/internal/domain"
	"github.com/cloo-solutions/supportdesk/internal/service"
)

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListSnippets(ctx context.Context) ([]domain.Snippet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Snippet), args.Error(1)
}

func (m *MockAdminService) AddSnippet(ctx context.Context, content string) (*domain.Snippet, error) {
	args := m.Called(ctx, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snippet), args.Error(1)
}

func (m *MockAdminService) DeleteSnippet(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAdminService) ListKnowledge(ctx context.Context) ([]domain.KnowledgeItemFull, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnowledgeItemFull), args.Error(1)
}

func (m *MockAdminService) SaveKnowledge(ctx context.Context, input service.SaveKnowledgeInput) (*domain.KnowledgeItemFull, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeItemFull), args.Error(1)
}

func (m *MockAdminService) DeleteKnowledge(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAdminService) SetManual(ctx context.Context, content string) error {
	args := m.Called(ctx, content)
	return args.Error(0)
}

func (m *MockAdminService) ResetManual(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAdminService) GetLanding(ctx context.Context) (domain.LandingConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.LandingConfig), args.Error(1)
}

func (m *MockAdminService) SetLanding(ctx context.Context, cfg domain.LandingConfig) (domain.LandingConfig, error) {
	args := m.Called(ctx, cfg)
	return args.Get(0).(domain.LandingConfig), args.Error(1)
}

func (m *MockAdminService) ListCandidates(ctx context.Context, cursor string, limit int) (*service.CandidatePageResult, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CandidatePageResult), args.Error(1)
}

func (m *MockAdminService) Expand(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockLogLister struct {
	mock.Mock
}

func (m *MockLogLister) ListLogs(ctx context.Context, cursor string, limit int) (*service.ChatLogPageResult, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ChatLogPageResult), args.Error(1)
}

func requestWithID(method, path, id string, body []byte) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	items, ok := resp["data"].([]interface{})
	require.True(t, ok, "response data is not a list: %s", w.Body.String())
	return items
}

func TestAdminHandler_Snippets(t *testing.T) {
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	t.Run("list", func(t *testing.T) {
		mockSvc := new(MockAdminService)
		handler := NewAdminHandler(mockSvc, nil)
		mockSvc.On("ListSnippets", mock.Anything).Return([]domain.Snippet{
			{ID: "s-2", Content: "الجرد السنوي يتقفل يوم ٣١ ديسمبر", CreatedAt: created.Add(time.Hour)},
			{ID: "s-1", Content: "التحديث الجديد نزل", CreatedAt: created},
		}, nil)

		w := httptest.NewRecorder()
		handler.ListSnippets(w, httptest.NewRequest(http.MethodGet, "/admin/snippets", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		items := decodeList(t, w)
		require.Len(t, items, 2)
		assert.Equal(t, "s-2", items[0].(map[string]interface{})["id"])
	})

	t.Run("add", func(t *testing.T) {
		mockSvc := new(MockAdminService)
		handler := NewAdminHandler(mockSvc, nil)
		mockSvc.On("AddSnippet", mock.Anything, "المرتجع لازم يتعمل من نفس الفرع").
			Return(&domain.Snippet{ID: "s-3", Content: "المرتجع لازم يتعمل من نفس الفرع", CreatedAt: created}, nil)

		w := httptest.NewRecorder()
		handler.AddSnippet(w, postJSON("/admin/snippets", `{"content":"المرتجع لازم يتعمل من نفس الفرع"}`))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "s-3", decodeData(t, w)["id"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("add invalid", func(t *testing.T) {
		mockSvc := new(MockAdminService)
		handler := NewAdminHandler(mockSvc, nil)
		mockSvc.On("AddSnippet", mock.Anything, "").
			Return(nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid snippet"))

		w := httptest.NewRecorder()
		handler.AddSnippet(w, postJSON("/admin/snippets", `{"content":""}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		mockSvc := new(MockAdminService)
		handler := NewAdminHandler(mockSvc, nil)
		mockSvc.On("DeleteSnippet", mock.Anything, "s-1").Return(nil)

		w := httptest.NewRecorder()
		handler.DeleteSnippet(w, requestWithID(http.MethodDelete, "/admin/snippets/s-1", "s-1", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("delete missing", func(t *testing.T) {
		mockSvc := new(MockAdminService)
		handler := NewAdminHandler(mockSvc, nil)
		mockSvc.On("DeleteSnippet", mock.Anything, "s-9").Return(domain.ErrSnippetNotFound)

		w := httptest.NewRecorder()
		handler.DeleteSnippet(w, requestWithID(http.MethodDelete, "/admin/snippets/s-9", "s-9", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminHandler_SaveKnowledge(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(MockAdminService)
		handler := NewAdminHandler(mockSvc, nil)

		item := &domain.KnowledgeItemFull{
			ID:        "kb_016",
			Category:  domain.CategoryInventory,
			Questions: []string{"ازاي اعمل جرد", "طريقة الجرد"},
			Answer:    "من قائمة المخازن اختار جرد",
		}
		mockSvc.On("SaveKnowledge", mock.Anything, service.SaveKnowledgeInput{
			ID:        "kb_016",
			Category:  domain.CategoryInventory,
			Questions: item.Questions,
			Answer:    item.Answer,
		}).Return(item, nil)

		body := `{"id":"kb_016","category":"inventory","questions":["ازاي اعمل جرد","طريقة الجرد"],"answer":"من قائمة المخازن اختار جرد"}`
		w := httptest.NewRecorder()
		handler.SaveKnowledge(w, httptest.NewRequest(http.MethodPut, "/admin/knowledge", bytes.NewReader([]byte(body))))

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeData(t, w)
		assert.Equal(t, "kb_016", data["id"])
		assert.Len(t, data["questions"], 2)
		mockSvc.AssertExpectations(t)
	})

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"invalid json", `{`, "invalid request body"},
		{"no answer", `{"category":"sales","questions":["q"]}`, "answer is required"},
		{"no questions", `{"category":"sales","answer":"a"}`, "questions are required"},
		{"bad category", `{"category":"weather","questions":["q"],"answer":"a"}`, "invalid category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockAdminService)
			handler := NewAdminHandler(mockSvc, nil)

			w := httptest.NewRecorder()
			handler.SaveKnowledge(w, httptest.NewRequest(http.MethodPut, "/admin/knowledge", bytes.NewReader([]byte(tt.body))))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
			mockSvc.AssertNotCalled(t, "SaveKnowledge", mock.Anything, mock.Anything)
		})
	}
}

func TestAdminHandler_Manual(t *testing.T) {
	mockSvc := new(MockAdminService)
	handler := NewAdminHandler(mockSvc, nil)
	mockSvc.On("SetManual", mock.Anything, "#### قائمة [الصيانة]").Return(nil)
	mockSvc.On("ResetManual", mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	handler.SetManual(w, httptest.NewRequest(http.MethodPut, "/admin/manual", bytes.NewReader([]byte(`{"content":"#### قائمة [الصيانة]"}`))))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	handler.ResetManual(w, httptest.NewRequest(http.MethodDelete, "/admin/manual", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	mockSvc.AssertExpectations(t)
}

func TestAdminHandler_Landing(t *testing.T) {
	mockSvc := new(MockAdminService)
	handler := NewAdminHandler(mockSvc, nil)

	saved := domain.LandingConfig{
		ContactPhone:   "01000000000",
		ContactEmail:   domain.DefaultContactEmail,
		ContactAddress: domain.DefaultContactAddress,
	}
	mockSvc.On("SetLanding", mock.Anything, domain.LandingConfig{ContactPhone: "01000000000"}).Return(saved, nil)
	mockSvc.On("GetLanding", mock.Anything).Return(saved, nil)

	w := httptest.NewRecorder()
	handler.SetLanding(w, httptest.NewRequest(http.MethodPut, "/admin/landing", bytes.NewReader([]byte(`{"contactPhone":"01000000000"}`))))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.DefaultContactEmail, decodeData(t, w)["contactEmail"])

	w = httptest.NewRecorder()
	handler.GetLanding(w, httptest.NewRequest(http.MethodGet, "/admin/landing", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "01000000000", decodeData(t, w)["contactPhone"])
}

func TestAdminHandler_ListCandidates(t *testing.T) {
	mockSvc := new(MockAdminService)
	handler := NewAdminHandler(mockSvc, nil)

	mockSvc.On("ListCandidates", mock.Anything, "abc", 2).Return(&service.CandidatePageResult{
		Items: []*domain.CandidateQuestion{
			{Question: "الطابعة مش بتطبع", Count: 5, Category: domain.CategoryTroubleshooting},
			{Question: "ازاي اغير الباسورد", Count: 3, Category: domain.CategoryGeneral},
		},
		NextCursor: "next",
		HasMore:    true,
	}, nil)

	w := httptest.NewRecorder()
	handler.ListCandidates(w, httptest.NewRequest(http.MethodGet, "/admin/candidates?limit=2&cursor=abc", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "next", data["next_cursor"])
	assert.Equal(t, true, data["has_more"])
	items := data["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, float64(5), items[0].(map[string]interface{})["count"])
}

func TestAdminHandler_ListCandidates_InvalidLimit(t *testing.T) {
	mockSvc := new(MockAdminService)
	handler := NewAdminHandler(mockSvc, nil)

	w := httptest.NewRecorder()
	handler.ListCandidates(w, httptest.NewRequest(http.MethodGet, "/admin/candidates?limit=ten", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "ListCandidates", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminHandler_ListLogs(t *testing.T) {
	logs := new(MockLogLister)
	handler := NewAdminHandler(new(MockAdminService), logs)

	logs.On("ListLogs", mock.Anything, "", 0).Return(&service.ChatLogPageResult{
		Items: []*domain.ChatLog{{
			ID:         "7c9e6679-7425-40de-944b-e07fc1f90ae7",
			StartedAt:  time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
			ClientName: "كريم",
			Emotion:    domain.EmotionRushed,
		}},
	}, nil)

	w := httptest.NewRecorder()
	handler.ListLogs(w, httptest.NewRequest(http.MethodGet, "/admin/logs", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	items := data["items"].([]interface{})
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "rushed", first["emotion"])
	assert.Nil(t, first["unmatched_question"])
}

func TestAdminHandler_Expand(t *testing.T) {
	mockSvc := new(MockAdminService)
	handler := NewAdminHandler(mockSvc, nil)
	mockSvc.On("Expand", mock.Anything).Return(2, nil)

	w := httptest.NewRecorder()
	handler.Expand(w, httptest.NewRequest(http.MethodPost, "/admin/expand", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeData(t, w)["saved"])
}

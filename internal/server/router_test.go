package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cloo-solutions/supportdesk/internal/api/handlers"
	"github.com/cloo-solutions/supportdesk/internal/domain"
	"github.com/cloo-solutions/supportdesk/internal/metrics"
	"github.com/cloo-solutions/supportdesk/internal/service"
)

const testAdminKey = "sd_admin_router_test"

type MockResponder struct {
	mock.Mock
}

func (m *MockResponder) Respond(ctx context.Context, message string, history []domain.Message) (*service.Reply, error) {
	args := m.Called(ctx, message, history)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Reply), args.Error(1)
}

type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) EndSession(ctx context.Context, input service.EndSessionInput) (*domain.ChatLog, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatLog), args.Error(1)
}

func (m *MockSessions) ListLogs(ctx context.Context, cursor string, limit int) (*service.ChatLogPageResult, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ChatLogPageResult), args.Error(1)
}

type MockAdmin struct {
	mock.Mock
	handlers.AdminService
}

func (m *MockAdmin) ListSnippets(ctx context.Context) ([]domain.Snippet, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Snippet), args.Error(1)
}

func setupRouter(adminKey string) (http.Handler, *MockResponder, *MockAdmin) {
	responder := new(MockResponder)
	sessions := new(MockSessions)
	admin := new(MockAdmin)

	reg := prometheus.NewRegistry()
	metrics.NewRecorder(reg)

	cfg := RouterConfig{
		ChatHandler:  handlers.NewChatHandler(responder, sessions, zap.NewNop()),
		AdminHandler: handlers.NewAdminHandler(admin, sessions),
		AdminAPIKey:  adminKey,
		Gatherer:     reg,
		Logger:       zap.NewNop(),
	}
	return NewRouter(cfg), responder, admin
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _ := setupRouter(testAdminKey)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router, _, _ := setupRouter(testAdminKey)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ChatRespond(t *testing.T) {
	router, responder, _ := setupRouter(testAdminKey)

	responder.On("Respond", mock.Anything, "فين شاشة الموردين", mock.Anything).Return(&service.Reply{
		Text:    "من قائمة المشتريات",
		Emotion: domain.EmotionNormal,
		Source:  service.ReplyDocs,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat/respond", bytes.NewReader([]byte(`{"message":"فين شاشة الموردين"}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"docs"`)
	responder.AssertExpectations(t)
}

func TestRouter_AdminRoutes_RequireAuth(t *testing.T) {
	router, _, _ := setupRouter(testAdminKey)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/admin/snippets"},
		{http.MethodPost, "/admin/snippets"},
		{http.MethodDelete, "/admin/snippets/123"},
		{http.MethodGet, "/admin/knowledge"},
		{http.MethodPut, "/admin/knowledge"},
		{http.MethodDelete, "/admin/knowledge/kb_001"},
		{http.MethodPut, "/admin/manual"},
		{http.MethodDelete, "/admin/manual"},
		{http.MethodGet, "/admin/landing"},
		{http.MethodPut, "/admin/landing"},
		{http.MethodGet, "/admin/candidates"},
		{http.MethodGet, "/admin/logs"},
		{http.MethodPost, "/admin/expand"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			req.Header.Set("Authorization", "Bearer wrong")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_AdminRoutes_WithValidAuth(t *testing.T) {
	router, _, admin := setupRouter(testAdminKey)
	admin.On("ListSnippets", mock.Anything).Return([]domain.Snippet{{ID: "s-1", Content: "x"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/snippets", nil)
	req.Header.Set("Authorization", "Bearer "+testAdminKey)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	admin.AssertExpectations(t)
}

func TestRouter_AdminDisabledWithoutKey(t *testing.T) {
	router, _, _ := setupRouter("")

	req := httptest.NewRequest(http.MethodGet, "/admin/snippets", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RejectsOversizedBody(t *testing.T) {
	router, responder, _ := setupRouter(testAdminKey)

	big := `{"message":"` + strings.Repeat("ا", int(maxBodyBytes)) + `"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/chat/respond", strings.NewReader(big)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	responder.AssertNotCalled(t, "Respond", mock.Anything, mock.Anything, mock.Anything)
}

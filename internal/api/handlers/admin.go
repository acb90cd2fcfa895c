package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/supportdesk/internal/api"
	"github.com/cloo-solutions/supportdesk/internal/domain"
	"github.com/cloo-solutions/supportdesk/internal/service"
)

type AdminService interface {
	ListSnippets(ctx context.Context) ([]domain.Snippet, error)
	AddSnippet(ctx context.Context, content string) (*domain.Snippet, error)
	DeleteSnippet(ctx context.Context, id string) error
	ListKnowledge(ctx context.Context) ([]domain.KnowledgeItemFull, error)
	SaveKnowledge(ctx context.Context, input service.SaveKnowledgeInput) (*domain.KnowledgeItemFull, error)
	DeleteKnowledge(ctx context.Context, id string) error
	SetManual(ctx context.Context, content string) error
	ResetManual(ctx context.Context) error
	GetLanding(ctx context.Context) (domain.LandingConfig, error)
	SetLanding(ctx context.Context, cfg domain.LandingConfig) (domain.LandingConfig, error)
	ListCandidates(ctx context.Context, cursor string, limit int) (*service.CandidatePageResult, error)
	Expand(ctx context.Context) (int, error)
}

type LogLister interface {
	ListLogs(ctx context.Context, cursor string, limit int) (*service.ChatLogPageResult, error)
}

type AdminHandler struct {
	svc  AdminService
	logs LogLister
}

func NewAdminHandler(svc AdminService, logs LogLister) *AdminHandler {
	return &AdminHandler{svc: svc, logs: logs}
}

type SnippetRequest struct {
	Content string `json:"content"`
}

type SnippetResponse struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type KnowledgeRequest struct {
	ID        string   `json:"id"`
	Category  string   `json:"category"`
	Questions []string `json:"questions"`
	Answer    string   `json:"answer"`
}

type KnowledgeResponse struct {
	ID        string   `json:"id"`
	Category  string   `json:"category"`
	Questions []string `json:"questions"`
	Answer    string   `json:"answer"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

type ManualRequest struct {
	Content string `json:"content"`
}

type LandingPayload struct {
	ContactPhone   string `json:"contactPhone"`
	ContactEmail   string `json:"contactEmail"`
	ContactAddress string `json:"contactAddress"`
	WhatsappNumber string `json:"whatsappNumber"`
}

type CandidateResponse struct {
	Question  string `json:"question"`
	Count     int    `json:"count"`
	Category  string `json:"category"`
	UpdatedAt string `json:"updated_at"`
}

type CandidateListResponse struct {
	Items      []*CandidateResponse `json:"items"`
	NextCursor string               `json:"next_cursor,omitempty"`
	HasMore    bool                 `json:"has_more"`
}

type ChatLogListResponse struct {
	Items      []*ChatLogResponse `json:"items"`
	NextCursor string             `json:"next_cursor,omitempty"`
	HasMore    bool               `json:"has_more"`
}

type ExpandResponse struct {
	Saved int `json:"saved"`
}

func snippetToResponse(s *domain.Snippet) *SnippetResponse {
	return &SnippetResponse{
		ID:        s.ID,
		Content:   s.Content,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func knowledgeToResponse(k *domain.KnowledgeItemFull) *KnowledgeResponse {
	resp := &KnowledgeResponse{
		ID:        k.ID,
		Category:  string(k.Category),
		Questions: k.Questions,
		Answer:    k.Answer,
	}
	if !k.UpdatedAt.IsZero() {
		resp.UpdatedAt = k.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func landingToPayload(c domain.LandingConfig) *LandingPayload {
	return &LandingPayload{
		ContactPhone:   c.ContactPhone,
		ContactEmail:   c.ContactEmail,
		ContactAddress: c.ContactAddress,
		WhatsappNumber: c.WhatsappNumber,
	}
}

func (h *AdminHandler) ListSnippets(w http.ResponseWriter, r *http.Request) {
	snippets, err := h.svc.ListSnippets(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*SnippetResponse, 0, len(snippets))
	for i := range snippets {
		resp = append(resp, snippetToResponse(&snippets[i]))
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *AdminHandler) AddSnippet(w http.ResponseWriter, r *http.Request) {
	var req SnippetRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snippet, err := h.svc.AddSnippet(r.Context(), req.Content)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, snippetToResponse(snippet))
}

func (h *AdminHandler) DeleteSnippet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.DeleteSnippet(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListKnowledge(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListKnowledge(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*KnowledgeResponse, 0, len(items))
	for i := range items {
		resp = append(resp, knowledgeToResponse(&items[i]))
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *AdminHandler) SaveKnowledge(w http.ResponseWriter, r *http.Request) {
	var req KnowledgeRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Answer == "" {
		api.Error(w, http.StatusBadRequest, "answer is required")
		return
	}
	if len(req.Questions) == 0 {
		api.Error(w, http.StatusBadRequest, "questions are required")
		return
	}

	category := domain.Category(req.Category)
	if !category.IsValid() {
		api.Error(w, http.StatusBadRequest, "invalid category")
		return
	}

	item, err := h.svc.SaveKnowledge(r.Context(), service.SaveKnowledgeInput{
		ID:        req.ID,
		Category:  category,
		Questions: req.Questions,
		Answer:    req.Answer,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, knowledgeToResponse(item))
}

func (h *AdminHandler) DeleteKnowledge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.svc.DeleteKnowledge(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) SetManual(w http.ResponseWriter, r *http.Request) {
	var req ManualRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.SetManual(r.Context(), req.Content); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ResetManual(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ResetManual(r.Context()); err != nil {
		api.HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) GetLanding(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.GetLanding(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, landingToPayload(cfg))
}

func (h *AdminHandler) SetLanding(w http.ResponseWriter, r *http.Request) {
	var req LandingPayload
	if err := api.DecodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg, err := h.svc.SetLanding(r.Context(), domain.LandingConfig{
		ContactPhone:   req.ContactPhone,
		ContactEmail:   req.ContactEmail,
		ContactAddress: req.ContactAddress,
		WhatsappNumber: req.WhatsappNumber,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, landingToPayload(cfg))
}

func (h *AdminHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	page, err := h.svc.ListCandidates(r.Context(), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*CandidateResponse, 0, len(page.Items))
	for _, c := range page.Items {
		items = append(items, &CandidateResponse{
			Question:  c.Question,
			Count:     c.Count,
			Category:  string(c.Category),
			UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	api.Success(w, http.StatusOK, &CandidateListResponse{
		Items:      items,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	})
}

func (h *AdminHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	page, err := h.logs.ListLogs(r.Context(), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]*ChatLogResponse, 0, len(page.Items))
	for _, l := range page.Items {
		items = append(items, chatLogToResponse(l))
	}

	api.Success(w, http.StatusOK, &ChatLogListResponse{
		Items:      items,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	})
}

func (h *AdminHandler) Expand(w http.ResponseWriter, r *http.Request) {
	saved, err := h.svc.Expand(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, &ExpandResponse{Saved: saved})
}

// parseLimit reads ?limit. A missing value yields 0 and the service default.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		api.Error(w, http.StatusBadRequest, "invalid limit")
		return 0, false
	}
	return limit, true
}

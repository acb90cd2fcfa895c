package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cloo-solutions/supportdesk/internal/api"
	"github.com/cloo-solutions/supportdesk/internal/api/middleware"
	"github.com/cloo-solutions/supportdesk/internal/domain"
	"github.com/cloo-solutions/supportdesk/internal/service"
)

// DegradedReply is sent when the knowledge store cannot be read.
const DegradedReply = "معلش في مشكلة بسيطة في النظام، ممكن تحاول تاني؟"

type ResponderService interface {
	Respond(ctx context.Context, message string, history []domain.Message) (*service.Reply, error)
}

type SessionService interface {
	EndSession(ctx context.Context, input service.EndSessionInput) (*domain.ChatLog, error)
}

type ChatHandler struct {
	responder ResponderService
	sessions  SessionService
	logger    *zap.Logger
}

func NewChatHandler(responder ResponderService, sessions SessionService, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{responder: responder, sessions: sessions, logger: logger}
}

type MessageRequest struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Unmatched bool   `json:"unmatched,omitempty"`
}

type RespondRequest struct {
	Message string           `json:"message"`
	History []MessageRequest `json:"history"`
}

type RespondResponse struct {
	Reply     string `json:"reply"`
	Emotion   string `json:"emotion"`
	Intent    string `json:"intent,omitempty"`
	Category  string `json:"category,omitempty"`
	Source    string `json:"source"`
	Unmatched bool   `json:"unmatched"`
	Degraded  bool   `json:"degraded"`
}

type EmotionRequest struct {
	Text string `json:"text"`
}

type EmotionResponse struct {
	Emotion string `json:"emotion"`
}

type ClientInfoRequest struct {
	Messages []MessageRequest `json:"messages"`
}

type ClientInfoResponse struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
	Emotion string `json:"emotion"`
}

type EndSessionRequest struct {
	SessionID string           `json:"session_id"`
	StartedAt time.Time        `json:"started_at"`
	Messages  []MessageRequest `json:"messages"`
}

type ChatLogResponse struct {
	ID                string  `json:"id"`
	StartedAt         string  `json:"started_at"`
	DurationSeconds   float64 `json:"duration_seconds"`
	Transcript        string  `json:"transcript"`
	Summary           string  `json:"summary"`
	ClientName        string  `json:"client_name"`
	Emotion           string  `json:"emotion"`
	UnmatchedQuestion *string `json:"unmatched_question"`
	CreatedAt         string  `json:"created_at"`
}

func chatLogToResponse(l *domain.ChatLog) *ChatLogResponse {
	return &ChatLogResponse{
		ID:                l.ID,
		StartedAt:         l.StartedAt.UTC().Format(time.RFC3339),
		DurationSeconds:   l.DurationSeconds,
		Transcript:        l.Transcript,
		Summary:           l.Summary,
		ClientName:        l.ClientName,
		Emotion:           string(l.Emotion),
		UnmatchedQuestion: l.UnmatchedQuestion,
		CreatedAt:         l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toMessages(in []MessageRequest) []domain.Message {
	out := make([]domain.Message, 0, len(in))
	for _, m := range in {
		out = append(out, domain.Message{Role: domain.Role(m.Role), Text: m.Text, Unmatched: m.Unmatched})
	}
	return out
}

func (h *ChatHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req RespondRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		api.Error(w, http.StatusBadRequest, "message is required")
		return
	}

	history := toMessages(req.History)
	if err := domain.ValidateMessages(history); err != nil {
		api.HandleError(w, err)
		return
	}

	reply, err := h.responder.Respond(r.Context(), req.Message, history)
	if err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == domain.ErrCodeStoreUnavailable {
			middleware.RequestLogger(r.Context(), h.logger).Warn("knowledge store unavailable, sending degraded reply", zap.Error(err))
			api.Success(w, http.StatusOK, &RespondResponse{
				Reply:    DegradedReply,
				Emotion:  string(service.ClassifyEmotion(req.Message)),
				Source:   string(service.ReplyFallback),
				Degraded: true,
			})
			return
		}
		api.HandleError(w, err)
		return
	}

	resp := &RespondResponse{
		Reply:     reply.Text,
		Emotion:   string(reply.Emotion),
		Source:    string(reply.Source),
		Unmatched: reply.Unmatched,
	}
	if reply.Intent != nil {
		resp.Intent = string(reply.Intent.Intent.Name)
		resp.Category = string(reply.Intent.Intent.Category)
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *ChatHandler) Emotion(w http.ResponseWriter, r *http.Request) {
	var req EmotionRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	api.Success(w, http.StatusOK, &EmotionResponse{Emotion: string(service.ClassifyEmotion(req.Text))})
}

func (h *ChatHandler) ClientInfo(w http.ResponseWriter, r *http.Request) {
	var req ClientInfoRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	messages := toMessages(req.Messages)
	if err := domain.ValidateMessages(messages); err != nil {
		api.HandleError(w, err)
		return
	}

	info := service.ExtractClientInfo(messages)
	api.Success(w, http.StatusOK, &ClientInfoResponse{
		Name:    info.Name,
		Summary: info.Summary,
		Emotion: string(info.Emotion),
	})
}

func (h *ChatHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	var req EndSessionRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Messages) == 0 {
		api.Error(w, http.StatusBadRequest, "messages are required")
		return
	}

	log, err := h.sessions.EndSession(r.Context(), service.EndSessionInput{
		SessionID: req.SessionID,
		StartedAt: req.StartedAt,
		Messages:  toMessages(req.Messages),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, chatLogToResponse(log))
}

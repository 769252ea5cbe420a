package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"roomchat/internal/domain"
	"roomchat/internal/httpx"
	"roomchat/internal/middleware"
	"roomchat/internal/observability"
	"roomchat/internal/service"
	"roomchat/internal/validation"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds the send request body
const maxBodyBytes = 64 << 10

// ChatHandler serves the chat room message endpoints. Routes must be
// wrapped by middleware.Auth and middleware.RequireParticipant.
type ChatHandler struct {
	chatService         *service.ChatService
	accessDeniedMessage string
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService, accessDeniedMessage string) *ChatHandler {
	return &ChatHandler{
		chatService:         chatService,
		accessDeniedMessage: accessDeniedMessage,
	}
}

// SendResponse is the body of a successful send
type SendResponse struct {
	Success bool `json:"success"`
}

// FetchMessages returns a page of read or unread messages and marks the
// returned messages as read for the caller
func (h *ChatHandler) FetchMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.Error(w, middleware.NotAuthenticatedMessage, http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	params := service.GetMessagesParams{
		ChatRoomID:   chi.URLParam(r, middleware.ChatRoomIDParam),
		UserID:       userID,
		MessagesType: queryParam(q, "messages_type"),
		Count:        queryParam(q, "count"),
		MessageID:    queryParam(q, "message_id"),
	}
	if params.MessageID == nil {
		params.MessageID = queryParam(q, "message_uuid")
	}

	messages, err := h.chatService.FetchMessages(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httpx.JSON(w, messages, http.StatusOK)
}

// SendMessage stores a message from the caller and marks the whole room
// as read for them
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.Error(w, middleware.NotAuthenticatedMessage, http.StatusUnauthorized)
		return
	}
	chatRoomID := chi.URLParam(r, middleware.ChatRoomIDParam)

	body, err := validation.DecodeRequestBody(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	text, err := validation.ParseRequestText(body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	msg, err := h.chatService.SendMessage(r.Context(), chatRoomID, userID, text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := h.chatService.MarkAsRead(r.Context(), userID, chatRoomID, domain.MarkAll()); err != nil {
		h.writeError(w, r, err)
		return
	}

	observability.FromContext(r.Context()).Debug("message sent", slog.String("message_id", msg.ID))
	httpx.JSON(w, SendResponse{Success: true}, http.StatusOK)
}

func (h *ChatHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		httpx.Error(w, vErr.Message, http.StatusBadRequest)
	case errors.Is(err, domain.ErrAccessDenied):
		httpx.Error(w, h.accessDeniedMessage, http.StatusForbidden)
	case errors.Is(err, context.DeadlineExceeded):
		observability.FromContext(r.Context()).Warn("request timed out", slog.String("error", err.Error()))
		httpx.Error(w, "Request timed out", http.StatusServiceUnavailable)
	default:
		observability.FromContext(r.Context()).Error("chat request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		httpx.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// queryParam returns nil when key is absent, so an empty value stays
// distinguishable from a missing one
func queryParam(q url.Values, key string) *string {
	values, ok := q[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"roomchat/internal/httpx"
	"roomchat/internal/observability"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const ChatRoomIDParam = "chat_room_id"

// AccessChecker decides whether a user may use a chat room
type AccessChecker interface {
	HasAccess(ctx context.Context, userID, chatRoomID string) (bool, error)
}

// RequireParticipant rejects requests from users that are not participants
// of the chat room named by the chat_room_id URL parameter. It runs before
// any parameter validation of the wrapped handler. A chat room id that is
// not a UUID answers 404.
func RequireParticipant(checker AccessChecker, deniedMessage string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			chatRoomID := chi.URLParam(r, ChatRoomIDParam)
			if _, err := uuid.Parse(chatRoomID); err != nil {
				httpx.Error(w, "Not found", http.StatusNotFound)
				return
			}

			userID, ok := GetUserID(r.Context())
			if !ok {
				httpx.Error(w, NotAuthenticatedMessage, http.StatusUnauthorized)
				return
			}

			ctx := observability.WithChatRoomID(r.Context(), chatRoomID)
			logger := observability.FromContext(ctx)

			allowed, err := checker.HasAccess(ctx, userID, chatRoomID)
			if err != nil {
				logger.Error("access check failed", slog.String("error", err.Error()))
				httpx.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if !allowed {
				observability.AccessDeniedTotal.Inc()
				logger.Info("chat access denied")
				httpx.Error(w, deniedMessage, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

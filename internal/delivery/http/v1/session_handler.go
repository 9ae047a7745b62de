package v1

import (
	"net/http"
	"time"

	"storefront-backend/internal/delivery/http/middleware"
	"storefront-backend/internal/domain"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/utils"
)

type SessionHandler struct {
	sessionUC    *usecase.SessionUsecase
	secureCookie bool
}

// NewSessionHandler issues session cookies with the Secure flag unless
// running in development, where the UI is served over plain http.
func NewSessionHandler(uc *usecase.SessionUsecase, env string) *SessionHandler {
	return &SessionHandler{
		sessionUC:    uc,
		secureCookie: env != "development" && env != "dev" && env != "",
	}
}

type sessionResponse struct {
	SessionID string    `json:"sessionId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, token, err := h.sessionUC.Create(r.Context())
	if err != nil {
		logger.WithContext(r.Context()).Error().Err(err).Msg("Failed to create session")
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     utils.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})

	utils.WriteJSON(w, http.StatusCreated, domain.Response{
		Success: true,
		Data: sessionResponse{
			SessionID: sess.ID,
			Token:     token,
			ExpiresAt: sess.ExpiresAt,
		},
	})
}

// EndSession tears down the caller's session. Must be used after the
// session middleware.
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.sessionUC.End(r.Context(), sess.ID)
	logger.WithContext(r.Context()).Info().Msg("Session ended")

	http.SetCookie(w, &http.Cookie{
		Name:     utils.SessionCookieName,
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
	})
	w.WriteHeader(http.StatusNoContent)
}

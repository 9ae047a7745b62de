package middleware

import (
	"context"
	"net/http"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/utils"
)

// SessionFinder resolves a session id to a live session.
type SessionFinder interface {
	Get(ctx context.Context, id string) (*usecase.Session, error)
}

// NewSessionMiddleware resolves the session token (Bearer header or session
// cookie) to a live session and stores it in the request context.
func NewSessionMiddleware(sessions SessionFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Token -> session id
			sessionID, err := utils.ExtractSessionID(r)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: invalid or missing session token")
				return
			}

			// 2. Session id -> live session. Tokens outlive sessions that were
			// ended or swept, so a valid token alone is not enough.
			sess, err := sessions.Get(r.Context(), sessionID)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: session expired")
				return
			}

			// 3. Set Context
			sessLog := logger.WithSessionID(*logger.WithContext(r.Context()), sess.ID)
			ctx := context.WithValue(r.Context(), domain.SessionContextKey, sess)
			ctx = logger.NewContext(ctx, &sessLog)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session stored by the session middleware.
func SessionFromContext(ctx context.Context) (*usecase.Session, bool) {
	sess, ok := ctx.Value(domain.SessionContextKey).(*usecase.Session)
	return sess, ok && sess != nil
}

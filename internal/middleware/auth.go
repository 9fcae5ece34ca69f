package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/adaptive-quiz/backend/internal/auth"
	"github.com/adaptive-quiz/backend/internal/avail"
	"github.com/adaptive-quiz/backend/internal/models"
)

// RequireAuth verifies the bearer token and attaches the caller's identity
// to the request context. When no verifier is available every request
// passes through as the anonymous user.
func RequireAuth(verifier avail.Handle[auth.Verifier], logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, ok := verifier.Get()
			if !ok {
				ctx := auth.WithIdentity(r.Context(), models.Identity{UserID: models.AnonymousUserID})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found || token == "" {
				writeError(w, http.StatusUnauthorized, "Missing Bearer token")
				return
			}

			id, err := v.Verify(r.Context(), token)
			if err != nil {
				logger.Debug("token rejected", zap.Error(err))
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg})
}

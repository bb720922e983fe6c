package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/abgdnv/catalog/pkg/web"
)

type contextKey string

const subjectContextKey = contextKey("subject")

// Middleware rejects requests without a valid bearer token with 401
// and stores the token subject in the request context.
func Middleware(verifier Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				web.RespondError(w, logger, http.StatusUnauthorized, "Authorization header is required")
				return
			}
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				web.RespondError(w, logger, http.StatusUnauthorized, "Bearer token is required")
				return
			}

			token, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				logger.WarnContext(r.Context(), "Rejected token", "error", err)
				web.RespondError(w, logger, http.StatusUnauthorized, "Invalid token")
				return
			}
			subject, ok := token.Subject()
			if !ok {
				web.RespondError(w, logger, http.StatusUnauthorized, "Token has no subject")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectContextKey, subject)))
		})
	}
}

// Subject returns the subject of the verified token, or "" for unauthenticated requests.
func Subject(ctx context.Context) string {
	subject, _ := ctx.Value(subjectContextKey).(string)
	return subject
}

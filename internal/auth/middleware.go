package auth

import (
	"net/http"
	"strings"

	"github.com/odyssey-erp/odyssey-payroll/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// RequireBearer rejects requests without a valid bearer token and stores the
// principal in the request context.
func RequireBearer(tokens *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, raw, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				httpx.Unauthorized(w, "missing bearer token")
				return
			}
			principal, err := tokens.Verify(strings.TrimSpace(raw))
			if err != nil {
				httpx.Unauthorized(w, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

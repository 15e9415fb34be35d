package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-payroll/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// Middleware wires role authorization helpers for HTTP handlers.
type Middleware struct {
	Roles  RoleResolver
	Logger *slog.Logger
}

// Refresh replaces the token role with the employee's current role.
func (m Middleware) Refresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := shared.PrincipalFromContext(r.Context())
		if !ok {
			httpx.Unauthorized(w, "authentication required")
			return
		}
		if m.Roles == nil {
			next.ServeHTTP(w, r)
			return
		}
		role, err := m.Roles.EmployeeRole(r.Context(), principal.EmployeeID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				httpx.Unauthorized(w, "account no longer active")
				return
			}
			if m.Logger != nil {
				m.Logger.Error("rbac resolve role", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
		principal.Role = role
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
	})
}

// RequireRole ensures the current principal holds one of the roles.
func (m Middleware) RequireRole(roles ...shared.Role) func(http.Handler) http.Handler {
	allowed := make(map[shared.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.Unauthorized(w, "authentication required")
				return
			}
			if len(allowed) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := allowed[principal.Role]; ok {
				next.ServeHTTP(w, r)
				return
			}
			httpx.RespondError(w, shared.Forbidden("INSUFFICIENT_ROLE", "Access denied"))
		})
	}
}

// RequireManager is shorthand for RequireRole(shared.RoleManager).
func (m Middleware) RequireManager() func(http.Handler) http.Handler {
	return m.RequireRole(shared.RoleManager)
}

// RequireSelfOrManager allows managers and the employee named by the URL param.
func (m Middleware) RequireSelfOrManager(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.Unauthorized(w, "authentication required")
				return
			}
			if principal.IsManager() {
				next.ServeHTTP(w, r)
				return
			}
			id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
			if err == nil && id == principal.EmployeeID {
				next.ServeHTTP(w, r)
				return
			}
			httpx.RespondError(w, shared.Forbidden("INSUFFICIENT_ROLE", "Access denied"))
		})
	}
}

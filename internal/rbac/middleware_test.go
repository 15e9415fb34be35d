package rbac

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

type stubRoles map[int64]shared.Role

func (s stubRoles) EmployeeRole(ctx context.Context, id int64) (shared.Role, error) {
	if id == 99 {
		return "", shared.Database(errors.New("connection refused"), "employees: get")
	}
	role, ok := s[id]
	if !ok {
		return "", shared.NotFound("EMPLOYEE_NOT_FOUND", "employee not found")
	}
	return role, nil
}

func withPrincipal(p shared.Principal, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), p)))
	})
}

func TestRefreshUsesCurrentRole(t *testing.T) {
	m := Middleware{Roles: stubRoles{1: shared.RoleEmployee, 2: shared.RoleManager}}
	guarded := m.Refresh(m.RequireManager()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	cases := []struct {
		name   string
		token  shared.Principal
		status int
	}{
		{"demoted manager", shared.Principal{EmployeeID: 1, Role: shared.RoleManager}, http.StatusForbidden},
		{"promoted employee", shared.Principal{EmployeeID: 2, Role: shared.RoleEmployee}, http.StatusNoContent},
		{"removed employee", shared.Principal{EmployeeID: 3, Role: shared.RoleManager}, http.StatusUnauthorized},
		{"directory failure", shared.Principal{EmployeeID: 99, Role: shared.RoleManager}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			withPrincipal(tc.token, guarded).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, tc.status, rr.Code)
		})
	}
}

func TestRequireRoleWithoutPrincipal(t *testing.T) {
	m := Middleware{}
	rr := httptest.NewRecorder()
	m.RequireManager()(http.NotFoundHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireSelfOrManager(t *testing.T) {
	m := Middleware{}
	cases := []struct {
		principal shared.Principal
		path      string
		status    int
	}{
		{shared.Principal{EmployeeID: 5, Role: shared.RoleEmployee}, "/employees/5", http.StatusNoContent},
		{shared.Principal{EmployeeID: 5, Role: shared.RoleEmployee}, "/employees/6", http.StatusForbidden},
		{shared.Principal{EmployeeID: 1, Role: shared.RoleManager}, "/employees/6", http.StatusNoContent},
	}
	for _, tc := range cases {
		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler { return withPrincipal(tc.principal, next) })
		r.With(m.RequireSelfOrManager("id")).Get("/employees/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))
		require.Equal(t, tc.status, rr.Code, tc.path)
	}
}

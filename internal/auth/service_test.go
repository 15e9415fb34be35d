package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

type stubAccounts map[string]Account

func (s stubAccounts) FindAccount(ctx context.Context, email string) (Account, error) {
	acc, ok := s[strings.ToLower(email)]
	if !ok {
		return Account{}, shared.NotFound("EMPLOYEE_NOT_FOUND", "employee not found")
	}
	return acc, nil
}

func newTestAuthService(t *testing.T) (*Service, *TokenIssuer) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("manager123"), bcrypt.MinCost)
	require.NoError(t, err)
	accounts := stubAccounts{
		"manager@payroll.local": {EmployeeID: 1, Email: "manager@payroll.local", PasswordHash: string(hash), Role: shared.RoleManager, IsActive: true},
		"gone@payroll.local":    {EmployeeID: 2, Email: "gone@payroll.local", PasswordHash: string(hash), Role: shared.RoleEmployee},
	}
	tokens := NewTokenIssuer("secret-key", time.Hour)
	return NewService(accounts, tokens), tokens
}

func TestLogin(t *testing.T) {
	svc, tokens := newTestAuthService(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, " manager@payroll.local ", "manager123")
	require.NoError(t, err)
	principal, err := tokens.Verify(token.AccessToken)
	require.NoError(t, err)
	require.Equal(t, int64(1), principal.EmployeeID)
	require.True(t, principal.IsManager())

	_, err = svc.Login(ctx, "manager@payroll.local", "wrong-password")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@payroll.local", "manager123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "gone@payroll.local", "manager123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginHandler(t *testing.T) {
	svc, _ := newTestAuthService(t)
	r := chi.NewRouter()
	NewHandler(nil, svc).MountRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"manager@payroll.local","password":"manager123"}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	var token Token
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &token))
	require.NotEmpty(t, token.AccessToken)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"manager@payroll.local","password":"not-the-one"}`)))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"not-an-email"}`)))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRequireBearer(t *testing.T) {
	tokens := NewTokenIssuer("secret-key", time.Hour)
	token, err := tokens.Issue(9, shared.RoleEmployee)
	require.NoError(t, err)

	var seen shared.Principal
	h := RequireBearer(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = shared.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Equal(t, int64(9), seen.EmployeeID)

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusUnauthorized, rr.Code, header)
	}
}

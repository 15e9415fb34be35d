package audit

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

	"github.com/odyssey-erp/odyssey-payroll/internal/rbac"
	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

type stubTimelineService struct {
	result      Result
	exportRows  []TimelineRow
	lastFilters TimelineFilters
}

func (s *stubTimelineService) Timeline(_ context.Context, filters TimelineFilters) (Result, error) {
	s.lastFilters = filters
	return s.result, nil
}

func (s *stubTimelineService) Export(_ context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	s.lastFilters = filters
	return s.exportRows, nil
}

func newAuditRouter(t *testing.T, service *stubTimelineService, role shared.Role) http.Handler {
	t.Helper()
	h := NewHandler(nil, service, rbac.Middleware{})
	h.now = func() time.Time { return time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithPrincipal(req.Context(), shared.Principal{EmployeeID: 1, Role: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.MountRoutes(r)
	return r
}

func TestTimelineDefaultsToLastWeek(t *testing.T) {
	service := &stubTimelineService{result: Result{Rows: []TimelineRow{}, Paging: PagingInfo{Page: 1, PageSize: 20}}}
	router := newAuditRouter(t, service, shared.RoleManager)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/audit-logs?actor=4&entity=payroll", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	require.Equal(t, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), service.lastFilters.From)
	require.Equal(t, shared.EndOfDayUTC(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)), service.lastFilters.To)
	require.Equal(t, int64(4), service.lastFilters.ActorID)
	require.Equal(t, "payroll", service.lastFilters.Entity)

	var body Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, 1, body.Paging.Page)
}

func TestTimelineRejectsInvalidFilters(t *testing.T) {
	router := newAuditRouter(t, &stubTimelineService{}, shared.RoleManager)
	for _, target := range []string{
		"/audit-logs?from=2024-03-21&to=2024-03-01",
		"/audit-logs?from=2023-01-01&to=2024-03-01",
		"/audit-logs?to=yesterday",
		"/audit-logs?page=0",
		"/audit-logs?actor=abc",
	} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusBadRequest, rr.Code, target)
	}
}

func TestTimelineRequiresManager(t *testing.T) {
	router := newAuditRouter(t, &stubTimelineService{}, shared.RoleEmployee)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/audit-logs", nil))
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestExportWritesCSV(t *testing.T) {
	service := &stubTimelineService{exportRows: []TimelineRow{
		mockRow("2024-03-10T10:00:00Z", 1, "payroll.status", "payroll", "3"),
	}}
	router := newAuditRouter(t, service, shared.RoleManager)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/audit-logs/export.csv?from=2024-03-01&to=2024-03-20", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], "payroll.status")
}

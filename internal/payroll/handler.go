package payroll

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-payroll/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-payroll/internal/rbac"
	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// Enqueuer schedules background calculations.
type Enqueuer interface {
	EnqueueCalculation(ctx context.Context, periodID int64) (string, error)
}

// Handler exposes pay period endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	enqueuer  Enqueuer
	validator *httpx.Validator
}

// NewHandler builds Handler instance. enqueuer may be nil, in which case
// async calculation requests run inline.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware, enqueuer Enqueuer) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, enqueuer: enqueuer, validator: httpx.NewValidator()}
}

// MountRoutes registers pay period and payroll routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/pay-periods", h.list)
	r.Get("/pay-periods/{id}", h.show)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireManager())
		r.Post("/pay-periods", h.getOrCreate)
		r.Post("/pay-periods/{id}/calculate", h.calculate)
		r.Post("/pay-periods/{id}/complete", h.complete)
		r.Get("/pay-periods/{id}/payrolls", h.payrolls)
		r.Patch("/payrolls/{id}/status", h.updatePayrollStatus)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{
		Status:     PeriodStatus(q.Get("status")),
		PeriodType: PeriodType(q.Get("periodType")),
	}
	var err error
	if filters.Page, filters.Limit, err = shared.ParsePageParams(q.Get("page"), q.Get("limit")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if filters.StartDate, err = dateParam(q.Get("startDate")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if filters.EndDate, err = dateParam(q.Get("endDate")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.ListPayPeriods(r.Context(), filters)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	period, err := h.service.GetPayPeriodByID(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

func (h *Handler) getOrCreate(w http.ResponseWriter, r *http.Request) {
	var req CreatePeriodRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}
	period, err := h.service.GetOrCreatePayPeriod(r.Context(), PeriodType(req.PeriodType), req.Year, req.Month, Options{ForceRecalculate: req.ForceRecalculate})
	if err != nil {
		h.logger.Error("get or create pay period", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("async") == "1" && h.enqueuer != nil {
		if _, err := h.service.GetPayPeriodByID(r.Context(), id); err != nil {
			httpx.RespondError(w, err)
			return
		}
		taskID, err := h.enqueuer.EnqueueCalculation(r.Context(), id)
		if err != nil {
			h.logger.Error("enqueue payroll calculation", slog.Int64("period_id", id), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]any{"periodId": id, "taskId": taskID})
		return
	}
	result, err := h.service.CalculatePeriodPayroll(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	period, err := h.service.CompletePayPeriod(r.Context(), id, principal.EmployeeID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

func (h *Handler) payrolls(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	items, err := h.service.ListPayrolls(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) updatePayrollStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req UpdatePayrollStatusRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	p, err := h.service.UpdatePayrollStatus(r.Context(), id, PayrollStatus(req.Status), principal.EmployeeID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, shared.Validation("INVALID_ID", "id must be a positive integer"))
		return 0, false
	}
	return id, true
}

// dateParam accepts YYYY-MM-DD or RFC3339.
func dateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, shared.Validation("INVALID_DATE", "dates must be YYYY-MM-DD or RFC3339")
}

package timesheets

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-payroll/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// Handler exposes time record endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *httpx.Validator
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: httpx.NewValidator()}
}

// MountRoutes registers timesheet routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/timesheets", h.create)
	r.Get("/timesheets", h.list)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if !h.validator.DecodeAndValidate(w, r, &in) {
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	if in.EmployeeID == 0 {
		in.EmployeeID = principal.EmployeeID
	}
	if in.EmployeeID != principal.EmployeeID && !principal.IsManager() {
		httpx.RespondError(w, shared.Forbidden("INSUFFICIENT_ROLE", "Access denied"))
		return
	}
	rec, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Warn("create time record", slog.Int64("employee_id", in.EmployeeID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	principal, _ := shared.PrincipalFromContext(r.Context())
	filters := ListFilters{EmployeeID: principal.EmployeeID}
	if principal.IsManager() {
		filters.EmployeeID = 0
		if raw := q.Get("employeeId"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				httpx.RespondError(w, shared.Validation("INVALID_FILTER", "employeeId must be an integer"))
				return
			}
			filters.EmployeeID = id
		}
	}
	var err error
	if filters.Page, filters.Limit, err = shared.ParsePageParams(q.Get("page"), q.Get("limit")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	for key, dst := range map[string]**time.Time{"from": &filters.From, "to": &filters.To} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.RespondError(w, shared.Validation("INVALID_DATE", key+" must be YYYY-MM-DD"))
			return
		}
		*dst = &t
	}
	result, err := h.service.List(r.Context(), filters)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

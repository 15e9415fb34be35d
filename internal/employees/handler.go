package employees

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-payroll/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-payroll/internal/rbac"
	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// Handler manages employee endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *httpx.Validator
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: httpx.NewValidator()}
}

// MountRoutes registers employee routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.me)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireManager())
		r.Get("/employees", h.list)
		r.Post("/employees", h.create)
		r.Patch("/employees/{id}", h.update)
	})
	r.With(h.rbac.RequireSelfOrManager("id")).Get("/employees/{id}", h.show)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	emp, err := h.service.Get(r.Context(), principal.EmployeeID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, emp)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit, err := shared.ParsePageParams(q.Get("page"), q.Get("limit"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filters := ListFilters{
		Search: q.Get("search"),
		Page:   page,
		Limit:  limit,
	}
	if role := q.Get("role"); role != "" {
		filters.Role = shared.ParseRole(role)
	}
	if active := q.Get("active"); active != "" {
		v, err := strconv.ParseBool(active)
		if err != nil {
			httpx.RespondError(w, shared.Validation("INVALID_FILTER", "active must be a boolean"))
			return
		}
		filters.Active = &v
	}
	result, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list employees", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if !h.validator.DecodeAndValidate(w, r, &in) {
		return
	}
	emp, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Warn("create employee", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, emp)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	emp, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, emp)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var in UpdateInput
	if !h.validator.DecodeAndValidate(w, r, &in) {
		return
	}
	emp, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.logger.Warn("update employee", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, emp)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, shared.Validation("INVALID_ID", "id must be a positive integer"))
		return 0, false
	}
	return id, true
}

package sin

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-payroll/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-payroll/internal/rbac"
	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// Handler exposes the vault over HTTP.
type Handler struct {
	logger    *slog.Logger
	vault     *Vault
	rbac      rbac.Middleware
	validator *httpx.Validator
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, vault *Vault, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, vault: vault, rbac: rbac, validator: httpx.NewValidator()}
}

// MountRoutes registers vault routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireManager()).Post("/employees/{id}/sin", h.store)
	r.Get("/employees/{id}/sin", h.retrieve)
	r.With(h.rbac.RequireManager()).Get("/employees/{id}/sin/access-logs", h.accessLogs)
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEmployeeID(w, r)
	if !ok {
		return
	}
	var req StoreRequest
	if !h.validator.DecodeAndValidate(w, r, &req) {
		return
	}
	rec, err := h.vault.Store(r.Context(), id, req.SIN)
	if err != nil {
		h.logger.Warn("store sin", slog.Int64("employee_id", id), slog.String("code", shared.CodeOf(err)))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) retrieve(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEmployeeID(w, r)
	if !ok {
		return
	}
	accessType, err := ParseAccessType(r.URL.Query().Get("access"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	value, err := h.vault.Retrieve(r.Context(), RetrieveInput{
		ActorID:    principal.EmployeeID,
		EmployeeID: id,
		AccessType: accessType,
		SourceIP:   clientIP(r),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"sin": value, "accessType": string(accessType)})
}

func (h *Handler) accessLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := parseEmployeeID(w, r)
	if !ok {
		return
	}
	page, limit, err := shared.ParsePageParams(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.vault.ListAccessLogs(r.Context(), id, page, limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func parseEmployeeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, shared.Validation("INVALID_ID", "id must be a positive integer"))
		return 0, false
	}
	return id, true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

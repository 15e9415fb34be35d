package audit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/odyssey-erp/odyssey-payroll/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-payroll/internal/rbac"
	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

const (
	exportRateLimit   = 10
	exportRateWindow  = time.Minute
	defaultDateRange  = 7 * 24 * time.Hour
	maxDateRangeHours = 24 * 90
)

// TimelineService is the read contract used by Handler.
type TimelineService interface {
	Timeline(ctx context.Context, filters TimelineFilters) (Result, error)
	Export(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error)
}

// Handler serves the audit trail to managers.
type Handler struct {
	logger  *slog.Logger
	service TimelineService
	rbac    rbac.Middleware
	now     func() time.Time
}

// NewHandler builds an audit handler.
func NewHandler(logger *slog.Logger, service TimelineService, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac, now: time.Now}
}

// MountRoutes registers the timeline and CSV export endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	limiter := httprate.Limit(exportRateLimit, exportRateWindow,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "RATE_LIMITED", "export limit reached")
		}),
	)
	r.Group(func(gr chi.Router) {
		gr.Use(h.rbac.RequireManager())
		gr.Get("/audit-logs", h.timeline)
		gr.With(limiter).Get("/audit-logs/export.csv", h.export)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if p, ok := shared.PrincipalFromContext(r.Context()); ok && p.EmployeeID != 0 {
		return "employee:" + strconv.FormatInt(p.EmployeeID, 10), nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("load audit timeline", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.logger.Error("export audit timeline", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	body, err := WriteCSV(rows)
	if err != nil {
		h.logger.Error("encode csv", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\"audit-logs.csv\"")
	if _, err := w.Write(body); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

func (h *Handler) parseFilters(r *http.Request) (TimelineFilters, error) {
	q := r.URL.Query()
	now := h.now().UTC()
	toTime := now
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		parsed, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return TimelineFilters{}, shared.Validation("INVALID_DATE", "to must be YYYY-MM-DD")
		}
		toTime = parsed
	}
	fromTime := toTime.Add(-defaultDateRange)
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		parsed, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return TimelineFilters{}, shared.Validation("INVALID_DATE", "from must be YYYY-MM-DD")
		}
		fromTime = parsed
	}
	fromTime = shared.StartOfDayUTC(fromTime)
	toTime = shared.EndOfDayUTC(toTime)
	if fromTime.After(toTime) {
		return TimelineFilters{}, shared.Validation("INVALID_RANGE", "from must not be after to")
	}
	if toTime.Sub(fromTime) > maxDateRangeHours*time.Hour {
		return TimelineFilters{}, shared.Validation("INVALID_RANGE", "date range must not exceed 90 days")
	}

	filters := TimelineFilters{
		From:   fromTime,
		To:     toTime,
		Entity: q.Get("entity"),
		Action: q.Get("action"),
	}
	if v := strings.TrimSpace(q.Get("actor")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return TimelineFilters{}, shared.Validation("INVALID_ACTOR", "actor must be a positive id")
		}
		filters.ActorID = id
	}
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page <= 0 {
			return TimelineFilters{}, shared.Validation("INVALID_PAGE", "page must be a positive integer")
		}
		filters.Page = page
	}
	if v := strings.TrimSpace(q.Get("page_size")); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return TimelineFilters{}, shared.Validation("INVALID_PAGE_SIZE", "page_size must be a positive integer")
		}
		filters.PageSize = size
	}
	return filters, nil
}

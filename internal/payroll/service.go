package payroll

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

var (
	ErrPeriodNotFound  = shared.NotFound("PAY_PERIOD_NOT_FOUND", "pay period not found")
	ErrPayrollNotFound = shared.NotFound("PAYROLL_NOT_FOUND", "payroll not found")
)

// Recorder receives calculation outcomes for metrics.
type Recorder interface {
	ObserveCalculation(result string, rows int)
}

// Invalidator is notified when calculated figures change.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service orchestrates pay periods and payroll calculation.
type Service struct {
	repo        Repository
	logger      *slog.Logger
	metrics     Recorder
	invalidator Invalidator
	now         func() time.Time
}

// NewService builds Service instance.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// WithNow overrides the clock, primarily for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// WithMetrics attaches a calculation recorder.
func (s *Service) WithMetrics(r Recorder) *Service {
	s.metrics = r
	return s
}

// WithInvalidator attaches a cache invalidator bumped after calculations.
func (s *Service) WithInvalidator(inv Invalidator) *Service {
	s.invalidator = inv
	return s
}

// GetOrCreatePayPeriod returns the latest period for the given half month,
// creating one when none exists. ForceRecalculate always creates a fresh
// PROCESSING revision with the same bounds.
func (s *Service) GetOrCreatePayPeriod(ctx context.Context, periodType PeriodType, year, month int, opts Options) (PayPeriod, error) {
	periodType, err := ParsePeriodType(string(periodType))
	if err != nil {
		return PayPeriod{}, err
	}
	if month < 1 || month > 12 {
		return PayPeriod{}, shared.Validation("INVALID_MONTH", "month must be between 1 and 12")
	}
	if year < 1 {
		return PayPeriod{}, shared.Validation("INVALID_YEAR", "year must be positive")
	}
	bounds := ResolvePeriodBounds(year, time.Month(month), periodType == FirstHalf)

	existing, err := s.repo.FindLatestPeriod(ctx, periodType, bounds)
	found := err == nil
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return PayPeriod{}, err
	}
	if found && !opts.ForceRecalculate {
		return existing, nil
	}

	revision := 1
	if found {
		revision = existing.Revision + 1
	}
	created, err := s.repo.InsertPeriod(ctx, PayPeriod{
		StartDate:  bounds.Start,
		EndDate:    bounds.End,
		PeriodType: periodType,
		Status:     PeriodProcessing,
		Revision:   revision,
	})
	if errors.Is(err, errPeriodExists) {
		return s.repo.FindLatestPeriod(ctx, periodType, bounds)
	}
	if err != nil {
		return PayPeriod{}, err
	}
	s.logger.Info("pay period created",
		slog.Int64("id", created.ID),
		slog.String("type", string(periodType)),
		slog.Int("revision", created.Revision))
	return created, nil
}

type employeeTotals struct {
	employeeID int64
	regular    float64
	overtime   float64
	payRate    float64
}

// CalculatePeriodPayroll aggregates time records into one DRAFT payroll per
// employee. Each employee is written in its own transaction; the run stops
// at the first failure and only a fully successful run stamps the period.
func (s *Service) CalculatePeriodPayroll(ctx context.Context, periodID int64) (CalculationResult, error) {
	period, err := s.repo.GetPeriod(ctx, periodID)
	if err != nil {
		return CalculationResult{}, err
	}
	if period.Status != PeriodProcessing {
		return CalculationResult{}, periodNotProcessing(period.Status)
	}

	entries, err := s.repo.LoadTimeEntries(ctx, period.Bounds())
	if err != nil {
		s.observe("failure", 0)
		return CalculationResult{}, err
	}

	groups := groupEntries(entries)
	result := CalculationResult{PeriodID: periodID, Payrolls: make([]Payroll, 0, len(groups))}
	for _, g := range groups {
		var created Payroll
		err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			locked, err := tx.LockPeriod(ctx, periodID)
			if err != nil {
				return err
			}
			if locked.Status != PeriodProcessing {
				return periodNotProcessing(locked.Status)
			}
			created, err = tx.InsertPayroll(ctx, buildPayroll(periodID, g))
			return err
		})
		if err != nil {
			s.logger.Error("payroll calculation stopped",
				slog.Int64("period_id", periodID),
				slog.Int64("employee_id", g.employeeID),
				slog.Int("written", len(result.Payrolls)),
				slog.Any("error", err))
			s.observe("failure", len(result.Payrolls))
			return result, shared.Database(err, "payroll: calculate")
		}
		result.Payrolls = append(result.Payrolls, created)
	}

	at := s.now().UTC()
	if _, err := s.repo.MarkCalculated(ctx, periodID, at); err != nil {
		s.observe("failure", len(result.Payrolls))
		return result, err
	}
	result.CalculatedAt = at
	s.observe("success", len(result.Payrolls))
	s.bump(ctx)
	s.logger.Info("payroll calculated", slog.Int64("period_id", periodID), slog.Int("employees", len(result.Payrolls)))
	return result, nil
}

func groupEntries(entries []TimeEntry) []employeeTotals {
	index := make(map[int64]int)
	var groups []employeeTotals
	for _, e := range entries {
		i, ok := index[e.EmployeeID]
		if !ok {
			i = len(groups)
			index[e.EmployeeID] = i
			groups = append(groups, employeeTotals{employeeID: e.EmployeeID, payRate: e.PayRate})
		}
		groups[i].regular += e.RegularHours
		groups[i].overtime += e.OvertimeHours
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].employeeID < groups[b].employeeID })
	return groups
}

func buildPayroll(periodID int64, g employeeTotals) Payroll {
	totalHours := g.regular + g.overtime*OvertimeMultiplier
	return Payroll{
		EmployeeID:         g.employeeID,
		PayPeriodID:        periodID,
		TotalRegularHours:  round2(g.regular),
		TotalOvertimeHours: round2(g.overtime),
		TotalHours:         round2(totalHours),
		GrossPay:           round2(totalHours * g.payRate),
		Status:             PayrollDraft,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CompletePayPeriod moves a PROCESSING period to its terminal state.
func (s *Service) CompletePayPeriod(ctx context.Context, id, actorID int64) (PayPeriod, error) {
	var out PayPeriod
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.LockPeriod(ctx, id)
		if err != nil {
			return err
		}
		if err := ValidatePeriodTransition(current.Status, PeriodCompleted); err != nil {
			return err
		}
		at := s.now().UTC()
		out, err = tx.CompletePeriod(ctx, id, at)
		if err != nil {
			return err
		}
		return tx.RecordAudit(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "pay_period.complete",
			Entity:   "pay_period",
			EntityID: strconv.FormatInt(id, 10),
			Meta:     map[string]any{"from": string(current.Status), "to": string(PeriodCompleted)},
			At:       at,
		})
	})
	if err != nil {
		return PayPeriod{}, err
	}
	s.bump(ctx)
	return out, nil
}

// GetPayPeriodByID returns one period.
func (s *Service) GetPayPeriodByID(ctx context.Context, id int64) (PayPeriod, error) {
	return s.repo.GetPeriod(ctx, id)
}

// ListPayPeriods returns a filtered page ordered by start date descending.
// Date filters are widened to whole UTC days.
func (s *Service) ListPayPeriods(ctx context.Context, filters ListFilters) (shared.Page[PayPeriod], error) {
	page, limit, err := shared.NormalizePage(filters.Page, filters.Limit)
	if err != nil {
		return shared.Page[PayPeriod]{}, err
	}
	filters.Page, filters.Limit = page, limit
	if filters.StartDate != nil {
		start := shared.StartOfDayUTC(*filters.StartDate)
		filters.StartDate = &start
	}
	if filters.EndDate != nil {
		end := shared.EndOfDayUTC(*filters.EndDate)
		filters.EndDate = &end
	}
	if filters.Status != "" {
		if filters.Status, err = ParsePeriodStatus(string(filters.Status)); err != nil {
			return shared.Page[PayPeriod]{}, err
		}
	}
	if filters.PeriodType != "" {
		if filters.PeriodType, err = ParsePeriodType(string(filters.PeriodType)); err != nil {
			return shared.Page[PayPeriod]{}, err
		}
	}
	items, total, err := s.repo.ListPeriods(ctx, filters)
	if err != nil {
		return shared.Page[PayPeriod]{}, err
	}
	if items == nil {
		items = []PayPeriod{}
	}
	return shared.Page[PayPeriod]{Data: items, Pagination: shared.NewPagination(page, limit, total)}, nil
}

// ListPayrolls returns the payroll rows of a period.
func (s *Service) ListPayrolls(ctx context.Context, periodID int64) ([]Payroll, error) {
	if _, err := s.repo.GetPeriod(ctx, periodID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListPayrolls(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Payroll{}
	}
	return items, nil
}

// UpdatePayrollStatus advances a payroll one step along its lifecycle.
func (s *Service) UpdatePayrollStatus(ctx context.Context, id int64, target PayrollStatus, actorID int64) (Payroll, error) {
	var out Payroll
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.LockPayroll(ctx, id)
		if err != nil {
			return err
		}
		if err := ValidatePayrollTransition(current.Status, target); err != nil {
			return err
		}
		out, err = tx.SetPayrollStatus(ctx, id, target)
		if err != nil {
			return err
		}
		return tx.RecordAudit(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "payroll.status",
			Entity:   "payroll",
			EntityID: strconv.FormatInt(id, 10),
			Meta:     map[string]any{"from": string(current.Status), "to": string(target)},
			At:       s.now().UTC(),
		})
	})
	if err != nil {
		return Payroll{}, err
	}
	return out, nil
}

// OpenCurrentPeriod ensures the period containing the current date exists.
func (s *Service) OpenCurrentPeriod(ctx context.Context) (PayPeriod, error) {
	periodType, year, month := PeriodTypeFor(s.now())
	return s.GetOrCreatePayPeriod(ctx, periodType, year, int(month), Options{})
}

func (s *Service) observe(result string, rows int) {
	if s.metrics != nil {
		s.metrics.ObserveCalculation(result, rows)
	}
}

func (s *Service) bump(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Bump(ctx); err != nil {
		s.logger.Warn("payroll cache invalidate", slog.Any("error", err))
	}
}

package timesheets

import (
	"context"
	"math"
	"strings"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// RateLookup resolves the current pay rate of an employee.
type RateLookup interface {
	PayRate(ctx context.Context, employeeID int64) (float64, error)
}

// Service records worked shifts.
type Service struct {
	repo  Repository
	rates RateLookup
}

// NewService builds Service instance.
func NewService(repo Repository, rates RateLookup) *Service {
	return &Service{repo: repo, rates: rates}
}

// Create validates and stores a shift, pricing it at the current pay rate.
func (s *Service) Create(ctx context.Context, in CreateInput) (TimeRecord, error) {
	if in.EmployeeID <= 0 {
		return TimeRecord{}, shared.Validation("EMPLOYEE_REQUIRED", "employee is required")
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return TimeRecord{}, shared.Validation("TIME_REQUIRED", "start and end time are required")
	}
	if !in.EndTime.After(in.StartTime) {
		return TimeRecord{}, shared.Validation("INVALID_TIME_RANGE", "end time must be after start time")
	}
	worked := in.EndTime.Sub(in.StartTime).Hours()
	regular, overtime := SplitHours(worked)
	if in.RegularHours != nil || in.OvertimeHours != nil {
		regular, overtime = 0, 0
		if in.RegularHours != nil {
			regular = *in.RegularHours
		}
		if in.OvertimeHours != nil {
			overtime = *in.OvertimeHours
		}
	}
	if regular < 0 || overtime < 0 {
		return TimeRecord{}, shared.Validation("INVALID_HOURS", "hours must not be negative")
	}
	if round2(regular+overtime) > round2(worked) {
		return TimeRecord{}, shared.Validation("INVALID_HOURS", "hours must not exceed the shift length")
	}
	rate, err := s.rates.PayRate(ctx, in.EmployeeID)
	if err != nil {
		return TimeRecord{}, err
	}
	return s.repo.Insert(ctx, TimeRecord{
		EmployeeID:    in.EmployeeID,
		StartTime:     in.StartTime.UTC(),
		EndTime:       in.EndTime.UTC(),
		RegularHours:  round2(regular),
		OvertimeHours: round2(overtime),
		TotalHours:    round2(regular + overtime),
		TotalPay:      round2(regular*rate + overtime*rate*OvertimeMultiplier),
		Notes:         strings.TrimSpace(in.Notes),
	})
}

// List returns a page of time records.
func (s *Service) List(ctx context.Context, filters ListFilters) (shared.Page[TimeRecord], error) {
	page, limit, err := shared.NormalizePage(filters.Page, filters.Limit)
	if err != nil {
		return shared.Page[TimeRecord]{}, err
	}
	filters.Page, filters.Limit = page, limit
	if filters.From != nil {
		from := shared.StartOfDayUTC(*filters.From)
		filters.From = &from
	}
	if filters.To != nil {
		to := shared.EndOfDayUTC(*filters.To)
		filters.To = &to
	}
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return shared.Page[TimeRecord]{}, err
	}
	if items == nil {
		items = []TimeRecord{}
	}
	return shared.Page[TimeRecord]{Data: items, Pagination: shared.NewPagination(page, limit, total)}, nil
}

// SplitHours assigns the first StandardDayHours to regular time.
func SplitHours(worked float64) (regular, overtime float64) {
	if worked <= StandardDayHours {
		return worked, 0
	}
	return StandardDayHours, worked - StandardDayHours
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

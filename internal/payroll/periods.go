package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// ResolvePeriodBounds maps a year, month and half to its exact UTC range.
// The first half runs from the 1st to the 15th, the second half from the
// 16th to the last day of the month.
func ResolvePeriodBounds(year int, month time.Month, firstHalf bool) Bounds {
	if firstHalf {
		return Bounds{
			Start: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
			End:   shared.EndOfDayUTC(time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)),
		}
	}
	last := shared.DaysInMonth(year, month)
	return Bounds{
		Start: time.Date(year, month, 16, 0, 0, 0, 0, time.UTC),
		End:   shared.EndOfDayUTC(time.Date(year, month, last, 0, 0, 0, 0, time.UTC)),
	}
}

// ParsePeriodType validates a period type string.
func ParsePeriodType(value string) (PeriodType, error) {
	switch PeriodType(strings.ToUpper(strings.TrimSpace(value))) {
	case FirstHalf:
		return FirstHalf, nil
	case SecondHalf:
		return SecondHalf, nil
	default:
		return "", shared.Validation("INVALID_PERIOD_TYPE", "period type must be FIRST_HALF or SECOND_HALF")
	}
}

// ParsePeriodStatus validates a period status string.
func ParsePeriodStatus(value string) (PeriodStatus, error) {
	switch PeriodStatus(strings.ToUpper(strings.TrimSpace(value))) {
	case PeriodProcessing:
		return PeriodProcessing, nil
	case PeriodCompleted:
		return PeriodCompleted, nil
	default:
		return "", shared.Validation("INVALID_STATUS", "status must be PROCESSING or COMPLETED")
	}
}

// PeriodTypeFor returns the period containing t (in UTC).
func PeriodTypeFor(t time.Time) (PeriodType, int, time.Month) {
	t = t.UTC()
	if t.Day() <= 15 {
		return FirstHalf, t.Year(), t.Month()
	}
	return SecondHalf, t.Year(), t.Month()
}

func periodNotProcessing(status PeriodStatus) error {
	return shared.Validation("PERIOD_NOT_PROCESSING", fmt.Sprintf("Cannot calculate payroll for %s pay period", status))
}

// ValidatePeriodTransition allows PROCESSING -> COMPLETED only.
func ValidatePeriodTransition(current, target PeriodStatus) error {
	switch current {
	case PeriodCompleted:
		return shared.Validation("PERIOD_COMPLETED", "Cannot change status of COMPLETED pay period")
	case PeriodProcessing:
		if target == PeriodCompleted {
			return nil
		}
		return shared.Validation("INVALID_TRANSITION", fmt.Sprintf("Cannot change status of PROCESSING pay period to %s", target))
	default:
		return shared.Validation("INVALID_STATUS", fmt.Sprintf("Unknown pay period status %s", current))
	}
}

var payrollFlow = map[PayrollStatus]PayrollStatus{
	PayrollDraft:     PayrollConfirmed,
	PayrollConfirmed: PayrollSent,
	PayrollSent:      PayrollCompleted,
}

// ValidatePayrollTransition allows one step forward along
// DRAFT -> CONFIRMED -> SENT -> COMPLETED.
func ValidatePayrollTransition(current, target PayrollStatus) error {
	if current == PayrollCompleted {
		return shared.Validation("PAYROLL_COMPLETED", "Cannot change status of COMPLETED payroll")
	}
	next, ok := payrollFlow[current]
	if !ok {
		return shared.Validation("INVALID_STATUS", fmt.Sprintf("Unknown payroll status %s", current))
	}
	if target != next {
		return shared.Validation("INVALID_TRANSITION", fmt.Sprintf("Cannot change status of %s payroll to %s", current, target))
	}
	return nil
}

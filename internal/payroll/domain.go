// Package payroll implements the payroll engine: semi-monthly pay periods,
// per-employee aggregation of time records and the period lifecycle.
package payroll

import "time"

// PeriodType names the half of the month a period covers.
type PeriodType string

const (
	FirstHalf  PeriodType = "FIRST_HALF"
	SecondHalf PeriodType = "SECOND_HALF"
)

// PeriodStatus is the lifecycle state of a pay period.
type PeriodStatus string

const (
	PeriodProcessing PeriodStatus = "PROCESSING"
	PeriodCompleted  PeriodStatus = "COMPLETED"
)

// PayrollStatus is the lifecycle state of a single payroll row.
type PayrollStatus string

const (
	PayrollDraft     PayrollStatus = "DRAFT"
	PayrollConfirmed PayrollStatus = "CONFIRMED"
	PayrollSent      PayrollStatus = "SENT"
	PayrollCompleted PayrollStatus = "COMPLETED"
)

// OvertimeMultiplier weights overtime hours in the hours total.
const OvertimeMultiplier = 1.5

// Bounds is an inclusive UTC date range.
type Bounds struct {
	Start time.Time `json:"startDate"`
	End   time.Time `json:"endDate"`
}

// Contains reports whether t falls inside the range.
func (b Bounds) Contains(t time.Time) bool {
	return !t.Before(b.Start) && !t.After(b.End)
}

// PayPeriod is one calculated half month.
type PayPeriod struct {
	ID           int64        `json:"id"`
	StartDate    time.Time    `json:"startDate"`
	EndDate      time.Time    `json:"endDate"`
	PeriodType   PeriodType   `json:"periodType"`
	Status       PeriodStatus `json:"status"`
	Revision     int          `json:"revision"`
	CalculatedAt *time.Time   `json:"calculatedAt,omitempty"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Bounds returns the period date range.
func (p PayPeriod) Bounds() Bounds {
	return Bounds{Start: p.StartDate, End: p.EndDate}
}

// Payroll is one employee's totals for a pay period.
type Payroll struct {
	ID                 int64         `json:"id"`
	EmployeeID         int64         `json:"employeeId"`
	PayPeriodID        int64         `json:"payPeriodId"`
	TotalRegularHours  float64       `json:"totalRegularHours"`
	TotalOvertimeHours float64       `json:"totalOvertimeHours"`
	TotalHours         float64       `json:"totalHours"`
	GrossPay           float64       `json:"grossPay"`
	Status             PayrollStatus `json:"status"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// TimeEntry is a time record joined with the employee's current pay rate.
type TimeEntry struct {
	EmployeeID    int64
	StartTime     time.Time
	RegularHours  float64
	OvertimeHours float64
	PayRate       float64
}

// Options tunes GetOrCreatePayPeriod.
type Options struct {
	ForceRecalculate bool
}

// ListFilters narrows pay period listings.
type ListFilters struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Status     PeriodStatus
	PeriodType PeriodType
	Page       int
	Limit      int
}

// CalculationResult summarises one calculation run.
type CalculationResult struct {
	PeriodID     int64     `json:"periodId"`
	Payrolls     []Payroll `json:"payrolls"`
	CalculatedAt time.Time `json:"calculatedAt"`
}

// CreatePeriodRequest is the HTTP payload for GetOrCreatePayPeriod.
type CreatePeriodRequest struct {
	PeriodType       string `json:"periodType" validate:"required,oneof=FIRST_HALF SECOND_HALF"`
	Year             int    `json:"year" validate:"required,gte=1970,lte=9999"`
	Month            int    `json:"month" validate:"required,gte=1,lte=12"`
	ForceRecalculate bool   `json:"forceRecalculate"`
}

// UpdatePayrollStatusRequest is the HTTP payload for a payroll status change.
type UpdatePayrollStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=DRAFT CONFIRMED SENT COMPLETED"`
}

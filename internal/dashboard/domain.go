// Package dashboard serves the cached manager overview.
package dashboard

import "time"

// PeriodSummary describes a pay period on the dashboard.
type PeriodSummary struct {
	ID           int64      `json:"id"`
	PeriodType   string     `json:"periodType"`
	Status       string     `json:"status"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      time.Time  `json:"endDate"`
	CalculatedAt *time.Time `json:"calculatedAt,omitempty"`
}

// PayrollTotals aggregates the payroll rows of one period.
type PayrollTotals struct {
	PeriodID     int64   `json:"periodId"`
	Employees    int     `json:"employees"`
	TotalHours   float64 `json:"totalHours"`
	GrossPay     float64 `json:"grossPay"`
	GrossPayText string  `json:"grossPayText"`
}

// Summary is the dashboard payload.
type Summary struct {
	ActiveEmployees int            `json:"activeEmployees"`
	CurrentPeriod   *PeriodSummary `json:"currentPeriod,omitempty"`
	LatestPayroll   *PayrollTotals `json:"latestPayroll,omitempty"`
	GeneratedAt     time.Time      `json:"generatedAt"`
}

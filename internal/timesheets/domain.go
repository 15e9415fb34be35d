package timesheets

import "time"

// StandardDayHours is the number of hours paid at the regular rate before
// overtime applies when hours are derived from the shift length.
const StandardDayHours = 8.0

// OvertimeMultiplier weights overtime pay.
const OvertimeMultiplier = 1.5

// TimeRecord is one worked shift.
type TimeRecord struct {
	ID            int64     `json:"id"`
	EmployeeID    int64     `json:"employeeId"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	RegularHours  float64   `json:"regularHours"`
	OvertimeHours float64   `json:"overtimeHours"`
	TotalHours    float64   `json:"totalHours"`
	TotalPay      float64   `json:"totalPay"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CreateInput carries a new shift. Hours are derived from the shift when omitted.
type CreateInput struct {
	EmployeeID    int64     `json:"employeeId"`
	StartTime     time.Time `json:"startTime" validate:"required"`
	EndTime       time.Time `json:"endTime" validate:"required"`
	RegularHours  *float64  `json:"regularHours" validate:"omitempty,gte=0"`
	OvertimeHours *float64  `json:"overtimeHours" validate:"omitempty,gte=0"`
	Notes         string    `json:"notes" validate:"max=500"`
}

// ListFilters narrows time record listings.
type ListFilters struct {
	EmployeeID int64
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

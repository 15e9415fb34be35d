package employees

import (
	"time"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// Employee is a payroll subject and, through its credentials, an API user.
type Employee struct {
	ID           int64       `json:"id"`
	FirstName    string      `json:"firstName"`
	LastName     string      `json:"lastName"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         shared.Role `json:"role"`
	PayRate      float64     `json:"payRate"`
	IsActive     bool        `json:"isActive"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// FullName joins first and last name.
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// CreateInput carries the fields for a new employee.
type CreateInput struct {
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  string  `json:"lastName" validate:"required,max=100"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	Role      string  `json:"role" validate:"omitempty,oneof=EMPLOYEE MANAGER"`
	PayRate   float64 `json:"payRate" validate:"gte=0"`
}

// UpdateInput carries optional changes to an employee.
type UpdateInput struct {
	FirstName *string  `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string  `json:"lastName" validate:"omitempty,max=100"`
	Role      *string  `json:"role" validate:"omitempty,oneof=EMPLOYEE MANAGER"`
	PayRate   *float64 `json:"payRate" validate:"omitempty,gte=0"`
	IsActive  *bool    `json:"isActive"`
}

// ListFilters narrows employee listings.
type ListFilters struct {
	Search string
	Role   shared.Role
	Active *bool
	Page   int
	Limit  int
}

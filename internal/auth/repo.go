package auth

import (
	"context"

	"github.com/odyssey-erp/odyssey-payroll/internal/employees"
)

// Repository resolves credentials by email.
type Repository interface {
	FindAccount(ctx context.Context, email string) (Account, error)
}

// EmployeeRepository adapts the employee directory to Repository.
type EmployeeRepository struct {
	employees *employees.Service
}

// NewRepository constructs a Repository over the employee directory.
func NewRepository(svc *employees.Service) *EmployeeRepository {
	return &EmployeeRepository{employees: svc}
}

// FindAccount fetches the credentials for email.
func (r *EmployeeRepository) FindAccount(ctx context.Context, email string) (Account, error) {
	e, err := r.employees.FindByEmail(ctx, email)
	if err != nil {
		return Account{}, err
	}
	return Account{
		EmployeeID:   e.ID,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		Role:         e.Role,
		IsActive:     e.IsActive,
	}, nil
}

var _ Repository = (*EmployeeRepository)(nil)

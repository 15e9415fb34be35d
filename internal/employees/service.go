package employees

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

var (
	ErrEmployeeNotFound = shared.NotFound("EMPLOYEE_NOT_FOUND", "employee not found")
	ErrEmailTaken       = shared.Validation("EMAIL_TAKEN", "email already registered")
)

// Service handles employee business logic.
type Service struct {
	repo Repository
	cost int
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost, used by tests and seeds.
func (s *Service) WithHashCost(cost int) {
	if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
		s.cost = cost
	}
}

// Create registers a new employee with a hashed password.
func (s *Service) Create(ctx context.Context, in CreateInput) (Employee, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return Employee{}, shared.Validation("EMAIL_REQUIRED", "email is required")
	}
	if len(in.Password) < 8 {
		return Employee{}, shared.Validation("PASSWORD_TOO_SHORT", "password must be at least 8 characters")
	}
	if in.PayRate < 0 {
		return Employee{}, shared.Validation("INVALID_PAY_RATE", "pay rate must not be negative")
	}
	role := shared.RoleEmployee
	if in.Role != "" {
		role = shared.Role(strings.ToUpper(in.Role))
		if !role.Valid() {
			return Employee{}, shared.Validation("INVALID_ROLE", "role must be EMPLOYEE or MANAGER")
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return Employee{}, err
	}
	return s.repo.Insert(ctx, Employee{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		PayRate:      in.PayRate,
		IsActive:     true,
	})
}

// Get returns an employee by id.
func (s *Service) Get(ctx context.Context, id int64) (Employee, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of employees.
func (s *Service) List(ctx context.Context, filters ListFilters) (shared.Page[Employee], error) {
	page, limit, err := shared.NormalizePage(filters.Page, filters.Limit)
	if err != nil {
		return shared.Page[Employee]{}, err
	}
	filters.Page, filters.Limit = page, limit
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return shared.Page[Employee]{}, err
	}
	if items == nil {
		items = []Employee{}
	}
	return shared.Page[Employee]{Data: items, Pagination: shared.NewPagination(page, limit, total)}, nil
}

// Update applies partial changes to an employee.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Employee, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	if in.FirstName != nil {
		current.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		current.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Role != nil {
		role := shared.Role(strings.ToUpper(*in.Role))
		if !role.Valid() {
			return Employee{}, shared.Validation("INVALID_ROLE", "role must be EMPLOYEE or MANAGER")
		}
		current.Role = role
	}
	if in.PayRate != nil {
		if *in.PayRate < 0 {
			return Employee{}, shared.Validation("INVALID_PAY_RATE", "pay rate must not be negative")
		}
		current.PayRate = *in.PayRate
	}
	if in.IsActive != nil {
		current.IsActive = *in.IsActive
	}
	return s.repo.Update(ctx, current)
}

// FindByEmail looks up an employee for authentication.
func (s *Service) FindByEmail(ctx context.Context, email string) (Employee, error) {
	return s.repo.FindByEmail(ctx, strings.TrimSpace(email))
}

// EmployeeExists reports whether id references an employee.
func (s *Service) EmployeeExists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// EmployeeRole returns the current role of an active employee. Inactive
// employees resolve to NotFound so they lose access immediately.
func (s *Service) EmployeeRole(ctx context.Context, id int64) (shared.Role, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !e.IsActive {
		return "", ErrEmployeeNotFound
	}
	return e.Role, nil
}

// PayRate returns the current hourly rate of an employee.
func (s *Service) PayRate(ctx context.Context, id int64) (float64, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return e.PayRate, nil
}

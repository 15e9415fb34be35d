package rbac

import (
	"context"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// RoleResolver returns the current role of an employee. Roles are resolved on
// every request so a demotion takes effect before the token expires.
type RoleResolver interface {
	EmployeeRole(ctx context.Context, employeeID int64) (shared.Role, error)
}

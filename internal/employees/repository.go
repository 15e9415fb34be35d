package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-payroll/internal/platform/db"
	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// Repository defines employee persistence.
type Repository interface {
	Insert(ctx context.Context, e Employee) (Employee, error)
	Get(ctx context.Context, id int64) (Employee, error)
	FindByEmail(ctx context.Context, email string) (Employee, error)
	List(ctx context.Context, filters ListFilters) ([]Employee, int, error)
	Update(ctx context.Context, e Employee) (Employee, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const employeeColumns = `id, first_name, last_name, email, password_hash, role, pay_rate, is_active, created_at, updated_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	var role string
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.PasswordHash, &role, &e.PayRate, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	e.Role = shared.Role(role)
	return e, err
}

func (r *pgRepository) Insert(ctx context.Context, e Employee) (Employee, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO employees (first_name, last_name, email, password_hash, role, pay_rate, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+employeeColumns, e.FirstName, e.LastName, e.Email, e.PasswordHash, string(e.Role), e.PayRate, e.IsActive)
	created, err := scanEmployee(row)
	if err != nil {
		if db.IsUniqueViolation(err, "employees_email_key") {
			return Employee{}, ErrEmailTaken
		}
		return Employee{}, shared.Database(err, "employees: insert")
	}
	return created, nil
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Employee, error) {
	e, err := scanEmployee(r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrEmployeeNotFound
		}
		return Employee{}, shared.Database(err, "employees: get")
	}
	return e, nil
}

func (r *pgRepository) FindByEmail(ctx context.Context, email string) (Employee, error) {
	e, err := scanEmployee(r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE lower(email) = lower($1)`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrEmployeeNotFound
		}
		return Employee{}, shared.Database(err, "employees: find by email")
	}
	return e, nil
}

func (r *pgRepository) List(ctx context.Context, filters ListFilters) ([]Employee, int, error) {
	var (
		where []string
		args  []any
	)
	if s := strings.TrimSpace(filters.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", len(args), len(args), len(args)))
	}
	if filters.Role != "" {
		args = append(args, string(filters.Role))
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if filters.Active != nil {
		args = append(args, *filters.Active)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`+clause, args...).Scan(&total); err != nil {
		return nil, 0, shared.Database(err, "employees: count")
	}

	args = append(args, filters.Limit, shared.Offset(filters.Page, filters.Limit))
	rows, err := r.pool.Query(ctx, `SELECT `+employeeColumns+` FROM employees`+clause+
		fmt.Sprintf(" ORDER BY last_name, first_name, id LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, shared.Database(err, "employees: list")
	}
	defer rows.Close()
	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, shared.Database(err, "employees: scan")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.Database(err, "employees: list rows")
	}
	return out, total, nil
}

func (r *pgRepository) Update(ctx context.Context, e Employee) (Employee, error) {
	updated, err := scanEmployee(r.pool.QueryRow(ctx, `UPDATE employees
SET first_name = $2, last_name = $3, role = $4, pay_rate = $5, is_active = $6, updated_at = NOW()
WHERE id = $1
RETURNING `+employeeColumns, e.ID, e.FirstName, e.LastName, string(e.Role), e.PayRate, e.IsActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrEmployeeNotFound
		}
		return Employee{}, shared.Database(err, "employees: update")
	}
	return updated, nil
}

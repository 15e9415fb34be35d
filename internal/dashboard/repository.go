package dashboard

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// Repository provides the aggregate queries behind the dashboard.
type Repository interface {
	ActiveEmployees(ctx context.Context) (int, error)
	CurrentPeriod(ctx context.Context) (*PeriodSummary, error)
	LatestPayrollTotals(ctx context.Context) (*PayrollTotals, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) ActiveEmployees(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE is_active`).Scan(&n); err != nil {
		return 0, shared.Database(err, "dashboard: count employees")
	}
	return n, nil
}

func (r *pgRepository) CurrentPeriod(ctx context.Context) (*PeriodSummary, error) {
	var p PeriodSummary
	err := r.pool.QueryRow(ctx, `SELECT id, period_type, status, start_date, end_date, calculated_at
FROM pay_periods WHERE status = 'PROCESSING'
ORDER BY start_date DESC, revision DESC LIMIT 1`).
		Scan(&p.ID, &p.PeriodType, &p.Status, &p.StartDate, &p.EndDate, &p.CalculatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, shared.Database(err, "dashboard: current period")
	}
	return &p, nil
}

func (r *pgRepository) LatestPayrollTotals(ctx context.Context) (*PayrollTotals, error) {
	var t PayrollTotals
	err := r.pool.QueryRow(ctx, `SELECT p.id, COUNT(DISTINCT pr.employee_id), COALESCE(SUM(pr.total_hours), 0)::float8, COALESCE(SUM(pr.gross_pay), 0)::float8
FROM pay_periods p
JOIN payrolls pr ON pr.pay_period_id = p.id
WHERE p.calculated_at IS NOT NULL
GROUP BY p.id, p.calculated_at
ORDER BY p.calculated_at DESC LIMIT 1`).
		Scan(&t.PeriodID, &t.Employees, &t.TotalHours, &t.GrossPay)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, shared.Database(err, "dashboard: payroll totals")
	}
	return &t, nil
}

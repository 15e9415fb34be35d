package payroll

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-payroll/internal/platform/db"
	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// errPeriodExists signals a lost race on the period unique key.
var errPeriodExists = errors.New("payroll: pay period revision already exists")

// Repository defines payroll persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	FindLatestPeriod(ctx context.Context, periodType PeriodType, bounds Bounds) (PayPeriod, error)
	GetPeriod(ctx context.Context, id int64) (PayPeriod, error)
	ListPeriods(ctx context.Context, filters ListFilters) ([]PayPeriod, int, error)
	InsertPeriod(ctx context.Context, period PayPeriod) (PayPeriod, error)
	MarkCalculated(ctx context.Context, id int64, at time.Time) (PayPeriod, error)
	LoadTimeEntries(ctx context.Context, bounds Bounds) ([]TimeEntry, error)
	ListPayrolls(ctx context.Context, periodID int64) ([]Payroll, error)
}

// TxRepository defines operations within a transaction.
type TxRepository interface {
	LockPeriod(ctx context.Context, id int64) (PayPeriod, error)
	CompletePeriod(ctx context.Context, id int64, at time.Time) (PayPeriod, error)
	InsertPayroll(ctx context.Context, p Payroll) (Payroll, error)
	LockPayroll(ctx context.Context, id int64) (Payroll, error)
	SetPayrollStatus(ctx context.Context, id int64, status PayrollStatus) (Payroll, error)
	RecordAudit(ctx context.Context, log shared.AuditLog) error
}

var _ Repository = (*pgRepository)(nil)
var _ TxRepository = (*pgTxRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

type pgTxRepository struct {
	tx    pgx.Tx
	audit *shared.AuditLogger
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx, audit: shared.NewAuditLogger(tx)})
	})
}

const periodColumns = `id, start_date, end_date, period_type, status, revision, calculated_at, completed_at, created_at, updated_at`

func scanPeriod(row pgx.Row) (PayPeriod, error) {
	var p PayPeriod
	var periodType, status string
	err := row.Scan(&p.ID, &p.StartDate, &p.EndDate, &periodType, &status, &p.Revision, &p.CalculatedAt, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt)
	p.PeriodType = PeriodType(periodType)
	p.Status = PeriodStatus(status)
	p.StartDate = p.StartDate.UTC()
	p.EndDate = p.EndDate.UTC()
	return p, err
}

const payrollColumns = `id, employee_id, pay_period_id, total_regular_hours, total_overtime_hours, total_hours, gross_pay, status, created_at, updated_at`

func scanPayroll(row pgx.Row) (Payroll, error) {
	var p Payroll
	var status string
	err := row.Scan(&p.ID, &p.EmployeeID, &p.PayPeriodID, &p.TotalRegularHours, &p.TotalOvertimeHours, &p.TotalHours, &p.GrossPay, &status, &p.CreatedAt, &p.UpdatedAt)
	p.Status = PayrollStatus(status)
	return p, err
}

func periodErr(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPeriodNotFound
	}
	return shared.Database(err, "payroll: "+op)
}

func (r *pgRepository) FindLatestPeriod(ctx context.Context, periodType PeriodType, bounds Bounds) (PayPeriod, error) {
	p, err := scanPeriod(r.pool.QueryRow(ctx, `SELECT `+periodColumns+` FROM pay_periods
WHERE period_type = $1 AND start_date BETWEEN $2 AND $3
ORDER BY revision DESC LIMIT 1`, string(periodType), bounds.Start, bounds.End))
	if err != nil {
		return PayPeriod{}, periodErr(err, "find period")
	}
	return p, nil
}

func (r *pgRepository) GetPeriod(ctx context.Context, id int64) (PayPeriod, error) {
	p, err := scanPeriod(r.pool.QueryRow(ctx, `SELECT `+periodColumns+` FROM pay_periods WHERE id = $1`, id))
	if err != nil {
		return PayPeriod{}, periodErr(err, "get period")
	}
	return p, nil
}

func (r *pgRepository) ListPeriods(ctx context.Context, filters ListFilters) ([]PayPeriod, int, error) {
	var where []string
	var args []any
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filters.StartDate != nil {
		add("start_date >= $%d", *filters.StartDate)
	}
	if filters.EndDate != nil {
		add("end_date <= $%d", *filters.EndDate)
	}
	if filters.Status != "" {
		add("status = $%d", string(filters.Status))
	}
	if filters.PeriodType != "" {
		add("period_type = $%d", string(filters.PeriodType))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pay_periods`+clause, args...).Scan(&total); err != nil {
		return nil, 0, shared.Database(err, "payroll: count periods")
	}

	args = append(args, filters.Limit, shared.Offset(filters.Page, filters.Limit))
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT `+periodColumns+` FROM pay_periods%s
ORDER BY start_date DESC, revision DESC LIMIT $%d OFFSET $%d`, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, shared.Database(err, "payroll: list periods")
	}
	defer rows.Close()
	var out []PayPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, 0, shared.Database(err, "payroll: scan period")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.Database(err, "payroll: list periods")
	}
	return out, total, nil
}

func (r *pgRepository) InsertPeriod(ctx context.Context, period PayPeriod) (PayPeriod, error) {
	p, err := scanPeriod(r.pool.QueryRow(ctx, `INSERT INTO pay_periods (start_date, end_date, period_type, status, revision)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+periodColumns, period.StartDate, period.EndDate, string(period.PeriodType), string(period.Status), period.Revision))
	if err != nil {
		if db.IsUniqueViolation(err, "pay_periods_start_type_revision_key") {
			return PayPeriod{}, errPeriodExists
		}
		return PayPeriod{}, shared.Database(err, "payroll: insert period")
	}
	return p, nil
}

func (r *pgRepository) MarkCalculated(ctx context.Context, id int64, at time.Time) (PayPeriod, error) {
	p, err := scanPeriod(r.pool.QueryRow(ctx, `UPDATE pay_periods SET calculated_at = $2, updated_at = $2
WHERE id = $1 AND status = $3 RETURNING `+periodColumns, id, at, string(PeriodProcessing)))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return PayPeriod{}, periodErr(err, "mark calculated")
	}
	var status string
	if err := r.pool.QueryRow(ctx, `SELECT status FROM pay_periods WHERE id = $1`, id).Scan(&status); err != nil {
		return PayPeriod{}, periodErr(err, "mark calculated")
	}
	return PayPeriod{}, periodNotProcessing(PeriodStatus(status))
}

func (r *pgRepository) LoadTimeEntries(ctx context.Context, bounds Bounds) ([]TimeEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT t.employee_id, t.start_time, t.regular_hours, t.overtime_hours, e.pay_rate
FROM time_records t
JOIN employees e ON e.id = t.employee_id
WHERE t.start_time BETWEEN $1 AND $2
ORDER BY t.employee_id, t.start_time`, bounds.Start, bounds.End)
	if err != nil {
		return nil, shared.Database(err, "payroll: load time records")
	}
	defer rows.Close()
	var out []TimeEntry
	for rows.Next() {
		var e TimeEntry
		if err := rows.Scan(&e.EmployeeID, &e.StartTime, &e.RegularHours, &e.OvertimeHours, &e.PayRate); err != nil {
			return nil, shared.Database(err, "payroll: scan time record")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Database(err, "payroll: load time records")
	}
	return out, nil
}

func (r *pgRepository) ListPayrolls(ctx context.Context, periodID int64) ([]Payroll, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+payrollColumns+` FROM payrolls WHERE pay_period_id = $1 ORDER BY employee_id, id`, periodID)
	if err != nil {
		return nil, shared.Database(err, "payroll: list payrolls")
	}
	defer rows.Close()
	var out []Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, shared.Database(err, "payroll: scan payroll")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Database(err, "payroll: list payrolls")
	}
	return out, nil
}

func (r *pgTxRepository) LockPeriod(ctx context.Context, id int64) (PayPeriod, error) {
	p, err := scanPeriod(r.tx.QueryRow(ctx, `SELECT `+periodColumns+` FROM pay_periods WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return PayPeriod{}, periodErr(err, "lock period")
	}
	return p, nil
}

func (r *pgTxRepository) CompletePeriod(ctx context.Context, id int64, at time.Time) (PayPeriod, error) {
	p, err := scanPeriod(r.tx.QueryRow(ctx, `UPDATE pay_periods SET status = $2, completed_at = $3, updated_at = $3
WHERE id = $1 RETURNING `+periodColumns, id, string(PeriodCompleted), at))
	if err != nil {
		return PayPeriod{}, periodErr(err, "complete period")
	}
	return p, nil
}

func (r *pgTxRepository) InsertPayroll(ctx context.Context, p Payroll) (Payroll, error) {
	out, err := scanPayroll(r.tx.QueryRow(ctx, `INSERT INTO payrolls (employee_id, pay_period_id, total_regular_hours, total_overtime_hours, total_hours, gross_pay, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+payrollColumns, p.EmployeeID, p.PayPeriodID, p.TotalRegularHours, p.TotalOvertimeHours, p.TotalHours, p.GrossPay, string(p.Status)))
	if err != nil {
		return Payroll{}, shared.Database(err, "payroll: insert payroll")
	}
	return out, nil
}

func (r *pgTxRepository) LockPayroll(ctx context.Context, id int64) (Payroll, error) {
	p, err := scanPayroll(r.tx.QueryRow(ctx, `SELECT `+payrollColumns+` FROM payrolls WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payroll{}, ErrPayrollNotFound
		}
		return Payroll{}, shared.Database(err, "payroll: lock payroll")
	}
	return p, nil
}

func (r *pgTxRepository) SetPayrollStatus(ctx context.Context, id int64, status PayrollStatus) (Payroll, error) {
	p, err := scanPayroll(r.tx.QueryRow(ctx, `UPDATE payrolls SET status = $2, updated_at = NOW()
WHERE id = $1 RETURNING `+payrollColumns, id, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payroll{}, ErrPayrollNotFound
		}
		return Payroll{}, shared.Database(err, "payroll: update payroll status")
	}
	return p, nil
}

func (r *pgTxRepository) RecordAudit(ctx context.Context, log shared.AuditLog) error {
	if err := r.audit.Record(ctx, log); err != nil {
		return shared.Database(err, "payroll: record audit")
	}
	return nil
}

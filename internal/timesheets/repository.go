package timesheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// Repository defines time record persistence.
type Repository interface {
	Insert(ctx context.Context, rec TimeRecord) (TimeRecord, error)
	List(ctx context.Context, filters ListFilters) ([]TimeRecord, int, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const recordColumns = `id, employee_id, start_time, end_time, regular_hours, overtime_hours, total_hours, total_pay, notes, created_at`

func scanRecord(row pgx.Row) (TimeRecord, error) {
	var rec TimeRecord
	err := row.Scan(&rec.ID, &rec.EmployeeID, &rec.StartTime, &rec.EndTime, &rec.RegularHours, &rec.OvertimeHours, &rec.TotalHours, &rec.TotalPay, &rec.Notes, &rec.CreatedAt)
	return rec, err
}

func (r *pgRepository) Insert(ctx context.Context, rec TimeRecord) (TimeRecord, error) {
	out, err := scanRecord(r.pool.QueryRow(ctx, `INSERT INTO time_records (employee_id, start_time, end_time, regular_hours, overtime_hours, total_hours, total_pay, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+recordColumns, rec.EmployeeID, rec.StartTime, rec.EndTime, rec.RegularHours, rec.OvertimeHours, rec.TotalHours, rec.TotalPay, rec.Notes))
	if err != nil {
		return TimeRecord{}, shared.Database(err, "timesheets: insert")
	}
	return out, nil
}

func (r *pgRepository) List(ctx context.Context, filters ListFilters) ([]TimeRecord, int, error) {
	var where []string
	var args []any
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filters.EmployeeID != 0 {
		add("employee_id = $%d", filters.EmployeeID)
	}
	if filters.From != nil {
		add("start_time >= $%d", *filters.From)
	}
	if filters.To != nil {
		add("start_time <= $%d", *filters.To)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM time_records`+clause, args...).Scan(&total); err != nil {
		return nil, 0, shared.Database(err, "timesheets: count")
	}
	args = append(args, filters.Limit, shared.Offset(filters.Page, filters.Limit))
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT `+recordColumns+` FROM time_records%s
ORDER BY start_time DESC, id DESC LIMIT $%d OFFSET $%d`, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, shared.Database(err, "timesheets: list")
	}
	defer rows.Close()
	var out []TimeRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, shared.Database(err, "timesheets: scan")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.Database(err, "timesheets: list")
	}
	return out, total, nil
}

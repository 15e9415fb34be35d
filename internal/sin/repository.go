package sin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-payroll/internal/platform/db"
	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// Repository defines vault persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	GetByEmployee(ctx context.Context, employeeID int64) (Record, error)
	InsertAccessLog(ctx context.Context, entry AccessLogEntry) error
	ListAccessLogs(ctx context.Context, employeeID int64, limit, offset int) ([]AccessLogEntry, int, error)
}

// TxRepository defines operations that run inside the store transaction.
type TxRepository interface {
	SearchHashExists(ctx context.Context, hash string) (bool, error)
	EmployeeHasRecord(ctx context.Context, employeeID int64) (bool, error)
	Insert(ctx context.Context, rec Record) (Record, error)
}

var _ Repository = (*pgRepository)(nil)
var _ TxRepository = (*pgTxRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

type pgTxRepository struct {
	tx pgx.Tx
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx})
	})
}

func (r *pgRepository) GetByEmployee(ctx context.Context, employeeID int64) (Record, error) {
	var rec Record
	var raw []byte
	var level string
	err := r.pool.QueryRow(ctx, `SELECT id, employee_id, ciphertext, last3, search_hash, access_level, created_at
FROM employee_sins WHERE employee_id = $1`, employeeID).
		Scan(&rec.ID, &rec.EmployeeID, &raw, &rec.Last3, &rec.SearchHash, &level, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrSINNotFound
		}
		return Record{}, shared.Database(err, "sin: get record")
	}
	if err := json.Unmarshal(raw, &rec.Ciphertext); err != nil {
		return Record{}, shared.Database(fmt.Errorf("decode envelope: %w", err), "sin: get record")
	}
	rec.AccessLevel = AccessLevel(level)
	return rec, nil
}

func (r *pgRepository) InsertAccessLog(ctx context.Context, entry AccessLogEntry) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO sin_access_logs (employee_id, acting_user_id, access_type, source_ip, granted, accessed_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.EmployeeID, entry.ActingUserID, string(entry.AccessType), entry.SourceIP, entry.Granted, entry.AccessedAt)
	if err != nil {
		return shared.Database(err, "sin: insert access log")
	}
	return nil
}

func (r *pgRepository) ListAccessLogs(ctx context.Context, employeeID int64, limit, offset int) ([]AccessLogEntry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sin_access_logs WHERE employee_id = $1`, employeeID).Scan(&total); err != nil {
		return nil, 0, shared.Database(err, "sin: count access logs")
	}
	rows, err := r.pool.Query(ctx, `SELECT id, employee_id, acting_user_id, access_type, source_ip, granted, accessed_at
FROM sin_access_logs WHERE employee_id = $1
ORDER BY accessed_at DESC, id DESC
LIMIT $2 OFFSET $3`, employeeID, limit, offset)
	if err != nil {
		return nil, 0, shared.Database(err, "sin: list access logs")
	}
	defer rows.Close()
	var out []AccessLogEntry
	for rows.Next() {
		var e AccessLogEntry
		var accessType string
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.ActingUserID, &accessType, &e.SourceIP, &e.Granted, &e.AccessedAt); err != nil {
			return nil, 0, shared.Database(err, "sin: scan access log")
		}
		e.AccessType = AccessType(accessType)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.Database(err, "sin: list access logs")
	}
	return out, total, nil
}

func (r *pgTxRepository) SearchHashExists(ctx context.Context, hash string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employee_sins WHERE search_hash = $1)`, hash).Scan(&exists)
	if err != nil {
		return false, shared.Database(err, "sin: lookup search hash")
	}
	return exists, nil
}

func (r *pgTxRepository) EmployeeHasRecord(ctx context.Context, employeeID int64) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employee_sins WHERE employee_id = $1)`, employeeID).Scan(&exists)
	if err != nil {
		return false, shared.Database(err, "sin: lookup employee record")
	}
	return exists, nil
}

func (r *pgTxRepository) Insert(ctx context.Context, rec Record) (Record, error) {
	raw, err := json.Marshal(rec.Ciphertext)
	if err != nil {
		return Record{}, err
	}
	err = r.tx.QueryRow(ctx, `INSERT INTO employee_sins (employee_id, ciphertext, last3, search_hash, access_level)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at`, rec.EmployeeID, raw, rec.Last3, rec.SearchHash, string(rec.AccessLevel)).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		switch {
		case db.IsUniqueViolation(err, "employee_sins_search_hash_key"):
			return Record{}, ErrDuplicateSIN
		case db.IsUniqueViolation(err, "employee_sins_employee_id_key"):
			return Record{}, ErrEmployeeHasSIN
		}
		return Record{}, shared.Database(err, "sin: insert record")
	}
	return rec, nil
}

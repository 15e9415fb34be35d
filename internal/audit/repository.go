package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-payroll/internal/shared"
)

// WindowParams narrows a timeline query. Zero values disable a filter and a
// zero Limit returns every matching row.
type WindowParams struct {
	TimelineFilters
	Offset int
	Limit  int
}

// Repository reads the audit trail.
type Repository interface {
	Timeline(ctx context.Context, params WindowParams) ([]TimelineRow, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) Timeline(ctx context.Context, params WindowParams) ([]TimelineRow, error) {
	var where []string
	var args []any
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if !params.From.IsZero() {
		add("occurred_at >= $%d", params.From)
	}
	if !params.To.IsZero() {
		add("occurred_at <= $%d", params.To)
	}
	if params.ActorID != 0 {
		add("actor_id = $%d", params.ActorID)
	}
	if params.Entity != "" {
		add("entity = $%d", params.Entity)
	}
	if params.Action != "" {
		add("action = $%d", params.Action)
	}

	query := `SELECT id, occurred_at, actor_id, action, entity, entity_id, COALESCE(meta, 'null'::jsonb) FROM audit_logs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY occurred_at DESC, id DESC"
	if params.Limit > 0 {
		args = append(args, params.Limit, params.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.Database(err, "audit: timeline")
	}
	defer rows.Close()
	var out []TimelineRow
	for rows.Next() {
		var row TimelineRow
		var meta []byte
		if err := rows.Scan(&row.ID, &row.At, &row.ActorID, &row.Action, &row.Entity, &row.EntityID, &meta); err != nil {
			return nil, shared.Database(err, "audit: scan timeline")
		}
		if string(meta) != "null" {
			row.Meta = meta
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Database(err, "audit: timeline rows")
	}
	return out, nil
}

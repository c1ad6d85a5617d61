package alert

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dialytrack/dialytrack/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type alertRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &alertRepoPG{pool: pool}
}

func (r *alertRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const alertCols = `id, message, message_role, type, required_action, priority,
	timestamp, status, machine_id, source_type, cycle, window_bucket`

func (r *alertRepoPG) scanAlert(row pgx.Row) (*Alert, error) {
	var a Alert
	err := row.Scan(&a.ID, &a.Message, &a.MessageRole, &a.Type, &a.RequiredAction,
		&a.Priority, &a.Timestamp, &a.Status, &a.MachineID, &a.SourceType,
		&a.Cycle, &a.WindowBucket)
	return &a, err
}

// Insert relies on the partial unique index over the dedup key: the conflict
// target only matches rows with status 'active', so resolved alerts never
// block a new emission for the same cycle window.
func (r *alertRepoPG) Insert(ctx context.Context, a *Alert) (bool, error) {
	a.ID = uuid.New()
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO alert (id, message, message_role, type, required_action,
			priority, timestamp, status, machine_id, source_type, cycle, window_bucket)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (source_type, machine_id, cycle, window_bucket)
			WHERE status = 'active'
		DO NOTHING`,
		a.ID, a.Message, a.MessageRole, a.Type, a.RequiredAction,
		a.Priority, a.Timestamp, a.Status, a.MachineID, a.SourceType,
		a.Cycle, a.WindowBucket)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *alertRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	return r.scanAlert(r.conn(ctx).QueryRow(ctx,
		`SELECT `+alertCols+` FROM alert WHERE id = $1`, id))
}

func (r *alertRepoPG) Resolve(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE alert SET status = 'resolved' WHERE id = $1 AND status = 'active'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *alertRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Alert, int, error) {
	query := `SELECT ` + alertCols + ` FROM alert WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM alert WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["machine_id"]; ok {
		query += fmt.Sprintf(` AND machine_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND machine_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["priority"]; ok {
		query += fmt.Sprintf(` AND priority = $%d`, idx)
		countQuery += fmt.Sprintf(` AND priority = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY timestamp DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Alert
	for rows.Next() {
		a, err := r.scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}

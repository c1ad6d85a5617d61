package fault

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

type faultRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &faultRepoPG{pool: pool}
}

func (r *faultRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const faultCols = `id, machine_id, reported_by, title, description, severity,
	status, reported_at, resolved_at`

func (r *faultRepoPG) scanFault(row pgx.Row) (*Fault, error) {
	var f Fault
	err := row.Scan(&f.ID, &f.MachineID, &f.ReportedBy, &f.Title, &f.Description,
		&f.Severity, &f.Status, &f.ReportedAt, &f.ResolvedAt)
	return &f, err
}

func (r *faultRepoPG) Create(ctx context.Context, f *Fault) error {
	f.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO fault (id, machine_id, reported_by, title, description, severity, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING reported_at`,
		f.ID, f.MachineID, f.ReportedBy, f.Title, f.Description, f.Severity, f.Status).
		Scan(&f.ReportedAt)
}

func (r *faultRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Fault, error) {
	return r.scanFault(r.conn(ctx).QueryRow(ctx,
		`SELECT `+faultCols+` FROM fault WHERE id = $1`, id))
}

func (r *faultRepoPG) Update(ctx context.Context, f *Fault) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE fault SET title=$2, description=$3, severity=$4, status=$5, resolved_at=$6
		WHERE id = $1`,
		f.ID, f.Title, f.Description, f.Severity, f.Status, f.ResolvedAt)
	return err
}

func (r *faultRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM fault WHERE id = $1`, id)
	return err
}

func (r *faultRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Fault, int, error) {
	query := `SELECT ` + faultCols + ` FROM fault WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM fault WHERE 1=1`
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
	if p, ok := params["severity"]; ok {
		query += fmt.Sprintf(` AND severity = $%d`, idx)
		countQuery += fmt.Sprintf(` AND severity = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY reported_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Fault
	for rows.Next() {
		f, err := r.scanFault(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, f)
	}
	return items, total, nil
}

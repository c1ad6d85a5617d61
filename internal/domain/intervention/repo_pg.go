package intervention

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

type interventionRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &interventionRepoPG{pool: pool}
}

func (r *interventionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const interventionCols = `id, machine_id, technician_id, fault_id, description,
	type, status, date_performed, notifications, created_at`

func (r *interventionRepoPG) scanIntervention(row pgx.Row) (*Intervention, error) {
	var i Intervention
	err := row.Scan(&i.ID, &i.MachineID, &i.TechnicianID, &i.FaultID, &i.Description,
		&i.Type, &i.Status, &i.DatePerformed, &i.Notifications, &i.CreatedAt)
	return &i, err
}

func (r *interventionRepoPG) Create(ctx context.Context, i *Intervention) error {
	i.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO intervention (id, machine_id, technician_id, fault_id, description,
			type, status, date_performed, notifications)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at`,
		i.ID, i.MachineID, i.TechnicianID, i.FaultID, i.Description,
		i.Type, i.Status, i.DatePerformed, i.Notifications).
		Scan(&i.CreatedAt)
}

func (r *interventionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Intervention, error) {
	return r.scanIntervention(r.conn(ctx).QueryRow(ctx,
		`SELECT `+interventionCols+` FROM intervention WHERE id = $1`, id))
}

func (r *interventionRepoPG) Update(ctx context.Context, i *Intervention) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE intervention SET technician_id=$2, fault_id=$3, description=$4,
			type=$5, status=$6, date_performed=$7, notifications=$8
		WHERE id = $1`,
		i.ID, i.TechnicianID, i.FaultID, i.Description,
		i.Type, i.Status, i.DatePerformed, i.Notifications)
	return err
}

func (r *interventionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM intervention WHERE id = $1`, id)
	return err
}

func (r *interventionRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Intervention, int, error) {
	query := `SELECT ` + interventionCols + ` FROM intervention WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM intervention WHERE 1=1`
	var args []interface{}
	idx := 1

	for param, col := range map[string]string{
		"machine_id":    "machine_id",
		"technician_id": "technician_id",
		"fault_id":      "fault_id",
		"type":          "type",
		"status":        "status",
	} {
		if p, ok := params[param]; ok {
			query += fmt.Sprintf(` AND %s = $%d`, col, idx)
			countQuery += fmt.Sprintf(` AND %s = $%d`, col, idx)
			args = append(args, p)
			idx++
		}
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Intervention
	for rows.Next() {
		i, err := r.scanIntervention(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, i)
	}
	return items, total, nil
}

package machine

import (
	"context"
	"fmt"
	"time"

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

type machineRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &machineRepoPG{pool: pool}
}

func (r *machineRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const machineCols = `id, name, model, serial_number, location, status,
	last_maintenance, next_maintenance, created_at, updated_at`

func (r *machineRepoPG) scanMachine(row pgx.Row) (*Machine, error) {
	var m Machine
	err := row.Scan(&m.ID, &m.Name, &m.Model, &m.SerialNumber, &m.Location,
		&m.Status, &m.LastMaintenance, &m.NextMaintenance, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *machineRepoPG) Create(ctx context.Context, m *Machine) error {
	m.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO machine (id, name, model, serial_number, location, status,
			last_maintenance, next_maintenance)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		m.ID, m.Name, m.Model, m.SerialNumber, m.Location, m.Status,
		m.LastMaintenance, m.NextMaintenance).
		Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *machineRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Machine, error) {
	return r.scanMachine(r.conn(ctx).QueryRow(ctx,
		`SELECT `+machineCols+` FROM machine WHERE id = $1`, id))
}

func (r *machineRepoPG) Update(ctx context.Context, m *Machine) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE machine SET name=$2, model=$3, serial_number=$4, location=$5,
			status=$6, last_maintenance=$7, next_maintenance=$8, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.Model, m.SerialNumber, m.Location,
		m.Status, m.LastMaintenance, m.NextMaintenance)
	return err
}

func (r *machineRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM machine WHERE id = $1`, id)
	return err
}

func (r *machineRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Machine, int, error) {
	query := `SELECT ` + machineCols + ` FROM machine WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM machine WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["location"]; ok {
		query += fmt.Sprintf(` AND location ILIKE '%%' || $%d || '%%'`, idx)
		countQuery += fmt.Sprintf(` AND location ILIKE '%%' || $%d || '%%'`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["name"]; ok {
		query += fmt.Sprintf(` AND name ILIKE '%%' || $%d || '%%'`, idx)
		countQuery += fmt.Sprintf(` AND name ILIKE '%%' || $%d || '%%'`, idx)
		args = append(args, p)
		idx++
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
	var items []*Machine
	for rows.Next() {
		m, err := r.scanMachine(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, nil
}

func (r *machineRepoPG) CountReferences(ctx context.Context, id uuid.UUID) (int, int, error) {
	var interventions, faults int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM intervention WHERE machine_id = $1),
			(SELECT COUNT(*) FROM fault WHERE machine_id = $1)`, id).
		Scan(&interventions, &faults)
	return interventions, faults, err
}

func (r *machineRepoPG) SetMaintenanceDates(ctx context.Context, id uuid.UUID, last, next *time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE machine SET
			last_maintenance = COALESCE($2, last_maintenance),
			next_maintenance = COALESCE($3, next_maintenance),
			updated_at = NOW()
		WHERE id = $1`, id, last, next)
	return err
}

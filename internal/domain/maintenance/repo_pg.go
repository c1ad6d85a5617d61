package maintenance

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

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// -- Controls --

type controlRepoPG struct{ pool *pgxpool.Pool }

func NewControlRepoPG(pool *pgxpool.Pool) ControlRepository {
	return &controlRepoPG{pool: pool}
}

const controlCols = `id, machine_id, technician_id, control_type, control_date,
	next_control_date, status, notes`

func scanControl(row pgx.Row) (*MaintenanceControl, error) {
	var c MaintenanceControl
	err := row.Scan(&c.ID, &c.MachineID, &c.TechnicianID, &c.ControlType,
		&c.ControlDate, &c.NextControlDate, &c.Status, &c.Notes)
	return &c, err
}

func (r *controlRepoPG) Create(ctx context.Context, c *MaintenanceControl) error {
	c.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO maintenance_control (id, machine_id, technician_id, control_type,
			control_date, next_control_date, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.MachineID, c.TechnicianID, c.ControlType,
		c.ControlDate, c.NextControlDate, c.Status, c.Notes)
	return err
}

func (r *controlRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MaintenanceControl, error) {
	return scanControl(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+controlCols+` FROM maintenance_control WHERE id = $1`, id))
}

func (r *controlRepoPG) Update(ctx context.Context, c *MaintenanceControl) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE maintenance_control SET technician_id=$2, control_type=$3,
			control_date=$4, next_control_date=$5, status=$6, notes=$7
		WHERE id = $1`,
		c.ID, c.TechnicianID, c.ControlType, c.ControlDate,
		c.NextControlDate, c.Status, c.Notes)
	return err
}

func (r *controlRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM maintenance_control WHERE id = $1`, id)
	return err
}

func (r *controlRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*MaintenanceControl, int, error) {
	query := `SELECT ` + controlCols + ` FROM maintenance_control WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM maintenance_control WHERE 1=1`
	var args []interface{}
	idx := 1

	for param, col := range map[string]string{
		"machine_id": "machine_id", "status": "status", "control_type": "control_type",
	} {
		if p, ok := params[param]; ok {
			query += fmt.Sprintf(` AND %s = $%d`, col, idx)
			countQuery += fmt.Sprintf(` AND %s = $%d`, col, idx)
			args = append(args, p)
			idx++
		}
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY next_control_date ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*MaintenanceControl
	for rows.Next() {
		c, err := scanControl(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, nil
}

// ListDueCandidates uses the per-unit horizon: 3 minutes for the minute test
// cycle, 60 days (the classifier's lowest tier) for calendar cycles.
func (r *controlRepoPG) ListDueCandidates(ctx context.Context, now time.Time) ([]*MaintenanceControl, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+controlCols+` FROM maintenance_control
		WHERE status = 'pending'
		  AND next_control_date <= CASE
			WHEN control_type = '3_minutes' THEN $1::timestamptz + interval '3 minutes'
			ELSE $1::timestamptz + interval '60 days'
		  END
		ORDER BY next_control_date ASC`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*MaintenanceControl
	for rows.Next() {
		c, err := scanControl(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, nil
}

func (r *controlRepoPG) FindPendingByMachineAndType(ctx context.Context, machineID uuid.UUID, controlType string) (*MaintenanceControl, error) {
	return scanControl(conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+controlCols+` FROM maintenance_control
		WHERE machine_id = $1 AND control_type = $2 AND status = 'pending'
		ORDER BY next_control_date ASC LIMIT 1`, machineID, controlType))
}

// -- Schedules --

type scheduleRepoPG struct{ pool *pgxpool.Pool }

func NewScheduleRepoPG(pool *pgxpool.Pool) ScheduleRepository {
	return &scheduleRepoPG{pool: pool}
}

const scheduleCols = `id, machine_id, type, tasks, due_date, status, completed_at`

func scanSchedule(row pgx.Row) (*MaintenanceSchedule, error) {
	var s MaintenanceSchedule
	err := row.Scan(&s.ID, &s.MachineID, &s.Type, &s.Tasks, &s.DueDate,
		&s.Status, &s.CompletedAt)
	return &s, err
}

func (r *scheduleRepoPG) Create(ctx context.Context, s *MaintenanceSchedule) error {
	s.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO maintenance_schedule (id, machine_id, type, tasks, due_date, status, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.MachineID, s.Type, s.Tasks, s.DueDate, s.Status, s.CompletedAt)
	return err
}

func (r *scheduleRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MaintenanceSchedule, error) {
	return scanSchedule(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+scheduleCols+` FROM maintenance_schedule WHERE id = $1`, id))
}

func (r *scheduleRepoPG) Update(ctx context.Context, s *MaintenanceSchedule) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE maintenance_schedule SET type=$2, tasks=$3, due_date=$4, status=$5, completed_at=$6
		WHERE id = $1`,
		s.ID, s.Type, s.Tasks, s.DueDate, s.Status, s.CompletedAt)
	return err
}

func (r *scheduleRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM maintenance_schedule WHERE id = $1`, id)
	return err
}

func (r *scheduleRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*MaintenanceSchedule, int, error) {
	query := `SELECT ` + scheduleCols + ` FROM maintenance_schedule WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM maintenance_schedule WHERE 1=1`
	var args []interface{}
	idx := 1

	for param, col := range map[string]string{
		"machine_id": "machine_id", "status": "status", "type": "type",
	} {
		if p, ok := params[param]; ok {
			query += fmt.Sprintf(` AND %s = $%d`, col, idx)
			countQuery += fmt.Sprintf(` AND %s = $%d`, col, idx)
			args = append(args, p)
			idx++
		}
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY due_date ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*MaintenanceSchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, nil
}

func (r *scheduleRepoPG) ListDueCandidates(ctx context.Context, now time.Time) ([]*MaintenanceSchedule, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+scheduleCols+` FROM maintenance_schedule
		WHERE status = 'Pending'
		  AND due_date <= CASE
			WHEN type = '3-minute' THEN $1::timestamptz + interval '3 minutes'
			ELSE $1::timestamptz + interval '60 days'
		  END
		ORDER BY due_date ASC`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*MaintenanceSchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, nil
}

func (r *scheduleRepoPG) FindPendingByMachineAndType(ctx context.Context, machineID uuid.UUID, typeLabel string) (*MaintenanceSchedule, error) {
	return scanSchedule(conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+scheduleCols+` FROM maintenance_schedule
		WHERE machine_id = $1 AND type = $2 AND status = 'Pending'
		ORDER BY due_date ASC LIMIT 1`, machineID, typeLabel))
}

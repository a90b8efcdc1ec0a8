package doctor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const doctorCols = `id, full_name, department, phone, email, fees,
	weekly_schedule, leaves, daily_overrides, special_shifts, is_active,
	created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var fees, weekly, leaves, overrides, specials []byte
	err := row.Scan(&d.ID, &d.FullName, &d.Department, &d.Phone, &d.Email, &fees,
		&weekly, &leaves, &overrides, &specials, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	for _, col := range []struct {
		raw []byte
		dst interface{}
	}{
		{fees, &d.Fees},
		{weekly, &d.WeeklySchedule},
		{leaves, &d.Leaves},
		{overrides, &d.DailyOverrides},
		{specials, &d.SpecialShifts},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return nil, fmt.Errorf("decode doctor %s schedule: %w", d.ID, err)
		}
	}
	return &d, nil
}

func scheduleJSON(d *Doctor) (fees, weekly, leaves, overrides, specials []byte, err error) {
	if fees, err = json.Marshal(d.Fees); err != nil {
		return
	}
	if weekly, err = json.Marshal(d.WeeklySchedule); err != nil {
		return
	}
	if leaves, err = json.Marshal(d.Leaves); err != nil {
		return
	}
	if overrides, err = json.Marshal(d.DailyOverrides); err != nil {
		return
	}
	specials, err = json.Marshal(d.SpecialShifts)
	return
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	fees, weekly, leaves, overrides, specials, err := scheduleJSON(d)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO doctor (id, full_name, department, phone, email, fees,
			weekly_schedule, leaves, daily_overrides, special_shifts, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		d.ID, d.FullName, d.Department, d.Phone, d.Email, fees,
		weekly, leaves, overrides, specials, d.IsActive)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, d *Doctor) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE doctor SET full_name=$2, department=$3, phone=$4, email=$5,
			is_active=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.FullName, d.Department, d.Phone, d.Email, d.IsActive)
	return err
}

func (r *repoPG) UpdateSchedule(ctx context.Context, d *Doctor) error {
	fees, weekly, leaves, overrides, specials, err := scheduleJSON(d)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE doctor SET fees=$2, weekly_schedule=$3, leaves=$4,
			daily_overrides=$5, special_shifts=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, fees, weekly, leaves, overrides, specials)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE doctor SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, department string, limit, offset int) ([]*Doctor, int, error) {
	where := `WHERE is_active`
	args := []interface{}{}
	if department != "" {
		where += ` AND department = $1`
		args = append(args, department)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctor `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM doctor %s ORDER BY full_name LIMIT $%d OFFSET $%d`,
		doctorCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

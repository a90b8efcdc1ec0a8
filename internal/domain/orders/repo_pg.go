package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Order Repository ===========

type orderRepoPG struct{ pool *pgxpool.Pool }

func NewOrderRepoPG(pool *pgxpool.Pool) OrderRepository { return &orderRepoPG{pool: pool} }

const orderCols = `id, patient_id, walkin_name, walkin_phone, status, total_amount,
	discount_amount, discount_reason, net_amount, paid_amount, due_amount,
	payment_mode, notes, schedule_date, created_by, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.PatientID, &o.WalkInName, &o.WalkInPhone, &o.Status,
		&o.TotalAmount, &o.DiscountAmount, &o.DiscountReason, &o.NetAmount,
		&o.PaidAmount, &o.DueAmount, &o.PaymentMode, &o.Notes, &o.ScheduleDate,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	return &o, err
}

func (r *orderRepoPG) Create(ctx context.Context, o *Order, items []OrderItem, booking *Booking) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	o.ID = uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO clinic_order (id, patient_id, walkin_name, walkin_phone, status,
			total_amount, discount_amount, discount_reason, net_amount, paid_amount,
			due_amount, payment_mode, notes, schedule_date, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		o.ID, o.PatientID, o.WalkInName, o.WalkInPhone, o.Status,
		o.TotalAmount, o.DiscountAmount, o.DiscountReason, o.NetAmount, o.PaidAmount,
		o.DueAmount, o.PaymentMode, o.Notes, o.ScheduleDate, o.CreatedBy)
	if err != nil {
		return err
	}

	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrderID = o.ID
		_, err = tx.Exec(ctx, `
			INSERT INTO order_item (id, order_id, item_id, item_type, name, price,
				department, shift_name, is_follow_up)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			items[i].ID, o.ID, items[i].ItemID, items[i].Type, items[i].Name,
			items[i].Price, items[i].Department, items[i].ShiftName, items[i].IsFollowUp)
		if err != nil {
			return err
		}
	}

	if booking != nil {
		booking.ID = uuid.New()
		booking.OrderID = o.ID
		_, err = tx.Exec(ctx, `
			INSERT INTO booking (id, order_id, doctor_id, booking_date, shift_name, is_follow_up)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			booking.ID, o.ID, booking.DoctorID, booking.Date, booking.ShiftName, booking.IsFollowUp)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *orderRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderCols+` FROM clinic_order WHERE id = $1`, id))
}

func (r *orderRepoPG) GetItems(ctx context.Context, orderID uuid.UUID) ([]*OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, item_id, item_type, name, price, department, shift_name, is_follow_up
		FROM order_item WHERE order_id = $1 ORDER BY name`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ItemID, &it.Type, &it.Name,
			&it.Price, &it.Department, &it.ShiftName, &it.IsFollowUp); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (r *orderRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Order, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clinic_order WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+orderCols+` FROM clinic_order
		WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *orderRepoPG) ListBookingsByMonth(ctx context.Context, doctorID uuid.UUID, year int, month time.Month) ([]*Booking, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, doctor_id, booking_date, shift_name, is_follow_up, created_at
		FROM booking
		WHERE doctor_id = $1 AND booking_date >= $2 AND booking_date < $3
		ORDER BY booking_date, shift_name`, doctorID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.OrderID, &b.DoctorID, &b.Date, &b.ShiftName,
			&b.IsFollowUp, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// =========== Override Code Repository ===========

type overrideCodeRepoPG struct{ pool *pgxpool.Pool }

func NewOverrideCodeRepoPG(pool *pgxpool.Pool) OverrideCodeRepository {
	return &overrideCodeRepoPG{pool: pool}
}

func (r *overrideCodeRepoPG) Issue(ctx context.Context, c *OverrideCode) error {
	c.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO override_code (id, code, issued_by, max_amount, expires_at)
		VALUES ($1,$2,$3,$4,$5)`,
		c.ID, c.Code, c.IssuedBy, c.MaxAmount, c.ExpiresAt)
	return err
}

func (r *overrideCodeRepoPG) Consume(ctx context.Context, code string, now time.Time) (*OverrideCode, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE override_code SET used_at = $2
		WHERE code = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING id, code, issued_by, max_amount, expires_at, used_at, created_at`,
		code, now)

	var c OverrideCode
	err := row.Scan(&c.ID, &c.Code, &c.IssuedBy, &c.MaxAmount, &c.ExpiresAt, &c.UsedAt, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

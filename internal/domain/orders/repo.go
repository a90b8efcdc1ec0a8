package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderRepository persists accepted orders with their line items and
// consultation booking.
type OrderRepository interface {
	Create(ctx context.Context, o *Order, items []OrderItem, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetItems(ctx context.Context, orderID uuid.UUID) ([]*OrderItem, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Order, int, error)
	ListBookingsByMonth(ctx context.Context, doctorID uuid.UUID, year int, month time.Month) ([]*Booking, error)
}

// OverrideCodeRepository manages manager-issued discount authorizations.
type OverrideCodeRepository interface {
	Issue(ctx context.Context, c *OverrideCode) error
	// Consume atomically marks an unused, unexpired code as used and
	// returns it. A missing, expired or already-used code returns
	// (nil, nil).
	Consume(ctx context.Context, code string, now time.Time) (*OverrideCode, error)
}

package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, department string, limit, offset int) ([]*Doctor, int, error)
	// UpdateSchedule replaces the JSONB schedule columns in one statement.
	UpdateSchedule(ctx context.Context, d *Doctor) error
}

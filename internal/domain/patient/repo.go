package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	// Search matches name or phone, case-insensitively, for the front
	// desk selection list.
	Search(ctx context.Context, q string, limit, offset int) ([]*Patient, int, error)
}

package repository

import (
	"context"

	"github.com/ctOP-IIITH/backend/internal/domain"
)

// VerticalsRepository stores the relational shadow of remote application
// entities.
type VerticalsRepository interface {
	GetByID(ctx context.Context, id int) (*domain.Vertical, error)
	GetByName(ctx context.Context, name string) (*domain.Vertical, error)
	// GetBySensorTypeID resolves the vertical owning the given sensor type.
	GetBySensorTypeID(ctx context.Context, sensorTypeID int) (*domain.Vertical, error)
	List(ctx context.Context) ([]*domain.Vertical, error)
	Insert(ctx context.Context, v *domain.Vertical) (int, error)
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

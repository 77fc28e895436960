package repository

import (
	"context"

	"github.com/ctOP-IIITH/backend/internal/domain"
)

// SensorTypesRepository stores sensor-type parameter schemas.
type SensorTypesRepository interface {
	GetByID(ctx context.Context, id int) (*domain.SensorType, error)
	GetByName(ctx context.Context, name string) (*domain.SensorType, error)
	List(ctx context.Context) ([]*domain.SensorType, error)
	ListByVertical(ctx context.Context, verticalID int) ([]*domain.SensorType, error)
	Insert(ctx context.Context, st *domain.SensorType) (int, error)
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
	CountByVertical(ctx context.Context, verticalID int) (int, error)
}

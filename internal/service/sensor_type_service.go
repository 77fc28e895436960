package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/domain"
	"github.com/ctOP-IIITH/backend/internal/repository"
)

// SensorTypeService manages sensor-type parameter schemas. Sensor types are
// relational-only; they have no remote resource of their own.
type SensorTypeService interface {
	CreateSensorType(ctx context.Context, st *domain.SensorType) (*domain.SensorType, error)
	GetSensorType(ctx context.Context, id int) (*domain.SensorType, error)
	ListSensorTypes(ctx context.Context) ([]*domain.SensorType, error)
	ListByVertical(ctx context.Context, verticalID int) ([]*domain.SensorType, error)
	DeleteSensorType(ctx context.Context, id int) error
}

type sensorTypeService struct {
	sensorTypes repository.SensorTypesRepository
	verticals   repository.VerticalsRepository
	nodes       repository.NodesRepository
	logger      *zap.Logger
}

func NewSensorTypeService(
	sensorTypes repository.SensorTypesRepository,
	verticals repository.VerticalsRepository,
	nodes repository.NodesRepository,
	logger *zap.Logger,
) SensorTypeService {
	return &sensorTypeService{
		sensorTypes: sensorTypes,
		verticals:   verticals,
		nodes:       nodes,
		logger:      logger,
	}
}

func (s *sensorTypeService) CreateSensorType(ctx context.Context, st *domain.SensorType) (*domain.SensorType, error) {
	if st.Name == "" {
		return nil, Validationf("Sensor type name is required")
	}
	if len(st.Parameters) == 0 {
		return nil, Validationf("Sensor type needs at least one parameter")
	}
	if len(st.Parameters) != len(st.DataTypes) {
		return nil, Validationf("Parameters and data types must have the same length")
	}
	if _, err := s.verticals.GetByID(ctx, st.VerticalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundf("Vertical not found")
		}
		return nil, err
	}

	id, err := s.sensorTypes.Insert(ctx, st)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, Conflictf("Sensor type %s already exists in this vertical", st.Name)
		}
		return nil, err
	}
	st.ID = id

	s.logger.Info("sensor type created",
		zap.Int("sensor_type_id", id),
		zap.String("name", st.Name),
		zap.Int("vertical_id", st.VerticalID),
	)
	return st, nil
}

func (s *sensorTypeService) GetSensorType(ctx context.Context, id int) (*domain.SensorType, error) {
	st, err := s.sensorTypes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundf("Sensor type not found")
		}
		return nil, err
	}
	return st, nil
}

func (s *sensorTypeService) ListSensorTypes(ctx context.Context) ([]*domain.SensorType, error) {
	return s.sensorTypes.List(ctx)
}

func (s *sensorTypeService) ListByVertical(ctx context.Context, verticalID int) ([]*domain.SensorType, error) {
	if _, err := s.verticals.GetByID(ctx, verticalID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundf("Vertical not found")
		}
		return nil, err
	}
	return s.sensorTypes.ListByVertical(ctx, verticalID)
}

// DeleteSensorType refuses while nodes of the type exist.
func (s *sensorTypeService) DeleteSensorType(ctx context.Context, id int) error {
	st, err := s.sensorTypes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFoundf("Sensor type not found")
		}
		return err
	}
	n, err := s.nodes.CountBySensorType(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return Conflictf("Sensor type %s still has nodes", st.Name)
	}
	return s.sensorTypes.Delete(ctx, id)
}

package repository

import (
	"context"

	"github.com/ctOP-IIITH/backend/internal/domain"
)

// NodesRepository stores the relational shadow of remote node containers.
type NodesRepository interface {
	GetByID(ctx context.Context, id int) (*domain.Node, error)
	GetByName(ctx context.Context, name string) (*domain.Node, error)
	GetByNodeName(ctx context.Context, nodeName string) (*domain.Node, error)
	GetByTokenNum(ctx context.Context, tokenNum int) (*domain.Node, error)
	// FindBySensorTypeAndCoords locates the node a token is being deployed to.
	FindBySensorTypeAndCoords(ctx context.Context, sensorTypeID int, lat, long float64) (*domain.Node, error)
	List(ctx context.Context) ([]*domain.Node, error)
	ListBySensorType(ctx context.Context, sensorTypeID int) ([]*domain.Node, error)
	// NextNodeNumber returns max(sensor_node_number)+1 for the sensor type,
	// or 1 when no node exists yet. Not serialized against concurrent inserts;
	// the unique constraint on (sensor_type_id, sensor_node_number) surfaces
	// the losing writer as ErrConflict.
	NextNodeNumber(ctx context.Context, sensorTypeID int) (int, error)
	Insert(ctx context.Context, n *domain.Node) (int, error)
	// SetTokenNum back-fills the one-time self-referential token number.
	SetTokenNum(ctx context.Context, id, tokenNum int) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
	CountBySensorType(ctx context.Context, sensorTypeID int) (int, error)
	CountDistinctAreas(ctx context.Context) (int, error)
}

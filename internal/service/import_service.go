package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/repository"
)

// MaxImportNodes is the hard cap on one bulk import batch.
const MaxImportNodes = 5000

// RawNode is one unresolved record from a JSON, CSV or XLSX payload. The
// sensor type arrives as a name, not an id.
type RawNode struct {
	SensorType string  `json:"sensor_type"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Area       string  `json:"area"`
	Name       string  `json:"name"`
}

// NodeError pairs a rejected record with its error message.
type NodeError struct {
	Node  RawNode `json:"node"`
	Error string  `json:"error"`
}

// ImportResult partitions a batch. Every input record lands in exactly one
// bucket, in input order.
type ImportResult struct {
	CreatedNodes       []map[string]any `json:"created_nodes"`
	FailedNodes        []NodeError      `json:"failed_nodes"`
	InvalidSensorNodes []NodeError      `json:"invalid_sensor_nodes"`
}

// ImportService drives the provisioning workflow across a batch of records.
type ImportService interface {
	BulkImport(ctx context.Context, records []RawNode) (*ImportResult, error)
}

type importService struct {
	nodes       NodeService
	sensorTypes repository.SensorTypesRepository
	logger      *zap.Logger
}

func NewImportService(nodes NodeService, sensorTypes repository.SensorTypesRepository, logger *zap.Logger) ImportService {
	return &importService{nodes: nodes, sensorTypes: sensorTypes, logger: logger}
}

// BulkImport classifies every record into created, failed or
// invalid-sensor-type. A single record's failure never aborts the batch;
// only payload-shape problems (the size cap) short-circuit.
func (s *importService) BulkImport(ctx context.Context, records []RawNode) (*ImportResult, error) {
	if len(records) > MaxImportNodes {
		return nil, Validationf("Import less than 5000 nodes at one time!")
	}

	// One query for the whole batch, not one per record.
	all, err := s.sensorTypes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sensor types: %w", err)
	}
	byName := make(map[string]int, len(all))
	for _, st := range all {
		byName[st.Name] = st.ID
	}

	result := &ImportResult{
		CreatedNodes:       []map[string]any{},
		FailedNodes:        []NodeError{},
		InvalidSensorNodes: []NodeError{},
	}
	for _, rec := range records {
		sensorTypeID, ok := byName[rec.SensorType]
		if !ok {
			result.InvalidSensorNodes = append(result.InvalidSensorNodes, NodeError{
				Node:  rec,
				Error: fmt.Sprintf("Sensor type '%s' not found", rec.SensorType),
			})
			continue
		}

		res := s.nodes.CreateNode(ctx, CreateNodeRequest{
			SensorTypeID: sensorTypeID,
			Latitude:     rec.Latitude,
			Longitude:    rec.Longitude,
			Area:         rec.Area,
			Name:         rec.Name,
		})
		if res.Status == StatusSuccess {
			result.CreatedNodes = append(result.CreatedNodes, res.Node.ToJSON())
		} else {
			result.FailedNodes = append(result.FailedNodes, NodeError{Node: rec, Error: res.Message})
		}
	}

	s.logger.Info("bulk import finished",
		zap.Int("total", len(records)),
		zap.Int("created", len(result.CreatedNodes)),
		zap.Int("failed", len(result.FailedNodes)),
		zap.Int("invalid_sensor_type", len(result.InvalidSensorNodes)),
	)
	return result, nil
}

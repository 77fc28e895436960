package service

import (
	"context"

	"github.com/ctOP-IIITH/backend/internal/repository"
)

// Stats is the landing-page counter set.
type Stats struct {
	TotalVerticals   int `json:"total_verticals"`
	TotalSensorTypes int `json:"total_sensor_types"`
	TotalNodes       int `json:"total_nodes"`
	TotalAreas       int `json:"total_areas"`
}

type StatsService interface {
	Overview(ctx context.Context) (*Stats, error)
}

type statsService struct {
	verticals   repository.VerticalsRepository
	sensorTypes repository.SensorTypesRepository
	nodes       repository.NodesRepository
}

func NewStatsService(
	verticals repository.VerticalsRepository,
	sensorTypes repository.SensorTypesRepository,
	nodes repository.NodesRepository,
) StatsService {
	return &statsService{verticals: verticals, sensorTypes: sensorTypes, nodes: nodes}
}

func (s *statsService) Overview(ctx context.Context) (*Stats, error) {
	var (
		out Stats
		err error
	)
	if out.TotalVerticals, err = s.verticals.Count(ctx); err != nil {
		return nil, err
	}
	if out.TotalSensorTypes, err = s.sensorTypes.Count(ctx); err != nil {
		return nil, err
	}
	if out.TotalNodes, err = s.nodes.Count(ctx); err != nil {
		return nil, err
	}
	if out.TotalAreas, err = s.nodes.CountDistinctAreas(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

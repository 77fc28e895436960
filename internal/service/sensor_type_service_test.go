package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/domain"
)

func newSensorTypeService(f *fixture) SensorTypeService {
	return NewSensorTypeService(f.sensorTypes, f.verticals, f.nodes, zap.NewNop())
}

func TestCreateSensorType(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	svc := newSensorTypeService(f)
	ctx := context.Background()

	st, err := svc.CreateSensorType(ctx, &domain.SensorType{
		Name:       "pH Sensor",
		Parameters: []string{"ph"},
		DataTypes:  []string{"float"},
		VerticalID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, st.ID)

	var svcErr *Error

	// positional pairing must hold
	_, err = svc.CreateSensorType(ctx, &domain.SensorType{
		Name:       "Broken",
		Parameters: []string{"a", "b"},
		DataTypes:  []string{"float"},
		VerticalID: 1,
	})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindValidation, svcErr.Kind)

	// duplicate name within the vertical
	_, err = svc.CreateSensorType(ctx, &domain.SensorType{
		Name:       "pH Sensor",
		Parameters: []string{"ph"},
		DataTypes:  []string{"float"},
		VerticalID: 1,
	})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindConflict, svcErr.Kind)

	// unknown vertical
	_, err = svc.CreateSensorType(ctx, &domain.SensorType{
		Name:       "Orphan",
		Parameters: []string{"x"},
		DataTypes:  []string{"int"},
		VerticalID: 42,
	})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindNotFound, svcErr.Kind)
}

func TestDeleteSensorTypeBlockedByNodes(t *testing.T) {
	f := newFixture(t)
	st := f.seedCatalog(t)
	svc := newSensorTypeService(f)
	ctx := context.Background()

	res := f.nodeSvc.CreateNode(ctx, CreateNodeRequest{
		SensorTypeID: st.ID, Latitude: 17.44, Longitude: 78.34, Name: "n1",
	})
	require.Equal(t, StatusSuccess, res.Status)

	var svcErr *Error
	err := svc.DeleteSensorType(ctx, st.ID)
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindConflict, svcErr.Kind)

	require.NoError(t, f.nodeSvc.DeleteNode(ctx, res.Node.ID))
	require.NoError(t, svc.DeleteSensorType(ctx, st.ID))
}

func TestStatsOverview(t *testing.T) {
	f := newFixture(t)
	st := f.seedCatalog(t)
	ctx := context.Background()

	res1 := f.nodeSvc.CreateNode(ctx, CreateNodeRequest{
		SensorTypeID: st.ID, Latitude: 17.44, Longitude: 78.34, Area: "Gachibowli", Name: "n1",
	})
	require.Equal(t, StatusSuccess, res1.Status)
	res2 := f.nodeSvc.CreateNode(ctx, CreateNodeRequest{
		SensorTypeID: st.ID, Latitude: 17.45, Longitude: 78.35, Area: "Gachibowli", Name: "n2",
	})
	require.Equal(t, StatusSuccess, res2.Status)

	stats, err := NewStatsService(f.verticals, f.sensorTypes, f.nodes).Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalVerticals)
	assert.Equal(t, 1, stats.TotalSensorTypes)
	assert.Equal(t, 2, stats.TotalNodes)
	assert.Equal(t, 1, stats.TotalAreas)
}

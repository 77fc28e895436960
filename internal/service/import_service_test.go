package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newImportFixture(t *testing.T) (*fixture, ImportService) {
	t.Helper()
	f := newFixture(t)
	f.seedCatalog(t)
	return f, NewImportService(f.nodeSvc, f.sensorTypes, zap.NewNop())
}

func TestBulkImportPartitions(t *testing.T) {
	f, svc := newImportFixture(t)

	records := []RawNode{
		{Name: "n1", SensorType: "Water Flow Sensor", Latitude: 17.44, Longitude: 78.34, Area: "Gachibowli"},
		{Name: "n2", SensorType: "Water Flow Sensor", Latitude: 17.45, Longitude: 78.35, Area: "Kukatpally"},
		{Name: "n1", SensorType: "Water Flow Sensor", Latitude: 17.46, Longitude: 78.36, Area: "Gachibowli"},
		{Name: "n3", SensorType: "No Such Sensor", Latitude: 17.47, Longitude: 78.37, Area: "Gachibowli"},
	}
	result, err := svc.BulkImport(context.Background(), records)
	require.NoError(t, err)

	assert.Len(t, result.CreatedNodes, 2)
	require.Len(t, result.FailedNodes, 1)
	assert.Equal(t, "n1", result.FailedNodes[0].Node.Name)
	assert.Equal(t, "Node: n1 already exists", result.FailedNodes[0].Error)
	require.Len(t, result.InvalidSensorNodes, 1)
	assert.Equal(t, "Sensor type 'No Such Sensor' not found", result.InvalidSensorNodes[0].Error)

	// every record landed in exactly one bucket
	total := len(result.CreatedNodes) + len(result.FailedNodes) + len(result.InvalidSensorNodes)
	assert.Equal(t, len(records), total)

	nodes, _ := f.nodes.List(context.Background())
	assert.Len(t, nodes, 2)
}

func TestBulkImportCap(t *testing.T) {
	_, svc := newImportFixture(t)

	records := make([]RawNode, MaxImportNodes+1)
	for i := range records {
		records[i] = RawNode{Name: fmt.Sprintf("n%d", i), SensorType: "Water Flow Sensor"}
	}

	_, err := svc.BulkImport(context.Background(), records)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindValidation, svcErr.Kind)
	assert.Equal(t, "Import less than 5000 nodes at one time!", svcErr.Message)
}

func TestBulkImportEmpty(t *testing.T) {
	_, svc := newImportFixture(t)

	result, err := svc.BulkImport(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.CreatedNodes)
	assert.Empty(t, result.FailedNodes)
	assert.Empty(t, result.InvalidSensorNodes)
	// buckets marshal as arrays, never null
	assert.NotNil(t, result.CreatedNodes)
}

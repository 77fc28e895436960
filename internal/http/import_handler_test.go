package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/service"
)

type stubImportService struct {
	records []service.RawNode
	called  bool
}

func (s *stubImportService) BulkImport(_ context.Context, records []service.RawNode) (*service.ImportResult, error) {
	s.called = true
	s.records = records
	return &service.ImportResult{
		CreatedNodes:       []map[string]any{},
		FailedNodes:        []service.NodeError{},
		InvalidSensorNodes: []service.NodeError{},
	}, nil
}

func postImportJSON(h *ImportHandler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/json", strings.NewReader(body))
	h.ImportJSON(rec, req)
	return rec
}

func TestImportJSONMissingNodesKey(t *testing.T) {
	for _, body := range []string{"{}", "", `{"other": []}`} {
		stub := &stubImportService{}
		h := NewImportHandler(stub, zap.NewNop())

		rec := postImportJSON(h, body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Contains(t, rec.Body.String(), "Missing 'nodes' key", "body %q", body)
		assert.False(t, stub.called, "body %q", body)
	}
}

func TestImportJSONEmptyNodesList(t *testing.T) {
	stub := &stubImportService{}
	h := NewImportHandler(stub, zap.NewNop())

	rec := postImportJSON(h, `{"nodes": []}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, stub.called)
	assert.Empty(t, stub.records)
	assert.Contains(t, rec.Body.String(), "created_nodes")
}

func TestImportJSONForwardsRecords(t *testing.T) {
	stub := &stubImportService{}
	h := NewImportHandler(stub, zap.NewNop())

	rec := postImportJSON(h, `{"nodes": [{"sensor_type": "Water Flow Sensor", "latitude": 17.44, "longitude": 78.34, "area": "Gachibowli", "name": "n1"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, stub.records, 1)
	assert.Equal(t, "Water Flow Sensor", stub.records[0].SensorType)
	assert.Equal(t, "n1", stub.records[0].Name)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/domain"
)

func newCinFixture(t *testing.T) (*fixture, CinService, int) {
	t.Helper()
	f := newFixture(t)
	st := f.seedCatalog(t)
	svc := NewCinService(f.nodes, f.sensorTypes, f.verticals, f.owners, f.tree, zap.NewNop())
	return f, svc, st.ID
}

func createNode(t *testing.T, f *fixture, stID int) int {
	t.Helper()
	res := f.nodeSvc.CreateNode(context.Background(), CreateNodeRequest{
		SensorTypeID: stID, Latitude: 17.44, Longitude: 78.34, Name: "n1",
	})
	require.Equal(t, StatusSuccess, res.Status, res.Message)
	return res.Node.ID
}

func TestIngest(t *testing.T) {
	f, svc, stID := newCinFixture(t)
	nodeID := createNode(t, f, stID)
	before := len(f.tree.callsOf("cin"))

	err := svc.Ingest(context.Background(), IngestRequest{
		TokenNum: nodeID,
		Data:     map[string]any{"flow": 2.4, "temperature": 31.0},
	})
	require.NoError(t, err)

	cins := f.tree.callsOf("cin")
	require.Len(t, cins, before+1)
	last := cins[len(cins)-1]
	assert.Equal(t, "AE-WQ/WQ01-0032-0001", last.parent)
	assert.Equal(t, "Data", last.name)
	assert.JSONEq(t, `{"flow":2.4,"temperature":31}`, last.content)
}

func TestIngestUnknownToken(t *testing.T) {
	_, svc, _ := newCinFixture(t)

	err := svc.Ingest(context.Background(), IngestRequest{
		TokenNum: 42,
		Data:     map[string]any{"flow": 1.0, "temperature": 1.0},
	})

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindNotFound, svcErr.Kind)
}

func TestIngestSchemaMismatch(t *testing.T) {
	f, svc, stID := newCinFixture(t)
	nodeID := createNode(t, f, stID)
	ctx := context.Background()

	var svcErr *Error

	err := svc.Ingest(ctx, IngestRequest{TokenNum: nodeID, Data: map[string]any{"flow": 1.0}})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindValidation, svcErr.Kind)
	assert.Equal(t, "Missing parameter temperature", svcErr.Message)

	err = svc.Ingest(ctx, IngestRequest{TokenNum: nodeID, Data: map[string]any{
		"flow": 1.0, "temperature": 1.0, "extra": true,
	}})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindValidation, svcErr.Kind)
}

func TestIngestVendorKey(t *testing.T) {
	f, svc, stID := newCinFixture(t)
	nodeID := createNode(t, f, stID)
	ctx := context.Background()

	key, err := assignTestVendor(ctx, f, nodeID)
	require.NoError(t, err)

	data := map[string]any{"flow": 1.0, "temperature": 1.0}

	// correct key
	require.NoError(t, svc.Ingest(ctx, IngestRequest{TokenNum: nodeID, APIKey: key, Data: data}))

	// missing or wrong key
	var svcErr *Error
	err = svc.Ingest(ctx, IngestRequest{TokenNum: nodeID, Data: data})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindUnauthorized, svcErr.Kind)

	err = svc.Ingest(ctx, IngestRequest{TokenNum: nodeID, APIKey: "wrong", Data: data})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindUnauthorized, svcErr.Kind)
}

func TestIngestRemoteFailure(t *testing.T) {
	f, svc, stID := newCinFixture(t)
	nodeID := createNode(t, f, stID)
	f.tree.cinStatus = 500

	err := svc.Ingest(context.Background(), IngestRequest{
		TokenNum: nodeID,
		Data:     map[string]any{"flow": 1.0, "temperature": 1.0},
	})

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindRemoteError, svcErr.Kind)
	assert.Equal(t, 500, svcErr.RemoteStatus)
}

func TestLatest(t *testing.T) {
	f, svc, stID := newCinFixture(t)
	nodeID := createNode(t, f, stID)
	f.tree.getBody = []byte(`{"m2m:cin":{"ri":"/in-cse/cin-7","ct":"20260831T120000","con":"{\"flow\":2.4}"}}`)

	reading, err := svc.Latest(context.Background(), nodeID)

	require.NoError(t, err)
	assert.Equal(t, "cin-7", reading.ResourceID)
	assert.Equal(t, "20260831T120000", reading.Created)

	gets := f.tree.callsOf("get")
	require.Len(t, gets, 1)
	assert.Equal(t, "AE-WQ/WQ01-0032-0001/Data/la", gets[0].name)
}

func TestLatestEmpty(t *testing.T) {
	f, svc, stID := newCinFixture(t)
	nodeID := createNode(t, f, stID)
	f.tree.getStatus = 404

	_, err := svc.Latest(context.Background(), nodeID)

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindNotFound, svcErr.Kind)
}

func TestListByNode(t *testing.T) {
	f, svc, stID := newCinFixture(t)
	nodeID := createNode(t, f, stID)
	f.tree.getBody = []byte(`{"m2m:cnt":{"rn":"Data","m2m:cin":[
		{"ri":"cin-1","ct":"20260831T120000","con":"{\"flow\":1}"},
		{"ri":"cin-2","ct":"20260831T120500","con":"{\"flow\":2}"}
	]}}`)

	readings, err := svc.ListByNode(context.Background(), nodeID)

	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, "cin-1", readings[0].ResourceID)
	assert.Equal(t, "cin-2", readings[1].ResourceID)

	gets := f.tree.callsOf("get")
	require.Len(t, gets, 1)
	assert.Equal(t, "AE-WQ/WQ01-0032-0001/Data", gets[0].name)
}

func assignTestVendor(ctx context.Context, f *fixture, nodeID int) (string, error) {
	vendor := &domain.User{
		Username: "acme", Email: "vendor@acme.io", Password: "x", UserType: domain.RoleVendor,
	}
	if _, err := f.users.Insert(ctx, vendor); err != nil {
		return "", err
	}
	return f.nodeSvc.AssignVendor(ctx, nodeID, vendor.Email)
}

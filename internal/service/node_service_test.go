package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctOP-IIITH/backend/internal/domain"
)

func TestCreateNodeSuccess(t *testing.T) {
	f := newFixture(t)
	st := f.seedCatalog(t)
	ctx := context.Background()

	res := f.nodeSvc.CreateNode(ctx, CreateNodeRequest{
		SensorTypeID: st.ID,
		Latitude:     17.44,
		Longitude:    78.34,
		Area:         "Gachibowli",
		Name:         "flow-meter-1",
	})

	require.Equal(t, StatusSuccess, res.Status, res.Message)
	require.NotNil(t, res.Node)
	assert.Equal(t, "WQ01-0032-0001", res.Node.NodeName)
	assert.Equal(t, 1, res.Node.SensorNodeNumber)
	assert.Equal(t, "cnt-WQ01-0032-0001", res.Node.ORID)
	assert.Equal(t, "cnt-Data", res.Node.NodeDataORID)

	// token number back-fills to the row id
	require.True(t, res.Node.TokenNum.Valid)
	assert.Equal(t, int64(res.Node.ID), res.Node.TokenNum.Int64)

	// node container under the AE, then Data and Descriptor children
	containers := f.tree.callsOf("container")
	require.Len(t, containers, 3)
	assert.Equal(t, "AE-WQ", containers[0].parent)
	assert.Equal(t, "WQ01-0032-0001", containers[0].name)
	assert.Equal(t, "Data", containers[1].name)
	assert.Equal(t, "Descriptor", containers[2].name)

	// descriptor push carries the parameter schema
	cins := f.tree.callsOf("cin")
	require.Len(t, cins, 1)
	assert.Equal(t, "Descriptor", cins[0].name)
	assert.JSONEq(t, `["flow","temperature"]`, cins[0].content)
	assert.Equal(t, []string{st.Name}, cins[0].labels)
}

func TestCreateNodeOrdinalsIncrement(t *testing.T) {
	f := newFixture(t)
	st := f.seedCatalog(t)
	ctx := context.Background()

	first := f.nodeSvc.CreateNode(ctx, CreateNodeRequest{
		SensorTypeID: st.ID, Latitude: 17.44, Longitude: 78.34, Name: "n1",
	})
	second := f.nodeSvc.CreateNode(ctx, CreateNodeRequest{
		SensorTypeID: st.ID, Latitude: 17.45, Longitude: 78.35, Name: "n2",
	})

	require.Equal(t, StatusSuccess, first.Status)
	require.Equal(t, StatusSuccess, second.Status)
	assert.Equal(t, "WQ01-0032-0001", first.Node.NodeName)
	assert.Equal(t, "WQ01-0032-0002", second.Node.NodeName)
}

func TestCreateNodeSensorTypeNotFound(t *testing.T) {
	f := newFixture(t)

	res := f.nodeSvc.CreateNode(context.Background(), CreateNodeRequest{SensorTypeID: 99, Name: "n1"})

	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, CodeSensorTypeNotFound, res.Code)
	assert.Empty(t, f.tree.calls)
}

func TestCreateNodeDuplicateNameSkipsRemote(t *testing.T) {
	f := newFixture(t)
	st := f.seedCatalog(t)
	ctx := context.Background()

	first := f.nodeSvc.CreateNode(ctx, CreateNodeRequest{
		SensorTypeID: st.ID, Latitude: 17.44, Longitude: 78.34, Name: "n1",
	})
	require.Equal(t, StatusSuccess, first.Status)

	before := len(f.tree.calls)
	res := f.nodeSvc.CreateNode(ctx, CreateNodeRequest{
		SensorTypeID: st.ID, Latitude: 17.44, Longitude: 78.34, Name: "n1",
	})

	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, CodeNodeAlreadyExists, res.Code)
	assert.Equal(t, "Node: n1 already exists", res.Message)
	assert.Len(t, f.tree.calls, before)
}

func TestCreateNodeRemoteConflict(t *testing.T) {
	f := newFixture(t)
	st := f.seedCatalog(t)
	f.tree.containerStatus["WQ01-0032-0001"] = 409

	res := f.nodeSvc.CreateNode(context.Background(), CreateNodeRequest{
		SensorTypeID: st.ID, Latitude: 17.44, Longitude: 78.34, Name: "n1",
	})

	assert.Equal(t, CodeNodeAlreadyExistsRemote, res.Code)
	// nothing was written locally
	nodes, _ := f.nodes.List(context.Background())
	assert.Empty(t, nodes)
}

func TestCreateNodeRemoteError(t *testing.T) {
	f := newFixture(t)
	st := f.seedCatalog(t)
	f.tree.containerStatus["WQ01-0032-0001"] = 500

	res := f.nodeSvc.CreateNode(context.Background(), CreateNodeRequest{
		SensorTypeID: st.ID, Latitude: 17.44, Longitude: 78.34, Name: "n1",
	})

	assert.Equal(t, CodeRemoteCreateError, res.Code)
	assert.Equal(t, 500, res.RemoteStatus)
}

func TestCreateNodeDescriptorPushFailure(t *testing.T) {
	f := newFixture(t)
	st := f.seedCatalog(t)
	f.tree.cinStatus = 500

	res := f.nodeSvc.CreateNode(context.Background(), CreateNodeRequest{
		SensorTypeID: st.ID, Latitude: 17.44, Longitude: 78.34, Name: "n1",
	})

	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, CodeDescriptorPushError, res.Code)
	// the node exists despite the failed push
	require.NotNil(t, res.Node)
	stored, err := f.nodes.GetByName(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, res.Node.ID, stored.ID)
}

func TestCreateNodePostalFallback(t *testing.T) {
	f := newFixture(t)
	st := f.seedCatalog(t)
	f.postal.err = errors.New("nominatim timeout")

	res := f.nodeSvc.CreateNode(context.Background(), CreateNodeRequest{
		SensorTypeID: st.ID, Latitude: 17.44, Longitude: 78.34, Name: "n1",
	})

	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "WQ01-0000-0001", res.Node.NodeName)
}

func TestDeriveNodeCode(t *testing.T) {
	f := newFixture(t)
	st := f.seedCatalog(t)

	code, err := f.nodeSvc.DeriveNodeCode(context.Background(), st.ID, 17.44, 78.34)

	require.NoError(t, err)
	assert.Equal(t, "WQ01-0032-0001", code)
	// deriving does not create anything
	assert.Empty(t, f.tree.callsOf("container"))
}

func TestDeleteNode(t *testing.T) {
	f := newFixture(t)
	st := f.seedCatalog(t)
	ctx := context.Background()

	res := f.nodeSvc.CreateNode(ctx, CreateNodeRequest{
		SensorTypeID: st.ID, Latitude: 17.44, Longitude: 78.34, Name: "n1",
	})
	require.Equal(t, StatusSuccess, res.Status)

	require.NoError(t, f.nodeSvc.DeleteNode(ctx, res.Node.ID))

	deletes := f.tree.callsOf("delete")
	require.Len(t, deletes, 1)
	assert.Equal(t, "AE-WQ/WQ01-0032-0001", deletes[0].name)
	_, err := f.nodes.GetByID(ctx, res.Node.ID)
	assert.Error(t, err)
}

func TestAssignVendor(t *testing.T) {
	f := newFixture(t)
	st := f.seedCatalog(t)
	ctx := context.Background()

	res := f.nodeSvc.CreateNode(ctx, CreateNodeRequest{
		SensorTypeID: st.ID, Latitude: 17.44, Longitude: 78.34, Name: "n1",
	})
	require.Equal(t, StatusSuccess, res.Status)

	_, err := f.users.Insert(ctx, &domain.User{
		Username: "acme", Email: "vendor@acme.io", Password: "x", UserType: domain.RoleVendor,
	})
	require.NoError(t, err)

	key, err := f.nodeSvc.AssignVendor(ctx, res.Node.ID, "vendor@acme.io")
	require.NoError(t, err)
	require.NotEmpty(t, key)

	// only the hash is stored
	owner, err := f.owners.GetByNodeID(ctx, res.Node.ID)
	require.NoError(t, err)
	assert.Equal(t, HashAPIKey(key), owner.APIKeyHash)
	assert.NotEqual(t, key, owner.APIKeyHash)

	// a second assignment conflicts
	_, err = f.nodeSvc.AssignVendor(ctx, res.Node.ID, "vendor@acme.io")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindConflict, svcErr.Kind)
}

func TestAssignVendorRejectsNonVendor(t *testing.T) {
	f := newFixture(t)
	st := f.seedCatalog(t)
	ctx := context.Background()

	res := f.nodeSvc.CreateNode(ctx, CreateNodeRequest{
		SensorTypeID: st.ID, Latitude: 17.44, Longitude: 78.34, Name: "n1",
	})
	require.Equal(t, StatusSuccess, res.Status)

	_, err := f.users.Insert(ctx, &domain.User{
		Username: "joe", Email: "joe@example.com", Password: "x", UserType: domain.RoleUser,
	})
	require.NoError(t, err)

	_, err = f.nodeSvc.AssignVendor(ctx, res.Node.ID, "joe@example.com")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindValidation, svcErr.Kind)
}

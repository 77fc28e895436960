package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTokenFixture(t *testing.T) (*fixture, TokenService, int) {
	t.Helper()
	f := newFixture(t)
	st := f.seedCatalog(t)
	svc := NewTokenService(f.tokens, f.nodes, f.sensorTypes, zap.NewNop())
	return f, svc, st.ID
}

func TestIssueTokenIncrements(t *testing.T) {
	_, svc, stID := newTokenFixture(t)
	ctx := context.Background()

	first, err := svc.IssueToken(ctx, stID, 1)
	require.NoError(t, err)
	second, err := svc.IssueToken(ctx, stID, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, first.TokenID)
	assert.Equal(t, 2, second.TokenID)
	assert.False(t, first.Status)
}

func TestIssueTokenInvalidSensorType(t *testing.T) {
	_, svc, _ := newTokenFixture(t)

	_, err := svc.IssueToken(context.Background(), 99, 1)

	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindNotFound, svcErr.Kind)
	assert.Equal(t, "Invalid sensor type", svcErr.Message)
}

func TestDeployToken(t *testing.T) {
	f, svc, stID := newTokenFixture(t)
	ctx := context.Background()

	res := f.nodeSvc.CreateNode(ctx, CreateNodeRequest{
		SensorTypeID: stID, Latitude: 17.44, Longitude: 78.34, Name: "n1",
	})
	require.Equal(t, StatusSuccess, res.Status)
	tok, err := svc.IssueToken(ctx, stID, 1)
	require.NoError(t, err)

	node, err := svc.DeployToken(ctx, DeployTokenRequest{
		SensorTypeID: stID, TokenID: tok.TokenID, Latitude: 17.44, Longitude: 78.34,
	})
	require.NoError(t, err)
	assert.Equal(t, res.Node.ID, node.ID)

	stored, err := svc.GetToken(ctx, stID, tok.TokenID)
	require.NoError(t, err)
	assert.True(t, stored.Status)
	require.True(t, stored.NodeID.Valid)
	assert.Equal(t, int64(node.ID), stored.NodeID.Int64)
}

func TestDeployTokenErrors(t *testing.T) {
	f, svc, stID := newTokenFixture(t)
	ctx := context.Background()

	res := f.nodeSvc.CreateNode(ctx, CreateNodeRequest{
		SensorTypeID: stID, Latitude: 17.44, Longitude: 78.34, Name: "n1",
	})
	require.Equal(t, StatusSuccess, res.Status)
	tok, err := svc.IssueToken(ctx, stID, 1)
	require.NoError(t, err)

	var svcErr *Error

	_, err = svc.DeployToken(ctx, DeployTokenRequest{SensorTypeID: 99, TokenID: tok.TokenID})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "Invalid sensor type", svcErr.Message)

	_, err = svc.DeployToken(ctx, DeployTokenRequest{SensorTypeID: stID, TokenID: 42})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "Invalid token", svcErr.Message)

	_, err = svc.DeployToken(ctx, DeployTokenRequest{
		SensorTypeID: stID, TokenID: tok.TokenID, Latitude: 0, Longitude: 0,
	})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "No such node exists", svcErr.Message)
}

func TestDeployTokenTwiceConflicts(t *testing.T) {
	f, svc, stID := newTokenFixture(t)
	ctx := context.Background()

	res := f.nodeSvc.CreateNode(ctx, CreateNodeRequest{
		SensorTypeID: stID, Latitude: 17.44, Longitude: 78.34, Name: "n1",
	})
	require.Equal(t, StatusSuccess, res.Status)
	tok, err := svc.IssueToken(ctx, stID, 1)
	require.NoError(t, err)

	_, err = svc.DeployToken(ctx, DeployTokenRequest{
		SensorTypeID: stID, TokenID: tok.TokenID, Latitude: 17.44, Longitude: 78.34,
	})
	require.NoError(t, err)

	var svcErr *Error

	// same token again
	_, err = svc.DeployToken(ctx, DeployTokenRequest{
		SensorTypeID: stID, TokenID: tok.TokenID, Latitude: 17.44, Longitude: 78.34,
	})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindConflict, svcErr.Kind)

	// different token to the same node
	tok2, err := svc.IssueToken(ctx, stID, 1)
	require.NoError(t, err)
	_, err = svc.DeployToken(ctx, DeployTokenRequest{
		SensorTypeID: stID, TokenID: tok2.TokenID, Latitude: 17.44, Longitude: 78.34,
	})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "Node is already mapped to a token", svcErr.Message)
}

package repository

import (
	"context"

	"github.com/ctOP-IIITH/backend/internal/domain"
)

// TokensRepository stores provisioning tokens, composite-keyed by
// (sensor type, token id).
type TokensRepository interface {
	Get(ctx context.Context, sensorTypeID, tokenID int) (*domain.Token, error)
	// NextTokenID returns max(token_id)+1 for the sensor type, or 1.
	NextTokenID(ctx context.Context, sensorTypeID int) (int, error)
	Insert(ctx context.Context, t *domain.Token) error
	// MarkDeployed flips status from issued to deployed and records the node.
	// A node already holding a deployed token surfaces as ErrConflict.
	MarkDeployed(ctx context.Context, sensorTypeID, tokenID, nodeID int) error
}

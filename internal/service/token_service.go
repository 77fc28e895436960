package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/domain"
	"github.com/ctOP-IIITH/backend/internal/repository"
)

// TokenService issues provisioning tokens and deploys them to nodes.
type TokenService interface {
	// IssueToken mints the next token for a sensor type, assigned to a user.
	IssueToken(ctx context.Context, sensorTypeID, assignedTo int) (*domain.Token, error)
	GetToken(ctx context.Context, sensorTypeID, tokenID int) (*domain.Token, error)
	// DeployToken binds an issued token to the node at the given coordinates.
	DeployToken(ctx context.Context, req DeployTokenRequest) (*domain.Node, error)
}

// DeployTokenRequest locates the target node by sensor type and coordinates,
// matching what the installer in the field knows.
type DeployTokenRequest struct {
	SensorTypeID int     `json:"sensor_type_id"`
	TokenID      int     `json:"token_id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

type tokenService struct {
	tokens      repository.TokensRepository
	nodes       repository.NodesRepository
	sensorTypes repository.SensorTypesRepository
	logger      *zap.Logger
}

func NewTokenService(
	tokens repository.TokensRepository,
	nodes repository.NodesRepository,
	sensorTypes repository.SensorTypesRepository,
	logger *zap.Logger,
) TokenService {
	return &tokenService{
		tokens:      tokens,
		nodes:       nodes,
		sensorTypes: sensorTypes,
		logger:      logger,
	}
}

func (s *tokenService) IssueToken(ctx context.Context, sensorTypeID, assignedTo int) (*domain.Token, error) {
	if _, err := s.sensorTypes.GetByID(ctx, sensorTypeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundf("Invalid sensor type")
		}
		return nil, err
	}

	tokenID, err := s.tokens.NextTokenID(ctx, sensorTypeID)
	if err != nil {
		return nil, err
	}
	t := &domain.Token{
		SensorTypeID: sensorTypeID,
		TokenID:      tokenID,
		AssignedTo:   assignedTo,
		Status:       false,
		IssueTime:    time.Now().UTC(),
	}
	if err := s.tokens.Insert(ctx, t); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, Conflictf("Token %d already issued for this sensor type", tokenID)
		}
		return nil, err
	}

	s.logger.Info("token issued",
		zap.Int("sensor_type_id", sensorTypeID),
		zap.Int("token_id", tokenID),
		zap.Int("assigned_to", assignedTo),
	)
	return t, nil
}

func (s *tokenService) GetToken(ctx context.Context, sensorTypeID, tokenID int) (*domain.Token, error) {
	t, err := s.tokens.Get(ctx, sensorTypeID, tokenID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundf("Invalid token")
		}
		return nil, err
	}
	return t, nil
}

// DeployToken marks the token deployed and pins it to the node at the given
// coordinates. A node holding a deployed token is not re-mappable.
func (s *tokenService) DeployToken(ctx context.Context, req DeployTokenRequest) (*domain.Node, error) {
	if _, err := s.sensorTypes.GetByID(ctx, req.SensorTypeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundf("Invalid sensor type")
		}
		return nil, err
	}

	t, err := s.tokens.Get(ctx, req.SensorTypeID, req.TokenID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundf("Invalid token")
		}
		return nil, err
	}
	if t.Status {
		return nil, Conflictf("Token %d is already deployed", req.TokenID)
	}

	node, err := s.nodes.FindBySensorTypeAndCoords(ctx, req.SensorTypeID, req.Latitude, req.Longitude)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundf("No such node exists")
		}
		return nil, err
	}
	if err := s.tokens.MarkDeployed(ctx, req.SensorTypeID, req.TokenID, node.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, Conflictf("Node is already mapped to a token")
		}
		return nil, err
	}

	s.logger.Info("token deployed",
		zap.Int("sensor_type_id", req.SensorTypeID),
		zap.Int("token_id", req.TokenID),
		zap.Int("node_id", node.ID),
	)
	return node, nil
}

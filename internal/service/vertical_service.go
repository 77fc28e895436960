package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/domain"
	"github.com/ctOP-IIITH/backend/internal/repository"
)

const aeTag = "m2m:ae"

// CreateVerticalRequest describes a new vertical. ShortCode is optional;
// when empty it is derived from the name.
type CreateVerticalRequest struct {
	Name        string   `json:"name"`
	ShortCode   string   `json:"short_code"`
	Description string   `json:"description"`
	Labels      []string `json:"labels"`
}

// VerticalService manages verticals: an application entity on the remote
// tree plus a relational shadow row.
type VerticalService interface {
	CreateVertical(ctx context.Context, req CreateVerticalRequest) (*domain.Vertical, error)
	GetVertical(ctx context.Context, id int) (*domain.Vertical, error)
	ListVerticals(ctx context.Context) ([]*domain.Vertical, error)
	DeleteVertical(ctx context.Context, id int) error
}

type verticalService struct {
	verticals   repository.VerticalsRepository
	sensorTypes repository.SensorTypesRepository
	tree        ResourceTree
	parseRID    ResourceIDParser
	logger      *zap.Logger
}

func NewVerticalService(
	verticals repository.VerticalsRepository,
	sensorTypes repository.SensorTypesRepository,
	tree ResourceTree,
	parseRID ResourceIDParser,
	logger *zap.Logger,
) VerticalService {
	return &verticalService{
		verticals:   verticals,
		sensorTypes: sensorTypes,
		tree:        tree,
		parseRID:    parseRID,
		logger:      logger,
	}
}

// CreateVertical creates the AE remotely and mirrors it. A remote 409 means
// the AE survived an earlier partial creation; its id is fetched and adopted
// instead of failing.
func (s *verticalService) CreateVertical(ctx context.Context, req CreateVerticalRequest) (*domain.Vertical, error) {
	if _, err := s.verticals.GetByName(ctx, req.Name); err == nil {
		return nil, Conflictf("Vertical %s already exists", req.Name)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	code := req.ShortCode
	if code == "" {
		code = VerticalCode(req.Name)
	}
	labels := req.Labels
	if len(labels) == 0 {
		labels = []string{code}
	}
	remoteName := "AE-" + code

	status, body, err := s.tree.CreateAE(ctx, remoteName, labels)
	if err != nil {
		return nil, RemoteErrorf(0, "Error creating vertical on the resource tree: %v", err)
	}
	if status == 409 {
		status, body, err = s.tree.GetContainer(ctx, remoteName, false)
		if err != nil {
			return nil, RemoteErrorf(0, "Error reading vertical from the resource tree: %v", err)
		}
	}
	if status != 201 && status != 200 {
		return nil, RemoteErrorf(status, "Error creating vertical, resource tree returned %d", status)
	}

	orid, err := s.parseRID(body, aeTag)
	if err != nil {
		return nil, RemoteErrorf(0, "Error reading resource tree response: %v", err)
	}

	vert := &domain.Vertical{
		Name:        req.Name,
		ShortCode:   code,
		Description: req.Description,
		Labels:      labels,
		ORID:        orid,
	}
	if _, err := s.verticals.Insert(ctx, vert); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, Conflictf("Vertical %s already exists", req.Name)
		}
		return nil, err
	}

	s.logger.Info("vertical created",
		zap.String("name", req.Name),
		zap.String("short_code", code),
		zap.String("orid", orid),
	)
	return vert, nil
}

func (s *verticalService) GetVertical(ctx context.Context, id int) (*domain.Vertical, error) {
	vert, err := s.verticals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundf("Vertical not found")
		}
		return nil, err
	}
	return vert, nil
}

func (s *verticalService) ListVerticals(ctx context.Context) ([]*domain.Vertical, error) {
	return s.verticals.List(ctx)
}

// DeleteVertical refuses while sensor types still reference the vertical.
func (s *verticalService) DeleteVertical(ctx context.Context, id int) error {
	vert, err := s.verticals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFoundf("Vertical not found")
		}
		return err
	}
	n, err := s.sensorTypes.CountByVertical(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return Conflictf("Vertical %s still has sensor types", vert.Name)
	}

	status, _, err := s.tree.DeleteResource(ctx, vert.RemotePath())
	if err != nil {
		return RemoteErrorf(0, "Error deleting vertical on the resource tree: %v", err)
	}
	if status != 200 && status != 202 && status != 404 {
		return RemoteErrorf(status, "Error deleting vertical, resource tree returned %d", status)
	}
	return s.verticals.Delete(ctx, id)
}

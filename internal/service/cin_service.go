package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/repository"
)

const cinTag = "m2m:cin"

// Reading is one content instance pulled back from a node's Data container.
type Reading struct {
	ResourceID string          `json:"resource_id"`
	Created    string          `json:"created"`
	Content    json.RawMessage `json:"content"`
}

// IngestRequest is one sensor reading, addressed by the node's token number.
// APIKey is required once the node has a vendor owner.
type IngestRequest struct {
	TokenNum int            `json:"token_num"`
	APIKey   string         `json:"-"`
	Data     map[string]any `json:"data"`
}

// CinService pushes sensor readings into node Data containers and reads
// them back. Readings live only on the remote tree; the relational store
// never sees them.
type CinService interface {
	Ingest(ctx context.Context, req IngestRequest) error
	// Latest returns the newest reading of a node, or KindNotFound when the
	// Data container is empty.
	Latest(ctx context.Context, nodeID int) (*Reading, error)
	// ListByNode returns all retained readings of a node, oldest first.
	ListByNode(ctx context.Context, nodeID int) ([]Reading, error)
}

type cinService struct {
	nodes       repository.NodesRepository
	sensorTypes repository.SensorTypesRepository
	verticals   repository.VerticalsRepository
	owners      repository.NodeOwnersRepository
	tree        ResourceTree
	logger      *zap.Logger
}

func NewCinService(
	nodes repository.NodesRepository,
	sensorTypes repository.SensorTypesRepository,
	verticals repository.VerticalsRepository,
	owners repository.NodeOwnersRepository,
	tree ResourceTree,
	logger *zap.Logger,
) CinService {
	return &cinService{
		nodes:       nodes,
		sensorTypes: sensorTypes,
		verticals:   verticals,
		owners:      owners,
		tree:        tree,
		logger:      logger,
	}
}

// Ingest validates the reading against the node's sensor-type schema and
// appends it to the node's Data container.
func (s *cinService) Ingest(ctx context.Context, req IngestRequest) error {
	node, err := s.nodes.GetByTokenNum(ctx, req.TokenNum)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFoundf("No node with token number %d", req.TokenNum)
		}
		return err
	}

	if err := s.checkAPIKey(ctx, node.ID, req.APIKey); err != nil {
		return err
	}

	st, err := s.sensorTypes.GetByID(ctx, node.SensorTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFoundf("Sensor type not found")
		}
		return err
	}
	for _, param := range st.Parameters {
		if _, ok := req.Data[param]; !ok {
			return Validationf("Missing parameter %s", param)
		}
	}
	if len(req.Data) != len(st.Parameters) {
		return Validationf("Data does not match the sensor type parameters")
	}

	vert, err := s.verticals.GetBySensorTypeID(ctx, node.SensorTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFoundf("Non Existing Domain, please check the sensor type")
		}
		return err
	}

	content, err := json.Marshal(req.Data)
	if err != nil {
		return Validationf("Data is not serializable")
	}
	status, _, err := s.tree.CreateContentInstance(ctx,
		vert.RemotePath()+"/"+node.NodeName, "Data", string(content), []string{st.Name})
	if err != nil {
		return RemoteErrorf(0, "Error pushing data to the resource tree: %v", err)
	}
	if status != 201 {
		return RemoteErrorf(status, "Error pushing data, resource tree returned %d", status)
	}

	s.logger.Debug("reading ingested",
		zap.String("node_name", node.NodeName),
		zap.Int("token_num", req.TokenNum),
	)
	return nil
}

// checkAPIKey enforces the vendor key for owned nodes. Unowned nodes accept
// readings without a key.
func (s *cinService) checkAPIKey(ctx context.Context, nodeID int, apiKey string) error {
	owner, err := s.owners.GetByNodeID(ctx, nodeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	given := HashAPIKey(apiKey)
	if subtle.ConstantTimeCompare([]byte(given), []byte(owner.APIKeyHash)) != 1 {
		return Unauthorizedf("Invalid API key")
	}
	return nil
}

func (s *cinService) Latest(ctx context.Context, nodeID int) (*Reading, error) {
	path, err := s.dataPath(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	status, body, err := s.tree.GetContainer(ctx, path+"/la", false)
	if err != nil {
		return nil, RemoteErrorf(0, "Error reading data from the resource tree: %v", err)
	}
	if status == 404 {
		return nil, NotFoundf("Node has no data yet")
	}
	if status != 200 {
		return nil, RemoteErrorf(status, "Error reading data, resource tree returned %d", status)
	}
	readings, err := parseReadings(body)
	if err != nil {
		return nil, RemoteErrorf(0, "Error reading resource tree response: %v", err)
	}
	if len(readings) == 0 {
		return nil, NotFoundf("Node has no data yet")
	}
	return &readings[0], nil
}

func (s *cinService) ListByNode(ctx context.Context, nodeID int) ([]Reading, error) {
	path, err := s.dataPath(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	status, body, err := s.tree.GetContainer(ctx, path, true)
	if err != nil {
		return nil, RemoteErrorf(0, "Error reading data from the resource tree: %v", err)
	}
	if status == 404 {
		return nil, NotFoundf("Node has no data container")
	}
	if status != 200 {
		return nil, RemoteErrorf(status, "Error reading data, resource tree returned %d", status)
	}
	readings, err := parseReadings(body)
	if err != nil {
		return nil, RemoteErrorf(0, "Error reading resource tree response: %v", err)
	}
	return readings, nil
}

func (s *cinService) dataPath(ctx context.Context, nodeID int) (string, error) {
	node, err := s.nodes.GetByID(ctx, nodeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", NotFoundf("Node not found")
		}
		return "", err
	}
	vert, err := s.verticals.GetBySensorTypeID(ctx, node.SensorTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", NotFoundf("Non Existing Domain, please check the sensor type")
		}
		return "", err
	}
	return vert.RemotePath() + "/" + node.NodeName + "/Data", nil
}

// rawCin mirrors the oneM2M content-instance body. Mobius returns con as a
// string; older trees return arbitrary JSON, so it stays raw.
type rawCin struct {
	RI  string          `json:"ri"`
	CT  string          `json:"ct"`
	Con json.RawMessage `json:"con"`
}

// parseReadings accepts both shapes the remote tree produces: a single
// content instance ({"m2m:cin": {...}}) and an expanded container
// ({"m2m:cnt": {"m2m:cin": [...]}}).
func parseReadings(body []byte) ([]Reading, error) {
	var single struct {
		Cin *rawCin `json:"m2m:cin"`
	}
	if err := json.Unmarshal(body, &single); err == nil && single.Cin != nil {
		return []Reading{toReading(*single.Cin)}, nil
	}

	var expanded struct {
		Cnt struct {
			Cin []rawCin `json:"m2m:cin"`
		} `json:"m2m:cnt"`
	}
	if err := json.Unmarshal(body, &expanded); err != nil {
		return nil, err
	}
	out := make([]Reading, 0, len(expanded.Cnt.Cin))
	for _, c := range expanded.Cnt.Cin {
		out = append(out, toReading(c))
	}
	return out, nil
}

func toReading(c rawCin) Reading {
	return Reading{ResourceID: lastSegment(c.RI), Created: c.CT, Content: c.Con}
}

func lastSegment(ri string) string {
	for i := len(ri) - 1; i >= 0; i-- {
		if ri[i] == '/' {
			return ri[i+1:]
		}
	}
	return ri
}

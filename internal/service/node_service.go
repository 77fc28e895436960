package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/domain"
	"github.com/ctOP-IIITH/backend/internal/geocode"
	"github.com/ctOP-IIITH/backend/internal/repository"
)

// ResourceTree is the subset of the oneM2M client the services depend on.
type ResourceTree interface {
	CreateAE(ctx context.Context, name string, labels []string) (int, []byte, error)
	CreateContainer(ctx context.Context, name, parentPath string, labels []string) (int, []byte, error)
	CreateContentInstance(ctx context.Context, parentPath, childName, content string, labels []string) (int, []byte, error)
	DeleteResource(ctx context.Context, path string) (int, []byte, error)
	GetContainer(ctx context.Context, path string, resolveAll bool) (int, []byte, error)
}

// ParseResourceID matches onem2m.ParseResourceID; injected so the workflow
// stays testable against fakes.
type ResourceIDParser func(body []byte, tag string) (string, error)

// CreateNodeResult statuses and failure codes.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	CodeSensorTypeNotFound      = "SENSOR_TYPE_NOT_FOUND"
	CodeNodeAlreadyExists       = "NODE_ALREADY_EXISTS"
	CodeVerticalNotFound        = "VERTICAL_NOT_FOUND"
	CodeNodeAlreadyExistsRemote = "NODE_ALREADY_EXISTS_REMOTE"
	CodeRemoteCreateError       = "REMOTE_CREATE_ERROR"
	CodeDescriptorPushError     = "DESCRIPTOR_PUSH_ERROR"
	CodeInternalError           = "INTERNAL_ERROR"
)

// CreateNodeRequest is one end-to-end provisioning request.
type CreateNodeRequest struct {
	SensorTypeID int     `json:"sensor_type_id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Area         string  `json:"area"`
	Name         string  `json:"name"`
}

// CreateNodeResult is the workflow's discriminated outcome. The workflow
// never returns an error: every failure is folded into the error variant so
// bulk callers can keep going.
type CreateNodeResult struct {
	Status       string       `json:"status"`
	Code         string       `json:"code,omitempty"`
	Message      string       `json:"message,omitempty"`
	RemoteStatus int          `json:"remote_status,omitempty"`
	Node         *domain.Node `json:"node,omitempty"`
}

func errResult(code, format string, args ...any) CreateNodeResult {
	return CreateNodeResult{Status: StatusError, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NodeService provisions nodes end-to-end: remote subtree, relational shadow
// row, token-number back-fill and descriptor push.
type NodeService interface {
	CreateNode(ctx context.Context, req CreateNodeRequest) CreateNodeResult
	// DeriveNodeCode computes the resource code a node created now would
	// get, without creating anything.
	DeriveNodeCode(ctx context.Context, sensorTypeID int, lat, long float64) (string, error)
	GetNode(ctx context.Context, id int) (*domain.Node, error)
	ListNodes(ctx context.Context) ([]*domain.Node, error)
	DeleteNode(ctx context.Context, id int) error
	// AssignVendor gives a vendor user ownership of a node and returns the
	// plaintext ingestion API key exactly once.
	AssignVendor(ctx context.Context, nodeID int, vendorEmail string) (string, error)
}

type nodeService struct {
	nodes       repository.NodesRepository
	sensorTypes repository.SensorTypesRepository
	verticals   repository.VerticalsRepository
	owners      repository.NodeOwnersRepository
	users       repository.UsersRepository
	tree        ResourceTree
	parseRID    ResourceIDParser
	postal      geocode.PostalLookup
	logger      *zap.Logger
}

func NewNodeService(
	nodes repository.NodesRepository,
	sensorTypes repository.SensorTypesRepository,
	verticals repository.VerticalsRepository,
	owners repository.NodeOwnersRepository,
	users repository.UsersRepository,
	tree ResourceTree,
	parseRID ResourceIDParser,
	postal geocode.PostalLookup,
	logger *zap.Logger,
) NodeService {
	return &nodeService{
		nodes:       nodes,
		sensorTypes: sensorTypes,
		verticals:   verticals,
		owners:      owners,
		users:       users,
		tree:        tree,
		parseRID:    parseRID,
		postal:      postal,
		logger:      logger,
	}
}

const containerTag = "m2m:cnt"

// CreateNode runs the provisioning workflow. The sequence is not
// transactional across the two stores: a failure after the remote container
// exists leaves it there, and a failed descriptor push leaves the node
// partially provisioned. Both outcomes are surfaced, not rolled back.
func (s *nodeService) CreateNode(ctx context.Context, req CreateNodeRequest) CreateNodeResult {
	st, err := s.sensorTypes.GetByID(ctx, req.SensorTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errResult(CodeSensorTypeNotFound, "Sensor type not found")
		}
		return s.internal("sensor type lookup failed", err)
	}

	// Reject duplicates before touching the remote tree.
	if _, err := s.nodes.GetByName(ctx, req.Name); err == nil {
		return errResult(CodeNodeAlreadyExists, "Node: %s already exists", req.Name)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return s.internal("node lookup failed", err)
	}

	vert, err := s.verticals.GetBySensorTypeID(ctx, req.SensorTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errResult(CodeVerticalNotFound, "Non Existing Domain, please check the sensor type")
		}
		return s.internal("vertical lookup failed", err)
	}

	ordinal, err := s.nodes.NextNodeNumber(ctx, req.SensorTypeID)
	if err != nil {
		return s.internal("next node number failed", err)
	}

	nodeCode := s.nodeCode(ctx, vert.ShortCode, st.ID, req.Latitude, req.Longitude, ordinal)

	status, body, err := s.tree.CreateContainer(ctx, nodeCode, vert.RemotePath(),
		[]string{vert.ShortCode, nodeCode})
	if err != nil {
		return errResult(CodeRemoteCreateError, "Error creating node on the resource tree: %v", err)
	}
	switch {
	case status == 201:
	case status == 409:
		// The relational store has no such node but the remote tree does:
		// a detected inconsistency, reported rather than resolved.
		return errResult(CodeNodeAlreadyExistsRemote,
			"Node %s already exists on the resource tree", nodeCode)
	default:
		r := errResult(CodeRemoteCreateError, "Error creating node, resource tree returned %d", status)
		r.RemoteStatus = status
		return r
	}

	orid, err := s.parseRID(body, containerTag)
	if err != nil {
		return errResult(CodeRemoteCreateError, "Error reading resource tree response: %v", err)
	}

	nodePath := vert.RemotePath() + "/" + nodeCode
	dataStatus, dataBody, dataErr := s.tree.CreateContainer(ctx, "Data", nodePath, []string{"Data", nodeCode})
	descStatus, _, descErr := s.tree.CreateContainer(ctx, "Descriptor", nodePath, []string{"Descriptor", nodeCode})
	if dataErr != nil || descErr != nil || dataStatus != 201 || descStatus != 201 {
		// The container created above stays behind on the remote tree.
		s.logger.Warn("node subtree creation failed, orphaned container remains",
			zap.String("node_code", nodeCode),
			zap.Int("data_status", dataStatus),
			zap.Int("descriptor_status", descStatus),
		)
		return errResult(CodeRemoteCreateError, "Error creating node subtree on the resource tree")
	}

	dataORID, err := s.parseRID(dataBody, containerTag)
	if err != nil {
		return errResult(CodeRemoteCreateError, "Error reading resource tree response: %v", err)
	}

	node := &domain.Node{
		SensorTypeID:     st.ID,
		SensorNodeNumber: ordinal,
		Name:             req.Name,
		NodeName:         nodeCode,
		Labels:           []string{vert.ShortCode, nodeCode},
		Lat:              req.Latitude,
		Long:             req.Longitude,
		Location:         req.Area,
		Area:             req.Area,
		ORID:             orid,
		NodeDataORID:     dataORID,
	}
	id, err := s.nodes.Insert(ctx, node)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// A concurrent creation won the ordinal or name; the remote
			// container we just made is orphaned.
			s.logger.Warn("node insert lost a uniqueness race, orphaned container remains",
				zap.String("node_code", nodeCode))
			return errResult(CodeNodeAlreadyExists, "Node: %s already exists", req.Name)
		}
		return s.internal("node insert failed", err)
	}

	if err := s.nodes.SetTokenNum(ctx, id, id); err != nil {
		return s.internal("token number back-fill failed", err)
	}
	node.TokenNum.Valid = true
	node.TokenNum.Int64 = int64(id)

	params, _ := json.Marshal(st.Parameters)
	pushStatus, _, pushErr := s.tree.CreateContentInstance(ctx, nodePath, "Descriptor",
		string(params), []string{st.Name})
	if pushErr != nil || pushStatus != 201 {
		// Node row exists but consumers cannot self-discover its schema.
		s.logger.Warn("descriptor push failed, node partially provisioned",
			zap.String("node_code", nodeCode),
			zap.Int("status", pushStatus),
			zap.Error(pushErr),
		)
		r := errResult(CodeDescriptorPushError,
			"Node %s created but descriptor push failed, node is partially provisioned", nodeCode)
		r.Node = node
		return r
	}

	s.logger.Info("node provisioned",
		zap.String("node_code", nodeCode),
		zap.Int("node_id", id),
		zap.Int("sensor_type_id", st.ID),
	)
	return CreateNodeResult{Status: StatusSuccess, Message: "Node created", Node: node}
}

func (s *nodeService) internal(msg string, err error) CreateNodeResult {
	s.logger.Error(msg, zap.Error(err))
	return errResult(CodeInternalError, "Error creating node")
}

// nodeCode derives the resource code. The reverse-geocode lookup can take
// seconds and is allowed to fail; "0000" stands in for a missing postal code.
func (s *nodeService) nodeCode(ctx context.Context, vertCode string, sensorTypeID int, lat, long float64, ordinal int) string {
	postal, err := s.postal.PostalCode(ctx, lat, long)
	if err != nil {
		s.logger.Warn("reverse geocode failed, using fallback postal segment",
			zap.Float64("lat", lat),
			zap.Float64("long", long),
			zap.Error(err),
		)
		postal = ""
	}
	return NodeCode(vertCode, sensorTypeID, postalSegment(postal), ordinal)
}

func (s *nodeService) DeriveNodeCode(ctx context.Context, sensorTypeID int, lat, long float64) (string, error) {
	st, err := s.sensorTypes.GetByID(ctx, sensorTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", NotFoundf("Sensor type not found")
		}
		return "", err
	}
	vert, err := s.verticals.GetBySensorTypeID(ctx, sensorTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", NotFoundf("Non Existing Domain, please check the sensor type")
		}
		return "", err
	}
	ordinal, err := s.nodes.NextNodeNumber(ctx, sensorTypeID)
	if err != nil {
		return "", err
	}
	return s.nodeCode(ctx, vert.ShortCode, st.ID, lat, long, ordinal), nil
}

func (s *nodeService) GetNode(ctx context.Context, id int) (*domain.Node, error) {
	node, err := s.nodes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NotFoundf("Node not found")
		}
		return nil, err
	}
	return node, nil
}

func (s *nodeService) ListNodes(ctx context.Context) ([]*domain.Node, error) {
	return s.nodes.List(ctx)
}

// DeleteNode removes the remote container first, then the shadow row. A 404
// from the remote tree is treated as already gone.
func (s *nodeService) DeleteNode(ctx context.Context, id int) error {
	node, err := s.nodes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFoundf("Node not found")
		}
		return err
	}
	vert, err := s.verticals.GetBySensorTypeID(ctx, node.SensorTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NotFoundf("Non Existing Domain, please check the sensor type")
		}
		return err
	}

	status, _, err := s.tree.DeleteResource(ctx, vert.RemotePath()+"/"+node.NodeName)
	if err != nil {
		return RemoteErrorf(0, "Error deleting node on the resource tree: %v", err)
	}
	if status != 200 && status != 202 && status != 404 {
		return RemoteErrorf(status, "Error deleting node, resource tree returned %d", status)
	}
	return s.nodes.Delete(ctx, id)
}

func (s *nodeService) AssignVendor(ctx context.Context, nodeID int, vendorEmail string) (string, error) {
	if _, err := s.nodes.GetByID(ctx, nodeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", NotFoundf("Node not found")
		}
		return "", err
	}
	vendor, err := s.users.GetByEmail(ctx, vendorEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", NotFoundf("Vendor not found")
		}
		return "", err
	}
	if vendor.UserType != domain.RoleVendor {
		return "", Validationf("User %s is not a vendor", vendorEmail)
	}

	apiKey := uuid.NewString()
	owner := &domain.NodeOwner{
		NodeID:     nodeID,
		VendorID:   vendor.ID,
		APIKeyHash: HashAPIKey(apiKey),
	}
	if _, err := s.owners.Insert(ctx, owner); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return "", Conflictf("Node is already assigned to a vendor")
		}
		return "", err
	}
	return apiKey, nil
}

// HashAPIKey is the stored form of a vendor ingestion key.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

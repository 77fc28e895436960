package httpapi

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/service"
)

type NodeHandler struct {
	nodes  service.NodeService
	logger *zap.Logger
}

func NewNodeHandler(nodes service.NodeService, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{nodes: nodes, logger: logger}
}

// createNodeStatus maps workflow failure codes onto HTTP statuses. Partial
// provisioning still answers 201: the node exists and is usable.
func createNodeStatus(res service.CreateNodeResult) int {
	if res.Status == service.StatusSuccess {
		return http.StatusCreated
	}
	switch res.Code {
	case service.CodeSensorTypeNotFound, service.CodeVerticalNotFound:
		return http.StatusNotFound
	case service.CodeNodeAlreadyExists, service.CodeNodeAlreadyExistsRemote:
		return http.StatusConflict
	case service.CodeRemoteCreateError:
		return http.StatusBadGateway
	case service.CodeDescriptorPushError:
		return http.StatusCreated
	default:
		return http.StatusInternalServerError
	}
}

func (h *NodeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateNodeRequest
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeDetail(w, http.StatusBadRequest, "Node name is required")
		return
	}
	res := h.nodes.CreateNode(r.Context(), req)
	writeJSON(w, createNodeStatus(res), res)
}

func (h *NodeHandler) DeriveCode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sensorTypeID := parseInt(q.Get("sensor_type_id"), 0)
	if sensorTypeID <= 0 {
		writeDetail(w, http.StatusBadRequest, "sensor_type_id is required")
		return
	}
	lat, latErr := strconv.ParseFloat(q.Get("latitude"), 64)
	long, longErr := strconv.ParseFloat(q.Get("longitude"), 64)
	if latErr != nil || longErr != nil {
		writeDetail(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	code, err := h.nodes.DeriveNodeCode(r.Context(), sensorTypeID, lat, long)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"node_code": code})
}

func (h *NodeHandler) List(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.nodes.ListNodes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ToJSON())
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *NodeHandler) Get(w http.ResponseWriter, r *http.Request, rawID string) {
	id := parseInt(rawID, 0)
	if id <= 0 {
		writeDetail(w, http.StatusBadRequest, "Invalid node id")
		return
	}
	node, err := h.nodes.GetNode(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, node.ToJSON())
}

func (h *NodeHandler) Delete(w http.ResponseWriter, r *http.Request, rawID string) {
	id := parseInt(rawID, 0)
	if id <= 0 {
		writeDetail(w, http.StatusBadRequest, "Invalid node id")
		return
	}
	if err := h.nodes.DeleteNode(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Node deleted"})
}

// AssignVendor returns the plaintext API key once; only its hash is stored.
func (h *NodeHandler) AssignVendor(w http.ResponseWriter, r *http.Request, rawID string) {
	id := parseInt(rawID, 0)
	if id <= 0 {
		writeDetail(w, http.StatusBadRequest, "Invalid node id")
		return
	}
	var req struct {
		VendorEmail string `json:"vendor_email"`
	}
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil || req.VendorEmail == "" {
		writeDetail(w, http.StatusBadRequest, "vendor_email is required")
		return
	}
	apiKey, err := h.nodes.AssignVendor(r.Context(), id, req.VendorEmail)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"api_key": apiKey})
}

package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/service"
)

type TokenHandler struct {
	tokens service.TokenService
	logger *zap.Logger
}

func NewTokenHandler(tokens service.TokenService, logger *zap.Logger) *TokenHandler {
	return &TokenHandler{tokens: tokens, logger: logger}
}

// Issue mints a token for a sensor type, assigned to the calling admin.
func (h *TokenHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SensorTypeID int `json:"sensor_type_id"`
	}
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil || req.SensorTypeID <= 0 {
		writeDetail(w, http.StatusBadRequest, "sensor_type_id is required")
		return
	}
	p := PrincipalFrom(r.Context())
	t, err := h.tokens.IssueToken(r.Context(), req.SensorTypeID, p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t.ToJSON())
}

// Get serves /api/v1/tokens/{sensorTypeID}/{tokenID}.
func (h *TokenHandler) Get(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/tokens/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	sensorTypeID := parseInt(parts[0], 0)
	tokenID := parseInt(parts[1], 0)
	if sensorTypeID <= 0 || tokenID <= 0 {
		writeDetail(w, http.StatusBadRequest, "Invalid token path")
		return
	}
	t, err := h.tokens.GetToken(r.Context(), sensorTypeID, tokenID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t.ToJSON())
}

func (h *TokenHandler) Deploy(w http.ResponseWriter, r *http.Request) {
	var req service.DeployTokenRequest
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	node, err := h.tokens.DeployToken(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, node.ToJSON())
}

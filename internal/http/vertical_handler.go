package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/service"
)

type VerticalHandler struct {
	verticals   service.VerticalService
	sensorTypes service.SensorTypeService
	logger      *zap.Logger
}

func NewVerticalHandler(verticals service.VerticalService, sensorTypes service.SensorTypeService, logger *zap.Logger) *VerticalHandler {
	return &VerticalHandler{verticals: verticals, sensorTypes: sensorTypes, logger: logger}
}

func (h *VerticalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateVerticalRequest
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeDetail(w, http.StatusBadRequest, "Vertical name is required")
		return
	}
	vert, err := h.verticals.CreateVertical(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, vert.ToJSON())
}

func (h *VerticalHandler) List(w http.ResponseWriter, r *http.Request) {
	verts, err := h.verticals.ListVerticals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(verts))
	for _, v := range verts {
		out = append(out, v.ToJSON())
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *VerticalHandler) Get(w http.ResponseWriter, r *http.Request, rawID string) {
	id := parseInt(rawID, 0)
	if id <= 0 {
		writeDetail(w, http.StatusBadRequest, "Invalid vertical id")
		return
	}
	vert, err := h.verticals.GetVertical(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vert.ToJSON())
}

func (h *VerticalHandler) Delete(w http.ResponseWriter, r *http.Request, rawID string) {
	id := parseInt(rawID, 0)
	if id <= 0 {
		writeDetail(w, http.StatusBadRequest, "Invalid vertical id")
		return
	}
	if err := h.verticals.DeleteVertical(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Vertical deleted"})
}

func (h *VerticalHandler) SensorTypes(w http.ResponseWriter, r *http.Request, rawID string) {
	id := parseInt(rawID, 0)
	if id <= 0 {
		writeDetail(w, http.StatusBadRequest, "Invalid vertical id")
		return
	}
	types, err := h.sensorTypes.ListByVertical(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(types))
	for _, st := range types {
		out = append(out, st.ToJSON())
	}
	writeJSON(w, http.StatusOK, out)
}

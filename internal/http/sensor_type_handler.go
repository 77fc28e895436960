package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/domain"
	"github.com/ctOP-IIITH/backend/internal/service"
)

type SensorTypeHandler struct {
	sensorTypes service.SensorTypeService
	logger      *zap.Logger
}

func NewSensorTypeHandler(sensorTypes service.SensorTypeService, logger *zap.Logger) *SensorTypeHandler {
	return &SensorTypeHandler{sensorTypes: sensorTypes, logger: logger}
}

func (h *SensorTypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string   `json:"name"`
		Parameters []string `json:"parameters"`
		DataTypes  []string `json:"data_types"`
		Labels     []string `json:"labels"`
		VerticalID int      `json:"vertical_id"`
	}
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	st, err := h.sensorTypes.CreateSensorType(r.Context(), &domain.SensorType{
		Name:       req.Name,
		Parameters: req.Parameters,
		DataTypes:  req.DataTypes,
		Labels:     req.Labels,
		VerticalID: req.VerticalID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, st.ToJSON())
}

func (h *SensorTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	types, err := h.sensorTypes.ListSensorTypes(r.Context())
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

func (h *SensorTypeHandler) Get(w http.ResponseWriter, r *http.Request, rawID string) {
	id := parseInt(rawID, 0)
	if id <= 0 {
		writeDetail(w, http.StatusBadRequest, "Invalid sensor type id")
		return
	}
	st, err := h.sensorTypes.GetSensorType(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.ToJSON())
}

func (h *SensorTypeHandler) Delete(w http.ResponseWriter, r *http.Request, rawID string) {
	id := parseInt(rawID, 0)
	if id <= 0 {
		writeDetail(w, http.StatusBadRequest, "Invalid sensor type id")
		return
	}
	if err := h.sensorTypes.DeleteSensorType(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Sensor type deleted"})
}

package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/service"
)

type CinHandler struct {
	cins   service.CinService
	logger *zap.Logger
}

func NewCinHandler(cins service.CinService, logger *zap.Logger) *CinHandler {
	return &CinHandler{cins: cins, logger: logger}
}

// Ingest serves /api/v1/cin/create/{tokenNum}. Owned nodes additionally
// require the vendor key in X-API-Key.
func (h *CinHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/api/v1/cin/create/")
	tokenNum := parseInt(raw, 0)
	if tokenNum <= 0 || strings.Contains(raw, "/") {
		writeDetail(w, http.StatusBadRequest, "Invalid token number")
		return
	}
	var data map[string]any
	if err := readBodyJSON(r, maxJSONBody, &data); err != nil || len(data) == 0 {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	err := h.cins.Ingest(r.Context(), service.IngestRequest{
		TokenNum: tokenNum,
		APIKey:   r.Header.Get("X-API-Key"),
		Data:     data,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Data added"})
}

func (h *CinHandler) Latest(w http.ResponseWriter, r *http.Request, rawID string) {
	id := parseInt(rawID, 0)
	if id <= 0 {
		writeDetail(w, http.StatusBadRequest, "Invalid node id")
		return
	}
	reading, err := h.cins.Latest(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (h *CinHandler) ListByNode(w http.ResponseWriter, r *http.Request, rawID string) {
	id := parseInt(rawID, 0)
	if id <= 0 {
		writeDetail(w, http.StatusBadRequest, "Invalid node id")
		return
	}
	readings, err := h.cins.ListByNode(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

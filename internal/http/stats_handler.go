package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ctOP-IIITH/backend/internal/service"
)

type StatsHandler struct {
	stats  service.StatsService
	logger *zap.Logger
}

func NewStatsHandler(stats service.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Overview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// -----------------------------------------------------------------------
// Status Handler - health and library statistics endpoints
// -----------------------------------------------------------------------

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/common"
	"github.com/ternarybob/lectio/internal/interfaces"
)

// StatusHandler serves health and stats endpoints.
type StatusHandler struct {
	storage interfaces.StorageManager
	ai      interfaces.AIService
	cache   interfaces.AnalysisCache
	stats   interfaces.StatsService
	logger  arbor.ILogger
}

// NewStatusHandler creates the status handler. AI service and cache may be
// nil; their health reports as "disabled".
func NewStatusHandler(
	storage interfaces.StorageManager,
	ai interfaces.AIService,
	analysisCache interfaces.AnalysisCache,
	stats interfaces.StatsService,
	logger arbor.ILogger,
) *StatusHandler {
	return &StatusHandler{
		storage: storage,
		ai:      ai,
		cache:   analysisCache,
		stats:   stats,
		logger:  logger,
	}
}

// HealthHandler handles GET /api/health.
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	components := map[string]string{
		"storage": h.storageHealth(ctx),
		"ai":      h.aiHealth(ctx),
		"cache":   h.cacheHealth(ctx),
	}

	status := "ok"
	for _, state := range components {
		if state != "ok" && state != "disabled" {
			status = "degraded"
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     status,
		"version":    common.GetVersion(),
		"components": components,
	})
}

// StatsHandler handles GET /api/stats with the current library snapshot.
func (h *StatusHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	stats, err := h.stats.Current(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to compute library stats")
		WriteError(w, http.StatusInternalServerError, "Failed to compute library stats")
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

func (h *StatusHandler) storageHealth(ctx context.Context) string {
	if h.storage == nil {
		return "disabled"
	}
	if _, err := h.storage.DocumentStorage().CountDocuments(ctx, ""); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func (h *StatusHandler) aiHealth(ctx context.Context) string {
	if h.ai == nil {
		return "disabled"
	}
	if err := h.ai.HealthCheck(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func (h *StatusHandler) cacheHealth(ctx context.Context) string {
	if h.cache == nil {
		return "disabled"
	}
	if err := h.cache.HealthCheck(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

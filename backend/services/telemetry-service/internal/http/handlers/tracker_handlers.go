package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"pltsmonitor/backend/services/telemetry-service/internal/models"
	"pltsmonitor/backend/services/telemetry-service/internal/service"
)

// TrackerHandlers accepts tracker samples and exposes the current one.
type TrackerHandlers struct {
	facade *service.Facade
	logger *zap.Logger
}

// NewTrackerHandlers returns handler struct.
func NewTrackerHandlers(facade *service.Facade, logger *zap.Logger) *TrackerHandlers {
	return &TrackerHandlers{facade: facade, logger: logger}
}

// Update handles POST /updateServo. Missing fields are published as zero.
func (h *TrackerHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var in models.TrackerInput
	if err := decodeBody(r, w, &in); err != nil {
		h.logger.Debug("malformed tracker body", zap.Error(err))
		writeMessage(w, http.StatusBadRequest, "invalid body")
		return
	}
	h.facade.PublishTracker(in)
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// Current handles GET /api/servo.
func (h *TrackerHandlers) Current(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.facade.TrackerSample())
}

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"pltsmonitor/backend/services/telemetry-service/internal/http/middleware"
	"pltsmonitor/backend/services/telemetry-service/internal/hub"
)

// TrackerStats reports live hub counters.
type TrackerStats interface {
	Stats() hub.Stats
}

// ViewerCounter reports open websocket viewers.
type ViewerCounter interface {
	Count() int
}

// AdminSettings is the effective configuration shown on the settings page.
type AdminSettings struct {
	Timezone          string `json:"timezone"`
	PeakHorizon       string `json:"peakHorizon"`
	BatteryHealth     int    `json:"batteryHealth"`
	AuthEnabled       bool   `json:"authEnabled"`
	DeviceKeyRequired bool   `json:"deviceKeyRequired"`
	RelayEnabled      bool   `json:"relayEnabled"`
	MQTTEnabled       bool   `json:"mqttEnabled"`
}

type trackerStatus struct {
	Published   uint64 `json:"published"`
	Dropped     uint64 `json:"dropped"`
	Subscribers int    `json:"subscribers"`
	Viewers     int    `json:"viewers"`
}

type adminStatus struct {
	RequestedBy string        `json:"requestedBy"`
	Tracker     trackerStatus `json:"tracker"`
	Settings    AdminSettings `json:"settings"`
}

// AdminHandler serves operational status to admins.
type AdminHandler struct {
	stats    TrackerStats
	viewers  ViewerCounter
	settings AdminSettings
	logger   *zap.Logger
}

// NewAdminHandler returns handler.
func NewAdminHandler(stats TrackerStats, viewers ViewerCounter, settings AdminSettings, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{stats: stats, viewers: viewers, settings: settings, logger: logger}
}

// ServeHTTP handles GET /api/admin/status. It must sit behind an admin guard.
func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	stats := h.stats.Stats()
	status := adminStatus{
		RequestedBy: id.Username,
		Tracker: trackerStatus{
			Published:   stats.Published,
			Dropped:     stats.Dropped,
			Subscribers: stats.Subscribers,
		},
		Settings: h.settings,
	}
	if h.viewers != nil {
		status.Tracker.Viewers = h.viewers.Count()
	}
	writeJSON(w, h.logger, http.StatusOK, status)
}

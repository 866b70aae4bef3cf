package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"pltsmonitor/backend/services/telemetry-service/internal/models"
	"pltsmonitor/backend/services/telemetry-service/internal/service"
)

// DataHandlers serves stored panel and beban telemetry.
type DataHandlers struct {
	facade *service.Facade
	logger *zap.Logger
}

// NewDataHandlers returns handler struct.
func NewDataHandlers(facade *service.Facade, logger *zap.Logger) *DataHandlers {
	return &DataHandlers{facade: facade, logger: logger}
}

// Submit handles POST /api/data.
func (h *DataHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var in models.ReadingPairInput
	if err := decodeBody(r, w, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, "Data tidak lengkap")
		return
	}
	err := h.facade.SubmitReading(r.Context(), in.Pair())
	switch {
	case errors.Is(err, service.ErrValidation):
		writeMessage(w, http.StatusBadRequest, "Data tidak lengkap")
	case err != nil:
		writeMessage(w, http.StatusInternalServerError, "Gagal simpan data")
	default:
		writeMessage(w, http.StatusOK, "Data panel & beban berhasil disimpan")
	}
}

// Latest handles GET /api/data/latest.
func (h *DataHandlers) Latest(w http.ResponseWriter, r *http.Request) {
	latest, err := h.facade.Latest(r.Context())
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Belum ada data")
	case err != nil:
		writeMessage(w, http.StatusInternalServerError, "Gagal ambil data")
	default:
		writeJSON(w, h.logger, http.StatusOK, latest)
	}
}

// History handles GET /api/history?limit=N.
func (h *DataHandlers) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeMessage(w, http.StatusBadRequest, "limit harus bilangan bulat positif")
			return
		}
		limit = n
	}
	points, err := h.facade.DailyEnergy(r.Context(), limit)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Gagal ambil data energi")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, points)
}

// Dashboard handles GET /api/dashboard/metrics.
func (h *DataHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.facade.DashboardMetrics(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Gagal ambil metrik")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, snapshot)
}

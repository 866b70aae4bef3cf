package handlers

import "net/http"

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, nil, http.StatusOK, map[string]string{"status": "ok"})
}

// Root answers GET / with a plain liveness line.
func Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("PLTS monitoring API is running\n"))
}

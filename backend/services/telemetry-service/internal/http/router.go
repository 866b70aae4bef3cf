package httpserver

import "net/http"

// Routes defines HTTP endpoints.
type Routes struct {
	Root             http.Handler
	SubmitData       http.Handler
	LatestData       http.Handler
	History          http.Handler
	DashboardMetrics http.Handler
	UpdateServo      http.Handler
	Servo            http.Handler
	Session          http.Handler
	AdminStatus      http.Handler
	WebSocket        http.Handler
	Health           http.Handler
	Metrics          http.Handler
}

// Guards wrap routes by audience. Nil guards let everything through.
type Guards struct {
	// Viewer protects dashboard reads and the real-time channel.
	Viewer func(http.Handler) http.Handler
	// Device protects routes the sensor and tracker units post to.
	Device func(http.Handler) http.Handler
	// Admin protects the settings routes. Without it they are not mounted.
	Admin func(http.Handler) http.Handler
	// Instrument records per-route metrics.
	Instrument func(route string, next http.Handler) http.Handler
}

// NewRouter sets up HTTP routing.
func NewRouter(routes Routes, guards Guards) http.Handler {
	mux := http.NewServeMux()

	handle := func(path, verb string, h http.Handler, guard func(http.Handler) http.Handler) {
		if h == nil {
			return
		}
		if guard != nil {
			h = guard(h)
		}
		h = method(verb, h)
		if guards.Instrument != nil {
			h = guards.Instrument(path, h)
		}
		mux.Handle(path, h)
	}

	handle("/api/data", http.MethodPost, routes.SubmitData, guards.Device)
	handle("/api/data/latest", http.MethodGet, routes.LatestData, guards.Viewer)
	handle("/api/history", http.MethodGet, routes.History, guards.Viewer)
	handle("/api/dashboard/metrics", http.MethodGet, routes.DashboardMetrics, guards.Viewer)
	handle("/updateServo", http.MethodPost, routes.UpdateServo, guards.Device)
	handle("/api/servo", http.MethodGet, routes.Servo, nil)
	handle("/api/session", http.MethodGet, routes.Session, nil)
	handle("/health", http.MethodGet, routes.Health, nil)
	if guards.Admin != nil {
		handle("/api/admin/status", http.MethodGet, routes.AdminStatus, guards.Admin)
	}

	// Upgrades and scrapes are left out of request metrics.
	if routes.WebSocket != nil {
		h := routes.WebSocket
		if guards.Viewer != nil {
			h = guards.Viewer(h)
		}
		mux.Handle("/ws", method(http.MethodGet, h))
	}
	if routes.Metrics != nil {
		mux.Handle("/metrics", method(http.MethodGet, routes.Metrics))
	}
	if routes.Root != nil {
		mux.Handle("/", exact("/", method(http.MethodGet, routes.Root)))
	}
	return mux
}

func method(expected string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}

func exact(path string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		handler.ServeHTTP(w, r)
	})
}

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"pltsmonitor/backend/services/telemetry-service/internal/auth"
)

type sessionResponse struct {
	LoggedIn bool   `json:"loggedIn"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// SessionHandler reports who the caller is according to the authorizer.
type SessionHandler struct {
	authorizer auth.Authorizer
	logger     *zap.Logger
}

// NewSessionHandler returns handler.
func NewSessionHandler(a auth.Authorizer, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{authorizer: a, logger: logger}
}

// ServeHTTP handles GET /api/session.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := h.authorizer.Authorize(r)
	if err != nil || id.Anonymous {
		writeJSON(w, h.logger, http.StatusOK, sessionResponse{LoggedIn: false})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, sessionResponse{LoggedIn: true, Username: id.Username, Role: id.Role})
}

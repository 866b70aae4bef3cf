package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pltsmonitor/backend/services/telemetry-service/internal/hub"
)

// Subscriber hands out hub subscriptions.
type Subscriber interface {
	SubscribeTracker() *hub.Subscription
}

// Server upgrades HTTP connections to websockets for tracker viewers.
type Server struct {
	manager      *Manager
	subscriber   Subscriber
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewServer builds ws server.
func NewServer(manager *Manager, subscriber Subscriber, writeTimeout time.Duration, logger *zap.Logger) *Server {
	return &Server{
		manager:      manager,
		subscriber:   subscriber,
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWS is HTTP handler for /ws endpoint.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := s.subscriber.SubscribeTracker()
	connection := NewConnection(conn, sub, s.writeTimeout, s.logger, func(id string) {
		s.manager.Remove(id)
		cancel()
		s.logger.Info("viewer disconnected", zap.String("viewer_id", id))
	})
	s.manager.Add(connection)

	go connection.Start(ctx)
	s.logger.Info("viewer connected", zap.String("viewer_id", connection.ID()), zap.String("remote", r.RemoteAddr))
}

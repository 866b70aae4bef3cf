package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pltsmonitor/backend/services/telemetry-service/internal/hub"
	"pltsmonitor/backend/services/telemetry-service/internal/models"
)

// EventTrackerSample names the event pushed to viewers.
const EventTrackerSample = "trackerSample"

const (
	readLimit   = 4 * 1024
	readTimeout = 90 * time.Second
)

// Event is the frame written to viewers.
type Event struct {
	Event string               `json:"event"`
	Data  models.TrackerSample `json:"data"`
}

// Connection is one viewer's websocket bound to a hub subscription.
type Connection struct {
	id           string
	ws           *websocket.Conn
	sub          *hub.Subscription
	logger       *zap.Logger
	writeTimeout time.Duration
	onClose      func(id string)
	closeOnce    sync.Once
}

// NewConnection builds connection wrapper.
func NewConnection(ws *websocket.Conn, sub *hub.Subscription, writeTimeout time.Duration, logger *zap.Logger, onClose func(string)) *Connection {
	return &Connection{
		id:           sub.ID(),
		ws:           ws,
		sub:          sub,
		logger:       logger,
		writeTimeout: writeTimeout,
		onClose:      onClose,
	}
}

// ID returns identifier.
func (c *Connection) ID() string {
	return c.id
}

// Start launches the write pump and blocks in the read pump until the viewer
// goes away.
func (c *Connection) Start(ctx context.Context) {
	go c.writePump(ctx)
	c.readPump()
}

// readPump only drains control frames; viewers have nothing to say.
func (c *Connection) readPump() {
	defer c.Close()
	c.ws.SetReadLimit(readLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(readTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			c.logger.Debug("viewer read closed", zap.String("viewer_id", c.id), zap.Error(err))
			return
		}
	}
}

func (c *Connection) writePump(ctx context.Context) {
	defer c.Close()
	for {
		sample, err := c.sub.Next(ctx)
		if err != nil {
			return
		}
		payload, err := json.Marshal(Event{Event: EventTrackerSample, Data: sample})
		if err != nil {
			c.logger.Warn("failed to encode tracker sample", zap.Error(err))
			continue
		}
		if err := c.write(websocket.TextMessage, payload); err != nil {
			c.logger.Debug("viewer write failed", zap.String("viewer_id", c.id), zap.Error(err))
			return
		}
	}
}

// Ping sends a ping control frame. Safe to call concurrently with the write pump.
func (c *Connection) Ping() error {
	return c.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(c.writeTimeout))
}

func (c *Connection) write(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(messageType, data)
}

// Close ends the subscription and the socket. Idempotent.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.sub.Close()
		_ = c.ws.Close()
		if c.onClose != nil {
			c.onClose(c.id)
		}
	})
}

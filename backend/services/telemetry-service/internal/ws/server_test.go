package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pltsmonitor/backend/services/telemetry-service/internal/hub"
	"pltsmonitor/backend/services/telemetry-service/internal/models"
)

type hubSubscriber struct{ h *hub.Hub }

func (s hubSubscriber) SubscribeTracker() *hub.Subscription { return s.h.Subscribe() }

func startServer(t *testing.T) (*hub.Hub, *Manager, string) {
	t.Helper()
	h := hub.New(zap.NewNop())
	manager := NewManager(time.Hour)
	srv := NewServer(manager, hubSubscriber{h: h}, time.Second, zap.NewNop())

	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	t.Cleanup(ts.Close)
	return h, manager, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestViewerGetsCurrentSampleThenBroadcasts(t *testing.T) {
	h, _, url := startServer(t)
	h.Publish(models.TrackerSample{ServoX: 30, LDR1: 100, Waktu: "07:00:00"})

	conn := dial(t, url)
	first := readEvent(t, conn)
	assert.Equal(t, EventTrackerSample, first.Event)
	assert.Equal(t, models.TrackerSample{ServoX: 30, LDR1: 100, Waktu: "07:00:00"}, first.Data)

	h.Publish(models.TrackerSample{ServoX: 31, Waktu: "07:00:01"})
	h.Publish(models.TrackerSample{ServoX: 32, Waktu: "07:00:02"})
	assert.Equal(t, 31.0, readEvent(t, conn).Data.ServoX)
	assert.Equal(t, 32.0, readEvent(t, conn).Data.ServoX)
}

func TestTwoViewersSeeSameOrder(t *testing.T) {
	h, manager, url := startServer(t)
	a := dial(t, url)
	b := dial(t, url)
	readEvent(t, a)
	readEvent(t, b)
	assert.Eventually(t, func() bool { return manager.Count() == 2 }, time.Second, 10*time.Millisecond)

	for i := 1; i <= 3; i++ {
		h.Publish(models.TrackerSample{LDR2: float64(i)})
	}
	for i := 1; i <= 3; i++ {
		assert.Equal(t, float64(i), readEvent(t, a).Data.LDR2)
	}
	for i := 1; i <= 3; i++ {
		assert.Equal(t, float64(i), readEvent(t, b).Data.LDR2)
	}
}

func TestDisconnectUnsubscribes(t *testing.T) {
	h, manager, url := startServer(t)
	conn := dial(t, url)
	readEvent(t, conn)
	assert.Eventually(t, func() bool { return h.Stats().Subscribers == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return h.Stats().Subscribers == 0 && manager.Count() == 0
	}, 2*time.Second, 10*time.Millisecond)

	// Publishing with nobody connected is fine.
	h.Publish(models.TrackerSample{ServoY: 1})
}

func TestCloseAllDisconnectsViewers(t *testing.T) {
	h, manager, url := startServer(t)
	conn := dial(t, url)
	readEvent(t, conn)
	assert.Eventually(t, func() bool { return manager.Count() == 1 }, time.Second, 10*time.Millisecond)

	manager.CloseAll()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Eventually(t, func() bool { return h.Stats().Subscribers == 0 }, time.Second, 10*time.Millisecond)
}

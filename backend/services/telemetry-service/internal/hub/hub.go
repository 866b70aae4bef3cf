package hub

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pltsmonitor/backend/services/telemetry-service/internal/models"
)

const defaultQueueSize = 16

// Listener is told about every locally published sample. It runs on the
// publisher's goroutine and must not block.
type Listener func(models.TrackerSample)

// Stats is a point-in-time view of hub counters.
type Stats struct {
	Published   uint64
	Dropped     uint64
	Subscribers int
}

// Hub owns the current tracker sample and fans every new one out to subscribers.
type Hub struct {
	mu          sync.Mutex
	current     models.TrackerSample
	subscribers map[string]*Subscription
	listeners   []Listener

	queueSize int
	now       func() time.Time
	loc       *time.Location
	logger    *zap.Logger

	published atomic.Uint64
	dropped   atomic.Uint64
}

// Option customises Hub.
type Option func(*Hub)

// WithQueueSize bounds how many undelivered samples a subscriber may hold.
func WithQueueSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.queueSize = n
		}
	}
}

// WithClock overrides the clock used to stamp Waktu.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// WithLocation sets the zone Waktu is rendered in.
func WithLocation(loc *time.Location) Option {
	return func(h *Hub) {
		if loc != nil {
			h.loc = loc
		}
	}
}

// New builds a hub seeded with the default sample.
func New(logger *zap.Logger, opts ...Option) *Hub {
	h := &Hub{
		subscribers: make(map[string]*Subscription),
		queueSize:   defaultQueueSize,
		now:         time.Now,
		loc:         time.Local,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.current = models.DefaultTrackerSample(h.now().In(h.loc))
	return h
}

// OnPublish registers a listener for local publishes.
func (h *Hub) OnPublish(l Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, l)
}

// Current returns the latest sample.
func (h *Hub) Current() models.TrackerSample {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Publish replaces the current sample, queues it for every subscriber and
// notifies listeners. It never waits on a subscriber.
func (h *Hub) Publish(sample models.TrackerSample) models.TrackerSample {
	sample, listeners := h.replace(sample)
	for _, l := range listeners {
		l(sample)
	}
	return sample
}

// PublishRemote is Publish for samples that arrived from another instance;
// listeners are skipped so relays do not echo.
func (h *Hub) PublishRemote(sample models.TrackerSample) models.TrackerSample {
	sample, _ = h.replace(sample)
	return sample
}

func (h *Hub) replace(sample models.TrackerSample) (models.TrackerSample, []Listener) {
	if sample.Waktu == "" {
		sample.Waktu = h.now().In(h.loc).Format(models.TimeOfDayLayout)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.current = sample
	h.published.Add(1)
	for _, sub := range h.subscribers {
		if sub.push(sample) {
			h.dropped.Add(1)
			h.logger.Debug("subscriber queue full, dropped oldest sample", zap.String("subscription_id", sub.id))
		}
	}
	return sample, h.listeners
}

// Subscribe registers a subscriber whose first delivery is the current sample.
func (h *Hub) Subscribe() *Subscription {
	sub := newSubscription(uuid.NewString(), h.queueSize, h)

	h.mu.Lock()
	defer h.mu.Unlock()

	sub.push(h.current)
	h.subscribers[sub.id] = sub
	return sub
}

// Unsubscribe removes sub. Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	delete(h.subscribers, sub.id)
	h.mu.Unlock()
	sub.close()
}

// Close drops every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subscribers
	h.subscribers = make(map[string]*Subscription)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}

// Stats returns current counters.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	n := len(h.subscribers)
	h.mu.Unlock()
	return Stats{
		Published:   h.published.Load(),
		Dropped:     h.dropped.Load(),
		Subscribers: n,
	}
}

package hub

import (
	"context"
	"errors"
	"sync"

	"pltsmonitor/backend/services/telemetry-service/internal/models"
)

// ErrSubscriptionClosed is returned by Next once the subscription is gone.
var ErrSubscriptionClosed = errors.New("hub: subscription closed")

// Subscription is one viewer's bounded queue of undelivered samples.
type Subscription struct {
	id  string
	hub *Hub

	mu      sync.Mutex
	queue   []models.TrackerSample
	limit   int
	closed  bool
	dropped uint64

	ready chan struct{}
	done  chan struct{}
}

func newSubscription(id string, limit int, h *Hub) *Subscription {
	return &Subscription{
		id:    id,
		hub:   h,
		queue: make([]models.TrackerSample, 0, limit),
		limit: limit,
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// ID identifies the subscription in logs.
func (s *Subscription) ID() string {
	return s.id
}

// Done is closed when the subscription ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Dropped reports how many samples were discarded for this subscriber.
func (s *Subscription) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// push appends sample, discarding the oldest queued one when full.
// It reports whether something was dropped.
func (s *Subscription) push(sample models.TrackerSample) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	dropped := false
	if len(s.queue) >= s.limit {
		copy(s.queue, s.queue[1:])
		s.queue = s.queue[:len(s.queue)-1]
		s.dropped++
		dropped = true
	}
	s.queue = append(s.queue, sample)
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
	return dropped
}

// Next blocks until a sample is queued, the subscription closes or ctx ends.
// Samples come out in publish order.
func (s *Subscription) Next(ctx context.Context) (models.TrackerSample, error) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			sample := s.queue[0]
			copy(s.queue, s.queue[1:])
			s.queue = s.queue[:len(s.queue)-1]
			s.mu.Unlock()
			return sample, nil
		}
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return models.TrackerSample{}, ErrSubscriptionClosed
		}

		select {
		case <-ctx.Done():
			return models.TrackerSample{}, ctx.Err()
		case <-s.done:
		case <-s.ready:
		}
	}
}

// Close unsubscribes from the hub. Idempotent.
func (s *Subscription) Close() {
	s.hub.Unsubscribe(s)
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.queue = nil
	close(s.done)
}

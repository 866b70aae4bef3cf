package hub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pltsmonitor/backend/services/telemetry-service/internal/models"
)

var testNow = time.Date(2024, 6, 1, 10, 15, 30, 0, time.UTC)

func newTestHub(opts ...Option) *Hub {
	opts = append([]Option{WithClock(func() time.Time { return testNow }), WithLocation(time.UTC)}, opts...)
	return New(zap.NewNop(), opts...)
}

func next(t *testing.T, sub *Subscription) models.TrackerSample {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sample, err := sub.Next(ctx)
	require.NoError(t, err)
	return sample
}

func TestSubscribeDeliversDefaultBeforeFirstPublish(t *testing.T) {
	h := newTestHub()
	sub := h.Subscribe()
	defer sub.Close()

	assert.Equal(t, models.TrackerSample{Waktu: "10:15:30"}, next(t, sub))
}

func TestSubscribeDeliversLatestPublishFirst(t *testing.T) {
	h := newTestHub()
	h.Publish(models.TrackerSample{ServoX: 1})
	h.Publish(models.TrackerSample{ServoX: 2, LDR1: 300})

	sub := h.Subscribe()
	defer sub.Close()

	first := next(t, sub)
	assert.Equal(t, 2.0, first.ServoX)
	assert.Equal(t, 300.0, first.LDR1)
	assert.Equal(t, "10:15:30", first.Waktu)
}

func TestPublishKeepsProvidedWaktu(t *testing.T) {
	h := newTestHub()
	out := h.Publish(models.TrackerSample{Waktu: "08:00:00"})
	assert.Equal(t, "08:00:00", out.Waktu)
	assert.Equal(t, "08:00:00", h.Current().Waktu)
}

func TestSubscribersReceiveEveryPublishInOrder(t *testing.T) {
	h := newTestHub()
	fast := h.Subscribe()
	slow := h.Subscribe()
	defer fast.Close()
	defer slow.Close()

	next(t, fast)
	next(t, slow)

	for i := 1; i <= 5; i++ {
		h.Publish(models.TrackerSample{ServoY: float64(i)})
		assert.Equal(t, float64(i), next(t, fast).ServoY)
	}

	// The slow subscriber catches up afterwards and sees the same order.
	for i := 1; i <= 5; i++ {
		assert.Equal(t, float64(i), next(t, slow).ServoY)
	}
}

func TestStalledSubscriberDropsOldestAndDoesNotBlock(t *testing.T) {
	h := newTestHub(WithQueueSize(2))
	stalled := h.Subscribe()
	healthy := h.Subscribe()
	defer stalled.Close()
	defer healthy.Close()
	next(t, healthy)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= 10; i++ {
			h.Publish(models.TrackerSample{LDR2: float64(i)})
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a stalled subscriber")
	}

	assert.Equal(t, 9.0, next(t, stalled).LDR2)
	assert.Equal(t, 10.0, next(t, stalled).LDR2)
	assert.Equal(t, uint64(9), stalled.Dropped())

	// healthy was drained before publishing and only held two slots too.
	assert.Equal(t, 9.0, next(t, healthy).LDR2)
	assert.Equal(t, 10.0, next(t, healthy).LDR2)

	stats := h.Stats()
	assert.Equal(t, uint64(10), stats.Published)
	assert.Equal(t, uint64(17), stats.Dropped)
	assert.Equal(t, 2, stats.Subscribers)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	h := newTestHub()
	sub := h.Subscribe()

	h.Unsubscribe(sub)
	h.Unsubscribe(sub)
	sub.Close()
	h.Unsubscribe(nil)

	_, err := sub.Next(context.Background())
	assert.ErrorIs(t, err, ErrSubscriptionClosed)
	assert.Equal(t, 0, h.Stats().Subscribers)

	select {
	case <-sub.Done():
	default:
		t.Fatal("done channel not closed")
	}

	// Publishing after removal must not panic or deliver.
	h.Publish(models.TrackerSample{ServoX: 5})
	assert.Equal(t, 5.0, h.Current().ServoX)
}

func TestNextUnblocksOnClose(t *testing.T) {
	h := newTestHub()
	sub := h.Subscribe()
	next(t, sub)

	errCh := make(chan error, 1)
	go func() {
		_, err := sub.Next(context.Background())
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	h.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrSubscriptionClosed)
	case <-time.After(time.Second):
		t.Fatal("Next did not return after Close")
	}
}

func TestNextHonoursContext(t *testing.T) {
	h := newTestHub()
	sub := h.Subscribe()
	defer sub.Close()
	next(t, sub)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := sub.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestListenersSkipRemotePublishes(t *testing.T) {
	h := newTestHub()
	var got []float64
	h.OnPublish(func(s models.TrackerSample) { got = append(got, s.ServoX) })

	h.Publish(models.TrackerSample{ServoX: 1})
	h.PublishRemote(models.TrackerSample{ServoX: 2})
	h.Publish(models.TrackerSample{ServoX: 3})

	assert.Equal(t, []float64{1, 3}, got)
	assert.Equal(t, 3.0, h.Current().ServoX)
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	h := newTestHub(WithQueueSize(4))
	var wg sync.WaitGroup

	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				h.Publish(models.TrackerSample{ServoX: float64(p), ServoY: float64(p)})
			}
		}(p)
	}
	for s := 0; s < 4; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				sub := h.Subscribe()
				sample, err := sub.Next(context.Background())
				assert.NoError(t, err)
				// Never a torn sample.
				assert.Equal(t, sample.ServoX, sample.ServoY)
				sub.Close()
			}
		}()
	}
	wg.Wait()

	current := h.Current()
	assert.Equal(t, current.ServoX, current.ServoY)
	assert.Equal(t, uint64(400), h.Stats().Published)
	assert.Equal(t, 0, h.Stats().Subscribers)
}

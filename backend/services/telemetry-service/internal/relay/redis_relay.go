package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pltsmonitor/backend/services/telemetry-service/internal/models"
)

const (
	outboxSize     = 64
	publishTimeout = 3 * time.Second
)

// RemotePublisher applies samples that originated on another instance.
type RemotePublisher interface {
	PublishRemote(sample models.TrackerSample) models.TrackerSample
}

// Envelope is the pub/sub message body.
type Envelope struct {
	Origin string               `json:"origin"`
	Sample models.TrackerSample `json:"sample"`
}

// Relay mirrors tracker samples between service replicas over a Redis channel,
// so a viewer connected to any replica sees samples posted to any other.
type Relay struct {
	client     *redis.Client
	channel    string
	instanceID string
	target     RemotePublisher
	outbox     chan models.TrackerSample
	logger     *zap.Logger
}

// NewRelay returns relay.
func NewRelay(client *redis.Client, channel string, target RemotePublisher, logger *zap.Logger) *Relay {
	return &Relay{
		client:     client,
		channel:    channel,
		instanceID: uuid.NewString(),
		target:     target,
		outbox:     make(chan models.TrackerSample, outboxSize),
		logger:     logger,
	}
}

// Forward queues a locally published sample for other replicas. It never blocks;
// when the outbox is full the sample is dropped since a newer one will follow.
func (r *Relay) Forward(sample models.TrackerSample) {
	select {
	case r.outbox <- sample:
	default:
		r.logger.Warn("relay outbox full, dropping tracker sample")
	}
}

// Run subscribes to the channel and pumps both directions until ctx ends.
func (r *Relay) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("relay: subscribe %s: %w", r.channel, err)
	}
	r.logger.Info("tracker relay subscribed", zap.String("channel", r.channel), zap.String("instance_id", r.instanceID))

	go r.publishLoop(ctx)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := r.handle([]byte(msg.Payload)); err != nil {
				r.logger.Warn("dropping relay message", zap.Error(err))
			}
		}
	}
}

func (r *Relay) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case sample := <-r.outbox:
			payload, err := r.encode(sample)
			if err != nil {
				r.logger.Warn("failed to encode relay message", zap.Error(err))
				continue
			}
			pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			err = r.client.Publish(pubCtx, r.channel, payload).Err()
			cancel()
			if err != nil {
				r.logger.Warn("failed to publish relay message", zap.String("channel", r.channel), zap.Error(err))
			}
		}
	}
}

func (r *Relay) encode(sample models.TrackerSample) ([]byte, error) {
	return json.Marshal(Envelope{Origin: r.instanceID, Sample: sample})
}

// handle applies a message from another replica and ignores our own echoes.
func (r *Relay) handle(payload []byte) error {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if env.Origin == r.instanceID {
		return nil
	}
	r.target.PublishRemote(env.Sample)
	return nil
}

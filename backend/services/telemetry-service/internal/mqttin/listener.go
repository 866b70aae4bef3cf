package mqttin

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"pltsmonitor/backend/services/telemetry-service/internal/models"
)

const subscribeTimeout = 10 * time.Second

// TrackerPublisher accepts tracker samples.
type TrackerPublisher interface {
	PublishTracker(in models.TrackerInput) models.TrackerSample
}

// Listener feeds tracker samples that the unit publishes over MQTT into the hub.
// It is an alternative to POST /updateServo; both paths end in the same Publish.
type Listener struct {
	topic     string
	publisher TrackerPublisher
	logger    *zap.Logger
}

// NewListener returns listener.
func NewListener(topic string, publisher TrackerPublisher, logger *zap.Logger) *Listener {
	return &Listener{topic: topic, publisher: publisher, logger: logger}
}

// OnConnect subscribes to the tracker topic. Pass it to the client so the
// subscription is restored after reconnects.
func (l *Listener) OnConnect(client paho.Client) {
	token := client.Subscribe(l.topic, 0, l.HandleMessage)
	if !token.WaitTimeout(subscribeTimeout) {
		l.logger.Error("mqtt subscribe timed out", zap.String("topic", l.topic))
		return
	}
	if err := token.Error(); err != nil {
		l.logger.Error("mqtt subscribe failed", zap.String("topic", l.topic), zap.Error(err))
		return
	}
	l.logger.Info("subscribed to tracker topic", zap.String("topic", l.topic))
}

// HandleMessage decodes one payload and publishes it.
func (l *Listener) HandleMessage(_ paho.Client, msg paho.Message) {
	sample, err := l.handle(msg.Payload())
	if err != nil {
		l.logger.Warn("dropping tracker message", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}
	l.logger.Debug("tracker sample received over mqtt",
		zap.Float64("servo_x", sample.ServoX),
		zap.Float64("servo_y", sample.ServoY),
	)
}

func (l *Listener) handle(payload []byte) (models.TrackerSample, error) {
	if len(payload) == 0 {
		return models.TrackerSample{}, errors.New("empty payload")
	}
	var in models.TrackerInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return models.TrackerSample{}, fmt.Errorf("decode tracker payload: %w", err)
	}
	return l.publisher.PublishTracker(in), nil
}

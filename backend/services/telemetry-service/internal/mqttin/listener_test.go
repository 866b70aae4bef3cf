package mqttin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pltsmonitor/backend/services/telemetry-service/internal/models"
)

type recordingPublisher struct {
	inputs []models.TrackerInput
}

func (r *recordingPublisher) PublishTracker(in models.TrackerInput) models.TrackerSample {
	r.inputs = append(r.inputs, in)
	return in.Sample()
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func TestHandleMessagePublishesDecodedSample(t *testing.T) {
	pub := &recordingPublisher{}
	l := NewListener("plts/tracker", pub, zap.NewNop())

	l.HandleMessage(nil, fakeMessage{topic: "plts/tracker", payload: []byte(`{"servoX":120,"servoY":"45","ldr1":900}`)})

	require.Len(t, pub.inputs, 1)
	assert.Equal(t, models.TrackerSample{ServoX: 120, ServoY: 45, LDR1: 900}, pub.inputs[0].Sample())
}

func TestHandleMessageDropsGarbage(t *testing.T) {
	pub := &recordingPublisher{}
	l := NewListener("plts/tracker", pub, zap.NewNop())

	l.HandleMessage(nil, fakeMessage{topic: "plts/tracker", payload: nil})
	l.HandleMessage(nil, fakeMessage{topic: "plts/tracker", payload: []byte(`not json`)})
	l.HandleMessage(nil, fakeMessage{topic: "plts/tracker", payload: []byte(`{"servoX":"left"}`)})

	assert.Empty(t, pub.inputs)
}

package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/AzielCF/az-plant/domains/telemetry"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func newToken(err error, completed bool) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	if completed {
		close(t.done)
	}
	return t
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type publishCall struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	token        *fakeToken
	calls        []publishCall
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	c.calls = append(c.calls, publishCall{topic, qos, retained, payload.([]byte)})
	return c.token
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func TestPublishSendsJSONAtQoS0(t *testing.T) {
	fc := &fakeClient{token: newToken(nil, true)}
	p := newPublisher(fc, "plant/telemetry", "pi-rose")

	rec := telemetry.Record{Temperature: "21.5", SoilMoisture: "612", Pump: "OFF"}
	require.NoError(t, p.Publish(context.Background(), rec))

	require.Len(t, fc.calls, 1)
	call := fc.calls[0]
	assert.Equal(t, "plant/telemetry", call.topic)
	assert.Equal(t, byte(0), call.qos)
	assert.False(t, call.retained)

	var body map[string]any
	require.NoError(t, json.Unmarshal(call.payload, &body))
	assert.Equal(t, "pi-rose", body["device"])
	assert.Equal(t, "21.5", body["temperature"])
	assert.Equal(t, "612", body["soil_moisture"])
	assert.NotContains(t, body, "humidity")

	p.Close()
	assert.True(t, fc.disconnected)
}

func TestPublishReturnsBrokerError(t *testing.T) {
	fc := &fakeClient{token: newToken(errors.New("not connected"), true)}
	p := newPublisher(fc, "plant/telemetry", "pi")

	err := p.Publish(context.Background(), telemetry.Record{})
	assert.ErrorContains(t, err, "not connected")
}

func TestPublishHonoursContext(t *testing.T) {
	fc := &fakeClient{token: newToken(nil, false)}
	p := newPublisher(fc, "plant/telemetry", "pi")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, telemetry.Record{}), context.Canceled)
}

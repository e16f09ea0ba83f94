package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AzielCF/az-plant/core/config"
	"github.com/AzielCF/az-plant/domains/telemetry"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// client is the slice of pahomqtt.Client used here.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
}

type message struct {
	Device string `json:"device"`
	telemetry.Record
}

// Publisher sends each telemetry record as JSON, QoS 0, not retained.
type Publisher struct {
	client client
	topic  string
	device string
}

// NewPublisher connects to the broker. Reconnects are left to paho.
func NewPublisher(cfg config.MQTTConfig) (*Publisher, error) {
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(publishTimeout).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			logrus.WithError(err).Warn("[MQTT] connection lost")
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username).SetPassword(cfg.Password)
	}

	c := pahomqtt.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("mqtt: connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect to %s: %w", cfg.Broker, err)
	}
	logrus.Infof("[MQTT] connected to %s, publishing on %s", cfg.Broker, cfg.Topic)

	return newPublisher(c, cfg.Topic, cfg.ClientID), nil
}

func newPublisher(c client, topic, device string) *Publisher {
	return &Publisher{client: c, topic: topic, device: device}
}

func (p *Publisher) Publish(ctx context.Context, record telemetry.Record) error {
	payload, err := json.Marshal(message{Device: p.device, Record: record})
	if err != nil {
		return fmt.Errorf("mqtt: marshal record: %w", err)
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("mqtt: publish to %s timed out", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: publish to %s: %w", p.topic, err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

const waitTimeout = 5 * time.Second

// Client publishes device messages to the MQTT broker.
type Client struct {
	client paho.Client
	log    *logrus.Logger
}

// NewClient connects to the broker. All publishes use QoS 1 so door
// controllers see at-least-once delivery.
func NewClient(brokerURL, clientID string, log *logrus.Logger) (*Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetConnectTimeout(waitTimeout).
		SetAutoReconnect(true)

	c := paho.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(waitTimeout) {
		return nil, fmt.Errorf("timed out connecting to MQTT broker %s", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", brokerURL, err)
	}

	log.Infof("Connected to MQTT broker %s", brokerURL)
	return &Client{client: c, log: log}, nil
}

// Publish sends a payload to a topic with a bounded wait.
func (c *Client) Publish(topic string, payload []byte) error {
	token := c.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(waitTimeout) {
		return fmt.Errorf("timed out publishing to %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (c *Client) Close() {
	c.client.Disconnect(250)
}

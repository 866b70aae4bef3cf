package mqtt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultKeepAlive      = 30 * time.Second
)

// NewMQTTClient connects a paho client to broker and waits for the CONNACK.
// onConnect runs on every (re)connect, which is where subscriptions belong.
func NewMQTTClient(broker, clientID string, onConnect paho.OnConnectHandler) (paho.Client, error) {
	broker = strings.TrimSpace(broker)
	if broker == "" {
		return nil, errors.New("mqtt: broker is empty")
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetKeepAlive(defaultKeepAlive).
		SetConnectTimeout(defaultConnectTimeout).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if onConnect != nil {
		opts.SetOnConnectHandler(onConnect)
	}

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("mqtt: connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect to %s: %w", broker, err)
	}
	return client, nil
}

package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cepro/metermonitor/telemetry"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const connectTimeout = 5 * time.Second

// summary is the wire shape published per reading, a small headline subset
// rather than the full 81 parameter record.
type summary struct {
	MeterID          string    `json:"meter_id"`
	Timestamp        time.Time `json:"timestamp"`
	TotalActivePower *float64  `json:"total_active_power"`
	Frequency        *float64  `json:"frequency"`
	PowerFactor      *float64  `json:"power_factor"`
}

// Publisher pushes a summary of each stored reading to an MQTT broker, one
// topic per meter under the configured prefix.
type Publisher struct {
	Readings chan telemetry.Reading

	client      mqtt.Client
	topicPrefix string
	logger      *slog.Logger
}

func New(broker, clientID, topicPrefix string) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect to broker %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker %s: %w", broker, err)
	}

	return &Publisher{
		Readings:    make(chan telemetry.Reading, 25),
		client:      client,
		topicPrefix: topicPrefix,
		logger:      slog.Default().With("broker", broker),
	}, nil
}

// Run publishes readings from the channel until the context is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.client.Disconnect(250)
			return
		case reading := <-p.Readings:
			p.publish(reading)
		}
	}
}

func (p *Publisher) publish(reading telemetry.Reading) {
	msg := summary{
		MeterID:          reading.MeterID,
		Timestamp:        reading.Timestamp,
		TotalActivePower: reading.Value("Total_Active_Power"),
		Frequency:        reading.Value("Frequency"),
		PowerFactor:      reading.Value("Total_Power_Factor"),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("Failed to marshal reading summary", "error", err, "meter", reading.MeterID)
		return
	}

	topic := fmt.Sprintf("%s/%s/reading", p.topicPrefix, reading.MeterID)
	token := p.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(connectTimeout) {
		p.logger.Warn("Publish timed out", "topic", topic)
		return
	}
	if err := token.Error(); err != nil {
		p.logger.Error("Failed to publish reading", "error", err, "topic", topic)
	}
}

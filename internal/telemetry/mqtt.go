// Package telemetry publishes periodic camera status to an MQTT broker
// when MQTT_HOST is configured. It is an operational-visibility
// supplement, never required for discovery/adoption/WSS protocol
// correctness.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/sua-org/unifi-cam-emulator/internal/logx"
)

// Config holds the MQTT broker connection parameters.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	ClientID string
	Topic    string
}

// ConfigFromEnv returns (cfg, false) if MQTT_HOST is unset, meaning
// telemetry publishing should stay disabled.
func ConfigFromEnv(defaultClientID string) (Config, bool) {
	host := os.Getenv("MQTT_HOST")
	if host == "" {
		return Config{}, false
	}
	return Config{
		Host:     host,
		Port:     getenvInt("MQTT_PORT", 1883),
		Username: os.Getenv("MQTT_USERNAME"),
		Password: os.Getenv("MQTT_PASSWORD"),
		ClientID: getenv("MQTT_CLIENT_ID", defaultClientID),
		Topic:    getenv("MQTT_STATUS_TOPIC", "unifi-cam-emulator/status"),
	}, true
}

// Publisher periodically publishes a StatusSnapshot to cfg.Topic.
type Publisher struct {
	client mqtt.Client
	topic  string
	log    *logx.Logger
}

// StatusSnapshot is the JSON payload published every interval.
type StatusSnapshot struct {
	MAC           string `json:"mac"`
	UptimeSeconds int    `json:"uptimeSeconds"`
	WSSConnected  bool   `json:"wssConnected"`
	LastSnapshot  string `json:"lastSnapshotAt,omitempty"`
}

// NewPublisher connects to the broker described by cfg.
func NewPublisher(cfg Config, log *logx.Logger) (*Publisher, error) {
	broker := fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(5 * time.Second)
	opts.SetKeepAlive(30 * time.Second)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	cli := mqtt.NewClient(opts)
	token := cli.Connect()
	if ok := token.WaitTimeout(10 * time.Second); !ok {
		return nil, fmt.Errorf("telemetry: mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("telemetry: mqtt connect: %w", err)
	}

	log.Infof("connected to mqtt broker %s, publishing to %s", broker, cfg.Topic)
	return &Publisher{client: cli, topic: cfg.Topic, log: log}, nil
}

// Publish sends one status snapshot with QoS 0, not retained.
func (p *Publisher) Publish(snapshot StatusSnapshot) error {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("telemetry: marshal snapshot: %w", err)
	}
	token := p.client.Publish(p.topic, 0, false, body)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("telemetry: publish: %w", err)
	}
	return nil
}

// Run publishes snapshot() every interval until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context, interval time.Duration, snapshot func() StatusSnapshot) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.Close()
			return
		case <-ticker.C:
			if err := p.Publish(snapshot()); err != nil {
				p.log.Warnf("publish failed: %v", err)
			}
		}
	}
}

func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var x int
		if _, err := fmt.Sscanf(v, "%d", &x); err == nil && x > 0 {
			return x
		}
	}
	return def
}

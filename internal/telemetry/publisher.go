package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/url"
	"time"

	"github.com/eclipse/paho.golang/paho"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

// Publisher publica lecturas y alertas por MQTT para integrarse con
// plataformas IoT externas. Los tópicos son <prefix>/readings y
// <prefix>/alerts, con QoS 1
type Publisher struct {
	client      *paho.Client
	topicPrefix string
	clientID    string
}

// Connect abre la conexión al broker y negocia la sesión MQTT
func Connect(ctx context.Context, cfg config.MQTTConfig) (*Publisher, error) {
	u, err := url.Parse(cfg.BrokerURL)
	if err != nil {
		return nil, fmt.Errorf("telemetry: URL de broker inválida %q: %w", cfg.BrokerURL, err)
	}

	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "1883")
	}

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return nil, fmt.Errorf("telemetry: error conectando al broker %s: %w", host, err)
	}

	client := paho.NewClient(paho.ClientConfig{
		Conn:     conn,
		ClientID: cfg.ClientID,
		OnClientError: func(err error) {
			log.Printf("❌ Error de cliente MQTT: %v", err)
		},
		OnServerDisconnect: func(d *paho.Disconnect) {
			log.Printf("⚠️  Broker MQTT desconectó la sesión (código %d)", d.ReasonCode)
		},
	})

	connAck, err := client.Connect(ctx, &paho.Connect{
		ClientID:   cfg.ClientID,
		CleanStart: true,
		KeepAlive:  30,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("telemetry: CONNECT rechazado: %w", err)
	}
	if connAck.ReasonCode != 0 {
		conn.Close()
		return nil, fmt.Errorf("telemetry: CONNECT rechazado con código %d", connAck.ReasonCode)
	}

	log.Printf("✅ Telemetría MQTT conectada a %s (client_id=%s)", host, cfg.ClientID)

	return &Publisher{
		client:      client,
		topicPrefix: cfg.TopicPrefix,
		clientID:    cfg.ClientID,
	}, nil
}

// PublishReading publica una lectura procesada en <prefix>/readings
func (p *Publisher) PublishReading(ctx context.Context, record models.ReadingRecord) error {
	return p.publishJSON(ctx, p.topicPrefix+"/readings", record)
}

// PublishAlert publica una anomalía (outlier o pico) en <prefix>/alerts
func (p *Publisher) PublishAlert(ctx context.Context, alertType string, record models.ReadingRecord) error {
	payload := map[string]interface{}{
		"type":      alertType,
		"device_id": record.DeviceID,
		"timestamp": record.Reading.Timestamp.Format(time.RFC3339),
		"lux":       record.Reading.LuxValue,
		"filtered":  record.Analysis.FilteredValue,
		"quality":   record.Analysis.QualityScore,
	}
	return p.publishJSON(ctx, p.topicPrefix+"/alerts", payload)
}

// PublishPowerEvent publica una transición de modo de energía
func (p *Publisher) PublishPowerEvent(ctx context.Context, deviceID string, mode models.PowerMode, source models.WakeSource) error {
	payload := map[string]interface{}{
		"device_id": deviceID,
		"timestamp": time.Now().Format(time.RFC3339),
		"mode":      mode,
		"source":    source,
	}
	return p.publishJSON(ctx, p.topicPrefix+"/power", payload)
}

func (p *Publisher) publishJSON(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telemetry: error serializando payload: %w", err)
	}

	_, err = p.client.Publish(ctx, &paho.Publish{
		QoS:     1,
		Topic:   topic,
		Payload: data,
		Properties: &paho.PublishProperties{
			ContentType: "application/json",
		},
	})
	if err != nil {
		return fmt.Errorf("telemetry: error publicando en %s: %w", topic, err)
	}

	return nil
}

// Close envía el DISCONNECT y cierra la conexión
func (p *Publisher) Close(ctx context.Context) error {
	return p.client.Disconnect(&paho.Disconnect{ReasonCode: 0})
}

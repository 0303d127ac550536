package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
)

func TestConnectURLInvalida(t *testing.T) {
	_, err := Connect(context.Background(), config.MQTTConfig{
		BrokerURL: "://broker-invalido",
		ClientID:  "test",
	})
	assert.Error(t, err)
}

func TestConnectBrokerInalcanzable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Puerto 1 local: nadie escucha, el dial falla de inmediato
	_, err := Connect(ctx, config.MQTTConfig{
		BrokerURL: "mqtt://127.0.0.1:1",
		ClientID:  "test",
	})
	assert.Error(t, err)
}

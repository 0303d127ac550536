package listeners

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

func newTestHub(t *testing.T) *WebSocketHub {
	t.Helper()
	hub := NewWebSocketHub()
	go hub.Run()
	return hub
}

// registerTestClient suscribe un cliente sin conexión real y espera a que
// el hub lo procese
func registerTestClient(t *testing.T, hub *WebSocketHub, room string) *Client {
	t.Helper()

	client := &Client{
		ID:       "test-" + room,
		RoomName: room,
		Send:     make(chan []byte, 64),
		Hub:      hub,
	}
	hub.Register <- client

	deadline := time.After(2 * time.Second)
	for {
		if hub.GetRoomStats()[room] > 0 {
			return client
		}
		select {
		case <-deadline:
			t.Fatalf("el hub no registró al cliente de la room %s", room)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func receiveMessage(t *testing.T, client *Client) WebSocketMessage {
	t.Helper()

	select {
	case data := <-client.Send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timeout esperando mensaje del hub")
		return WebSocketMessage{}
	}
}

func TestHubEnrutaLecturasALaRoomReadings(t *testing.T) {
	hub := newTestHub(t)
	readings := registerTestClient(t, hub, RoomReadings)
	alerts := registerTestClient(t, hub, RoomAlerts)

	hub.NotifyReading(testRecord(320))

	msg := receiveMessage(t, readings)
	assert.Equal(t, "reading", msg.Type)
	assert.Equal(t, "light_sensor_001", msg.DeviceID)

	// Una lectura normal no genera alertas
	select {
	case data := <-alerts.Send:
		t.Fatalf("la room de alertas no debía recibir nada, llegó: %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubDuplicaAnomaliasEnAlertas(t *testing.T) {
	hub := newTestHub(t)
	readings := registerTestClient(t, hub, RoomReadings)
	alerts := registerTestClient(t, hub, RoomAlerts)

	record := testRecord(900)
	record.Analysis.IsOutlier = true
	hub.NotifyReading(record)

	assert.Equal(t, "reading", receiveMessage(t, readings).Type)
	assert.Equal(t, "outlier", receiveMessage(t, alerts).Type)
}

func TestHubNotificaEventosDeEnergia(t *testing.T) {
	hub := newTestHub(t)
	alerts := registerTestClient(t, hub, RoomAlerts)

	hub.NotifyPowerEvent("light_sensor_001", models.PowerModeLowPower, models.WakeSourceTimer)

	msg := receiveMessage(t, alerts)
	assert.Equal(t, "power_event", msg.Type)
	assert.Equal(t, "light_sensor_001", msg.DeviceID)
}

func TestHubSinClientesNoBloquea(t *testing.T) {
	hub := newTestHub(t)

	// Sin suscriptores el hub descarta sin encolar
	for i := 0; i < 500; i++ {
		hub.NotifyReading(testRecord(float64(i)))
	}

	assert.Empty(t, hub.GetRoomStats())
}

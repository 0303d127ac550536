package sensor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

func TestSimulatorGeneraLecturas(t *testing.T) {
	cfg := testSensorConfig()
	cfg.Source = "simulator"
	cfg.SampleInterval = "10ms"
	cfg.Oversampling = 4

	sim := NewSimulator(cfg, NewConverter(cfg, models.CalibrationData{}))
	require.NoError(t, sim.Start())
	defer sim.Stop()

	var readings []models.SensorReading
	timeout := time.After(2 * time.Second)

	for len(readings) < 10 {
		select {
		case r := <-sim.Readings():
			readings = append(readings, r)
		case <-timeout:
			t.Fatalf("timeout esperando lecturas, recibidas %d", len(readings))
		}
	}

	for _, r := range readings {
		assert.True(t, r.IsValid)
		assert.GreaterOrEqual(t, r.LuxValue, 0.0)
		assert.GreaterOrEqual(t, r.RawValue, 0.0)
		assert.LessOrEqual(t, r.RawValue, 1.0)
		assert.False(t, r.Timestamp.IsZero())
	}
}

func TestSimulatorStopDetieneGeneracion(t *testing.T) {
	cfg := testSensorConfig()
	cfg.SampleInterval = "10ms"

	sim := NewSimulator(cfg, NewConverter(cfg, models.CalibrationData{}))
	require.NoError(t, sim.Start())
	sim.Stop()

	// Tras Stop el canal termina cerrándose
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sim.Readings():
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("el canal de lecturas no se cerró tras Stop")
		}
	}
}

func TestNewSourcePorConfiguracion(t *testing.T) {
	cases := []struct {
		source  string
		wantErr bool
	}{
		{"simulator", false},
		{"tcp", false},
		{"opcua", false},
		{"serial", true},
	}

	for _, tc := range cases {
		full := config.DefaultConfig()
		full.Sensor.Source = tc.source

		src, err := NewSource(full)
		if tc.wantErr {
			assert.Error(t, err, "source=%s", tc.source)
			continue
		}
		require.NoError(t, err, "source=%s", tc.source)
		assert.NotNil(t, src)
	}
}

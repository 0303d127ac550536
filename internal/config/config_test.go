package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigEsValida(t *testing.T) {
	cfg := DefaultConfig()
	v := cfg.Validate()

	assert.True(t, v.IsValid, "errores: %v", v.Errors)
	assert.Empty(t, v.Errors)
}

func TestLoadConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.DeviceID = "sensor_pruebas"
	cfg.Sensor.Source = "tcp"
	cfg.Sensor.Port = 9200
	cfg.Signal.MovingAverageWindow = 7
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sensor_pruebas", loaded.DeviceID)
	assert.Equal(t, "tcp", loaded.Sensor.Source)
	assert.Equal(t, 9200, loaded.Sensor.Port)
	assert.Equal(t, 7, loaded.Signal.MovingAverageWindow)
}

func TestLoadConfigArchivoInexistente(t *testing.T) {
	_, err := LoadConfig("/no/existe/config.yaml")
	assert.Error(t, err)
}

func TestLoadConfigYAMLInvalido(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roto.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sensor: [esto no es un mapa"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidateDetectaErrores(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sensor.ADCResolution = 24
	cfg.Sensor.ReferenceVoltage = -1
	cfg.Power.LowBatteryThreshold = 2.9 // por debajo del crítico (3.0)
	cfg.Logger.FlushThreshold = cfg.Logger.BufferSize + 1
	cfg.Logger.MinLux = 200
	cfg.Logger.MaxLux = 100

	v := cfg.Validate()

	assert.False(t, v.IsValid)
	assert.Len(t, v.Errors, 5)
}

func TestValidateFuenteDesconocida(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sensor.Source = "modbus"

	v := cfg.Validate()
	assert.False(t, v.IsValid)
}

func TestValidateOPCUARequiereEndpoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sensor.Source = "opcua"
	cfg.Sensor.Endpoint = ""
	cfg.Sensor.RawNodeID = ""

	v := cfg.Validate()
	assert.False(t, v.IsValid)
	assert.Len(t, v.Errors, 2)
}

func TestValidatePostgresSinURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logger.Backend = "postgres"

	v := cfg.Validate()
	assert.False(t, v.IsValid)
}

func TestValidateGeneraAdvertencias(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Signal.MovingAverageWindow = 1
	cfg.Signal.LowPassCutoff = 0
	cfg.Sensor.Oversampling = 0

	v := cfg.Validate()

	assert.True(t, v.IsValid, "las advertencias no deben invalidar la configuración")
	assert.Len(t, v.Warnings, 3)
}

func TestApplyPresetLowPower(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyPreset("low_power"))

	assert.Equal(t, 5*time.Second, cfg.Sensor.GetSampleInterval())
	assert.Equal(t, 1, cfg.Sensor.Oversampling)
	assert.False(t, cfg.Signal.EnableMedianFilter)
	assert.False(t, cfg.Signal.EnableAdaptiveFilter)
	assert.Equal(t, 50, cfg.Logger.BufferSize)
	assert.InDelta(t, 0.2, cfg.Signal.SampleRate, 1e-9)

	v := cfg.Validate()
	assert.True(t, v.IsValid, "errores: %v", v.Errors)
}

func TestApplyPresetHighAccuracy(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyPreset("high_accuracy"))

	assert.Equal(t, 100*time.Millisecond, cfg.Sensor.GetSampleInterval())
	assert.Equal(t, 16, cfg.Sensor.Oversampling)
	assert.Equal(t, 10, cfg.Signal.MovingAverageWindow)
	assert.Equal(t, 1.5, cfg.Signal.OutlierThreshold)
	assert.Equal(t, 80, cfg.Logger.MinQuality)
	assert.InDelta(t, 10.0, cfg.Signal.SampleRate, 1e-9)

	v := cfg.Validate()
	assert.True(t, v.IsValid, "errores: %v", v.Errors)
}

func TestApplyPresetBalancedRestauraDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyPreset("high_accuracy"))
	require.NoError(t, cfg.ApplyPreset("balanced"))

	def := DefaultConfig()
	assert.Equal(t, def.Sensor.SampleInterval, cfg.Sensor.SampleInterval)
	assert.Equal(t, def.Signal, cfg.Signal)
	assert.Equal(t, def.Logger.MinQuality, cfg.Logger.MinQuality)
}

func TestApplyPresetDesconocido(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.ApplyPreset("turbo"))
}

func TestAvailablePresets(t *testing.T) {
	assert.Equal(t, []string{"low_power", "high_accuracy", "balanced", "development"}, AvailablePresets())
}

func TestHTTPAddr(t *testing.T) {
	h := HTTPConfig{Host: "127.0.0.1", Port: 8080}
	assert.Equal(t, "127.0.0.1:8080", h.Addr())
}

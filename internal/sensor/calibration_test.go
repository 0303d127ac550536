package sensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

func testSensorConfig() config.SensorConfig {
	return config.SensorConfig{
		ADCResolution:    10,
		ReferenceVoltage: 3.3,
		DarkOffset:       0.0,
		Sensitivity:      0.004,
	}
}

func TestConvertValorMedio(t *testing.T) {
	conv := NewConverter(testSensorConfig(), models.CalibrationData{})

	// 511.5 cuentas de 1023 = mitad del rango = 1.65V = 412.5 lux
	reading := conv.Convert(511.5)

	require.True(t, reading.IsValid)
	assert.InDelta(t, 1.65, reading.Voltage, 1e-9)
	assert.InDelta(t, 412.5, reading.LuxValue, 1e-9)
	assert.InDelta(t, 0.5, reading.RawValue, 1e-9)
	assert.Equal(t, 50, reading.Quality)
}

func TestConvertRawValueNormalizado(t *testing.T) {
	conv := NewConverter(testSensorConfig(), models.CalibrationData{})

	for _, raw := range []float64{0, 5, 511.5, 1013, 1023} {
		reading := conv.Convert(raw)
		assert.GreaterOrEqual(t, reading.RawValue, 0.0, "raw=%v", raw)
		assert.LessOrEqual(t, reading.RawValue, 1.0, "raw=%v", raw)
	}
}

func TestConvertFueraDeRango(t *testing.T) {
	conv := NewConverter(testSensorConfig(), models.CalibrationData{})

	for _, raw := range []float64{-1, 1024, 99999} {
		reading := conv.Convert(raw)
		assert.False(t, reading.IsValid, "raw=%v debería ser inválido", raw)
		assert.Zero(t, reading.LuxValue)
	}
}

func TestConvertLuxNuncaNegativo(t *testing.T) {
	cfg := testSensorConfig()
	cfg.DarkOffset = 0.5
	conv := NewConverter(cfg, models.CalibrationData{})

	// Voltaje por debajo del offset de oscuridad
	reading := conv.Convert(10)

	require.True(t, reading.IsValid)
	assert.Zero(t, reading.LuxValue)
}

func TestConvertCalidadSenalDebil(t *testing.T) {
	conv := NewConverter(testSensorConfig(), models.CalibrationData{})

	// 5 cuentas ≈ 0.5% del rango: la mitad de la calidad proporcional
	reading := conv.Convert(5)

	require.True(t, reading.IsValid)
	assert.Less(t, reading.Quality, 1)
}

func TestConvertCalidadCercaSaturacion(t *testing.T) {
	conv := NewConverter(testSensorConfig(), models.CalibrationData{})

	// 1013 cuentas ≈ 99% del rango: penalizado por recorte
	reading := conv.Convert(1013)

	require.True(t, reading.IsValid)
	assert.InDelta(t, 79, reading.Quality, 1)
}

func TestConvertOversampledPromedia(t *testing.T) {
	conv := NewConverter(testSensorConfig(), models.CalibrationData{})

	averaged := conv.ConvertOversampled([]float64{500, 510, 520, 530})
	single := conv.Convert(515)

	assert.InDelta(t, single.LuxValue, averaged.LuxValue, 1e-9)
}

func TestConvertOversampledSinMuestras(t *testing.T) {
	conv := NewConverter(testSensorConfig(), models.CalibrationData{})

	reading := conv.ConvertOversampled(nil)
	assert.False(t, reading.IsValid)
}

func TestCalibracionTienePrioridad(t *testing.T) {
	cal := models.CalibrationData{
		Offset:      0.1,
		Sensitivity: 0.002,
		IsValid:     true,
	}
	conv := NewConverter(testSensorConfig(), cal)

	// 1.65V con offset 0.1 y sensibilidad 0.002: (1.65-0.1)/0.002 = 775
	reading := conv.Convert(511.5)
	assert.InDelta(t, 775.0, reading.LuxValue, 1e-9)
}

func TestCalibracionInvalidaSeIgnora(t *testing.T) {
	cal := models.CalibrationData{
		Offset:      0.1,
		Sensitivity: 0.002,
		IsValid:     false,
	}
	conv := NewConverter(testSensorConfig(), cal)

	reading := conv.Convert(511.5)
	assert.InDelta(t, 412.5, reading.LuxValue, 1e-9)
}

func TestRawFromLuxEsInversa(t *testing.T) {
	conv := NewConverter(testSensorConfig(), models.CalibrationData{})

	for _, lux := range []float64{0, 10, 100, 412.5, 800} {
		raw := conv.RawFromLux(lux)
		reading := conv.Convert(raw)
		assert.InDelta(t, lux, reading.LuxValue, 1e-6, "lux=%v", lux)
	}
}

func TestRawFromLuxSatura(t *testing.T) {
	conv := NewConverter(testSensorConfig(), models.CalibrationData{})

	assert.Equal(t, 1023.0, conv.RawFromLux(1e6))
	assert.Equal(t, 0.0, conv.RawFromLux(-5))
}

func TestCalibrateDosPuntos(t *testing.T) {
	cal, err := Calibrate(0.05, 2.05, 500)
	require.NoError(t, err)

	assert.True(t, cal.IsValid)
	assert.Equal(t, "two_point", cal.Method)
	assert.InDelta(t, 0.05, cal.Offset, 1e-9)
	assert.InDelta(t, 0.004, cal.Sensitivity, 1e-9)
	assert.False(t, cal.CalibratedAt.IsZero())
}

func TestCalibrateEntradasInvalidas(t *testing.T) {
	_, err := Calibrate(0.05, 2.05, 0)
	assert.Error(t, err)

	_, err = Calibrate(2.0, 1.0, 500)
	assert.Error(t, err)
}

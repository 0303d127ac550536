package config

import "fmt"

// ApplyPreset ajusta la configuración a un perfil de operación predefinido.
// Los presets parten de la configuración por defecto, así que aplicar uno
// descarta los ajustes manuales previos de las secciones que toca.
func (c *Config) ApplyPreset(name string) error {
	switch name {
	case "low_power":
		c.applyLowPowerPreset()
	case "high_accuracy":
		c.applyHighAccuracyPreset()
	case "balanced":
		c.applyBalancedPreset()
	case "development":
		c.applyDevelopmentPreset()
	default:
		return fmt.Errorf("preset desconocido: %q", name)
	}
	return nil
}

// AvailablePresets retorna los nombres de los presets soportados
func AvailablePresets() []string {
	return []string{"low_power", "high_accuracy", "balanced", "development"}
}

// applyLowPowerPreset minimiza el consumo: muestreo lento, filtros caros
// apagados y buffers pequeños
func (c *Config) applyLowPowerPreset() {
	c.Sensor.SampleInterval = "5s"
	c.Sensor.Oversampling = 1

	c.Signal.MovingAverageWindow = 3
	c.Signal.EnableMedianFilter = false
	c.Signal.EnableAdaptiveFilter = false
	c.Signal.EnablePeakDetection = false
	c.Signal.SampleRate = c.Sensor.SampleRateHz()

	c.Power.SleepTimeout = "10s"
	c.Power.DeepSleepTimeout = "1m"

	c.Logger.BufferSize = 50
	c.Logger.FlushThreshold = 25
}

// applyHighAccuracyPreset maximiza la calidad de señal a costa de consumo
func (c *Config) applyHighAccuracyPreset() {
	c.Sensor.SampleInterval = "100ms"
	c.Sensor.Oversampling = 16

	c.Signal.MovingAverageWindow = 10
	c.Signal.EnableMedianFilter = true
	c.Signal.MedianWindow = 5
	c.Signal.EnableAdaptiveFilter = true
	c.Signal.OutlierThreshold = 1.5
	c.Signal.SampleRate = c.Sensor.SampleRateHz()

	c.Power.SleepTimeout = "5m"
	c.Power.DeepSleepTimeout = "30m"

	c.Logger.BufferSize = 500
	c.Logger.FlushThreshold = 250
	c.Logger.MinQuality = 80
}

// applyBalancedPreset restaura los valores por defecto
func (c *Config) applyBalancedPreset() {
	def := DefaultConfig()
	c.Sensor.SampleInterval = def.Sensor.SampleInterval
	c.Sensor.Oversampling = def.Sensor.Oversampling
	c.Signal = def.Signal
	c.Power = def.Power
	c.Logger.BufferSize = def.Logger.BufferSize
	c.Logger.FlushThreshold = def.Logger.FlushThreshold
	c.Logger.MinQuality = def.Logger.MinQuality
}

// applyDevelopmentPreset habilita todo para depurar: muestreo rápido,
// detectores activos y sin filtrado por calidad
func (c *Config) applyDevelopmentPreset() {
	c.DebugMode = true

	c.Sensor.SampleInterval = "500ms"
	c.Sensor.Oversampling = 4

	c.Signal.EnableMedianFilter = true
	c.Signal.EnableAdaptiveFilter = true
	c.Signal.EnableOutlierRemoval = true
	c.Signal.EnablePeakDetection = true
	c.Signal.EnableTrendDetection = true
	c.Signal.SampleRate = c.Sensor.SampleRateHz()

	c.Power.SleepTimeout = "10m"
	c.Power.DeepSleepTimeout = "1h"

	c.Logger.MinQuality = 0
}

package config

import (
	"fmt"
	"time"
)

// Validation es el resultado de validar una configuración: errores que
// impiden usarla y advertencias que solo merecen un log
type Validation struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addError(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
	v.IsValid = false
}

func (v *Validation) addWarning(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

// Validate revisa la configuración completa sección por sección
func (c *Config) Validate() Validation {
	v := Validation{IsValid: true}

	c.validateSensor(&v)
	c.validatePower(&v)
	c.validateLogger(&v)
	c.validateSignal(&v)

	return v
}

func (c *Config) validateSensor(v *Validation) {
	s := c.Sensor

	switch s.Source {
	case "tcp", "opcua", "simulator":
	default:
		v.addError("sensor: fuente desconocida %q (se espera tcp, opcua o simulator)", s.Source)
	}

	if s.ADCResolution <= 0 || s.ADCResolution > 16 {
		v.addError("sensor: resolución ADC inválida (%d bits)", s.ADCResolution)
	}

	if s.ReferenceVoltage <= 0 || s.ReferenceVoltage > 5.0 {
		v.addError("sensor: voltaje de referencia inválido (%.2fV)", s.ReferenceVoltage)
	}

	if s.Sensitivity <= 0 {
		v.addError("sensor: sensibilidad inválida (%.4f)", s.Sensitivity)
	}

	if _, err := time.ParseDuration(s.SampleInterval); err != nil {
		v.addError("sensor: intervalo de muestreo inválido %q", s.SampleInterval)
	}

	if s.Oversampling <= 0 {
		v.addWarning("sensor: oversampling deshabilitado")
	}

	if s.Source == "tcp" && s.Port <= 0 {
		v.addError("sensor: puerto TCP inválido (%d)", s.Port)
	}

	if s.Source == "opcua" {
		if s.Endpoint == "" {
			v.addError("sensor: endpoint OPC UA vacío")
		}
		if s.RawNodeID == "" {
			v.addError("sensor: raw_node_id OPC UA vacío")
		}
	}
}

func (c *Config) validatePower(v *Validation) {
	p := c.Power

	if p.GetSleepTimeout() <= 0 {
		v.addWarning("power: timeout de sleep deshabilitado")
	}

	if p.LowBatteryThreshold <= p.CriticalBatteryThreshold {
		v.addError("power: el umbral de batería baja debe ser mayor que el crítico")
	}
}

func (c *Config) validateLogger(v *Validation) {
	l := c.Logger

	switch l.Backend {
	case "postgres", "sqlserver", "file":
	default:
		v.addError("logger: backend desconocido %q", l.Backend)
	}

	if l.BufferSize <= 0 {
		v.addError("logger: tamaño de buffer inválido (%d)", l.BufferSize)
	}

	if l.FlushThreshold > l.BufferSize {
		v.addError("logger: el umbral de flush (%d) excede el buffer (%d)", l.FlushThreshold, l.BufferSize)
	}

	if l.MinLux >= l.MaxLux {
		v.addError("logger: rango de lux inválido [%.1f, %.1f]", l.MinLux, l.MaxLux)
	}

	if l.Backend == "postgres" && c.Database.Postgres.URL == "" {
		v.addError("logger: backend postgres sin URL de conexión")
	}
}

func (c *Config) validateSignal(v *Validation) {
	s := c.Signal

	if s.MovingAverageWindow <= 1 {
		v.addWarning("signal: media móvil deshabilitada")
	}

	if s.LowPassCutoff <= 0 {
		v.addWarning("signal: filtro pasa-bajos deshabilitado")
	}

	if s.EnableOutlierRemoval && s.OutlierThreshold <= 0 {
		v.addWarning("signal: umbral de outliers demasiado bajo")
	}

	if s.EnableTrendDetection && s.TrendWindow < 3 {
		v.addError("signal: la ventana de tendencia requiere al menos 3 muestras")
	}

	if s.SampleRate <= 0 {
		v.addError("signal: tasa de muestreo inválida (%.2f Hz)", s.SampleRate)
	}

	if s.EnableAdaptiveFilter && (s.AdaptationRate <= 0 || s.AdaptationRate >= 1) {
		v.addError("signal: tasa de adaptación fuera de rango (0,1)")
	}
}

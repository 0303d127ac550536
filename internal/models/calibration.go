package models

import "time"

// CalibrationData representa los datos de calibración de dos puntos del sensor
type CalibrationData struct {
	DarkReference  float64   `json:"dark_reference" yaml:"dark_reference"`   // Voltaje de referencia en oscuridad
	LightReference float64   `json:"light_reference" yaml:"light_reference"` // Referencia de luz (lux)
	Sensitivity    float64   `json:"sensitivity" yaml:"sensitivity"`         // Sensibilidad calculada (V/lux)
	Offset         float64   `json:"offset" yaml:"offset"`
	CalibratedAt   time.Time `json:"calibrated_at" yaml:"calibrated_at"`
	IsValid        bool      `json:"is_valid" yaml:"is_valid"`
	Method         string    `json:"method" yaml:"method"` // ej: "two_point"
}

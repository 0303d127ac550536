package models

import "time"

// SensorReading representa una lectura individual del sensor de luz.
// Es inmutable una vez creada: el pipeline de señal la consume tal cual
// y la interpretación de IsValid queda en manos del data logger.
type SensorReading struct {
	Timestamp time.Time `json:"timestamp"`
	RawValue  float64   `json:"raw_value"` // Valor del ADC normalizado (0.0 - 1.0)
	LuxValue  float64   `json:"lux_value"` // Valor convertido a lux
	Voltage   float64   `json:"voltage"`   // Voltaje medido (V)
	IsValid   bool      `json:"is_valid"`
	Quality   int       `json:"quality"` // Calidad de la señal (0-100)
}

// SignalAnalysis es el resultado agregado que produce el procesador de señal
// por cada lectura. No tiene identidad propia más allá de la lectura que lo origina.
type SignalAnalysis struct {
	FilteredValue   float64 `json:"filtered_value"`
	NoiseLevel      float64 `json:"noise_level"`
	SignalToNoise   float64 `json:"signal_to_noise_ratio"`
	IsOutlier       bool    `json:"is_outlier"`
	IsPeak          bool    `json:"is_peak"`
	TrendSlope      float64 `json:"trend_slope"`
	TrendConfidence float64 `json:"trend_confidence"` // 0-1
	QualityScore    int     `json:"quality_score"`    // 0-100
}

// ReadingRecord empaqueta una lectura junto con su análisis.
// Es la unidad que se persiste, se publica por MQTT y se emite por WebSocket.
type ReadingRecord struct {
	DeviceID string         `json:"device_id"`
	Reading  SensorReading  `json:"reading"`
	Analysis SignalAnalysis `json:"analysis"`
}

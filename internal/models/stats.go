package models

// DataStats representa las estadísticas acumuladas del data logger
type DataStats struct {
	TotalReadings       int     `json:"total_readings"`
	ValidReadings       int     `json:"valid_readings"`
	FilteredReadings    int     `json:"filtered_readings"` // Descartadas por umbral de lux/calidad
	MinLux              float64 `json:"min_lux"`
	MaxLux              float64 `json:"max_lux"`
	AverageLux          float64 `json:"average_lux"`
	StdDeviation        float64 `json:"std_deviation"`
	BufferOverflowCount int     `json:"buffer_overflow_count"`
	CurrentBufferSize   int     `json:"current_buffer_size"`
}

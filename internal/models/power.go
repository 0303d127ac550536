package models

// PowerMode representa el modo de energía del sistema
type PowerMode string

const (
	PowerModeActive    PowerMode = "ACTIVE"     // Potencia completa, todos los sistemas activos
	PowerModeLowPower  PowerMode = "LOW_POWER"  // Potencia reducida, solo sistemas esenciales
	PowerModeSleep     PowerMode = "SLEEP"      // Modo sleep, despierta por interrupción
	PowerModeDeepSleep PowerMode = "DEEP_SLEEP" // Deep sleep, consumo mínimo
)

// WakeSource representa la fuente de un despertar
type WakeSource string

const (
	WakeSourceTimer       WakeSource = "TIMER"
	WakeSourceLightChange WakeSource = "LIGHT_CHANGE"
	WakeSourceExternal    WakeSource = "EXTERNAL"
	WakeSourceLowBattery  WakeSource = "LOW_BATTERY"
)

// PowerStats representa las estadísticas de consumo de energía
type PowerStats struct {
	TotalActiveTimeMs int64     `json:"total_active_time_ms"`
	TotalSleepTimeMs  int64     `json:"total_sleep_time_ms"`
	WakeCount         int       `json:"wake_count"`
	AverageCurrentMA  float64   `json:"average_current_ma"`
	PeakCurrentMA     float64   `json:"peak_current_ma"`
	BatteryVoltage    float64   `json:"battery_voltage"`
	BatteryPercentage int       `json:"battery_percentage"` // 0-100
	CurrentMode       PowerMode `json:"current_mode"`
}

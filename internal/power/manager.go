package power

import (
	"log"
	"sync"
	"time"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

// Consumo estimado por modo en miliamperios
const (
	currentActiveMA    = 15.0
	currentLowPowerMA  = 5.0
	currentSleepMA     = 0.5
	currentDeepSleepMA = 0.1
)

// Rango útil de una celda LiPo para el cálculo de porcentaje
const (
	batteryEmptyVolt = 3.0
	batteryFullVolt  = 4.2
)

// EventCallback recibe las transiciones de modo y despertares
type EventCallback func(mode models.PowerMode, source models.WakeSource)

// Manager gobierna el modo de energía del sistema según la actividad,
// el nivel de batería y los cambios de luz configurados
type Manager struct {
	mu  sync.Mutex
	cfg config.PowerConfig

	mode           models.PowerMode
	lastActivity   time.Time
	modeChangedAt  time.Time
	batteryVoltage float64
	lastLux        float64
	hasLux         bool

	wakeCount  int
	activeTime time.Duration
	sleepTime  time.Duration
	callback   EventCallback
}

// NewManager crea el gestor en modo activo
func NewManager(cfg config.PowerConfig) *Manager {
	now := time.Now()
	return &Manager{
		cfg:            cfg,
		mode:           models.PowerModeActive,
		lastActivity:   now,
		modeChangedAt:  now,
		batteryVoltage: batteryFullVolt,
	}
}

// Configure reemplaza la sección de energía vigente. La usa el frontend
// al aplicar presets para que los nuevos umbrales rijan de inmediato
func (m *Manager) Configure(cfg config.PowerConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
}

// SetEventCallback registra el callback de transiciones de modo
func (m *Manager) SetEventCallback(cb EventCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callback = cb
}

// Mode retorna el modo de energía actual
func (m *Manager) Mode() models.PowerMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// RecordActivity marca actividad del sistema y despierta si estaba dormido
func (m *Manager) RecordActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastActivity = time.Now()

	if m.mode != models.PowerModeActive {
		m.transitionLocked(models.PowerModeActive, models.WakeSourceExternal)
	}
}

// UpdateBatteryVoltage registra la última medición de batería y fuerza
// modos de ahorro si el nivel es bajo o crítico
func (m *Manager) UpdateBatteryVoltage(voltage float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cfg.EnableBatteryMonitoring || voltage <= 0 {
		return
	}

	m.batteryVoltage = voltage

	if voltage <= m.cfg.CriticalBatteryThreshold {
		if m.mode != models.PowerModeDeepSleep {
			log.Printf("⚠️  Batería crítica (%.2fV): forzando DEEP_SLEEP", voltage)
			m.transitionLocked(models.PowerModeDeepSleep, models.WakeSourceLowBattery)
		}
		return
	}

	if voltage <= m.cfg.LowBatteryThreshold && m.mode == models.PowerModeActive {
		log.Printf("⚠️  Batería baja (%.2fV): bajando a LOW_POWER", voltage)
		m.transitionLocked(models.PowerModeLowPower, models.WakeSourceLowBattery)
	}
}

// ObserveLux evalúa el despertar por cambio de luz. Un cambio relativo
// mayor al umbral configurado despierta el sistema
func (m *Manager) ObserveLux(lux float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasLux {
		m.lastLux = lux
		m.hasLux = true
		return
	}

	previous := m.lastLux
	m.lastLux = lux

	if !m.cfg.EnableWakeOnLight || m.mode == models.PowerModeActive {
		return
	}

	reference := previous
	if reference < 1.0 {
		reference = 1.0
	}

	change := lux - previous
	if change < 0 {
		change = -change
	}

	if change/reference > m.cfg.LightThreshold {
		log.Printf("💡 Cambio de luz detectado (%.1f -> %.1f lux): despertando", previous, lux)
		m.lastActivity = time.Now()
		m.transitionLocked(models.PowerModeActive, models.WakeSourceLightChange)
	}
}

// OptimizePower aplica las transiciones por inactividad. Debe llamarse
// periódicamente desde el loop principal
func (m *Manager) OptimizePower() {
	m.mu.Lock()
	defer m.mu.Unlock()

	// La batería crítica manda: no se sale de DEEP_SLEEP por timeout
	if m.mode == models.PowerModeDeepSleep &&
		m.cfg.EnableBatteryMonitoring && m.batteryVoltage <= m.cfg.CriticalBatteryThreshold {
		return
	}

	idle := time.Since(m.lastActivity)

	switch {
	case idle >= m.cfg.GetDeepSleepTimeout():
		if m.mode != models.PowerModeDeepSleep {
			m.transitionLocked(models.PowerModeDeepSleep, models.WakeSourceTimer)
		}
	case idle >= m.cfg.GetSleepTimeout()*2:
		if m.mode == models.PowerModeActive || m.mode == models.PowerModeLowPower {
			m.transitionLocked(models.PowerModeSleep, models.WakeSourceTimer)
		}
	case idle >= m.cfg.GetSleepTimeout():
		if m.mode == models.PowerModeActive {
			m.transitionLocked(models.PowerModeLowPower, models.WakeSourceTimer)
		}
	}
}

// Stats retorna las estadísticas de consumo acumuladas
func (m *Manager) Stats() models.PowerStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	active, sleep := m.activeTime, m.sleepTime
	if isAwake(m.mode) {
		active += time.Since(m.modeChangedAt)
	} else {
		sleep += time.Since(m.modeChangedAt)
	}

	total := active + sleep
	average := currentActiveMA
	if total > 0 {
		average = (active.Seconds()*currentForMode(models.PowerModeActive) +
			sleep.Seconds()*currentForMode(m.sleepReferenceMode())) / total.Seconds()
	}

	return models.PowerStats{
		TotalActiveTimeMs: active.Milliseconds(),
		TotalSleepTimeMs:  sleep.Milliseconds(),
		WakeCount:         m.wakeCount,
		AverageCurrentMA:  average,
		PeakCurrentMA:     currentActiveMA,
		BatteryVoltage:    m.batteryVoltage,
		BatteryPercentage: batteryPercentage(m.batteryVoltage),
		CurrentMode:       m.mode,
	}
}

// CurrentDrawMA retorna el consumo estimado del modo actual
func (m *Manager) CurrentDrawMA() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return currentForMode(m.mode)
}

// transitionLocked cambia de modo, acumula tiempos y notifica
func (m *Manager) transitionLocked(mode models.PowerMode, source models.WakeSource) {
	if mode == m.mode {
		return
	}

	elapsed := time.Since(m.modeChangedAt)
	if isAwake(m.mode) {
		m.activeTime += elapsed
	} else {
		m.sleepTime += elapsed
	}

	wasAsleep := !isAwake(m.mode)
	m.mode = mode
	m.modeChangedAt = time.Now()

	if wasAsleep && isAwake(mode) {
		m.wakeCount++
	}

	log.Printf("⚡ Modo de energía: %s (origen: %s)", mode, source)

	if m.callback != nil {
		// Notificar fuera del lock no es necesario: el callback es corto
		m.callback(mode, source)
	}
}

// sleepReferenceMode estima qué modo de bajo consumo promedia el tiempo dormido
func (m *Manager) sleepReferenceMode() models.PowerMode {
	if m.mode == models.PowerModeDeepSleep {
		return models.PowerModeDeepSleep
	}
	return models.PowerModeSleep
}

func isAwake(mode models.PowerMode) bool {
	return mode == models.PowerModeActive || mode == models.PowerModeLowPower
}

func currentForMode(mode models.PowerMode) float64 {
	switch mode {
	case models.PowerModeActive:
		return currentActiveMA
	case models.PowerModeLowPower:
		return currentLowPowerMA
	case models.PowerModeSleep:
		return currentSleepMA
	case models.PowerModeDeepSleep:
		return currentDeepSleepMA
	default:
		return currentActiveMA
	}
}

// batteryPercentage mapea el voltaje al rango 0-100 de una celda LiPo
func batteryPercentage(voltage float64) int {
	if voltage <= batteryEmptyVolt {
		return 0
	}
	if voltage >= batteryFullVolt {
		return 100
	}
	return int((voltage - batteryEmptyVolt) / (batteryFullVolt - batteryEmptyVolt) * 100)
}

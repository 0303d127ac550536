package signal

import (
	"sync"

	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

const (
	// recentWindowCapacity es la capacidad de la ventana de valores
	// recientes que alimenta a los detectores
	recentWindowCapacity = 20

	// noiseAlpha es la tasa de aprendizaje del estimador EWMA de ruido
	noiseAlpha = 0.1

	// snrFloor es el piso del denominador del SNR (evita división por cero)
	snrFloor = 0.001

	// initialQuality es la calidad reportada antes de procesar muestras
	initialQuality = 50
)

// Config agrupa los parámetros del pipeline de señal. Es inmutable por
// época: reemplazarla vía Configure resetea todo el estado interno,
// la reconfiguración parcial no está soportada.
type Config struct {
	// Filtrado
	MovingAverageWindow  int     `yaml:"moving_average_window" json:"moving_average_window"`
	EnableMedianFilter   bool    `yaml:"enable_median_filter" json:"enable_median_filter"`
	MedianWindow         int     `yaml:"median_window" json:"median_window"`
	LowPassCutoff        float64 `yaml:"low_pass_cutoff" json:"low_pass_cutoff"` // Hz; <= 0 deshabilita
	SampleRate           float64 `yaml:"sample_rate" json:"sample_rate"`         // Hz
	EnableAdaptiveFilter bool    `yaml:"enable_adaptive_filter" json:"enable_adaptive_filter"`
	AdaptationRate       float64 `yaml:"adaptation_rate" json:"adaptation_rate"`
	NoiseFloor           float64 `yaml:"noise_floor" json:"noise_floor"`

	// Detección
	EnableOutlierRemoval bool    `yaml:"enable_outlier_removal" json:"enable_outlier_removal"`
	OutlierThreshold     float64 `yaml:"outlier_threshold" json:"outlier_threshold"` // Desviaciones estándar
	EnablePeakDetection  bool    `yaml:"enable_peak_detection" json:"enable_peak_detection"`
	PeakThreshold        float64 `yaml:"peak_threshold" json:"peak_threshold"` // Relativo al promedio reciente
	EnableTrendDetection bool    `yaml:"enable_trend_detection" json:"enable_trend_detection"`
	TrendWindow          int     `yaml:"trend_window" json:"trend_window"`
}

// DefaultConfig devuelve la configuración balanceada del pipeline
func DefaultConfig() Config {
	return Config{
		MovingAverageWindow:  5,
		EnableMedianFilter:   true,
		MedianWindow:         3,
		LowPassCutoff:        0.5,
		SampleRate:           1.0,
		EnableAdaptiveFilter: true,
		AdaptationRate:       0.1,
		NoiseFloor:           0.001,
		EnableOutlierRemoval: true,
		OutlierThreshold:     2.0,
		EnablePeakDetection:  false,
		PeakThreshold:        0.1,
		EnableTrendDetection: true,
		TrendWindow:          10,
	}
}

// Processor es el orquestador del pipeline: compone los filtros
// habilitados en orden fijo (media móvil → mediana → pasa-bajos →
// adaptativo), alimenta los detectores con el valor crudo y agrega todo
// en un SignalAnalysis por muestra.
//
// Process y Configure se serializan con un mutex: la reconfiguración es
// atómica respecto del procesamiento de muestras.
type Processor struct {
	mu sync.Mutex

	config Config

	movingAverage *MovingAverageFilter
	median        *MedianFilter
	lowPass       *LowPassFilter
	adaptive      *AdaptiveFilter
	enabled       map[FilterKind]bool

	outlierDetector *OutlierDetector
	peakDetector    *PeakDetector
	trendAnalyzer   *TrendAnalyzer

	recentValues  *RingBuffer
	recentScratch []float64
	noiseEstimate float64
	signalQuality int
}

// NewProcessor crea un procesador con la configuración indicada.
// Todos los buffers quedan pre-asignados en este punto.
func NewProcessor(config Config) *Processor {
	p := &Processor{
		config:          config,
		outlierDetector: NewOutlierDetector(config.OutlierThreshold),
		peakDetector:    NewPeakDetector(config.PeakThreshold),
		trendAnalyzer:   NewTrendAnalyzer(config.TrendWindow),
		recentValues:    NewRingBuffer(recentWindowCapacity),
		recentScratch:   make([]float64, 0, recentWindowCapacity),
		signalQuality:   initialQuality,
	}
	p.initializeFilters()
	return p
}

// initializeFilters construye los cuatro filtros y su estado de
// habilitación inicial según la configuración vigente
func (p *Processor) initializeFilters() {
	cfg := p.config

	p.movingAverage = NewMovingAverageFilter(cfg.MovingAverageWindow)
	p.median = NewMedianFilter(cfg.MedianWindow)
	p.lowPass = NewLowPassFilter(cfg.LowPassCutoff, cfg.SampleRate)
	p.adaptive = NewAdaptiveFilter(cfg.AdaptationRate, cfg.NoiseFloor)

	p.enabled = map[FilterKind]bool{
		FilterMovingAverage: cfg.MovingAverageWindow > 1,
		FilterMedian:        cfg.EnableMedianFilter && cfg.MedianWindow > 1,
		FilterLowPass:       cfg.LowPassCutoff > 0,
		FilterAdaptive:      cfg.EnableAdaptiveFilter,
	}
}

// ProcessReading procesa una lectura y devuelve el análisis agregado.
// Nunca falla: los casos borde (historial insuficiente, varianza cero,
// señal nula) producen valores de fallback bien definidos.
func (p *Processor) ProcessReading(reading models.SensorReading) models.SignalAnalysis {
	p.mu.Lock()
	defer p.mu.Unlock()

	raw := reading.LuxValue

	// Ventana de valores recientes para los detectores
	p.recentValues.Push(raw)
	p.recentScratch = p.recentValues.AppendTo(p.recentScratch)

	var analysis models.SignalAnalysis
	analysis.FilteredValue = p.applyFilters(raw)

	// Estimación de ruido: EWMA de |crudo - filtrado|
	noise := raw - analysis.FilteredValue
	if noise < 0 {
		noise = -noise
	}
	p.noiseEstimate = (1.0-noiseAlpha)*p.noiseEstimate + noiseAlpha*noise

	if p.config.EnableOutlierRemoval {
		analysis.IsOutlier = p.outlierDetector.IsOutlier(raw, p.recentScratch)
	}

	if p.config.EnablePeakDetection {
		analysis.IsPeak = p.peakDetector.IsPeak(raw, p.recentScratch)
	}

	if p.config.EnableTrendDetection {
		trend := p.trendAnalyzer.AnalyzeTrend(raw)
		analysis.TrendSlope = trend.Slope
		analysis.TrendConfidence = trend.Confidence
	}

	analysis.NoiseLevel = p.noiseEstimate
	if analysis.FilteredValue > 0 {
		denom := p.noiseEstimate
		if denom < snrFloor {
			denom = snrFloor
		}
		analysis.SignalToNoise = analysis.FilteredValue / denom
	}

	analysis.QualityScore = calculateQualityScore(analysis)
	p.signalQuality = analysis.QualityScore

	return analysis
}

// applyFilters encadena los filtros habilitados en orden fijo
func (p *Processor) applyFilters(input float64) float64 {
	value := input
	if p.enabled[FilterMovingAverage] {
		value = p.movingAverage.Process(value)
	}
	if p.enabled[FilterMedian] {
		value = p.median.Process(value)
	}
	if p.enabled[FilterLowPass] {
		value = p.lowPass.Process(value)
	}
	if p.enabled[FilterAdaptive] {
		value = p.adaptive.Process(value)
	}
	return value
}

// Configure reemplaza atómicamente la configuración y resetea todo el
// estado interno de filtros y detectores. No hay reconfiguración parcial:
// mezclar estado calculado bajo parámetros distintos no está permitido.
func (p *Processor) Configure(config Config) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.config = config
	p.outlierDetector.SetThreshold(config.OutlierThreshold)
	p.peakDetector.SetThreshold(config.PeakThreshold)
	p.trendAnalyzer.SetWindowSize(config.TrendWindow)

	p.resetLocked()
	p.initializeFilters()
}

// Reset limpia filtros, detectores y ventanas sin cambiar la configuración
func (p *Processor) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
}

func (p *Processor) resetLocked() {
	p.movingAverage.Reset()
	p.median.Reset()
	p.lowPass.Reset()
	p.adaptive.Reset()
	p.peakDetector.Reset()
	p.trendAnalyzer.Reset()

	p.recentValues.Clear()
	p.noiseEstimate = 0
	p.signalQuality = initialQuality
}

// SetFilterEnabled habilita o deshabilita un filtro sin resetear sus
// buffers, para comparar en vivo la contribución de cada filtro
func (p *Processor) SetFilterEnabled(kind FilterKind, enable bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.enabled[kind]; ok {
		p.enabled[kind] = enable
	}
}

// FilterEnabled reporta si un filtro está habilitado
func (p *Processor) FilterEnabled(kind FilterKind) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled[kind]
}

// Config devuelve la configuración vigente
func (p *Processor) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.config
}

// SignalQuality devuelve la calidad de la última muestra procesada (0-100)
func (p *Processor) SignalQuality() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signalQuality
}

// NoiseLevel devuelve la estimación actual del nivel de ruido
func (p *Processor) NoiseLevel() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.noiseEstimate
}

// calculateQualityScore parte de 100 y aplica deducciones por SNR bajo,
// valor atípico y tendencia poco confiable, acotado a [0, 100]
func calculateQualityScore(analysis models.SignalAnalysis) int {
	quality := 100

	if analysis.SignalToNoise < 1.0 {
		quality -= 30
	} else if analysis.SignalToNoise < 2.0 {
		quality -= 15
	}

	if analysis.IsOutlier {
		quality -= 20
	}

	if analysis.TrendConfidence < 0.5 {
		quality -= 10
	}

	if quality < 0 {
		quality = 0
	}
	if quality > 100 {
		quality = 100
	}
	return quality
}

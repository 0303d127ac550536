package signal

import "math"

// minDetectorSamples es el mínimo de valores recientes que necesitan los
// detectores antes de reportar algo distinto del valor de arranque
const minDetectorSamples = 3

// OutlierDetector detecta valores atípicos por z-score contra una
// ventana de valores recientes
type OutlierDetector struct {
	threshold float64 // Umbral en desviaciones estándar
}

// NewOutlierDetector crea un detector con el umbral indicado
func NewOutlierDetector(threshold float64) *OutlierDetector {
	return &OutlierDetector{threshold: threshold}
}

// IsOutlier reporta si value es atípico respecto de recentValues.
// Con menos de 3 valores, o con desviación estándar cero (sin variación,
// evita división por cero), nunca marca.
func (d *OutlierDetector) IsOutlier(value float64, recentValues []float64) bool {
	if len(recentValues) < minDetectorSamples {
		return false
	}

	mean := calculateMean(recentValues)
	stdDev := calculateStdDev(recentValues, mean)
	if stdDev == 0 {
		return false
	}

	zScore := math.Abs(value-mean) / stdDev
	return zScore > d.threshold
}

// SetThreshold cambia el umbral sin tocar el historial de valores
func (d *OutlierDetector) SetThreshold(threshold float64) {
	d.threshold = threshold
}

// PeakDetector detecta máximos locales: la señal venía subiendo y deja
// de subir, con un escalón significativo respecto del promedio reciente
type PeakDetector struct {
	threshold float64
	prevValue float64
	rising    bool
}

// NewPeakDetector crea un detector de picos con el umbral relativo indicado
func NewPeakDetector(threshold float64) *PeakDetector {
	return &PeakDetector{threshold: threshold}
}

// IsPeak reporta si value es un pico. El estado interno (valor anterior,
// bandera rising) se actualiza en cada llamada, se reporte pico o no.
func (d *PeakDetector) IsPeak(value float64, recentValues []float64) bool {
	if len(recentValues) < minDetectorSamples {
		d.rising = value > d.prevValue
		d.prevValue = value
		return false
	}

	currentRising := value > d.prevValue

	// Pico: venía subiendo y ahora no sube
	isPeak := d.rising && !currentRising

	// El escalón debe ser significativo respecto del promedio reciente
	if isPeak {
		change := math.Abs(value - d.prevValue)
		avg := calculateMean(recentValues)
		isPeak = change > avg*d.threshold
	}

	d.rising = currentRising
	d.prevValue = value

	return isPeak
}

// SetThreshold cambia el umbral de detección
func (d *PeakDetector) SetThreshold(threshold float64) {
	d.threshold = threshold
}

// Reset limpia el estado del detector
func (d *PeakDetector) Reset() {
	d.prevValue = 0
	d.rising = false
}

// calculateMean devuelve la media aritmética (0 con slice vacío)
func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateStdDev devuelve la desviación estándar muestral
// (corrección de Bessel, divide por n-1)
func calculateStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sumSquaredDiff := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / float64(len(values)-1))
}

package signal

import "math"

// trendConfidenceGate es la confianza mínima para declarar tendencia
// creciente o decreciente
const trendConfidenceGate = 0.5

// TrendResult es el resultado del análisis de tendencia de una muestra
type TrendResult struct {
	Slope        float64 // Pendiente (cambio por muestra)
	Confidence   float64 // |coeficiente de correlación de Pearson|, 0-1
	IsIncreasing bool
	IsDecreasing bool
}

// TrendAnalyzer calcula la tendencia por regresión lineal incremental
// sobre una ventana deslizante. El eje x es el índice de inserción dentro
// de la ventana (0..n-1), no el tiempo de reloj.
type TrendAnalyzer struct {
	windowSize int
	buffer     *RingBuffer
	scratch    []float64
}

// NewTrendAnalyzer crea un analizador con la ventana indicada
func NewTrendAnalyzer(windowSize int) *TrendAnalyzer {
	if windowSize < 1 {
		windowSize = 1
	}
	if windowSize > maxWindowSize {
		windowSize = maxWindowSize
	}
	return &TrendAnalyzer{
		windowSize: windowSize,
		buffer:     NewRingBuffer(windowSize),
		scratch:    make([]float64, 0, windowSize),
	}
}

// AnalyzeTrend incorpora value a la ventana y devuelve pendiente y
// confianza. Con menos de 3 muestras, o con varianza de x numéricamente
// nula, devuelve resultado cero. Las banderas IsIncreasing/IsDecreasing
// exigen además confianza > 0.5 (convención con compuerta).
func (t *TrendAnalyzer) AnalyzeTrend(value float64) TrendResult {
	t.buffer.Push(value)

	var result TrendResult
	if t.buffer.Len() < minDetectorSamples {
		return result
	}

	t.scratch = t.buffer.AppendTo(t.scratch)
	slope, correlation := linearRegression(t.scratch)

	result.Slope = slope
	result.Confidence = math.Min(math.Abs(correlation), 1.0)
	result.IsIncreasing = slope > 0 && result.Confidence > trendConfidenceGate
	result.IsDecreasing = slope < 0 && result.Confidence > trendConfidenceGate

	return result
}

// SetWindowSize cambia la ventana y resetea el buffer: parámetro y estado
// van acoplados para no mezclar muestras de ventanas distintas
func (t *TrendAnalyzer) SetWindowSize(windowSize int) {
	if windowSize < 1 {
		windowSize = 1
	}
	if windowSize > maxWindowSize {
		windowSize = maxWindowSize
	}
	t.windowSize = windowSize
	t.buffer = NewRingBuffer(windowSize)
	t.scratch = make([]float64, 0, windowSize)
}

// Reset limpia la ventana de muestras
func (t *TrendAnalyzer) Reset() {
	t.buffer.Clear()
}

// linearRegression calcula por mínimos cuadrados la pendiente y el
// coeficiente de correlación de y contra x = 0..n-1
func linearRegression(yValues []float64) (slope, correlation float64) {
	n := len(yValues)
	if n < 2 {
		return 0, 0
	}

	xMean := float64(n-1) / 2.0
	yMean := calculateMean(yValues)

	var numerator, xDenominator, yDenominator float64
	for i, y := range yValues {
		xDiff := float64(i) - xMean
		yDiff := y - yMean

		numerator += xDiff * yDiff
		xDenominator += xDiff * xDiff
		yDenominator += yDiff * yDiff
	}

	if xDenominator == 0 {
		return 0, 0
	}

	slope = numerator / xDenominator
	if yDenominator == 0 {
		return slope, 0
	}
	correlation = numerator / math.Sqrt(xDenominator*yDenominator)

	return slope, correlation
}

package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrendPerfectlyLinearSequence(t *testing.T) {
	// [0,10,20,30,40] con ventana >= 5: pendiente 10 y confianza 1
	ta := NewTrendAnalyzer(5)

	var result TrendResult
	for _, v := range []float64{0, 10, 20, 30, 40} {
		result = ta.AnalyzeTrend(v)
	}

	assert.InDelta(t, 10.0, result.Slope, 1e-9)
	assert.InDelta(t, 1.0, result.Confidence, 1e-9)
	assert.True(t, result.IsIncreasing)
	assert.False(t, result.IsDecreasing)
}

func TestTrendDecreasingSequence(t *testing.T) {
	ta := NewTrendAnalyzer(5)

	var result TrendResult
	for _, v := range []float64{40, 30, 20, 10, 0} {
		result = ta.AnalyzeTrend(v)
	}

	assert.InDelta(t, -10.0, result.Slope, 1e-9)
	assert.False(t, result.IsIncreasing)
	assert.True(t, result.IsDecreasing)
}

func TestTrendInsufficientSamples(t *testing.T) {
	ta := NewTrendAnalyzer(10)

	result := ta.AnalyzeTrend(5)
	assert.Zero(t, result.Slope)
	assert.Zero(t, result.Confidence)

	result = ta.AnalyzeTrend(10)
	assert.Zero(t, result.Slope)
	assert.Zero(t, result.Confidence)
}

func TestTrendConstantInputZeroConfidence(t *testing.T) {
	// Entrada constante: pendiente 0 y varianza de y nula → confianza 0
	ta := NewTrendAnalyzer(8)

	var result TrendResult
	for i := 0; i < 8; i++ {
		result = ta.AnalyzeTrend(7.5)
	}

	assert.Zero(t, result.Slope)
	assert.Zero(t, result.Confidence)
	assert.False(t, result.IsIncreasing)
	assert.False(t, result.IsDecreasing)
}

func TestTrendConfidenceGate(t *testing.T) {
	// Señal con pendiente positiva débil enterrada en alternancia fuerte:
	// la correlación queda baja y la compuerta de confianza apaga las banderas
	ta := NewTrendAnalyzer(10)

	values := []float64{0, 100, 1, 99, 2, 101, 0, 100, 3, 98}
	var result TrendResult
	for _, v := range values {
		result = ta.AnalyzeTrend(v)
	}

	require.Less(t, result.Confidence, trendConfidenceGate)
	assert.False(t, result.IsIncreasing)
	assert.False(t, result.IsDecreasing)
}

func TestTrendRollingWindowEviction(t *testing.T) {
	// Tras llenar la ventana solo cuentan las últimas windowSize muestras
	ta := NewTrendAnalyzer(3)

	ta.AnalyzeTrend(1000)
	ta.AnalyzeTrend(0)
	ta.AnalyzeTrend(10)
	result := ta.AnalyzeTrend(20) // ventana = [0,10,20]

	assert.InDelta(t, 10.0, result.Slope, 1e-9)
	assert.InDelta(t, 1.0, result.Confidence, 1e-9)
}

func TestTrendSetWindowSizeResetsBuffer(t *testing.T) {
	ta := NewTrendAnalyzer(5)
	ta.AnalyzeTrend(1)
	ta.AnalyzeTrend(2)
	ta.AnalyzeTrend(3)

	ta.SetWindowSize(4)

	// El buffer quedó vacío: hacen falta 3 muestras nuevas
	result := ta.AnalyzeTrend(100)
	assert.Zero(t, result.Slope)
	assert.Zero(t, result.Confidence)
}

func TestLinearRegressionDegenerate(t *testing.T) {
	slope, corr := linearRegression(nil)
	assert.Zero(t, slope)
	assert.Zero(t, corr)

	slope, corr = linearRegression([]float64{5})
	assert.Zero(t, slope)
	assert.Zero(t, corr)
}

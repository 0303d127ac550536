package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutlierDetectorNeedsThreeSamples(t *testing.T) {
	d := NewOutlierDetector(2.0)

	assert.False(t, d.IsOutlier(1000, nil))
	assert.False(t, d.IsOutlier(1000, []float64{1}))
	assert.False(t, d.IsOutlier(1000, []float64{1, 2}))
}

func TestOutlierDetectorZeroStdDevNeverFlags(t *testing.T) {
	// Sin variación en la ventana el detector nunca marca,
	// para cualquier umbral positivo
	thresholds := []float64{0.1, 1.0, 2.0, 5.0}
	window := []float64{50, 50, 50, 50, 50}

	for _, th := range thresholds {
		d := NewOutlierDetector(th)
		assert.False(t, d.IsOutlier(9999, window), "umbral %.1f", th)
	}
}

func TestOutlierDetectorZScore(t *testing.T) {
	d := NewOutlierDetector(2.0)

	window := []float64{100, 102, 98, 105, 103, 200}
	// mean ≈ 118, stddev muestral ≈ 40.2 → z(200) ≈ 2.04
	assert.True(t, d.IsOutlier(200, window))
	assert.False(t, d.IsOutlier(110, window))
}

func TestOutlierDetectorSetThreshold(t *testing.T) {
	d := NewOutlierDetector(10.0)
	window := []float64{100, 102, 98, 105, 103, 200}

	assert.False(t, d.IsOutlier(200, window))
	d.SetThreshold(2.0)
	assert.True(t, d.IsOutlier(200, window))
}

func TestPeakDetectorSingleTriangle(t *testing.T) {
	// La secuencia [1,2,3,4,3,2,1] tiene exactamente un pico
	d := NewPeakDetector(0.1)

	sequence := []float64{1, 2, 3, 4, 3, 2, 1}
	recent := make([]float64, 0, len(sequence))

	peaks := 0
	peakIndex := -1
	for i, v := range sequence {
		recent = append(recent, v)
		if d.IsPeak(v, recent) {
			peaks++
			peakIndex = i
		}
	}

	require.Equal(t, 1, peaks)
	// El pico se declara en la primera muestra que deja de subir
	assert.Equal(t, 4, peakIndex)
}

func TestPeakDetectorMagnitudeGate(t *testing.T) {
	// Con umbral relativo alto un escalón chico no cuenta como pico
	d := NewPeakDetector(5.0)

	sequence := []float64{10, 11, 12, 11, 10}
	recent := make([]float64, 0, len(sequence))

	for _, v := range sequence {
		recent = append(recent, v)
		assert.False(t, d.IsPeak(v, recent))
	}
}

func TestPeakDetectorStateUpdatesUnconditionally(t *testing.T) {
	// El estado interno avanza en cada llamada aunque la ventana todavía
	// sea corta; al habilitarse la ventana el detector ya viene "entrenado"
	d := NewPeakDetector(0.01)

	d.IsPeak(1, []float64{1})
	d.IsPeak(5, []float64{1, 5})
	assert.True(t, d.rising)
	assert.Equal(t, 5.0, d.prevValue)

	// Baja con ventana suficiente: pico inmediato
	assert.True(t, d.IsPeak(4, []float64{1, 5, 4}))
}

func TestPeakDetectorReset(t *testing.T) {
	d := NewPeakDetector(0.1)
	d.IsPeak(1, []float64{1})
	d.IsPeak(5, []float64{1, 5})
	d.Reset()

	assert.False(t, d.rising)
	assert.Zero(t, d.prevValue)
}

func TestCalculateStdDevBesselCorrection(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	mean := calculateMean(values)
	require.InDelta(t, 5.0, mean, 1e-12)

	// Suma de cuadrados = 32, n-1 = 7 → sqrt(32/7)
	assert.InDelta(t, 2.13808993, calculateStdDev(values, mean), 1e-6)
}

func TestCalculateStdDevDegenerate(t *testing.T) {
	assert.Zero(t, calculateStdDev(nil, 0))
	assert.Zero(t, calculateStdDev([]float64{3}, 3))
}

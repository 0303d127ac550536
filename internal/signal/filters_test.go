package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverageConvergesToConstant(t *testing.T) {
	// Con entrada constante, la media móvil debe converger exactamente a
	// la constante después de una ventana completa de muestras
	windows := []int{2, 3, 5, 10, 16}
	const c = 42.5

	for _, w := range windows {
		f := NewMovingAverageFilter(w)
		var out float64
		for i := 0; i < w; i++ {
			out = f.Process(c)
		}
		assert.InDelta(t, c, out, 1e-12, "ventana %d", w)
	}
}

func TestMovingAverageRunningSum(t *testing.T) {
	f := NewMovingAverageFilter(3)

	assert.InDelta(t, 1.0, f.Process(1), 1e-12)
	assert.InDelta(t, 1.5, f.Process(2), 1e-12)
	assert.InDelta(t, 2.0, f.Process(3), 1e-12)
	// El 1 se desaloja: (2+3+4)/3
	assert.InDelta(t, 3.0, f.Process(4), 1e-12)
}

func TestMovingAverageWindowOneIsPassThrough(t *testing.T) {
	f := NewMovingAverageFilter(1)
	assert.Equal(t, 7.25, f.Process(7.25))
	assert.Equal(t, -3.0, f.Process(-3.0))
}

func TestMovingAverageReset(t *testing.T) {
	f := NewMovingAverageFilter(4)
	f.Process(10)
	f.Process(20)
	f.Reset()

	// Tras el reset se comporta como recién construido
	assert.InDelta(t, 5.0, f.Process(5), 1e-12)
}

func TestLowPassConvergesToConstant(t *testing.T) {
	// Con cutoff 0.5Hz y muestreo 1Hz, alpha ≈ 0.76: unas pocas
	// constantes de tiempo bastan para converger
	f := NewLowPassFilter(0.5, 1.0)

	const c = 100.0
	var out float64
	for i := 0; i < 50; i++ {
		out = f.Process(c)
	}
	assert.InDelta(t, c, out, 0.01)
}

func TestLowPassAlpha(t *testing.T) {
	// alpha = dt / (RC + dt), RC = 1/(2π·cutoff)
	f := NewLowPassFilter(1.0, 10.0)
	first := f.Process(1.0)

	// Primera salida = alpha*1 + (1-alpha)*0 = alpha
	rc := 1.0 / (2.0 * 3.141592653589793)
	dt := 0.1
	wantAlpha := dt / (rc + dt)
	assert.InDelta(t, wantAlpha, first, 1e-9)
}

func TestLowPassReset(t *testing.T) {
	f := NewLowPassFilter(0.5, 1.0)
	f.Process(50)
	f.Reset()

	g := NewLowPassFilter(0.5, 1.0)
	assert.Equal(t, g.Process(10), f.Process(10))
}

func TestMedianPassThroughBelowThreeSamples(t *testing.T) {
	// Con menos de 3 muestras acumuladas devuelve la entrada sin tocar
	f := NewMedianFilter(5)
	assert.Equal(t, 9.0, f.Process(9))
	assert.Equal(t, 1.0, f.Process(1))
}

func TestMedianOddAndEvenWindows(t *testing.T) {
	f := NewMedianFilter(3)
	f.Process(5)
	f.Process(1)
	assert.Equal(t, 5.0, f.Process(9)) // mediana de [5,1,9]

	// Ventana par: promedio de los dos valores centrales
	g := NewMedianFilter(4)
	g.Process(1)
	g.Process(2)
	assert.Equal(t, 2.0, g.Process(3))
	assert.InDelta(t, 2.5, g.Process(4), 1e-12)
	assert.InDelta(t, 3.5, g.Process(100), 1e-12)
}

func TestMedianMonotonicInputNonDecreasing(t *testing.T) {
	// Sobre una secuencia creciente la mediana en régimen estacionario
	// es no decreciente
	f := NewMedianFilter(5)

	prev := -1.0
	for i := 0; i < 30; i++ {
		out := f.Process(float64(i))
		if i >= 5 {
			require.GreaterOrEqual(t, out, prev)
		}
		prev = out
	}
}

func TestAdaptiveCoefficientBounds(t *testing.T) {
	f := NewAdaptiveFilter(0.5, 0.001)

	// Señal muy ruidosa: el coeficiente sube pero nunca pasa de 0.9
	for i := 0; i < 200; i++ {
		v := 100.0
		if i%2 == 0 {
			v = -100.0
		}
		f.Process(v)
	}
	assert.LessOrEqual(t, f.coefficient, adaptiveCoeffMax)

	// Señal estable: el coeficiente baja pero nunca menos de 0.1
	for i := 0; i < 400; i++ {
		f.Process(f.prevOutput)
	}
	assert.GreaterOrEqual(t, f.coefficient, adaptiveCoeffMin)
}

func TestAdaptiveReset(t *testing.T) {
	f := NewAdaptiveFilter(0.1, 0.001)
	f.Process(10)
	f.Process(-10)
	f.Reset()

	assert.Equal(t, adaptiveCoeffInitial, f.coefficient)
	assert.Zero(t, f.prevOutput)
	assert.Zero(t, f.errorVariance)
}

func TestAdaptiveUpdateParametersKeepsHistory(t *testing.T) {
	f := NewAdaptiveFilter(0.1, 0.001)
	f.Process(10)
	prevOut := f.prevOutput
	prevVar := f.errorVariance

	f.UpdateParameters(0.5, 0.1)

	assert.Equal(t, prevOut, f.prevOutput)
	assert.Equal(t, prevVar, f.errorVariance)
	assert.Equal(t, 0.5, f.adaptationRate)
	assert.Equal(t, 0.1, f.noiseFloor)
}

func TestFilterKindString(t *testing.T) {
	cases := map[FilterKind]string{
		FilterMovingAverage: "moving_average",
		FilterMedian:        "median",
		FilterLowPass:       "low_pass",
		FilterAdaptive:      "adaptive",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())

		parsed, ok := ParseFilterKind(want)
		require.True(t, ok)
		assert.Equal(t, kind, parsed)
	}

	_, ok := ParseFilterKind("butterworth")
	assert.False(t, ok)
}

func TestRingBufferEviction(t *testing.T) {
	rb := NewRingBuffer(3)

	for i := 1; i <= 3; i++ {
		_, wasFull := rb.Push(float64(i))
		assert.False(t, wasFull)
	}

	evicted, wasFull := rb.Push(4)
	require.True(t, wasFull)
	assert.Equal(t, 1.0, evicted)
	assert.Equal(t, []float64{2, 3, 4}, rb.Values())
	assert.Equal(t, 3, rb.Len())
}

func TestRingBufferCapacityClamped(t *testing.T) {
	rb := NewRingBuffer(10000)
	assert.Equal(t, maxWindowSize, rb.Cap())

	rb = NewRingBuffer(0)
	assert.Equal(t, 1, rb.Cap())
}

func TestRingBufferClear(t *testing.T) {
	rb := NewRingBuffer(4)
	rb.Push(1)
	rb.Push(2)
	rb.Clear()

	assert.Zero(t, rb.Len())
	assert.Empty(t, rb.Values())
}

package signal

import (
	"math"
	"sort"
)

// FilterKind identifica cada filtro digital del pipeline.
// El conjunto es cerrado: los cuatro filtros se conocen en compilación.
type FilterKind int

const (
	FilterMovingAverage FilterKind = iota
	FilterMedian
	FilterLowPass
	FilterAdaptive
)

// FilterKinds lista los filtros en el orden en que se aplican
var FilterKinds = []FilterKind{FilterMovingAverage, FilterMedian, FilterLowPass, FilterAdaptive}

// String implementa la interfaz fmt.Stringer
func (k FilterKind) String() string {
	switch k {
	case FilterMovingAverage:
		return "moving_average"
	case FilterMedian:
		return "median"
	case FilterLowPass:
		return "low_pass"
	case FilterAdaptive:
		return "adaptive"
	default:
		return "unknown"
	}
}

// ParseFilterKind convierte el nombre de un filtro a su FilterKind
func ParseFilterKind(name string) (FilterKind, bool) {
	switch name {
	case "moving_average":
		return FilterMovingAverage, true
	case "median":
		return FilterMedian, true
	case "low_pass":
		return FilterLowPass, true
	case "adaptive":
		return FilterAdaptive, true
	default:
		return 0, false
	}
}

// Filter es un filtro digital con estado: consume una muestra y produce
// una muestra filtrada por llamada, con costo acotado y memoria fija.
type Filter interface {
	Process(input float64) float64
	Reset()
	Kind() FilterKind
}

// MovingAverageFilter promedia las últimas window muestras con suma
// corrida para mantener costo O(1) por muestra.
type MovingAverageFilter struct {
	window int
	buffer *RingBuffer
	sum    float64
}

// NewMovingAverageFilter crea un filtro de media móvil.
// Con window <= 1 el filtro degrada a pass-through.
func NewMovingAverageFilter(window int) *MovingAverageFilter {
	if window > maxWindowSize {
		window = maxWindowSize
	}
	f := &MovingAverageFilter{window: window}
	if window > 1 {
		f.buffer = NewRingBuffer(window)
	}
	return f
}

// Process devuelve la media aritmética de las últimas min(window, vistas) entradas
func (f *MovingAverageFilter) Process(input float64) float64 {
	if f.buffer == nil {
		return input
	}
	evicted, wasFull := f.buffer.Push(input)
	f.sum += input
	if wasFull {
		f.sum -= evicted
	}
	return f.sum / float64(f.buffer.Len())
}

// Reset limpia el buffer y la suma corrida
func (f *MovingAverageFilter) Reset() {
	if f.buffer != nil {
		f.buffer.Clear()
	}
	f.sum = 0
}

// Kind devuelve el tipo de filtro
func (f *MovingAverageFilter) Kind() FilterKind { return FilterMovingAverage }

// LowPassFilter es un filtro IIR de primer orden (un solo polo)
type LowPassFilter struct {
	cutoffFreq float64
	sampleRate float64
	alpha      float64
	prevOutput float64
}

// NewLowPassFilter crea un filtro pasa-bajos con la frecuencia de corte (Hz)
// y la tasa de muestreo (Hz) indicadas
func NewLowPassFilter(cutoffFreq, sampleRate float64) *LowPassFilter {
	f := &LowPassFilter{cutoffFreq: cutoffFreq, sampleRate: sampleRate}
	if cutoffFreq > 0 && sampleRate > 0 {
		rc := 1.0 / (2.0 * math.Pi * cutoffFreq)
		dt := 1.0 / sampleRate
		f.alpha = dt / (rc + dt)
	} else {
		f.alpha = 1.0 // sin suavizado
	}
	return f
}

// Process aplica y = alpha*x + (1-alpha)*y_prev
func (f *LowPassFilter) Process(input float64) float64 {
	f.prevOutput = f.alpha*input + (1.0-f.alpha)*f.prevOutput
	return f.prevOutput
}

// Reset descarta la salida anterior
func (f *LowPassFilter) Reset() {
	f.prevOutput = 0
}

// Kind devuelve el tipo de filtro
func (f *LowPassFilter) Kind() FilterKind { return FilterLowPass }

// MedianFilter devuelve la mediana de las últimas window muestras.
// El ordenamiento se hace sobre una copia de trabajo en cada llamada;
// con ventanas pequeñas el peor caso O(window²) es aceptable.
type MedianFilter struct {
	window  int
	buffer  *RingBuffer
	scratch []float64
}

// NewMedianFilter crea un filtro de mediana con la ventana indicada
func NewMedianFilter(window int) *MedianFilter {
	if window > maxWindowSize {
		window = maxWindowSize
	}
	if window < 1 {
		window = 1
	}
	return &MedianFilter{
		window:  window,
		buffer:  NewRingBuffer(window),
		scratch: make([]float64, 0, window),
	}
}

// Process devuelve la mediana de la ventana. Con menos de 3 muestras
// acumuladas devuelve la entrada sin tocar (política deliberada de
// arranque, no un bug).
func (f *MedianFilter) Process(input float64) float64 {
	f.buffer.Push(input)

	if f.buffer.Len() < 3 {
		return input
	}

	f.scratch = f.buffer.AppendTo(f.scratch)
	sort.Float64s(f.scratch)

	n := len(f.scratch)
	if n%2 == 0 {
		return (f.scratch[n/2-1] + f.scratch[n/2]) / 2.0
	}
	return f.scratch[n/2]
}

// Reset limpia el buffer
func (f *MedianFilter) Reset() {
	f.buffer.Clear()
}

// Kind devuelve el tipo de filtro
func (f *MedianFilter) Kind() FilterKind { return FilterMedian }

// Límites del coeficiente del filtro adaptativo
const (
	adaptiveCoeffMin     = 0.1
	adaptiveCoeffMax     = 0.9
	adaptiveCoeffInitial = 0.5
)

// AdaptiveFilter mantiene una estimación exponencial de la varianza del
// error entre la entrada y su propia salida anterior. Cuando la varianza
// supera el piso de ruido configurado el filtro se vuelve más reactivo
// (menos suavizado) y en caso contrario más suave.
type AdaptiveFilter struct {
	adaptationRate float64
	noiseFloor     float64
	coefficient    float64
	prevOutput     float64
	errorVariance  float64
}

// NewAdaptiveFilter crea un filtro adaptativo con la tasa de adaptación
// y el piso de ruido indicados
func NewAdaptiveFilter(adaptationRate, noiseFloor float64) *AdaptiveFilter {
	return &AdaptiveFilter{
		adaptationRate: adaptationRate,
		noiseFloor:     noiseFloor,
		coefficient:    adaptiveCoeffInitial,
	}
}

// Process actualiza la varianza del error, ajusta el coeficiente en pasos
// de ±rate*0.1 acotado a [0.1, 0.9] y produce la salida suavizada
func (f *AdaptiveFilter) Process(input float64) float64 {
	err := input - f.prevOutput
	f.errorVariance = (1.0-f.adaptationRate)*f.errorVariance + f.adaptationRate*err*err

	if f.errorVariance > f.noiseFloor {
		f.coefficient = math.Min(adaptiveCoeffMax, f.coefficient+f.adaptationRate*0.1)
	} else {
		f.coefficient = math.Max(adaptiveCoeffMin, f.coefficient-f.adaptationRate*0.1)
	}

	f.prevOutput = f.coefficient*input + (1.0-f.coefficient)*f.prevOutput
	return f.prevOutput
}

// Reset restaura el coeficiente a 0.5 y limpia el historial
func (f *AdaptiveFilter) Reset() {
	f.coefficient = adaptiveCoeffInitial
	f.prevOutput = 0
	f.errorVariance = 0
}

// UpdateParameters cambia los parámetros sin resetear el historial
func (f *AdaptiveFilter) UpdateParameters(adaptationRate, noiseFloor float64) {
	f.adaptationRate = adaptationRate
	f.noiseFloor = noiseFloor
}

// Kind devuelve el tipo de filtro
func (f *AdaptiveFilter) Kind() FilterKind { return FilterAdaptive }

package signal

// maxWindowSize es la capacidad máxima permitida para cualquier ventana
// de filtro o detector. Acota la memoria en hardware restringido.
const maxWindowSize = 64

// RingBuffer es un buffer circular acotado de valores float64.
// La capacidad se fija en la construcción y nunca crece: al insertar
// con el buffer lleno se desaloja el elemento más antiguo (FIFO).
type RingBuffer struct {
	values []float64
	head   int // Índice del elemento más antiguo
	size   int
}

// NewRingBuffer crea un buffer con la capacidad indicada, pre-asignado.
// La capacidad se acota a [1, maxWindowSize].
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	if capacity > maxWindowSize {
		capacity = maxWindowSize
	}
	return &RingBuffer{values: make([]float64, capacity)}
}

// Push inserta un valor. Si el buffer está lleno devuelve el valor
// desalojado y evicted=true.
func (r *RingBuffer) Push(value float64) (evicted float64, wasFull bool) {
	if r.size == len(r.values) {
		evicted = r.values[r.head]
		r.values[r.head] = value
		r.head = (r.head + 1) % len(r.values)
		return evicted, true
	}
	r.values[(r.head+r.size)%len(r.values)] = value
	r.size++
	return 0, false
}

// Len devuelve la cantidad de elementos almacenados
func (r *RingBuffer) Len() int {
	return r.size
}

// Cap devuelve la capacidad fija del buffer
func (r *RingBuffer) Cap() int {
	return len(r.values)
}

// At devuelve el elemento en la posición i (0 = más antiguo)
func (r *RingBuffer) At(i int) float64 {
	return r.values[(r.head+i)%len(r.values)]
}

// AppendTo copia los valores en orden de inserción sobre dst (reutilizable
// como scratch buffer para evitar asignaciones por muestra)
func (r *RingBuffer) AppendTo(dst []float64) []float64 {
	dst = dst[:0]
	for i := 0; i < r.size; i++ {
		dst = append(dst, r.At(i))
	}
	return dst
}

// Values devuelve una copia de los valores en orden de inserción
func (r *RingBuffer) Values() []float64 {
	return r.AppendTo(make([]float64, 0, r.size))
}

// Clear vacía el buffer sin liberar la memoria pre-asignada
func (r *RingBuffer) Clear() {
	r.head = 0
	r.size = 0
}

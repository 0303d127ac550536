package storage

import (
	"context"
	"log"
	"math"
	"sync"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

// DataLogger acumula registros en memoria y los vuelca al backend cuando
// el buffer alcanza el umbral de flush. Filtra lecturas inválidas o fuera
// de los umbrales configurados y mantiene estadísticas acumuladas
type DataLogger struct {
	mu      sync.Mutex
	backend Storage

	deviceID       string
	bufferSize     int
	flushThreshold int
	minLux         float64
	maxLux         float64
	minQuality     int

	buffer []models.ReadingRecord

	// Estadísticas acumuladas sobre las lecturas aceptadas
	stats    models.DataStats
	luxSum   float64
	luxSqSum float64
}

// NewDataLogger crea el logger sobre el backend indicado
func NewDataLogger(deviceID string, cfg config.LoggerConfig, backend Storage) *DataLogger {
	return &DataLogger{
		backend:        backend,
		deviceID:       deviceID,
		bufferSize:     cfg.BufferSize,
		flushThreshold: cfg.FlushThreshold,
		minLux:         cfg.MinLux,
		maxLux:         cfg.MaxLux,
		minQuality:     cfg.MinQuality,
		buffer:         make([]models.ReadingRecord, 0, cfg.BufferSize),
		stats: models.DataStats{
			MinLux: math.Inf(1),
			MaxLux: math.Inf(-1),
		},
	}
}

// Log registra una lectura analizada. Retorna true si fue aceptada en el
// buffer y false si fue filtrada o descartada por overflow
func (d *DataLogger) Log(ctx context.Context, reading models.SensorReading, analysis models.SignalAnalysis) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.TotalReadings++

	if !d.accepts(reading, analysis) {
		d.stats.FilteredReadings++
		return false
	}

	if len(d.buffer) >= d.bufferSize {
		// Buffer lleno y el backend no da abasto: descartar la más antigua.
		// El corrimiento con copy conserva el arreglo preasignado
		d.stats.BufferOverflowCount++
		copy(d.buffer, d.buffer[1:])
		d.buffer = d.buffer[:len(d.buffer)-1]
	}

	d.buffer = append(d.buffer, models.ReadingRecord{
		DeviceID: d.deviceID,
		Reading:  reading,
		Analysis: analysis,
	})

	d.stats.ValidReadings++
	d.updateLuxStats(reading.LuxValue)
	d.stats.CurrentBufferSize = len(d.buffer)

	if len(d.buffer) >= d.flushThreshold {
		d.flushLocked(ctx)
	}

	return true
}

// Configure actualiza los umbrales de filtrado y flush. La usa el
// frontend al aplicar presets; el backend no cambia en caliente
func (d *DataLogger) Configure(cfg config.LoggerConfig) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.bufferSize = cfg.BufferSize
	d.flushThreshold = cfg.FlushThreshold
	d.minLux = cfg.MinLux
	d.maxLux = cfg.MaxLux
	d.minQuality = cfg.MinQuality

	for len(d.buffer) > d.bufferSize {
		d.stats.BufferOverflowCount++
		copy(d.buffer, d.buffer[1:])
		d.buffer = d.buffer[:len(d.buffer)-1]
	}
	d.stats.CurrentBufferSize = len(d.buffer)
}

// Flush vuelca el buffer al backend inmediatamente
func (d *DataLogger) Flush(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flushLocked(ctx)
}

// Stats retorna una copia de las estadísticas acumuladas
func (d *DataLogger) Stats() models.DataStats {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := d.stats
	if stats.ValidReadings == 0 {
		stats.MinLux = 0
		stats.MaxLux = 0
	}
	return stats
}

// ResetStats reinicia las estadísticas sin tocar el buffer
func (d *DataLogger) ResetStats() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats = models.DataStats{
		MinLux:            math.Inf(1),
		MaxLux:            math.Inf(-1),
		CurrentBufferSize: len(d.buffer),
	}
	d.luxSum = 0
	d.luxSqSum = 0
}

// Close vuelca lo pendiente y cierra el backend
func (d *DataLogger) Close(ctx context.Context) error {
	if err := d.Flush(ctx); err != nil {
		log.Printf("⚠️  Error volcando buffer al cerrar: %v", err)
	}
	return d.backend.Close()
}

// accepts decide si una lectura pasa los filtros de persistencia
func (d *DataLogger) accepts(reading models.SensorReading, analysis models.SignalAnalysis) bool {
	if !reading.IsValid {
		return false
	}
	if reading.LuxValue < d.minLux || reading.LuxValue > d.maxLux {
		return false
	}
	if analysis.QualityScore < d.minQuality {
		return false
	}
	return true
}

func (d *DataLogger) flushLocked(ctx context.Context) error {
	if len(d.buffer) == 0 {
		return nil
	}

	if err := d.backend.WriteBatch(ctx, d.buffer); err != nil {
		// El buffer se conserva: se reintenta en el próximo flush
		log.Printf("⚠️  Error persistiendo lote de %d lecturas: %v", len(d.buffer), err)
		return err
	}

	d.buffer = d.buffer[:0]
	d.stats.CurrentBufferSize = 0
	return nil
}

// updateLuxStats actualiza min/max/promedio/desviación con una lectura nueva
func (d *DataLogger) updateLuxStats(lux float64) {
	if lux < d.stats.MinLux {
		d.stats.MinLux = lux
	}
	if lux > d.stats.MaxLux {
		d.stats.MaxLux = lux
	}

	d.luxSum += lux
	d.luxSqSum += lux * lux

	n := float64(d.stats.ValidReadings)
	d.stats.AverageLux = d.luxSum / n

	if d.stats.ValidReadings > 1 {
		variance := (d.luxSqSum - d.luxSum*d.luxSum/n) / (n - 1)
		if variance < 0 {
			variance = 0
		}
		d.stats.StdDeviation = math.Sqrt(variance)
	}
}

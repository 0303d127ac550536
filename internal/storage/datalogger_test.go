package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

// memoryBackend acumula los lotes escritos para inspección en tests
type memoryBackend struct {
	batches [][]models.ReadingRecord
	failing bool
	closed  bool
}

func (m *memoryBackend) WriteBatch(_ context.Context, records []models.ReadingRecord) error {
	if m.failing {
		return errors.New("backend caído")
	}
	batch := make([]models.ReadingRecord, len(records))
	copy(batch, records)
	m.batches = append(m.batches, batch)
	return nil
}

func (m *memoryBackend) Close() error {
	m.closed = true
	return nil
}

func (m *memoryBackend) totalRecords() int {
	total := 0
	for _, b := range m.batches {
		total += len(b)
	}
	return total
}

func testLoggerConfig() config.LoggerConfig {
	return config.LoggerConfig{
		Backend:        "file",
		BufferSize:     10,
		FlushThreshold: 5,
		MinLux:         0,
		MaxLux:         1000,
		MinQuality:     30,
	}
}

func validReading(lux float64) models.SensorReading {
	return models.SensorReading{
		Timestamp: time.Now(),
		RawValue:  lux / 2,
		LuxValue:  lux,
		Voltage:   1.0,
		IsValid:   true,
		Quality:   80,
	}
}

func goodAnalysis() models.SignalAnalysis {
	return models.SignalAnalysis{FilteredValue: 100, QualityScore: 90}
}

func TestDataLoggerFlushPorUmbral(t *testing.T) {
	backend := &memoryBackend{}
	logger := NewDataLogger("dev01", testLoggerConfig(), backend)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		assert.True(t, logger.Log(ctx, validReading(100), goodAnalysis()))
	}
	assert.Empty(t, backend.batches, "no debe volcar antes del umbral")

	logger.Log(ctx, validReading(100), goodAnalysis())

	require.Len(t, backend.batches, 1)
	assert.Len(t, backend.batches[0], 5)
	assert.Equal(t, "dev01", backend.batches[0][0].DeviceID)
	assert.Equal(t, 0, logger.Stats().CurrentBufferSize)
}

func TestDataLoggerFiltraInvalidas(t *testing.T) {
	backend := &memoryBackend{}
	logger := NewDataLogger("dev01", testLoggerConfig(), backend)
	ctx := context.Background()

	invalid := validReading(100)
	invalid.IsValid = false
	assert.False(t, logger.Log(ctx, invalid, goodAnalysis()))

	outOfRange := validReading(5000)
	assert.False(t, logger.Log(ctx, outOfRange, goodAnalysis()))

	lowQuality := goodAnalysis()
	lowQuality.QualityScore = 10
	assert.False(t, logger.Log(ctx, validReading(100), lowQuality))

	stats := logger.Stats()
	assert.Equal(t, 3, stats.TotalReadings)
	assert.Equal(t, 3, stats.FilteredReadings)
	assert.Equal(t, 0, stats.ValidReadings)
}

func TestDataLoggerEstadisticas(t *testing.T) {
	backend := &memoryBackend{}
	logger := NewDataLogger("dev01", testLoggerConfig(), backend)
	ctx := context.Background()

	for _, lux := range []float64{100, 200, 300} {
		logger.Log(ctx, validReading(lux), goodAnalysis())
	}

	stats := logger.Stats()
	assert.Equal(t, 3, stats.ValidReadings)
	assert.Equal(t, 100.0, stats.MinLux)
	assert.Equal(t, 300.0, stats.MaxLux)
	assert.InDelta(t, 200.0, stats.AverageLux, 1e-9)
	assert.InDelta(t, 100.0, stats.StdDeviation, 1e-9)
}

func TestDataLoggerStatsSinLecturas(t *testing.T) {
	logger := NewDataLogger("dev01", testLoggerConfig(), &memoryBackend{})

	stats := logger.Stats()
	assert.Zero(t, stats.MinLux)
	assert.Zero(t, stats.MaxLux)
	assert.Zero(t, stats.AverageLux)
}

func TestDataLoggerOverflowDescartaAntigua(t *testing.T) {
	cfg := testLoggerConfig()
	cfg.BufferSize = 3
	cfg.FlushThreshold = 100 // nunca vuelca solo

	backend := &memoryBackend{failing: true}
	logger := NewDataLogger("dev01", cfg, backend)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		logger.Log(ctx, validReading(float64(100+i)), goodAnalysis())
	}

	stats := logger.Stats()
	assert.Equal(t, 2, stats.BufferOverflowCount)
	assert.Equal(t, 3, stats.CurrentBufferSize)
}

func TestDataLoggerOverflowConservaCapacidad(t *testing.T) {
	cfg := testLoggerConfig()
	cfg.BufferSize = 4
	cfg.FlushThreshold = 100

	backend := &memoryBackend{failing: true}
	logger := NewDataLogger("dev01", cfg, backend)
	ctx := context.Background()

	// Muchos ciclos de overflow no deben abandonar el arreglo preasignado
	for i := 0; i < 200; i++ {
		logger.Log(ctx, validReading(float64(i%500)), goodAnalysis())
	}

	logger.mu.Lock()
	bufCap := cap(logger.buffer)
	logger.mu.Unlock()

	assert.Equal(t, cfg.BufferSize, bufCap)
	assert.Equal(t, 4, logger.Stats().CurrentBufferSize)
}

func TestDataLoggerConfigureAjustaUmbrales(t *testing.T) {
	backend := &memoryBackend{}
	logger := NewDataLogger("dev01", testLoggerConfig(), backend)
	ctx := context.Background()

	// Con el mínimo de calidad original la lectura pasa
	require.True(t, logger.Log(ctx, validReading(100), goodAnalysis()))

	updated := testLoggerConfig()
	updated.MinQuality = 95
	logger.Configure(updated)

	// Con el nuevo mínimo la misma lectura queda filtrada
	assert.False(t, logger.Log(ctx, validReading(100), goodAnalysis()))
	assert.Equal(t, 1, logger.Stats().FilteredReadings)
}

func TestDataLoggerConfigureRecortaBuffer(t *testing.T) {
	cfg := testLoggerConfig()
	cfg.FlushThreshold = 100

	backend := &memoryBackend{failing: true}
	logger := NewDataLogger("dev01", cfg, backend)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		logger.Log(ctx, validReading(float64(100+i)), goodAnalysis())
	}

	smaller := cfg
	smaller.BufferSize = 2
	logger.Configure(smaller)

	stats := logger.Stats()
	assert.Equal(t, 2, stats.CurrentBufferSize)
	assert.Equal(t, 4, stats.BufferOverflowCount)
}

func TestDataLoggerConservaBufferSiBackendFalla(t *testing.T) {
	backend := &memoryBackend{failing: true}
	logger := NewDataLogger("dev01", testLoggerConfig(), backend)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		logger.Log(ctx, validReading(100), goodAnalysis())
	}

	// El flush falló pero las lecturas siguen en el buffer
	assert.Equal(t, 5, logger.Stats().CurrentBufferSize)

	// Al recuperarse el backend, el siguiente flush entrega todo
	backend.failing = false
	require.NoError(t, logger.Flush(ctx))
	assert.Equal(t, 5, backend.totalRecords())
	assert.Equal(t, 0, logger.Stats().CurrentBufferSize)
}

func TestDataLoggerResetStats(t *testing.T) {
	backend := &memoryBackend{}
	logger := NewDataLogger("dev01", testLoggerConfig(), backend)
	ctx := context.Background()

	logger.Log(ctx, validReading(100), goodAnalysis())
	logger.ResetStats()

	stats := logger.Stats()
	assert.Zero(t, stats.TotalReadings)
	assert.Zero(t, stats.AverageLux)
}

func TestDataLoggerCloseVuelcaYCierra(t *testing.T) {
	backend := &memoryBackend{}
	logger := NewDataLogger("dev01", testLoggerConfig(), backend)
	ctx := context.Background()

	logger.Log(ctx, validReading(100), goodAnalysis())
	require.NoError(t, logger.Close(ctx))

	assert.Equal(t, 1, backend.totalRecords())
	assert.True(t, backend.closed)
}

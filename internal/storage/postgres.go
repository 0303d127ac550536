package storage

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

// PostgresStorage persiste lecturas en PostgreSQL usando un pool pgx
type PostgresStorage struct {
	pool      *pgxpool.Pool
	closeOnce sync.Once
}

// NewPostgresStorage crea el pool de conexiones y valida la conectividad
func NewPostgresStorage(ctx context.Context, cfg config.PostgresConfig) (*PostgresStorage, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("storage: configuración PostgreSQL inválida: %w", err)
	}

	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConns = int32(cfg.MaxConns)

	if d, err := cfg.GetHealthcheckIntervalDuration(); err == nil && d > 0 {
		poolConfig.HealthCheckPeriod = d
	}

	connectTimeout, err := cfg.GetConnectTimeoutDuration()
	if err != nil || connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout

	ctxTimeout, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctxTimeout, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("storage: no fue posible crear el pool de PostgreSQL: %w", err)
	}

	if err := pool.Ping(ctxTimeout); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ping fallido: %w", err)
	}

	log.Printf("storage: Postgres pool inicializado -> host=%s port=%d db=%s",
		poolConfig.ConnConfig.Host, poolConfig.ConnConfig.Port, poolConfig.ConnConfig.Database)

	return &PostgresStorage{pool: pool}, nil
}

// WriteBatch inserta el lote completo dentro de una transacción
func (s *PostgresStorage) WriteBatch(ctx context.Context, records []models.ReadingRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(INSERT_READING_INTERNAL_DB,
			r.DeviceID,
			r.Reading.Timestamp,
			r.Reading.RawValue,
			r.Reading.Voltage,
			r.Reading.LuxValue,
			r.Analysis.FilteredValue,
			r.Analysis.NoiseLevel,
			r.Analysis.SignalToNoise,
			r.Analysis.IsOutlier,
			r.Analysis.IsPeak,
			r.Analysis.TrendSlope,
			r.Analysis.TrendConfidence,
			r.Analysis.QualityScore,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("storage: error insertando lectura: %w", err)
		}
	}

	return nil
}

// Close cierra el pool una sola vez
func (s *PostgresStorage) Close() error {
	s.closeOnce.Do(func() {
		s.pool.Close()
	})
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

// SQLServerStorage replica las lecturas al historiador de planta. Se usa
// cuando el sensor forma parte de una instalación industrial que ya
// centraliza su telemetría en SQL Server
type SQLServerStorage struct {
	db        *sql.DB
	closeOnce sync.Once
}

// NewSQLServerStorage crea el pool de conexiones y valida la conectividad
func NewSQLServerStorage(ctx context.Context, cfg config.SQLServerConfig) (*SQLServerStorage, error) {
	// Construir URL con encoding apropiado para caracteres especiales
	query := url.Values{}
	if cfg.Database != "" {
		query.Add("database", cfg.Database)
	}
	query.Add("encrypt", cfg.Encrypt)
	query.Add("TrustServerCertificate", fmt.Sprintf("%t", cfg.TrustCert))
	query.Add("app name", cfg.AppName)
	query.Add("connection timeout", fmt.Sprintf("%d", cfg.ConnectTimeout))

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		RawQuery: query.Encode(),
	}

	db, err := sql.Open("sqlserver", u.String())
	if err != nil {
		return nil, fmt.Errorf("storage: no fue posible crear el pool de conexiones: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MinConns)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.ConnectTimeout)*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: no fue posible conectarse a SQL Server: %w", err)
	}

	log.Printf("storage: SQL Server conectado -> host=%s db=%s", cfg.Host, cfg.Database)

	return &SQLServerStorage{db: db}, nil
}

// WriteBatch inserta el lote en una transacción del historiador
func (s *SQLServerStorage) WriteBatch(ctx context.Context, records []models.ReadingRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: error iniciando transacción: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, INSERT_READING_HISTORIAN_DB)
	if err != nil {
		return fmt.Errorf("storage: error preparando inserción: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
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
			r.Analysis.QualityScore,
		)
		if err != nil {
			return fmt.Errorf("storage: error insertando lectura en historiador: %w", err)
		}
	}

	return tx.Commit()
}

// Close cierra el pool una sola vez
func (s *SQLServerStorage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.db.Close()
	})
	return err
}

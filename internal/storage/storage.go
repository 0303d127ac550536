package storage

import (
	"context"
	"fmt"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

// Storage persiste lotes de lecturas ya analizadas. Las implementaciones
// reciben el lote completo que el DataLogger decidió volcar
type Storage interface {
	// WriteBatch persiste un lote de registros
	WriteBatch(ctx context.Context, records []models.ReadingRecord) error

	// Close libera los recursos del backend
	Close() error
}

// NewStorage construye el backend indicado por la configuración
func NewStorage(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Logger.Backend {
	case "postgres":
		return NewPostgresStorage(ctx, cfg.Database.Postgres)
	case "sqlserver":
		return NewSQLServerStorage(ctx, cfg.Database.SQLServer)
	case "file":
		return NewFileStorage(cfg.Logger)
	default:
		return nil, fmt.Errorf("backend de almacenamiento desconocido: %q", cfg.Logger.Backend)
	}
}

package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

var csvHeader = []string{
	"device_id", "fecha", "valor_crudo", "voltaje", "lux", "lux_filtrado",
	"nivel_ruido", "snr", "es_outlier", "es_pico", "calidad",
}

// FileStorage persiste lecturas en archivos CSV con rotación por tamaño.
// Es el backend por defecto para instalaciones sin base de datos
type FileStorage struct {
	mu          sync.Mutex
	dir         string
	maxFileSize int64
	rotate      bool
	file        *os.File
	writer      *csv.Writer
	written     int64
}

// NewFileStorage crea el directorio de logs y abre el primer archivo
func NewFileStorage(cfg config.LoggerConfig) (*FileStorage, error) {
	if err := os.MkdirAll(cfg.FilePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: error creando directorio de logs: %w", err)
	}

	s := &FileStorage{
		dir:         cfg.FilePath,
		maxFileSize: cfg.MaxFileSize,
		rotate:      cfg.EnableRotation,
	}

	if err := s.openNewFile(); err != nil {
		return nil, err
	}

	return s, nil
}

// WriteBatch agrega el lote al CSV actual, rotando si excede el tamaño
func (s *FileStorage) WriteBatch(_ context.Context, records []models.ReadingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rotate && s.maxFileSize > 0 && s.written >= s.maxFileSize {
		if err := s.rotateLocked(); err != nil {
			return err
		}
	}

	for _, r := range records {
		row := []string{
			r.DeviceID,
			r.Reading.Timestamp.Format(time.RFC3339Nano),
			strconv.FormatFloat(r.Reading.RawValue, 'f', -1, 64),
			strconv.FormatFloat(r.Reading.Voltage, 'f', 4, 64),
			strconv.FormatFloat(r.Reading.LuxValue, 'f', 2, 64),
			strconv.FormatFloat(r.Analysis.FilteredValue, 'f', 2, 64),
			strconv.FormatFloat(r.Analysis.NoiseLevel, 'f', 4, 64),
			strconv.FormatFloat(r.Analysis.SignalToNoise, 'f', 2, 64),
			strconv.FormatBool(r.Analysis.IsOutlier),
			strconv.FormatBool(r.Analysis.IsPeak),
			strconv.Itoa(r.Analysis.QualityScore),
		}

		if err := s.writer.Write(row); err != nil {
			return fmt.Errorf("storage: error escribiendo fila CSV: %w", err)
		}

		for _, field := range row {
			s.written += int64(len(field)) + 1
		}
	}

	s.writer.Flush()
	return s.writer.Error()
}

// CurrentFile retorna la ruta del archivo CSV activo
func (s *FileStorage) CurrentFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return ""
	}
	return s.file.Name()
}

// Close vuelca lo pendiente y cierra el archivo activo
func (s *FileStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	s.writer.Flush()
	err := s.file.Close()
	s.file = nil
	return err
}

// openNewFile abre un archivo nuevo con timestamp en el nombre
func (s *FileStorage) openNewFile() error {
	name := fmt.Sprintf("light_sensor_%s.csv", time.Now().Format("20060102_150405"))
	path := filepath.Join(s.dir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("storage: error abriendo archivo de log: %w", err)
	}

	s.file = file
	s.writer = csv.NewWriter(file)
	s.written = 0

	if err := s.writer.Write(csvHeader); err != nil {
		file.Close()
		return fmt.Errorf("storage: error escribiendo encabezado CSV: %w", err)
	}
	s.writer.Flush()

	log.Printf("storage: nuevo archivo de log -> %s", path)
	return nil
}

// rotateLocked cierra el archivo actual y abre uno nuevo
func (s *FileStorage) rotateLocked() error {
	s.writer.Flush()
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("storage: error cerrando archivo durante rotación: %w", err)
	}
	return s.openNewFile()
}

package sensor

import (
	"fmt"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

// Source es una fuente de lecturas del sensor de luz. Las implementaciones
// publican lecturas ya convertidas a lux en el canal de Readings hasta que
// se llama a Stop
type Source interface {
	// Start comienza a producir lecturas en segundo plano
	Start() error

	// Stop detiene la fuente; tras Stop no se publican más lecturas
	Stop()

	// Readings retorna el canal donde se publican las lecturas
	Readings() <-chan models.SensorReading
}

// NewSource construye la fuente indicada por la configuración
func NewSource(cfg *config.Config) (Source, error) {
	converter := NewConverter(cfg.Sensor, cfg.Calibration)

	switch cfg.Sensor.Source {
	case "tcp":
		return NewTCPSource(cfg.Sensor, converter), nil
	case "opcua":
		return NewOPCUASource(cfg.Sensor, converter), nil
	case "simulator":
		return NewSimulator(cfg.Sensor, converter), nil
	default:
		return nil, fmt.Errorf("fuente de sensor desconocida: %q", cfg.Sensor.Source)
	}
}

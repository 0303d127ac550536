package sensor

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

// Parámetros del ciclo de luz simulado
const (
	simDayCycle    = 10 * time.Minute // Duración de un "día" completo
	simPeakLux     = 800.0            // Lux al mediodía simulado
	simNoiseStdDev = 8.0              // Ruido gaussiano en lux
	simSpikeProb   = 0.02             // Probabilidad de pico (nube, sombra)
	simSpikeLux    = 300.0            // Magnitud máxima del pico
)

// Simulator genera lecturas sintéticas siguiendo una curva diurna con
// ruido gaussiano y picos ocasionales. Útil para desarrollo sin hardware
type Simulator struct {
	interval     time.Duration
	oversampling int
	converter    *Converter
	rng          *rand.Rand
	startedAt    time.Time
	readings     chan models.SensorReading
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewSimulator crea el simulador con la semilla del reloj
func NewSimulator(cfg config.SensorConfig, converter *Converter) *Simulator {
	ctx, cancel := context.WithCancel(context.Background())

	oversampling := cfg.Oversampling
	if oversampling < 1 {
		oversampling = 1
	}

	return &Simulator{
		interval:     cfg.GetSampleInterval(),
		oversampling: oversampling,
		converter:    converter,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		readings:     make(chan models.SensorReading, 64),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// String implementa la interfaz fmt.Stringer
func (s *Simulator) String() string {
	return fmt.Sprintf("Simulator{interval: %s, oversampling: %d}", s.interval, s.oversampling)
}

// Start comienza a generar lecturas periódicas
func (s *Simulator) Start() error {
	s.startedAt = time.Now()
	log.Printf("✓ Simulador de sensor iniciado (intervalo: %s)\n", s.interval)

	go s.generateLoop()

	return nil
}

// Stop detiene la generación y cierra el canal de lecturas
func (s *Simulator) Stop() {
	s.cancel()
}

// Readings retorna el canal de lecturas sintéticas
func (s *Simulator) Readings() <-chan models.SensorReading {
	return s.readings
}

func (s *Simulator) generateLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			log.Println("Simulador: deteniendo generación")
			close(s.readings)
			return
		case <-ticker.C:
			samples := make([]float64, s.oversampling)
			for i := range samples {
				samples[i] = s.nextRawSample()
			}

			select {
			case s.readings <- s.converter.ConvertOversampled(samples):
			default:
				log.Println("⚠️  Simulador: buffer de lecturas lleno, muestra descartada")
			}
		}
	}
}

// nextRawSample genera una muestra cruda del ADC para el instante actual
func (s *Simulator) nextRawSample() float64 {
	lux := s.ambientLux(time.Since(s.startedAt))

	// Ruido gaussiano del sensor
	lux += s.rng.NormFloat64() * simNoiseStdDev

	// Picos ocasionales (paso de una nube, sombra, reflejo)
	if s.rng.Float64() < simSpikeProb {
		lux += (s.rng.Float64()*2 - 1) * simSpikeLux
	}

	if lux < 0 {
		lux = 0
	}

	return s.converter.RawFromLux(lux)
}

// ambientLux calcula la luz ambiente según la hora del día simulado
func (s *Simulator) ambientLux(elapsed time.Duration) float64 {
	phase := 2 * math.Pi * float64(elapsed%simDayCycle) / float64(simDayCycle)

	// Medio ciclo de sol, medio ciclo de noche con luz residual
	sun := math.Sin(phase)
	if sun < 0 {
		return 2.0
	}

	return 2.0 + simPeakLux*sun
}

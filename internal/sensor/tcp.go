package sensor

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

// TCPSource recibe lecturas del puente serial del sensor físico. El puente
// abre una conexión TCP y envía una línea por muestra con el formato
// "<cuentas_adc>" o "<cuentas_adc>,<voltaje_bateria>", terminada en \r\n
type TCPSource struct {
	host      string
	port      int
	converter *Converter
	listener  net.Listener
	readings  chan models.SensorReading
	ctx       context.Context
	cancel    context.CancelFunc

	mu          sync.RWMutex
	batteryVolt float64
}

// NewTCPSource crea la fuente TCP sin empezar a escuchar
func NewTCPSource(cfg config.SensorConfig, converter *Converter) *TCPSource {
	ctx, cancel := context.WithCancel(context.Background())
	return &TCPSource{
		host:      cfg.Host,
		port:      cfg.Port,
		converter: converter,
		readings:  make(chan models.SensorReading, 64),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// String implementa la interfaz fmt.Stringer
func (t *TCPSource) String() string {
	return fmt.Sprintf("TCPSource{host: %s, port: %d}", t.host, t.port)
}

// Start inicia el servidor TCP para escuchar al puente del sensor
func (t *TCPSource) Start() error {
	address := fmt.Sprintf("%s:%d", t.host, t.port)

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("error al crear listener: %w", err)
	}

	t.listener = listener
	log.Printf("✓ TCPSource escuchando en %s\n", address)

	// Aceptar conexiones en una goroutine
	go t.acceptConnections()

	return nil
}

// Stop detiene el servidor y las conexiones activas
func (t *TCPSource) Stop() {
	t.cancel()
	if t.listener != nil {
		t.listener.Close()
	}
}

// Readings retorna el canal de lecturas convertidas
func (t *TCPSource) Readings() <-chan models.SensorReading {
	return t.readings
}

// BatteryVoltage retorna el último voltaje de batería reportado por el
// puente, o 0 si nunca lo reportó
func (t *TCPSource) BatteryVoltage() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.batteryVolt
}

// acceptConnections acepta nuevas conexiones del puente del sensor
func (t *TCPSource) acceptConnections() {
	for {
		select {
		case <-t.ctx.Done():
			log.Println("TCPSource: deteniendo aceptación de conexiones")
			return
		default:
			// Establecer timeout para Accept
			t.listener.(*net.TCPListener).SetDeadline(time.Now().Add(1 * time.Second))

			conn, err := t.listener.Accept()
			if err != nil {
				// Si es timeout, continuar el loop
				if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
					continue
				}
				log.Printf("Error al aceptar conexión: %v\n", err)
				continue
			}

			log.Printf("✓ Nueva conexión desde: %s\n", conn.RemoteAddr().String())

			// Manejar cada conexión en su propia goroutine
			go t.handleConnection(conn)
		}
	}
}

// handleConnection lee muestras línea a línea de una conexión del puente
func (t *TCPSource) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	for {
		select {
		case <-t.ctx.Done():
			log.Printf("Cerrando conexión con %s\n", conn.RemoteAddr().String())
			return
		default:
			// Establecer timeout de lectura
			conn.SetReadDeadline(time.Now().Add(30 * time.Second))

			line, err := reader.ReadString('\n')
			if err != nil {
				if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
					continue
				}
				log.Printf("Conexión cerrada o error de lectura: %v\n", err)
				return
			}

			t.processSample(line, conn)
		}
	}
}

// processSample parsea una línea del puente y publica la lectura
func (t *TCPSource) processSample(line string, conn net.Conn) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) == 0 || parts[0] == "" {
		conn.Write([]byte("NACK\r\n"))
		return
	}

	raw, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		log.Printf("❌ Muestra inválida de %s: %q", conn.RemoteAddr().String(), strings.TrimSpace(line))
		conn.Write([]byte("NACK\r\n"))
		return
	}

	// El puente puede reportar el voltaje de batería como segundo campo
	if len(parts) > 1 {
		if volt, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err == nil {
			t.mu.Lock()
			t.batteryVolt = volt
			t.mu.Unlock()
		}
	}

	reading := t.converter.Convert(raw)
	if !reading.IsValid {
		log.Printf("⚠️  Muestra fuera de rango del ADC: %.1f", raw)
	}

	select {
	case t.readings <- reading:
	default:
		// Canal lleno: el consumidor va atrasado, descartar la muestra
		log.Println("⚠️  TCPSource: buffer de lecturas lleno, muestra descartada")
	}

	conn.Write([]byte("ACK\r\n"))
}

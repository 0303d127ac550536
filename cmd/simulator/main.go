package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Simula el puente serial del sensor físico: se conecta al monitor por
// TCP y envía una muestra cruda del ADC por línea, con el voltaje de
// batería como segundo campo.

const (
	dayCycle    = 10 * time.Minute
	peakLux     = 800.0
	noiseStdDev = 8.0
	spikeProb   = 0.02
	spikeLux    = 300.0

	adcMax      = 1023.0
	vref        = 3.3
	sensitivity = 0.004 // V por lux
)

func main() {
	host := flag.String("host", "127.0.0.1:9100", "dirección del monitor (host:puerto)")
	intervalMs := flag.Int("interval", 1000, "intervalo entre muestras en ms")
	battery := flag.Float64("battery", 4.1, "voltaje inicial de batería")
	flag.Parse()

	simularPuente(*host, *intervalMs, *battery)
}

func simularPuente(host string, intervaloMs int, bateria float64) {
	// Esperar a que el monitor esté listo
	time.Sleep(2 * time.Second)

	log.Printf("📡 Conectando a %s...", host)
	conn, err := net.Dial("tcp", host)
	if err != nil {
		log.Fatalf("❌ Error al conectar: %v", err)
	}
	defer conn.Close()

	log.Printf("✅ Conectado al monitor en %s", host)
	log.Printf("⚙️  Intervalo: %dms | Batería inicial: %.2fV", intervaloMs, bateria)
	log.Println("🚀 Iniciando simulación del puente del sensor...")
	log.Println("")

	ticker := time.NewTicker(time.Duration(intervaloMs) * time.Millisecond)
	defer ticker.Stop()

	// Canal para detectar Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	reader := bufio.NewReader(conn)
	inicio := time.Now()
	contador := 1

	for {
		select {
		case <-sigChan:
			log.Println("")
			log.Println("🛑 Deteniendo simulador...")
			return

		case <-ticker.C:
			raw := muestraADC(time.Since(inicio))

			// La batería se descarga lentamente durante la simulación
			bateria -= 0.00005
			if bateria < 3.0 {
				bateria = 3.0
			}

			message := fmt.Sprintf("%.1f,%.3f\r\n", raw, bateria)
			if _, err := conn.Write([]byte(message)); err != nil {
				log.Fatalf("❌ Error al enviar muestra: %v", err)
			}

			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			response, err := reader.ReadString('\n')
			if err != nil {
				log.Printf("⚠️  Sin respuesta del monitor: %v", err)
				continue
			}

			log.Printf("📤 #%-5d raw=%.1f bat=%.3fV → %s", contador, raw, bateria,
				trimCRLF(response))
			contador++
		}
	}
}

// muestraADC genera las cuentas del ADC para el instante simulado
func muestraADC(elapsed time.Duration) float64 {
	phase := 2 * math.Pi * float64(elapsed%dayCycle) / float64(dayCycle)

	lux := 2.0
	if sun := math.Sin(phase); sun > 0 {
		lux += peakLux * sun
	}

	lux += rand.NormFloat64() * noiseStdDev

	if rand.Float64() < spikeProb {
		lux += (rand.Float64()*2 - 1) * spikeLux
	}

	if lux < 0 {
		lux = 0
	}

	raw := (lux * sensitivity / vref) * adcMax
	if raw > adcMax {
		raw = adcMax
	}
	return raw
}

func trimCRLF(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

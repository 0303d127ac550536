package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/sensor"
)

// Herramienta de calibración de dos puntos: mide (o recibe) el voltaje
// con el sensor tapado y frente a una fuente de lux conocida, calcula
// sensibilidad y offset, y los persiste en el archivo de configuración.

func main() {
	log.SetFlags(0)

	dark := flag.Float64("dark", -1, "voltaje medido con el sensor tapado (V)")
	light := flag.Float64("light", -1, "voltaje medido frente a la referencia (V)")
	referenceLux := flag.Float64("lux", -1, "lux de la fuente de referencia")
	flag.Parse()

	if *dark < 0 || *light < 0 || *referenceLux < 0 {
		log.Println("Uso: calibrate -dark <V> -light <V> -lux <lux>")
		log.Println("")
		log.Println("  1. Tapa el sensor por completo y anota el voltaje reportado")
		log.Println("  2. Ilumina el sensor con una fuente de lux conocida y anota el voltaje")
		log.Println("  3. Ejecuta esta herramienta con ambas mediciones")
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Archivo .env no encontrado, usando valores por defecto")
	}

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("❌ Error al cargar configuración: %v", err)
	}

	cal, err := sensor.Calibrate(*dark, *light, *referenceLux)
	if err != nil {
		log.Fatalf("❌ Calibración inválida: %v", err)
	}

	cfg.Calibration = cal
	if err := cfg.Save(configPath); err != nil {
		log.Fatalf("❌ Error al guardar configuración: %v", err)
	}

	log.Println("✅ Calibración guardada")
	log.Printf("   Offset:       %.4f V", cal.Offset)
	log.Printf("   Sensibilidad: %.6f V/lux", cal.Sensitivity)
	log.Printf("   Archivo:      %s", configPath)
	log.Println("")
	log.Println("Reinicia el monitor para que la calibración tome efecto")
}

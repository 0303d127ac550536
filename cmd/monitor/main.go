package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/listeners"
	"github.com/elcruzo/light-sensor-circuit/internal/models"
	"github.com/elcruzo/light-sensor-circuit/internal/monitoring"
	"github.com/elcruzo/light-sensor-circuit/internal/power"
	"github.com/elcruzo/light-sensor-circuit/internal/sensor"
	"github.com/elcruzo/light-sensor-circuit/internal/signal"
	"github.com/elcruzo/light-sensor-circuit/internal/storage"
	"github.com/elcruzo/light-sensor-circuit/internal/telemetry"
)

func main() {
	// Configurar logger sin timestamps para el banner
	log.SetOutput(os.Stdout)
	log.SetFlags(0)

	log.Println("")
	log.Println("    ██╗░░░░░██╗░░░██╗██╗░░██╗  ███╗░░░███╗░█████╗░███╗░░██╗██╗████████╗░█████╗░██████╗░")
	log.Println("    ██║░░░░░██║░░░██║╚██╗██╔╝  ████╗░████║██╔══██╗████╗░██║██║╚══██╔══╝██╔══██╗██╔══██╗")
	log.Println("    ██║░░░░░██║░░░██║░╚███╔╝░  ██╔████╔██║██║░░██║██╔██╗██║██║░░░██║░░░██║░░██║██████╔╝")
	log.Println("    ██║░░░░░██║░░░██║░██╔██╗░  ██║╚██╔╝██║██║░░██║██║╚████║██║░░░██║░░░██║░░██║██╔══██╗")
	log.Println("    ███████╗╚██████╔╝██╔╝╚██╗  ██║░╚═╝░██║╚█████╔╝██║░╚███╔╝██║░░░██║░░░╚█████╔╝██║░░██║")
	log.Println("    ╚══════╝░╚═════╝░╚═╝░░╚═╝  ╚═╝░░░░░╚═╝░╚════╝░╚═╝░░╚══╝╚═╝░░░╚═╝░░░░╚════╝░╚═╝░░╚═╝")
	log.Println("")
	log.Println("Iniciando monitor de luz ambiente...")
	log.Println("")

	// Ahora activar fecha/hora para los logs normales
	log.SetFlags(log.Ldate | log.Ltime)

	// 1. Cargar archivo .env para obtener ruta del config
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Archivo .env no encontrado, usando valores por defecto")
	}

	// 2. Cargar configuración desde YAML
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("⚠️  Error al cargar configuración (%v), usando valores por defecto", err)
		cfg = config.DefaultConfig()
	} else {
		log.Printf("✅ Configuración cargada desde: %s", configPath)
	}

	validation := cfg.Validate()
	for _, warning := range validation.Warnings {
		log.Printf("⚠️  Configuración: %s", warning)
	}
	if !validation.IsValid {
		for _, e := range validation.Errors {
			log.Printf("❌ Configuración: %s", e)
		}
		log.Fatal("❌ Configuración inválida, abortando")
	}

	// 3. Inicializar el backend de almacenamiento y el data logger
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	backend, err := storage.NewStorage(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("❌ Error al inicializar almacenamiento: %v", err)
	}

	dataLogger := storage.NewDataLogger(cfg.DeviceID, cfg.Logger, backend)
	defer dataLogger.Close(context.Background())
	log.Printf("✅ Almacenamiento inicializado (backend: %s)", cfg.Logger.Backend)

	// 4. Procesador de señal
	processor := signal.NewProcessor(cfg.Signal)
	log.Println("✅ Procesador de señal inicializado")

	// 5. Gestor de energía
	powerMgr := power.NewManager(cfg.Power)

	// 6. Fuente de lecturas
	source, err := sensor.NewSource(cfg)
	if err != nil {
		log.Fatalf("❌ Error al crear fuente del sensor: %v", err)
	}

	log.Printf("📡 Fuente del sensor: %s", source)
	if err := source.Start(); err != nil {
		log.Fatalf("❌ Error al iniciar fuente del sensor: %v", err)
	}
	defer source.Stop()

	// 7. Frontend HTTP + WebSocket
	frontend := listeners.NewHTTPFrontend(cfg.HTTP.Addr())
	frontend.SetConfig(cfg, configPath)
	frontend.SetProcessor(processor)
	frontend.SetDataLogger(dataLogger)
	frontend.SetPowerManager(powerMgr)

	// 8. Monitoreo de dispositivos externos (solo fuentes remotas)
	deviceMonitor := monitoring.NewDeviceMonitor(30*time.Second, 5*time.Second)
	if registerMonitoredDevices(deviceMonitor, cfg) {
		deviceMonitor.SetTransitionCallback(func(device models.DeviceStatus) {
			frontend.Hub().NotifyDeviceStatus(cfg.DeviceID, device)
		})
		go deviceMonitor.Start()
		defer deviceMonitor.Stop()
		frontend.SetMonitoringHandler(listeners.NewMonitoringHandler(deviceMonitor))
	}

	// 9. Telemetría MQTT (opcional)
	var publisher *telemetry.Publisher
	if cfg.MQTT.Enable {
		mqttCtx, mqttCancel := context.WithTimeout(context.Background(), 15*time.Second)
		publisher, err = telemetry.Connect(mqttCtx, cfg.MQTT)
		mqttCancel()
		if err != nil {
			log.Printf("⚠️  Telemetría MQTT no disponible: %v (continuando sin MQTT)", err)
			publisher = nil
		} else {
			defer publisher.Close(context.Background())
		}
	}

	// Las transiciones de energía se notifican por WebSocket y MQTT
	powerMgr.SetEventCallback(func(mode models.PowerMode, wakeSource models.WakeSource) {
		frontend.Hub().NotifyPowerEvent(cfg.DeviceID, mode, wakeSource)
		if publisher != nil {
			pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer pubCancel()
			if err := publisher.PublishPowerEvent(pubCtx, cfg.DeviceID, mode, wakeSource); err != nil {
				log.Printf("⚠️  %v", err)
			}
		}
	})

	// 10. Pipeline principal: lectura -> análisis -> persistencia -> difusión
	go runPipeline(cfg, source, processor, dataLogger, powerMgr, frontend, publisher)

	// 11. Optimización de energía periódica
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for range ticker.C {
			powerMgr.OptimizePower()

			if tcpSource, ok := source.(*sensor.TCPSource); ok {
				powerMgr.UpdateBatteryVoltage(tcpSource.BatteryVoltage())
			}
		}
	}()

	// 12. Dashboard web estático (opcional)
	if cfg.HTTP.DashboardDir != "" {
		dashAddr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.DashboardPort)
		go func() {
			if err := listeners.StartStaticFileServer(dashAddr, cfg.HTTP.DashboardDir); err != nil {
				log.Printf("⚠️  Dashboard no disponible: %v", err)
			}
		}()
	}

	// 13. Servidor HTTP (bloqueante)
	log.Printf("🌐 Servidor HTTP iniciando en %s...", cfg.HTTP.Addr())
	if err := frontend.Start(); err != nil {
		log.Fatalf("❌ Error al iniciar servidor HTTP: %v", err)
	}
}

// runPipeline consume lecturas de la fuente hasta que su canal se cierra
func runPipeline(
	cfg *config.Config,
	source sensor.Source,
	processor *signal.Processor,
	dataLogger *storage.DataLogger,
	powerMgr *power.Manager,
	frontend *listeners.HTTPFrontend,
	publisher *telemetry.Publisher,
) {
	for reading := range source.Readings() {
		powerMgr.ObserveLux(reading.LuxValue)

		analysis := processor.ProcessReading(reading)
		if analysis.IsOutlier || analysis.IsPeak {
			// Los eventos significativos cuentan como actividad
			powerMgr.RecordActivity()
		}
		record := models.ReadingRecord{
			DeviceID: cfg.DeviceID,
			Reading:  reading,
			Analysis: analysis,
		}

		logCtx, logCancel := context.WithTimeout(context.Background(), 10*time.Second)
		dataLogger.Log(logCtx, reading, analysis)
		logCancel()

		frontend.PublishRecord(record)

		if publisher != nil {
			pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := publisher.PublishReading(pubCtx, record); err != nil {
				log.Printf("⚠️  %v", err)
			}
			if analysis.IsOutlier {
				publisher.PublishAlert(pubCtx, "outlier", record)
			}
			if analysis.IsPeak {
				publisher.PublishAlert(pubCtx, "peak", record)
			}
			pubCancel()
		}

		if frontend.DebugEnabled() {
			log.Printf("📊 lux=%.1f filtrado=%.1f snr=%.1f calidad=%d outlier=%t pico=%t",
				reading.LuxValue, analysis.FilteredValue, analysis.SignalToNoise,
				analysis.QualityScore, analysis.IsOutlier, analysis.IsPeak)
		}
	}

	log.Println("⚠️  Canal de lecturas cerrado, pipeline detenido")
}

// registerMonitoredDevices registra los equipos remotos de los que depende
// la fuente configurada. Retorna false si no hay nada que monitorear
func registerMonitoredDevices(monitor *monitoring.DeviceMonitor, cfg *config.Config) bool {
	switch cfg.Sensor.Source {
	case "opcua":
		u, err := url.Parse(cfg.Sensor.Endpoint)
		if err != nil || u.Hostname() == "" {
			log.Printf("⚠️  Endpoint OPC UA no monitoreable: %s", cfg.Sensor.Endpoint)
			return false
		}

		port := 4840
		if p, err := strconv.Atoi(u.Port()); err == nil {
			port = p
		}

		monitor.RegisterDevice(&models.DeviceStatus{
			ID:         1,
			DeviceName: "PLC del sensor",
			DeviceType: models.DeviceTypePLC,
			IP:         u.Hostname(),
			Port:       port,
		})
		return true
	default:
		// La fuente TCP es un servidor local y el simulador no tiene red
		return false
	}
}

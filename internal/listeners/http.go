package listeners

import (
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/models"
	"github.com/elcruzo/light-sensor-circuit/internal/power"
	"github.com/elcruzo/light-sensor-circuit/internal/sensor"
	"github.com/elcruzo/light-sensor-circuit/internal/signal"
	"github.com/elcruzo/light-sensor-circuit/internal/storage"
)

// Cantidad de registros recientes que el frontend sirve desde memoria
const recentHistorySize = 300

// HTTPFrontend expone el estado del sensor y las operaciones de
// configuración por HTTP, más el stream en vivo por WebSocket
type HTTPFrontend struct {
	router *gin.Engine
	addr   string
	wsHub  *WebSocketHub

	// cfgMu protege la configuración compartida: los handlers de presets
	// y calibración la mutan mientras el pipeline la consulta
	cfgMu      sync.RWMutex
	cfg        *config.Config
	cfgPath    string
	processor  *signal.Processor
	dataLogger *storage.DataLogger
	powerMgr   *power.Manager
	monitoring *MonitoringHandler

	mu     sync.RWMutex
	latest *models.ReadingRecord
	recent []models.ReadingRecord
}

// NewHTTPFrontend crea el frontend con CORS y el hub WebSocket corriendo
func NewHTTPFrontend(addr string) *HTTPFrontend {
	router := gin.Default()

	// Configurar CORS para permitir todas las peticiones
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Manejador personalizado para rutas 404
	router.NoRoute(func(c *gin.Context) {
		RespondWithError(c, http.StatusNotFound, ErrCodeNotFound,
			"🤔 La ruta que buscas no existe en este servidor",
			gin.H{
				"available_endpoints": gin.H{
					"readings": []string{
						"GET /reading/latest",
						"GET /readings/recent",
						"GET /stats",
					},
					"signal": []string{
						"GET /signal",
						"GET /filters",
						"PUT /filters/:kind",
					},
					"power": []string{
						"GET /power",
					},
					"config": []string{
						"GET /config",
						"GET /config/presets",
						"POST /config/preset/:name",
						"POST /calibrate",
					},
					"websocket": []string{
						"GET /ws/:room",
						"GET /ws/stats",
					},
				},
			},
			"Revisa la documentación o contacta al equipo de desarrollo")
	})

	// Crear e iniciar WebSocket Hub
	wsHub := NewWebSocketHub()
	go wsHub.Run()

	return &HTTPFrontend{
		router: router,
		addr:   addr,
		wsHub:  wsHub,
		recent: make([]models.ReadingRecord, 0, recentHistorySize),
	}
}

// SetConfig vincula la configuración activa y su ruta de persistencia
func (h *HTTPFrontend) SetConfig(cfg *config.Config, path string) {
	h.cfgMu.Lock()
	defer h.cfgMu.Unlock()
	h.cfg = cfg
	h.cfgPath = path
}

// DebugEnabled reporta si el modo debug está activo. El pipeline lo
// consulta por lectura para no correr contra los presets
func (h *HTTPFrontend) DebugEnabled() bool {
	h.cfgMu.RLock()
	defer h.cfgMu.RUnlock()
	return h.cfg != nil && h.cfg.DebugMode
}

// SetProcessor vincula el procesador de señal
func (h *HTTPFrontend) SetProcessor(p *signal.Processor) {
	h.processor = p
}

// SetDataLogger vincula el data logger
func (h *HTTPFrontend) SetDataLogger(d *storage.DataLogger) {
	h.dataLogger = d
}

// SetPowerManager vincula el gestor de energía
func (h *HTTPFrontend) SetPowerManager(m *power.Manager) {
	h.powerMgr = m
}

// SetMonitoringHandler vincula los endpoints de monitoreo de dispositivos
func (h *HTTPFrontend) SetMonitoringHandler(handler *MonitoringHandler) {
	h.monitoring = handler
}

// Hub retorna el hub WebSocket para notificaciones externas
func (h *HTTPFrontend) Hub() *WebSocketHub {
	return h.wsHub
}

// PublishRecord registra el último resultado del pipeline y lo emite a
// los clientes WebSocket. Lo llama el loop principal por cada lectura
func (h *HTTPFrontend) PublishRecord(record models.ReadingRecord) {
	h.mu.Lock()
	h.latest = &record
	if len(h.recent) >= recentHistorySize {
		h.recent = h.recent[1:]
	}
	h.recent = append(h.recent, record)
	h.mu.Unlock()

	h.wsHub.NotifyReading(record)
}

// Start registra las rutas e inicia el servidor (bloqueante)
func (h *HTTPFrontend) Start() error {
	h.registerRoutes()
	log.Printf("🚀 Frontend HTTP escuchando en %s", h.addr)
	return h.router.Run(h.addr)
}

func (h *HTTPFrontend) registerRoutes() {
	h.router.GET("/ping", h.handlePing)

	h.router.GET("/reading/latest", h.handleLatestReading)
	h.router.GET("/readings/recent", h.handleRecentReadings)
	h.router.GET("/stats", h.handleStats)

	h.router.GET("/signal", h.handleSignalState)
	h.router.GET("/filters", h.handleListFilters)
	h.router.PUT("/filters/:kind", h.handleToggleFilter)

	h.router.GET("/power", h.handlePowerStats)

	h.router.GET("/config", h.handleGetConfig)
	h.router.GET("/config/presets", h.handleListPresets)
	h.router.POST("/config/preset/:name", h.handleApplyPreset)
	h.router.POST("/calibrate", h.handleCalibrate)

	h.router.GET("/ws/:room", HandleWebSocketConnection(h.wsHub))
	h.router.GET("/ws/stats", h.handleWSStats)

	if h.monitoring != nil {
		h.router.GET("/monitoring/devices", h.monitoring.GetAllDevices)
		h.router.GET("/monitoring/devices/:device_id", h.monitoring.GetDevice)
		h.router.GET("/monitoring/health", h.monitoring.GetHealth)
	}
}

func (h *HTTPFrontend) handlePing(c *gin.Context) {
	h.cfgMu.RLock()
	deviceID := h.cfg.DeviceID
	h.cfgMu.RUnlock()

	Success(c, gin.H{"status": "ok", "device_id": deviceID}, "pong")
}

func (h *HTTPFrontend) handleLatestReading(c *gin.Context) {
	h.mu.RLock()
	latest := h.latest
	h.mu.RUnlock()

	if latest == nil {
		NoReadingsYet(c)
		return
	}

	Success(c, latest, "")
}

func (h *HTTPFrontend) handleRecentReadings(c *gin.Context) {
	limit := recentHistorySize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			ValidationError(c, "limit", "debe ser un entero positivo")
			return
		}
		limit = parsed
	}

	h.mu.RLock()
	start := len(h.recent) - limit
	if start < 0 {
		start = 0
	}
	records := make([]models.ReadingRecord, len(h.recent)-start)
	copy(records, h.recent[start:])
	h.mu.RUnlock()

	Success(c, gin.H{"count": len(records), "readings": records}, "")
}

func (h *HTTPFrontend) handleStats(c *gin.Context) {
	Success(c, h.dataLogger.Stats(), "")
}

func (h *HTTPFrontend) handleSignalState(c *gin.Context) {
	Success(c, gin.H{
		"quality":     h.processor.SignalQuality(),
		"noise_level": h.processor.NoiseLevel(),
		"config":      h.processor.Config(),
	}, "")
}

func (h *HTTPFrontend) handleListFilters(c *gin.Context) {
	filters := make(map[string]bool, len(signal.FilterKinds))
	for _, kind := range signal.FilterKinds {
		filters[kind.String()] = h.processor.FilterEnabled(kind)
	}
	Success(c, filters, "")
}

func (h *HTTPFrontend) handleToggleFilter(c *gin.Context) {
	kind, ok := signal.ParseFilterKind(c.Param("kind"))
	if !ok {
		names := make([]string, len(signal.FilterKinds))
		for i, k := range signal.FilterKinds {
			names[i] = k.String()
		}
		FilterNotFound(c, c.Param("kind"), names)
		return
	}

	var body struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ValidationError(c, "enabled", "se requiere el campo booleano 'enabled'")
		return
	}

	h.processor.SetFilterEnabled(kind, *body.Enabled)
	log.Printf("🔧 Filtro %s -> enabled=%t", kind, *body.Enabled)

	Success(c, gin.H{
		"filter":  kind.String(),
		"enabled": *body.Enabled,
	}, "Filtro actualizado")
}

func (h *HTTPFrontend) handlePowerStats(c *gin.Context) {
	Success(c, h.powerMgr.Stats(), "")
}

func (h *HTTPFrontend) handleGetConfig(c *gin.Context) {
	h.cfgMu.RLock()
	defer h.cfgMu.RUnlock()
	Success(c, h.cfg, "")
}

func (h *HTTPFrontend) handleListPresets(c *gin.Context) {
	Success(c, config.AvailablePresets(), "")
}

func (h *HTTPFrontend) handleApplyPreset(c *gin.Context) {
	name := c.Param("name")

	h.cfgMu.Lock()
	defer h.cfgMu.Unlock()

	if err := h.cfg.ApplyPreset(name); err != nil {
		PresetNotFound(c, name, config.AvailablePresets())
		return
	}

	// Las secciones de señal, energía y logging rigen de inmediato
	h.processor.Configure(h.cfg.Signal)
	if h.powerMgr != nil {
		h.powerMgr.Configure(h.cfg.Power)
	}
	if h.dataLogger != nil {
		h.dataLogger.Configure(h.cfg.Logger)
	}

	if h.cfgPath != "" {
		if err := h.cfg.Save(h.cfgPath); err != nil {
			log.Printf("⚠️  Error persistiendo configuración: %v", err)
		}
	}

	log.Printf("✅ Preset aplicado: %s", name)
	Success(c, h.cfg, "Preset aplicado. Cambios de fuente o backend requieren reinicio")
}

func (h *HTTPFrontend) handleCalibrate(c *gin.Context) {
	var body struct {
		DarkVoltage  *float64 `json:"dark_voltage" binding:"required"`
		LightVoltage *float64 `json:"light_voltage" binding:"required"`
		ReferenceLux *float64 `json:"reference_lux" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		ValidationError(c, "body", "se requieren dark_voltage, light_voltage y reference_lux")
		return
	}

	cal, err := sensor.Calibrate(*body.DarkVoltage, *body.LightVoltage, *body.ReferenceLux)
	if err != nil {
		CalibrationError(c, err)
		return
	}

	h.cfgMu.Lock()
	h.cfg.Calibration = cal
	if h.cfgPath != "" {
		if err := h.cfg.Save(h.cfgPath); err != nil {
			log.Printf("⚠️  Error persistiendo calibración: %v", err)
		}
	}
	h.cfgMu.Unlock()

	log.Printf("✅ Sensor calibrado: sensibilidad=%.6f V/lux offset=%.4fV", cal.Sensitivity, cal.Offset)
	Success(c, cal, "Calibración aplicada. Reinicia la fuente para que tome efecto")
}

func (h *HTTPFrontend) handleWSStats(c *gin.Context) {
	Success(c, h.wsHub.GetRoomStats(), "")
}

package listeners

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/elcruzo/light-sensor-circuit/internal/monitoring"
)

// MonitoringHandler maneja los endpoints de monitoreo de dispositivos
type MonitoringHandler struct {
	monitor *monitoring.DeviceMonitor
}

// NewMonitoringHandler crea un nuevo handler de monitoreo
func NewMonitoringHandler(monitor *monitoring.DeviceMonitor) *MonitoringHandler {
	return &MonitoringHandler{
		monitor: monitor,
	}
}

// GetAllDevices maneja GET /monitoring/devices
func (h *MonitoringHandler) GetAllDevices(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.GetAllDevices())
}

// GetDevice maneja GET /monitoring/devices/:device_id
func (h *MonitoringHandler) GetDevice(c *gin.Context) {
	deviceID, err := strconv.Atoi(c.Param("device_id"))
	if err != nil {
		ValidationError(c, "device_id", "debe ser un número válido")
		return
	}

	device, ok := h.monitor.GetDevice(deviceID)
	if !ok {
		NotFound(c, "Dispositivo no encontrado", gin.H{"device_id": deviceID})
		return
	}

	c.JSON(http.StatusOK, device)
}

// GetHealth maneja GET /monitoring/health
func (h *MonitoringHandler) GetHealth(c *gin.Context) {
	if h.monitor.HasDisconnectedDevices() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

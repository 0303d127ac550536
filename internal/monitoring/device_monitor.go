package monitoring

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

// TransitionCallback se invoca al detectar una desconexión o reconexión
type TransitionCallback func(device models.DeviceStatus)

// DeviceMonitor verifica con heartbeat TCP que los equipos de los que
// depende el sensor (puente serial, PLC) sigan accesibles
type DeviceMonitor struct {
	ctx               context.Context
	cancel            context.CancelFunc
	devices           map[int]*models.DeviceStatus // key: device ID
	devicesMu         sync.RWMutex
	heartbeatInterval time.Duration
	timeoutDuration   time.Duration
	onTransition      TransitionCallback
}

// NewDeviceMonitor crea una nueva instancia del monitor
func NewDeviceMonitor(heartbeatInterval, timeout time.Duration) *DeviceMonitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &DeviceMonitor{
		ctx:               ctx,
		cancel:            cancel,
		devices:           make(map[int]*models.DeviceStatus),
		heartbeatInterval: heartbeatInterval,
		timeoutDuration:   timeout,
	}
}

// SetTransitionCallback registra el callback de transiciones de estado.
// Debe llamarse antes de Start
func (m *DeviceMonitor) SetTransitionCallback(cb TransitionCallback) {
	m.onTransition = cb
}

// RegisterDevice registra un nuevo dispositivo para monitoreo
func (m *DeviceMonitor) RegisterDevice(device *models.DeviceStatus) {
	m.devicesMu.Lock()
	defer m.devicesMu.Unlock()

	device.LastCheck = time.Now()
	device.IsDisconnected = false
	m.devices[device.ID] = device

	log.Printf("📡 Dispositivo registrado para monitoreo: %s (%s:%d)",
		device.DeviceName, device.IP, device.Port)
}

// Start inicia el monitoreo continuo con heartbeat
func (m *DeviceMonitor) Start() {
	log.Printf("🔄 Iniciando monitoreo de dispositivos (intervalo: %v, timeout: %v)",
		m.heartbeatInterval, m.timeoutDuration)

	ticker := time.NewTicker(m.heartbeatInterval)
	defer ticker.Stop()

	// Primer chequeo inmediato
	m.checkAllDevices()

	for {
		select {
		case <-m.ctx.Done():
			log.Println("🛑 Monitoreo de dispositivos detenido")
			return
		case <-ticker.C:
			m.checkAllDevices()
		}
	}
}

// Stop detiene el monitoreo
func (m *DeviceMonitor) Stop() {
	m.cancel()
}

// checkAllDevices verifica el estado de todos los dispositivos
func (m *DeviceMonitor) checkAllDevices() {
	m.devicesMu.RLock()
	devicesCopy := make([]*models.DeviceStatus, 0, len(m.devices))
	for _, device := range m.devices {
		devicesCopy = append(devicesCopy, device)
	}
	m.devicesMu.RUnlock()

	// Chequear dispositivos en paralelo
	var wg sync.WaitGroup
	for _, device := range devicesCopy {
		wg.Add(1)
		go func(dev *models.DeviceStatus) {
			defer wg.Done()
			m.checkDevice(dev)
		}(device)
	}
	wg.Wait()
}

// checkDevice verifica el estado de un dispositivo usando TCP dial
func (m *DeviceMonitor) checkDevice(device *models.DeviceStatus) {
	address := net.JoinHostPort(device.IP, fmt.Sprintf("%d", device.Port))
	start := time.Now()

	conn, err := net.DialTimeout("tcp", address, m.timeoutDuration)
	elapsed := time.Since(start).Milliseconds()

	m.devicesMu.Lock()

	device.LastCheck = time.Now()
	device.ResponseTimeMs = elapsed

	transitioned := false
	if err != nil {
		// Dispositivo desconectado
		if !device.IsDisconnected {
			now := time.Now()
			device.LastDisconnection = &now
			device.IsDisconnected = true
			transitioned = true
			log.Printf("❌ Dispositivo desconectado: %s (%s:%d) - Error: %v",
				device.DeviceName, device.IP, device.Port, err)
		}
	} else {
		conn.Close()
		// Dispositivo conectado
		if device.IsDisconnected {
			log.Printf("✅ Dispositivo reconectado: %s (%s:%d) - Tiempo: %dms",
				device.DeviceName, device.IP, device.Port, elapsed)
			device.IsDisconnected = false
			transitioned = true
		}
	}

	snapshot := *device
	m.devicesMu.Unlock()

	if transitioned && m.onTransition != nil {
		m.onTransition(snapshot)
	}
}

// GetAllDevices retorna todos los dispositivos monitoreados
func (m *DeviceMonitor) GetAllDevices() []models.DeviceStatus {
	m.devicesMu.RLock()
	defer m.devicesMu.RUnlock()

	result := make([]models.DeviceStatus, 0, len(m.devices))
	for _, device := range m.devices {
		result = append(result, *device)
	}

	return result
}

// GetDevice retorna un dispositivo por ID
func (m *DeviceMonitor) GetDevice(id int) (models.DeviceStatus, bool) {
	m.devicesMu.RLock()
	defer m.devicesMu.RUnlock()

	device, ok := m.devices[id]
	if !ok {
		return models.DeviceStatus{}, false
	}
	return *device, true
}

// HasDisconnectedDevices indica si algún dispositivo está caído
func (m *DeviceMonitor) HasDisconnectedDevices() bool {
	m.devicesMu.RLock()
	defer m.devicesMu.RUnlock()

	for _, device := range m.devices {
		if device.IsDisconnected {
			return true
		}
	}
	return false
}

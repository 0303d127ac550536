package models

import "time"

// DeviceType representa el tipo de dispositivo
type DeviceType string

const (
	DeviceTypeSensorBridge DeviceType = "SensorBridge" // Puente TCP del sensor físico
	DeviceTypePLC          DeviceType = "PLC"          // Sensor conectado vía OPC UA
)

// DeviceStatus representa el estado de un dispositivo monitoreado
type DeviceStatus struct {
	ID                int        `json:"id"`
	DeviceName        string     `json:"device_name"`
	DeviceType        DeviceType `json:"device_type"`
	IP                string     `json:"ip"`
	Port              int        `json:"port"`
	IsDisconnected    bool       `json:"is_disconnected"`
	LastDisconnection *time.Time `json:"last_disconnection"`
	LastCheck         time.Time  `json:"last_check"`
	ResponseTimeMs    int64      `json:"response_time_ms"`
}

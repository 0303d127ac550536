package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/elcruzo/light-sensor-circuit/internal/models"
	"github.com/elcruzo/light-sensor-circuit/internal/signal"
)

// Config es la configuración completa del sistema, cargada desde YAML
type Config struct {
	DeviceID        string `yaml:"device_id"`
	FirmwareVersion string `yaml:"firmware_version"`
	DebugMode       bool   `yaml:"debug_mode"`

	Sensor      SensorConfig           `yaml:"sensor"`
	Signal      signal.Config          `yaml:"signal"`
	Power       PowerConfig            `yaml:"power"`
	Logger      LoggerConfig           `yaml:"logger"`
	Database    DatabaseConfig         `yaml:"database"`
	HTTP        HTTPConfig             `yaml:"http"`
	MQTT        MQTTConfig             `yaml:"mqtt"`
	Calibration models.CalibrationData `yaml:"calibration"`
}

// SensorConfig configura la fuente de lecturas y la conversión a lux
type SensorConfig struct {
	Source string `yaml:"source"` // "tcp", "opcua" o "simulator"

	// Fuente TCP (puente serial del sensor físico)
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Fuente OPC UA (sensor conectado a un PLC)
	Endpoint   string `yaml:"endpoint"`    // ej: "opc.tcp://192.168.1.50:4840"
	RawNodeID  string `yaml:"raw_node_id"` // Nodo con el valor ADC normalizado
	PollPeriod string `yaml:"poll_period"` // ej: "1s"

	// Conversión ADC
	ADCResolution    int     `yaml:"adc_resolution"`    // bits
	ReferenceVoltage float64 `yaml:"reference_voltage"` // V
	DarkOffset       float64 `yaml:"dark_offset"`       // Offset de corriente oscura (V)
	Sensitivity      float64 `yaml:"sensitivity"`       // V por lux

	// Muestreo
	SampleInterval string `yaml:"sample_interval"` // ej: "1s"
	Oversampling   int    `yaml:"oversampling"`    // Muestras a promediar por lectura
}

// GetSampleInterval retorna el intervalo de muestreo con default de 1s
func (s *SensorConfig) GetSampleInterval() time.Duration {
	d, err := time.ParseDuration(s.SampleInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// GetPollPeriod retorna el período de sondeo OPC UA con default de 1s
func (s *SensorConfig) GetPollPeriod() time.Duration {
	d, err := time.ParseDuration(s.PollPeriod)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// SampleRateHz retorna la tasa de muestreo en Hz derivada del intervalo
func (s *SensorConfig) SampleRateHz() float64 {
	return 1.0 / s.GetSampleInterval().Seconds()
}

// PowerConfig configura la gestión de energía. Los umbrales de batería
// se expresan en voltios y el umbral de luz como cambio relativo de lux.
type PowerConfig struct {
	SleepTimeout             string  `yaml:"sleep_timeout"`
	DeepSleepTimeout         string  `yaml:"deep_sleep_timeout"`
	EnableWakeOnLight        bool    `yaml:"enable_wake_on_light"`
	LightThreshold           float64 `yaml:"light_threshold"`
	LowBatteryThreshold      float64 `yaml:"low_battery_threshold"`
	CriticalBatteryThreshold float64 `yaml:"critical_battery_threshold"`
	EnableBatteryMonitoring  bool    `yaml:"enable_battery_monitoring"`
}

// GetSleepTimeout retorna el timeout antes de bajar a LOW_POWER
func (p *PowerConfig) GetSleepTimeout() time.Duration {
	d, err := time.ParseDuration(p.SleepTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetDeepSleepTimeout retorna el timeout antes de DEEP_SLEEP
func (p *PowerConfig) GetDeepSleepTimeout() time.Duration {
	d, err := time.ParseDuration(p.DeepSleepTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// LoggerConfig configura el registro de lecturas
type LoggerConfig struct {
	Backend        string  `yaml:"backend"` // "postgres", "sqlserver" o "file"
	BufferSize     int     `yaml:"buffer_size"`
	FlushThreshold int     `yaml:"flush_threshold"`
	MinLux         float64 `yaml:"min_lux_threshold"`
	MaxLux         float64 `yaml:"max_lux_threshold"`
	MinQuality     int     `yaml:"min_quality_threshold"`

	// Backend de archivo
	FilePath       string `yaml:"file_path"`
	MaxFileSize    int64  `yaml:"max_file_size_bytes"`
	EnableRotation bool   `yaml:"enable_rotation"`
}

// DatabaseConfig agrupa las conexiones a bases de datos
type DatabaseConfig struct {
	Postgres  PostgresConfig  `yaml:"postgres"`
	SQLServer SQLServerConfig `yaml:"sqlserver"`
}

// PostgresConfig configura el pool de PostgreSQL
type PostgresConfig struct {
	URL                 string `yaml:"url"`
	MinConns            int    `yaml:"min_conns"`
	MaxConns            int    `yaml:"max_conns"`
	ConnectTimeout      string `yaml:"connect_timeout"`
	HealthcheckInterval string `yaml:"healthcheck_interval"`
}

// GetConnectTimeoutDuration retorna el timeout de conexión
func (p PostgresConfig) GetConnectTimeoutDuration() (time.Duration, error) {
	return time.ParseDuration(p.ConnectTimeout)
}

// GetHealthcheckIntervalDuration retorna el intervalo de healthcheck
func (p PostgresConfig) GetHealthcheckIntervalDuration() (time.Duration, error) {
	return time.ParseDuration(p.HealthcheckInterval)
}

// SQLServerConfig configura la conexión al historiador de planta
type SQLServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Database       string `yaml:"database"`
	Encrypt        string `yaml:"encrypt"`
	TrustCert      bool   `yaml:"trust_cert"`
	AppName        string `yaml:"app_name"`
	ConnectTimeout int    `yaml:"connect_timeout"`
	MinConns       int    `yaml:"min_conns"`
	MaxConns       int    `yaml:"max_conns"`
}

// HTTPConfig configura el frontend HTTP
type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Dashboard web estático (opcional). Si DashboardDir apunta a un build
	// válido, se sirve en DashboardPort como SPA.
	DashboardDir  string `yaml:"dashboard_dir"`
	DashboardPort int    `yaml:"dashboard_port"`
}

// Addr retorna la dirección host:port
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// MQTTConfig configura la publicación de telemetría
type MQTTConfig struct {
	Enable      bool   `yaml:"enable"`
	BrokerURL   string `yaml:"broker_url"` // ej: "mqtt://localhost:1883"
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"` // ej: "sensors/light/device01"
}

// LoadConfig carga la configuración desde el archivo YAML
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error leyendo archivo de configuración: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parseando YAML: %w", err)
	}

	return &cfg, nil
}

// Save serializa la configuración al archivo indicado (persistencia de
// calibración y cambios hechos por la API)
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error serializando configuración: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("error escribiendo archivo de configuración: %w", err)
	}
	return nil
}

// DefaultConfig retorna la configuración por defecto (preset balanceado)
func DefaultConfig() *Config {
	return &Config{
		DeviceID:        "light_sensor_001",
		FirmwareVersion: "1.0.0",
		DebugMode:       false,
		Sensor: SensorConfig{
			Source:           "simulator",
			Host:             "0.0.0.0",
			Port:             9100,
			ADCResolution:    10,
			ReferenceVoltage: 3.3,
			DarkOffset:       0.0,
			Sensitivity:      0.004, // V por lux: ~800 lux llegan cerca de vref
			SampleInterval:   "1s",
			Oversampling:     4,
			PollPeriod:       "1s",
		},
		Signal: signal.DefaultConfig(),
		Power: PowerConfig{
			SleepTimeout:             "30s",
			DeepSleepTimeout:         "5m",
			EnableWakeOnLight:        true,
			LightThreshold:           0.1,
			LowBatteryThreshold:      3.2,
			CriticalBatteryThreshold: 3.0,
			EnableBatteryMonitoring:  true,
		},
		Logger: LoggerConfig{
			Backend:        "file",
			BufferSize:     100,
			FlushThreshold: 50,
			MinLux:         0.0,
			MaxLux:         100000.0,
			MinQuality:     50,
			FilePath:       "logs",
			MaxFileSize:    1024 * 1024,
			EnableRotation: true,
		},
		HTTP: HTTPConfig{
			Host:          "0.0.0.0",
			Port:          8080,
			DashboardPort: 3000,
		},
		MQTT: MQTTConfig{
			Enable:      false,
			BrokerURL:   "mqtt://localhost:1883",
			ClientID:    "light_sensor_001",
			TopicPrefix: "sensors/light/light_sensor_001",
		},
	}
}

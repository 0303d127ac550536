package sensor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gopcua/opcua"
	"github.com/gopcua/opcua/ua"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

// OPCUASource sondea el valor crudo del ADC expuesto por un PLC vía OPC UA.
// Se usa cuando el sensor está cableado a una entrada analógica del PLC en
// lugar del puente serial
type OPCUASource struct {
	endpoint   string
	rawNodeID  string
	pollPeriod time.Duration
	converter  *Converter
	client     *opcua.Client
	readings   chan models.SensorReading
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewOPCUASource crea la fuente OPC UA sin conectar
func NewOPCUASource(cfg config.SensorConfig, converter *Converter) *OPCUASource {
	ctx, cancel := context.WithCancel(context.Background())
	return &OPCUASource{
		endpoint:   cfg.Endpoint,
		rawNodeID:  cfg.RawNodeID,
		pollPeriod: cfg.GetPollPeriod(),
		converter:  converter,
		readings:   make(chan models.SensorReading, 64),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// String implementa la interfaz fmt.Stringer
func (o *OPCUASource) String() string {
	return fmt.Sprintf("OPCUASource{endpoint: %s, node: %s}", o.endpoint, o.rawNodeID)
}

// Start conecta al servidor OPC UA y comienza el sondeo periódico
func (o *OPCUASource) Start() error {
	opts := []opcua.Option{
		opcua.SecurityMode(ua.MessageSecurityModeNone),
		opcua.SecurityPolicy(ua.SecurityPolicyURINone),
		opcua.AutoReconnect(true),
	}

	client, err := opcua.NewClient(o.endpoint, opts...)
	if err != nil {
		return fmt.Errorf("error creando cliente para %s: %w", o.endpoint, err)
	}

	if err := client.Connect(o.ctx); err != nil {
		return fmt.Errorf("error al conectar a %s: %w", o.endpoint, err)
	}

	o.client = client
	log.Printf("✅ Conexión OPC UA establecida a %s", o.endpoint)

	go o.pollLoop()

	return nil
}

// Stop detiene el sondeo y cierra la conexión
func (o *OPCUASource) Stop() {
	o.cancel()
	if o.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.client.Close(ctx)
	}
}

// Readings retorna el canal de lecturas convertidas
func (o *OPCUASource) Readings() <-chan models.SensorReading {
	return o.readings
}

// pollLoop lee el nodo del ADC a intervalos regulares
func (o *OPCUASource) pollLoop() {
	ticker := time.NewTicker(o.pollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-o.ctx.Done():
			log.Println("OPCUASource: deteniendo sondeo")
			return
		case <-ticker.C:
			raw, err := o.readRawValue()
			if err != nil {
				log.Printf("⚠️  Error leyendo nodo %s: %v", o.rawNodeID, err)
				continue
			}

			select {
			case o.readings <- o.converter.Convert(raw):
			default:
				log.Println("⚠️  OPCUASource: buffer de lecturas lleno, muestra descartada")
			}
		}
	}
}

// readRawValue lee el valor crudo del nodo configurado
func (o *OPCUASource) readRawValue() (float64, error) {
	id, err := ua.ParseNodeID(o.rawNodeID)
	if err != nil {
		return 0, fmt.Errorf("nodeID inválido '%s': %w", o.rawNodeID, err)
	}

	req := &ua.ReadRequest{
		NodesToRead: []*ua.ReadValueID{
			{
				NodeID:      id,
				AttributeID: ua.AttributeIDValue,
			},
		},
	}

	resp, err := o.client.Read(o.ctx, req)
	if err != nil {
		return 0, fmt.Errorf("error al leer nodo: %w", err)
	}

	if len(resp.Results) == 0 {
		return 0, fmt.Errorf("lectura sin resultados")
	}

	result := resp.Results[0]
	if result.Status != ua.StatusOK {
		return 0, fmt.Errorf("lectura con status: %s", result.Status)
	}

	// Los PLC exponen el canal analógico con distintos anchos de palabra
	switch v := result.Value.Value().(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("tipo de valor inesperado: %T", v)
	}
}

package sensor

import (
	"fmt"
	"time"

	"github.com/elcruzo/light-sensor-circuit/internal/config"
	"github.com/elcruzo/light-sensor-circuit/internal/models"
)

// Converter transforma cuentas crudas del ADC en lecturas de lux usando
// los parámetros eléctricos del circuito y la calibración vigente
type Converter struct {
	maxRaw      float64
	vref        float64
	darkOffset  float64
	sensitivity float64
}

// NewConverter crea un conversor desde la configuración del sensor y,
// si existe, la calibración persistida (que tiene prioridad sobre los
// valores nominales del circuito)
func NewConverter(cfg config.SensorConfig, cal models.CalibrationData) *Converter {
	c := &Converter{
		maxRaw:      float64(int(1)<<cfg.ADCResolution - 1),
		vref:        cfg.ReferenceVoltage,
		darkOffset:  cfg.DarkOffset,
		sensitivity: cfg.Sensitivity,
	}

	if cal.IsValid && cal.Sensitivity > 0 {
		c.darkOffset = cal.Offset
		c.sensitivity = cal.Sensitivity
	}

	return c
}

// Convert transforma cuentas del ADC en una lectura completa. RawValue
// queda normalizado a [0,1] respecto del fondo de escala del ADC
func (c *Converter) Convert(raw float64) models.SensorReading {
	reading := models.SensorReading{
		Timestamp: time.Now(),
		RawValue:  raw / c.maxRaw,
	}

	if raw < 0 || raw > c.maxRaw {
		return reading
	}

	voltage := (raw / c.maxRaw) * c.vref
	lux := (voltage - c.darkOffset) / c.sensitivity
	if lux < 0 {
		lux = 0
	}

	reading.Voltage = voltage
	reading.LuxValue = lux
	reading.IsValid = true
	reading.Quality = c.readingQuality(voltage)

	return reading
}

// ConvertOversampled promedia varias muestras crudas antes de convertir,
// reduciendo el ruido de cuantización del ADC
func (c *Converter) ConvertOversampled(samples []float64) models.SensorReading {
	if len(samples) == 0 {
		return models.SensorReading{Timestamp: time.Now()}
	}

	sum := 0.0
	for _, s := range samples {
		sum += s
	}

	return c.Convert(sum / float64(len(samples)))
}

// readingQuality estima la calidad de una lectura individual según qué
// tan cerca está la señal de los extremos del rango del ADC
func (c *Converter) readingQuality(voltage float64) int {
	strength := voltage / c.vref
	quality := strength * 100.0

	// Señal demasiado débil: dominada por el ruido de fondo
	if strength < 0.01 {
		quality *= 0.5
	}

	// Señal cerca de saturación: el ADC recorta los picos
	if strength > 0.95 {
		quality *= 0.8
	}

	if quality < 0 {
		quality = 0
	}
	if quality > 100 {
		quality = 100
	}

	return int(quality)
}

// RawFromLux invierte la conversión: de lux a cuentas del ADC. Lo usa el
// simulador para generar muestras crudas coherentes con la calibración
func (c *Converter) RawFromLux(lux float64) float64 {
	voltage := lux*c.sensitivity + c.darkOffset
	raw := (voltage / c.vref) * c.maxRaw

	if raw < 0 {
		return 0
	}
	if raw > c.maxRaw {
		return c.maxRaw
	}
	return raw
}

// Calibrate calcula una calibración de dos puntos: una medición con el
// sensor tapado (oscuridad) y otra frente a una fuente de lux conocida
func Calibrate(darkVoltage, lightVoltage, referenceLux float64) (models.CalibrationData, error) {
	if referenceLux <= 0 {
		return models.CalibrationData{}, fmt.Errorf("lux de referencia inválido: %.2f", referenceLux)
	}
	if lightVoltage <= darkVoltage {
		return models.CalibrationData{}, fmt.Errorf("el voltaje iluminado (%.3fV) debe superar al oscuro (%.3fV)", lightVoltage, darkVoltage)
	}

	return models.CalibrationData{
		DarkReference:  darkVoltage,
		LightReference: lightVoltage,
		Offset:         darkVoltage,
		Sensitivity:    (lightVoltage - darkVoltage) / referenceLux,
		CalibratedAt:   time.Now(),
		IsValid:        true,
		Method:         "two_point",
	}, nil
}

package listeners

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorResponse representa la estructura estándar de errores
type ErrorResponse struct {
	Success   bool        `json:"success"`
	Error     ErrorDetail `json:"error"`
	Timestamp string      `json:"timestamp"`
	Path      string      `json:"path"`
	Method    string      `json:"method"`
}

// ErrorDetail contiene los detalles del error
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Hint    string      `json:"hint,omitempty"`
}

// SuccessResponse representa la estructura estándar de respuestas exitosas
type SuccessResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Message   string      `json:"message,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// Códigos de error estandarizados
const (
	// Client Errors (4xx)
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeNotFound   = "NOT_FOUND"

	// Server Errors (5xx)
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"

	// Business Logic Errors
	ErrCodeNoReadings       = "NO_READINGS"
	ErrCodeFilterNotFound   = "FILTER_NOT_FOUND"
	ErrCodePresetNotFound   = "PRESET_NOT_FOUND"
	ErrCodeCalibrationError = "CALIBRATION_ERROR"
	ErrCodeStorageError     = "STORAGE_ERROR"
	ErrCodeValidationError  = "VALIDATION_ERROR"
)

// RespondWithError envía una respuesta de error estandarizada
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}, hint string) {
	c.JSON(statusCode, ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    errorCode,
			Message: message,
			Details: details,
			Hint:    hint,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      c.Request.URL.Path,
		Method:    c.Request.Method,
	})
}

// RespondWithSuccess envía una respuesta exitosa estandarizada
func RespondWithSuccess(c *gin.Context, statusCode int, data interface{}, message string) {
	c.JSON(statusCode, SuccessResponse{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Funciones helper para errores comunes

// BadRequest - Error 400
func BadRequest(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, ErrCodeBadRequest, message, details,
		"Verifica que los parámetros de la solicitud sean correctos")
}

// NotFound - Error 404
func NotFound(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusNotFound, ErrCodeNotFound, message, details,
		"Verifica que el recurso existe o que el ID sea correcto")
}

// InternalServerError - Error 500
func InternalServerError(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusInternalServerError, ErrCodeInternalServer, message, details,
		"Contacta al equipo de desarrollo si el error persiste")
}

// NoReadingsYet - Error de negocio: aún no hay lecturas procesadas
func NoReadingsYet(c *gin.Context) {
	RespondWithError(c, http.StatusNotFound, ErrCodeNoReadings,
		"Aún no hay lecturas procesadas",
		gin.H{
			"reason": "El sensor todavía no entregó ninguna muestra",
		},
		"Espera al menos un intervalo de muestreo y reintenta")
}

// FilterNotFound - Error de negocio: filtro desconocido
func FilterNotFound(c *gin.Context, kind string, available []string) {
	RespondWithError(c, http.StatusNotFound, ErrCodeFilterNotFound,
		"Filtro desconocido",
		gin.H{
			"filter":    kind,
			"available": available,
		},
		"Usa GET /filters para listar los filtros del pipeline")
}

// PresetNotFound - Error de negocio: preset desconocido
func PresetNotFound(c *gin.Context, name string, available []string) {
	RespondWithError(c, http.StatusNotFound, ErrCodePresetNotFound,
		"Preset de configuración desconocido",
		gin.H{
			"preset":    name,
			"available": available,
		},
		"Usa GET /config/presets para listar los presets disponibles")
}

// CalibrationError - Error de negocio: calibración inválida
func CalibrationError(c *gin.Context, err error) {
	RespondWithError(c, http.StatusUnprocessableEntity, ErrCodeCalibrationError,
		"Calibración inválida",
		gin.H{
			"reason": err.Error(),
		},
		"La medición iluminada debe superar a la oscura y el lux de referencia debe ser positivo")
}

// ValidationError - Error de validación genérico
func ValidationError(c *gin.Context, field string, message string) {
	RespondWithError(c, http.StatusBadRequest, ErrCodeValidationError,
		"Error de validación",
		gin.H{
			"field":  field,
			"reason": message,
		},
		"Verifica que todos los campos requeridos estén presentes y sean del tipo correcto")
}

// StorageError - Error del backend de almacenamiento
func StorageError(c *gin.Context, operation string, err error) {
	RespondWithError(c, http.StatusInternalServerError, ErrCodeStorageError,
		"Error de almacenamiento",
		gin.H{
			"operation": operation,
			"error":     err.Error(),
		},
		"Verifica la conectividad con el backend de almacenamiento")
}

// Success - Respuesta exitosa genérica
func Success(c *gin.Context, data interface{}, message string) {
	RespondWithSuccess(c, http.StatusOK, data, message)
}

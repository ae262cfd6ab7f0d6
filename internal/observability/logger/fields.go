package logger

import (
	"time"

	"go.uber.org/zap"
)

// Campos estándar HTTP.

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field { return zap.String("request_id", v) }

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field { return zap.String("method", v) }

// Path crea un campo para el path del request.
func Path(v string) zap.Field { return zap.String("path", v) }

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field { return zap.Int("status", v) }

// Bytes crea un campo para los bytes de respuesta.
func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

// ClientIP crea un campo para la IP del cliente.
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// Campos estándar de arquitectura.

// Layer identifica la capa (controller, service, store).
func Layer(v string) zap.Field { return zap.String("layer", v) }

// Component identifica el componente dentro de la capa.
func Component(v string) zap.Field { return zap.String("component", v) }

// Op identifica la operación en curso.
func Op(v string) zap.Field { return zap.String("op", v) }

// Err crea un campo para un error.
func Err(err error) zap.Field { return zap.Error(err) }

// Campos de dominio.

// RecordID es el UUID del registro de token: es el handle loggeable,
// el bearer token crudo jamás va a logs.
func RecordID(v string) zap.Field { return zap.String("record_id", v) }

// Sender es el email del remitente autenticado.
func Sender(v string) zap.Field { return zap.String("sender", v) }

// Recipients es la cantidad de destinatarios del envío.
func Recipients(v int) zap.Field { return zap.Int("recipients", v) }

// Repeat es la cantidad de envíos pedidos en un request.
func Repeat(v int) zap.Field { return zap.Int("repeat", v) }

// Genéricos (atajos para no importar zap en todos lados).

func String(k, v string) zap.Field { return zap.String(k, v) }
func Int(k string, v int) zap.Field { return zap.Int(k, v) }
func Any(k string, v any) zap.Field { return zap.Any(k, v) }

func Duration(k string, v time.Duration) zap.Field { return zap.Duration(k, v) }

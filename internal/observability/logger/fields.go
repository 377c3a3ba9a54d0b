package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - DECISIÓN
// =================================================================================

// PrincipalID crea un campo para el ID del principal autenticado.
func PrincipalID(v string) zap.Field {
	return zap.String("principal_id", v)
}

// TicketID crea un campo para el ID del ticket.
func TicketID(v string) zap.Field {
	return zap.String("ticket_id", v)
}

// ServiceID crea un campo para el servicio destino del intento.
func ServiceID(v string) zap.Field {
	return zap.String("service_id", v)
}

// ProviderID crea un campo para el provider MFA resuelto.
func ProviderID(v string) zap.Field {
	return zap.String("provider_id", v)
}

// Decision crea un campo para el resultado del engine (allow|require_mfa|deny).
func Decision(v string) zap.Field {
	return zap.String("decision", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - RIESGO
// =================================================================================

// Score crea un campo para un score de riesgo normalizado [0,1].
func Score(v float64) zap.Field {
	return zap.Float64("score", v)
}

// Threshold crea un campo para el umbral de riesgo configurado.
func Threshold(v float64) zap.Field {
	return zap.Float64("threshold", v)
}

// Calculator crea un campo para el nombre de un calculador de riesgo.
func Calculator(v string) zap.Field {
	return zap.String("calculator", v)
}

// ClientIP crea un campo para la IP del intento de login.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// UserAgent crea un campo para el User-Agent del intento.
func UserAgent(v string) zap.Field {
	return zap.String("user_agent", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Duration crea un campo para una duración.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// Count crea un campo para un conteo.
func Count(v int) zap.Field {
	return zap.Int("count", v)
}

// String crea un campo string genérico.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Any crea un campo genérico para cualquier tipo.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}

package domain

import (
	"errors"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrForbidden      = errors.New("acceso denegado")
	ErrBusy           = errors.New("operación en curso")
	ErrStale          = errors.New("respuesta obsoleta descartada")
	ErrConfirmation   = errors.New("confirmación inválida o vencida")
	ErrImmutableField = errors.New("el identificador no se puede modificar")
)

// FieldErrors mapa campo → mensaje para el usuario. Vacío significa entrada válida.
type FieldErrors map[string]string

// Add registra el mensaje solo si el campo aún no tiene uno (gana la primera regla que falla).
func (fe FieldErrors) Add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

// Has indica si el campo tiene error.
func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

// Empty es true cuando no hay errores.
func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

// Err devuelve nil si no hay errores; si los hay, el propio mapa como error.
func (fe FieldErrors) Err() error {
	if fe.Empty() {
		return nil
	}
	return fe
}

// Error implementa error con los campos en orden estable.
func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validación: " + strings.Join(parts, "; ")
}

// AsFieldErrors extrae FieldErrors de una cadena de errores.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) && len(fe) > 0 {
		return fe, true
	}
	return nil, false
}

// UserMessager lo implementan los errores que traen un mensaje apto para mostrar al usuario.
type UserMessager interface {
	UserMessage() string
}

// MessageOr mensaje para el usuario contenido en err, o fallback si no hay uno.
func MessageOr(err error, fallback string) string {
	var um UserMessager
	if errors.As(err, &um) {
		if m := um.UserMessage(); m != "" {
			return m
		}
	}
	return fallback
}

// FieldMessage mensaje del campo field si err trae errores por campo.
func FieldMessage(err error, field string) string {
	if fe, ok := AsFieldErrors(err); ok {
		return fe[field]
	}
	return ""
}

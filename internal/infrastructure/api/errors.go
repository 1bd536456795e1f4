package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/jhoicas/inventario-console/internal/domain"
)

// Kind clasificación de un error del backend en la frontera del cliente.
type Kind string

const (
	KindValidation Kind = "validation" // errores por campo
	KindGeneral    Kind = "general"    // un mensaje para banner
	KindAuth       Kind = "auth"       // 401/403
	KindNotFound   Kind = "not_found"
	KindTransport  Kind = "transport" // red, timeout, cuerpo ilegible
)

// ErrorContractVersion versión del sobre de errores que entiende el cliente.
const ErrorContractVersion = 1

// Error contrato de error de todos los clientes. Solo lo construye decodeError o transportError.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	switch {
	case e.cause != nil:
		return fmt.Sprintf("api %s: %v", e.Kind, e.cause)
	case e.Message != "":
		return fmt.Sprintf("api %s (%d): %s", e.Kind, e.Status, e.Message)
	case len(e.Fields) > 0:
		return fmt.Sprintf("api %s (%d): %s", e.Kind, e.Status, domain.FieldErrors(e.Fields).Error())
	default:
		return fmt.Sprintf("api %s (%d)", e.Kind, e.Status)
	}
}

// Unwrap enlaza con los sentinels de dominio para errors.Is / domain.AsFieldErrors.
func (e *Error) Unwrap() error {
	switch e.Kind {
	case KindTransport:
		return e.cause
	case KindNotFound:
		return domain.ErrNotFound
	case KindAuth:
		if e.Status == http.StatusForbidden {
			return domain.ErrForbidden
		}
		return domain.ErrUnauthorized
	case KindValidation:
		if len(e.Fields) > 0 {
			return domain.FieldErrors(e.Fields)
		}
		return domain.ErrInvalidInput
	}
	return nil
}

// envelope sobre versionado: {"version":1,"errors":[{"kind","field","message"}]}.
type envelope struct {
	Version int             `json:"version"`
	Errors  []envelopeEntry `json:"errors"`
}

type envelopeEntry struct {
	Kind    string `json:"kind"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Claves DRF que llevan un mensaje general y nunca se tratan como campo.
var generalKeys = []string{"error", "detail", "non_field_errors", "message"}

// decodeError traduce una respuesta no 2xx al contrato. Acepta el sobre versionado y convierte
// explícitamente las formas DRF heredadas: {"error": msg}, {"detail": msg}, {campo: [msg]} y
// {campo: msg}. Valores de cualquier otro tipo se descartan.
func decodeError(status int, body []byte) *Error {
	e := &Error{Kind: kindForStatus(status), Status: status}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return e
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return e
	}

	if _, ok := raw["version"]; ok {
		var env envelope
		if err := json.Unmarshal(body, &env); err == nil && env.Version == ErrorContractVersion {
			e.fromEnvelope(env)
			return e
		}
	}

	for _, key := range generalKeys {
		if msg, ok := firstString(raw[key]); ok && e.Message == "" {
			e.Message = msg
		}
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if isGeneralKey(k) {
			continue
		}
		if msg, ok := firstString(raw[k]); ok {
			e.addField(k, msg)
		}
	}
	e.settle()
	return e
}

func (e *Error) fromEnvelope(env envelope) {
	for _, it := range env.Errors {
		switch {
		case it.Field != "" && it.Message != "":
			e.addField(it.Field, it.Message)
		case it.Message != "" && e.Message == "":
			e.Message = it.Message
		}
		switch Kind(it.Kind) {
		case KindAuth, KindNotFound:
			e.Kind = Kind(it.Kind)
		}
	}
	e.settle()
}

func (e *Error) addField(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// settle fija el Kind final: con campos y sin clase más específica, es de validación.
func (e *Error) settle() {
	if len(e.Fields) > 0 && e.Kind == KindGeneral {
		e.Kind = KindValidation
	}
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindGeneral
	}
}

func isGeneralKey(k string) bool {
	for _, g := range generalKeys {
		if k == g {
			return true
		}
	}
	return false
}

// firstString acepta una cadena o una lista cuyo primer elemento es cadena.
func firstString(v json.RawMessage) (string, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return "", false
	}
	switch v[0] {
	case '"':
		var s string
		if json.Unmarshal(v, &s) != nil || s == "" {
			return "", false
		}
		return s, true
	case '[':
		var list []json.RawMessage
		if json.Unmarshal(v, &list) != nil || len(list) == 0 {
			return "", false
		}
		var s string
		if json.Unmarshal(list[0], &s) != nil || s == "" {
			return "", false
		}
		return s, true
	}
	return "", false
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, cause: err}
}

// UserMessage mensaje general apto para el usuario; vacío en errores de transporte.
func (e *Error) UserMessage() string {
	if e.Kind == KindTransport {
		return ""
	}
	return e.Message
}

package entity

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Roles de un mensaje de chat.
const (
	ChatRoleUser  = "user"
	ChatRoleModel = "model"
	ChatRoleTool  = "tool"
)

// SessionID identificador de sesión de chat asignado por el asistente.
// El backend lo emite como número o como cadena; se conserva la forma original
// para devolverlo igual en los turnos siguientes. Vacío equivale a null.
type SessionID struct {
	raw     string
	numeric bool
}

// NewSessionID construye un id textual.
func NewSessionID(s string) SessionID { return SessionID{raw: s} }

// NumericSessionID construye un id numérico.
func NumericSessionID(n int64) SessionID {
	return SessionID{raw: strconv.FormatInt(n, 10), numeric: true}
}

// ParseSessionID interpreta texto de URL/formulario; los dígitos se tratan como id numérico.
func ParseSessionID(s string) SessionID {
	if s == "" {
		return SessionID{}
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return SessionID{raw: s, numeric: true}
	}
	return SessionID{raw: s}
}

// IsZero true si aún no hay sesión.
func (id SessionID) IsZero() bool { return id.raw == "" }

func (id SessionID) String() string { return id.raw }

// MarshalJSON emite null, número o cadena según el origen.
func (id SessionID) MarshalJSON() ([]byte, error) {
	if id.raw == "" {
		return []byte("null"), nil
	}
	if id.numeric {
		return []byte(id.raw), nil
	}
	return json.Marshal(id.raw)
}

// UnmarshalJSON acepta null, número o cadena.
func (id *SessionID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = SessionID{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = SessionID{raw: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = SessionID{raw: n.String(), numeric: true}
	return nil
}

// ChatMessage mensaje del transcript local o del historial del servidor.
type ChatMessage struct {
	ID        string          `json:"id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	ToolCalls json.RawMessage `json:"tool_calls,omitempty"`
	Timestamp Timestamp       `json:"timestamp"`
}

// ChatSession sesión guardada en el servidor (listado e historial).
type ChatSession struct {
	ID        SessionID       `json:"id"`
	CreatedAt Timestamp       `json:"created_at"`
	UpdatedAt Timestamp       `json:"updated_at"`
	IsActive  bool            `json:"is_active"`
	Messages  []ServerMessage `json:"messages"`
}

// ServerMessage mensaje tal como lo serializa el historial del backend.
type ServerMessage struct {
	ID        json.Number     `json:"id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	ToolCalls json.RawMessage `json:"tool_calls,omitempty"`
	CreatedAt Timestamp       `json:"created_at"`
}

// ChatReply respuesta de chatbot/message.
type ChatReply struct {
	SessionID SessionID       `json:"session_id"`
	Message   string          `json:"message"`
	ToolCalls json.RawMessage `json:"tool_calls,omitempty"`
	CreatedAt Timestamp       `json:"created_at"`
}

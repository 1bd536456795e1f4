// Package chat controlador del widget de asistente: transcripción local, id de sesión del
// servidor y envío optimista de mensajes.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-console/internal/domain"
	"github.com/jhoicas/inventario-console/internal/domain/entity"
	"github.com/jhoicas/inventario-console/internal/domain/repository"
	"github.com/jhoicas/inventario-console/pkg/logger"
)

const (
	// Welcome primer mensaje del asistente al abrir el widget o empezar otra conversación.
	Welcome = "¡Hola! Soy tu asistente virtual. ¿En qué puedo ayudarte hoy?"
	// Apology respuesta local cuando el backend falla.
	Apology = "❌ Lo siento, ocurrió un error al procesar tu mensaje. Por favor, intenta de nuevo."
)

// Widget estado del chat de una sesión de consola.
type Widget struct {
	repo  repository.ChatRepository
	token func() string
	log   *logger.Logger
	now   func() time.Time

	mu        sync.Mutex
	open      bool
	sending   bool
	sessionID entity.SessionID
	messages  []entity.ChatMessage
	// conversation avanza con NewChat/Resume; una respuesta de una conversación anterior se
	// descarta.
	conversation uint64
}

// NewWidget crea el widget cerrado y vacío.
func NewWidget(repo repository.ChatRepository, token func() string, log *logger.Logger) *Widget {
	if log == nil {
		log = logger.Nop()
	}
	return &Widget{repo: repo, token: token, log: log, now: time.Now}
}

// Open abre el widget; la primera vez siembra el mensaje de bienvenida.
func (w *Widget) Open() []entity.ChatMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = true
	if len(w.messages) == 0 {
		w.messages = []entity.ChatMessage{w.welcome()}
	}
	return w.snapshot()
}

// Close cierra el widget sin perder la conversación.
func (w *Widget) Close() {
	w.mu.Lock()
	w.open = false
	w.mu.Unlock()
}

// IsOpen estado de visibilidad.
func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// Sending hay un mensaje esperando respuesta.
func (w *Widget) Sending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sending
}

// Send agrega el mensaje del usuario de inmediato y luego la respuesta del asistente, o una
// disculpa local si el backend falla. La conversación nunca se revierte.
// Devuelve ErrBusy si ya hay un envío en curso y ErrStale si la conversación se reinició
// mientras se esperaba la respuesta.
func (w *Widget) Send(ctx context.Context, text string) (entity.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return entity.ChatMessage{}, domain.ErrInvalidInput
	}

	w.mu.Lock()
	if w.sending {
		w.mu.Unlock()
		return entity.ChatMessage{}, domain.ErrBusy
	}
	if len(w.messages) == 0 {
		w.messages = []entity.ChatMessage{w.welcome()}
	}
	w.sending = true
	w.messages = append(w.messages, entity.ChatMessage{
		ID: uuid.NewString(), Role: entity.ChatRoleUser, Content: text, Timestamp: entity.NewTimestamp(w.now()),
	})
	sid, conv := w.sessionID, w.conversation
	w.mu.Unlock()

	reply, err := w.repo.SendMessage(ctx, w.token(), text, sid)

	w.mu.Lock()
	defer w.mu.Unlock()
	if conv != w.conversation {
		return entity.ChatMessage{}, domain.ErrStale
	}
	w.sending = false

	var msg entity.ChatMessage
	if err != nil {
		w.log.Warn().Err(err).Msg("chatbot: error al enviar mensaje")
		msg = entity.ChatMessage{ID: uuid.NewString(), Role: entity.ChatRoleModel, Content: Apology, Timestamp: entity.NewTimestamp(w.now())}
	} else {
		msg = entity.ChatMessage{
			ID:        uuid.NewString(),
			Role:      entity.ChatRoleModel,
			Content:   reply.Message,
			ToolCalls: reply.ToolCalls,
			Timestamp: reply.CreatedAt,
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = entity.NewTimestamp(w.now())
		}
		if w.sessionID.IsZero() {
			w.sessionID = reply.SessionID
		}
	}
	w.messages = append(w.messages, msg)
	return msg, nil
}

// NewChat descarta localmente transcripción e id de sesión. No avisa al backend.
func (w *Widget) NewChat() []entity.ChatMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.conversation++
	w.sending = false
	w.sessionID = entity.SessionID{}
	w.messages = []entity.ChatMessage{w.welcome()}
	return w.snapshot()
}

// Transcript copia de los mensajes.
func (w *Widget) Transcript() []entity.ChatMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

// SessionID id de sesión del servidor; cero hasta la primera respuesta.
func (w *Widget) SessionID() entity.SessionID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sessionID
}

// Sessions conversaciones guardadas en el servidor.
func (w *Widget) Sessions(ctx context.Context) ([]entity.ChatSession, error) {
	return w.repo.Sessions(ctx, w.token())
}

// Resume reemplaza la transcripción por el historial de una sesión del servidor.
func (w *Widget) Resume(ctx context.Context, id entity.SessionID) ([]entity.ChatMessage, error) {
	w.mu.Lock()
	if w.sending {
		w.mu.Unlock()
		return nil, domain.ErrBusy
	}
	w.conversation++
	conv := w.conversation
	w.mu.Unlock()

	hist, err := w.repo.History(ctx, w.token(), id)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if conv != w.conversation {
		return nil, domain.ErrStale
	}
	msgs := []entity.ChatMessage{w.welcome()}
	for _, m := range hist.Messages {
		if m.Role == entity.ChatRoleTool {
			continue
		}
		mid := m.ID.String()
		if mid == "" {
			mid = uuid.NewString()
		}
		msgs = append(msgs, entity.ChatMessage{
			ID: mid, Role: m.Role, Content: m.Content, ToolCalls: m.ToolCalls, Timestamp: m.CreatedAt,
		})
	}
	w.messages = msgs
	w.sessionID = hist.ID
	if w.sessionID.IsZero() {
		w.sessionID = id
	}
	w.open = true
	return w.snapshot(), nil
}

// DeleteSession elimina una sesión en el servidor. Si es la conversación actual, empieza
// una nueva localmente.
func (w *Widget) DeleteSession(ctx context.Context, id entity.SessionID) error {
	if err := w.repo.DeleteSession(ctx, w.token(), id); err != nil {
		return err
	}
	w.mu.Lock()
	current := !w.sessionID.IsZero() && w.sessionID.String() == id.String()
	w.mu.Unlock()
	if current {
		w.NewChat()
	}
	return nil
}

func (w *Widget) welcome() entity.ChatMessage {
	return entity.ChatMessage{ID: uuid.NewString(), Role: entity.ChatRoleModel, Content: Welcome, Timestamp: entity.NewTimestamp(w.now())}
}

func (w *Widget) snapshot() []entity.ChatMessage {
	return append(make([]entity.ChatMessage, 0, len(w.messages)), w.messages...)
}

package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-console/internal/application/chat"
	"github.com/jhoicas/inventario-console/internal/application/dto"
	"github.com/jhoicas/inventario-console/internal/application/usecase"
	"github.com/jhoicas/inventario-console/internal/domain"
	"github.com/jhoicas/inventario-console/internal/domain/entity"
)

// ChatHandler endpoints JSON del widget de chat que usa el script de layout.html.
type ChatHandler struct {
	ws *usecase.Workspaces
}

// NewChatHandler construye el handler.
func NewChatHandler(ws *usecase.Workspaces) *ChatHandler {
	return &ChatHandler{ws: ws}
}

func (h *ChatHandler) widget(c *fiber.Ctx) *chat.Widget {
	return workspace(c, h.ws).Chat
}

func stateOf(w *chat.Widget, msgs []entity.ChatMessage) dto.ChatStateResponse {
	return dto.ChatStateResponse{Open: w.IsOpen(), Sending: w.Sending(), SessionID: w.SessionID(), Messages: msgs}
}

func chatError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "El mensaje no puede estar vacío"})
	case errors.Is(err, domain.ErrBusy):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "BUSY", Message: msgBusy})
	case errors.Is(err, domain.ErrStale):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "STALE", Message: "La conversación se reinició"})
	}
	return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
		Code: "CHATBOT_ERROR", Message: domain.MessageOr(err, "No se pudo comunicar con el asistente"),
	})
}

// Open GET /chat. Abre el widget; la primera vez siembra el saludo.
func (h *ChatHandler) Open(c *fiber.Ctx) error {
	w := h.widget(c)
	msgs := w.Open()
	return c.JSON(stateOf(w, msgs))
}

// Send POST /chat/message {message}.
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	var in dto.ChatSendRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: msgBadForm})
	}
	w := h.widget(c)
	reply, err := w.Send(c.UserContext(), in.Message)
	if err != nil {
		return chatError(c, err)
	}
	return c.JSON(dto.ChatReplyResponse{Reply: reply, SessionID: w.SessionID(), Messages: w.Transcript()})
}

// NewChat POST /chat/new. Solo reinicia localmente.
func (h *ChatHandler) NewChat(c *fiber.Ctx) error {
	w := h.widget(c)
	msgs := w.NewChat()
	return c.JSON(stateOf(w, msgs))
}

// Close POST /chat/close. La conversación se conserva para la próxima apertura.
func (h *ChatHandler) Close(c *fiber.Ctx) error {
	w := h.widget(c)
	w.Close()
	return c.JSON(stateOf(w, w.Transcript()))
}

// Sessions GET /chat/sessions.
func (h *ChatHandler) Sessions(c *fiber.Ctx) error {
	list, err := h.widget(c).Sessions(c.UserContext())
	if err != nil {
		return chatError(c, err)
	}
	if list == nil {
		list = []entity.ChatSession{}
	}
	return c.JSON(list)
}

// Resume POST /chat/resume {session_id}.
func (h *ChatHandler) Resume(c *fiber.Ctx) error {
	var in dto.ChatSessionRequest
	if err := c.BodyParser(&in); err != nil || in.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "session_id requerido"})
	}
	w := h.widget(c)
	msgs, err := w.Resume(c.UserContext(), entity.ParseSessionID(in.SessionID))
	if err != nil {
		return chatError(c, err)
	}
	return c.JSON(stateOf(w, msgs))
}

// DeleteSession DELETE /chat/session?session_id=.
func (h *ChatHandler) DeleteSession(c *fiber.Ctx) error {
	var in dto.ChatSessionRequest
	_ = c.QueryParser(&in)
	if in.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "session_id requerido"})
	}
	w := h.widget(c)
	if err := w.DeleteSession(c.UserContext(), entity.ParseSessionID(in.SessionID)); err != nil {
		return chatError(c, err)
	}
	return c.JSON(stateOf(w, w.Transcript()))
}

// Me GET /chat/me. Identidad de la sesión para el encabezado del widget.
func (h *ChatHandler) Me(c *fiber.Ctx) error {
	u, _ := GetSession(c).User()
	return c.JSON(dto.UserResponse{ID: u.ID, Email: u.Email, Nombre: u.Name(), Role: u.Role, IsAdmin: u.IsAdmin()})
}

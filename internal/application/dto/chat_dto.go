package dto

import "github.com/jhoicas/inventario-console/internal/domain/entity"

// ChatSendRequest body de POST /chat/message.
type ChatSendRequest struct {
	Message string `json:"message" form:"message"`
}

// ChatSessionRequest body de POST /chat/resume y DELETE /chat/session.
type ChatSessionRequest struct {
	SessionID string `json:"session_id" form:"session_id" query:"session_id"`
}

// ChatStateResponse estado del widget devuelto por los endpoints /chat.
type ChatStateResponse struct {
	Open      bool                 `json:"open"`
	Sending   bool                 `json:"sending"`
	SessionID entity.SessionID     `json:"session_id"`
	Messages  []entity.ChatMessage `json:"messages"`
}

// ChatReplyResponse respuesta de POST /chat/message.
type ChatReplyResponse struct {
	Reply     entity.ChatMessage   `json:"reply"`
	SessionID entity.SessionID     `json:"session_id"`
	Messages  []entity.ChatMessage `json:"messages"`
}

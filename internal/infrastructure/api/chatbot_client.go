package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jhoicas/inventario-console/internal/domain/entity"
	"github.com/jhoicas/inventario-console/internal/domain/repository"
)

var _ repository.ChatRepository = (*ChatbotClient)(nil)

// ChatbotClient asistente remoto: chatbot/message, history y sessions.
type ChatbotClient struct {
	c *Client
}

func NewChatbotClient(c *Client) *ChatbotClient { return &ChatbotClient{c: c} }

type chatMessagePayload struct {
	Message   string           `json:"message"`
	SessionID entity.SessionID `json:"session_id"`
}

// SendMessage POST chatbot/message/. sessionID vacío viaja como null y el backend abre o
// reutiliza una sesión.
func (cb *ChatbotClient) SendMessage(ctx context.Context, token, message string, sessionID entity.SessionID) (*entity.ChatReply, error) {
	var out entity.ChatReply
	err := cb.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/chatbot/message/",
		token:  token,
		body:   chatMessagePayload{Message: message, SessionID: sessionID},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// History GET chatbot/history/?session_id=.
func (cb *ChatbotClient) History(ctx context.Context, token string, sessionID entity.SessionID) (*entity.ChatSession, error) {
	var out entity.ChatSession
	err := cb.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/chatbot/history/",
		token:  token,
		query:  url.Values{"session_id": {sessionID.String()}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Sessions GET chatbot/sessions/.
func (cb *ChatbotClient) Sessions(ctx context.Context, token string) ([]entity.ChatSession, error) {
	return list[entity.ChatSession](ctx, cb.c, "/chatbot/sessions/", token)
}

// DeleteSession DELETE chatbot/sessions/delete/?session_id=.
func (cb *ChatbotClient) DeleteSession(ctx context.Context, token string, sessionID entity.SessionID) error {
	return cb.c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/chatbot/sessions/delete/",
		token:  token,
		query:  url.Values{"session_id": {sessionID.String()}},
	}, nil)
}

package repository

import (
	"context"

	"github.com/jhoicas/inventario-console/internal/domain/entity"
)

// Registration datos de alta de usuario tal como los espera auth/register.
type Registration struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// AuthRepository puerto hacia los endpoints de autenticación.
type AuthRepository interface {
	Login(ctx context.Context, email, password string) (*entity.User, entity.TokenPair, error)
	Register(ctx context.Context, reg Registration) (*entity.User, entity.TokenPair, error)
	Profile(ctx context.Context, token string) (*entity.User, error)
}

// DashboardRepository puerto hacia las estadísticas del dashboard.
type DashboardRepository interface {
	Stats(ctx context.Context, token string) (*entity.DashboardStats, error)
}

// ChatRepository puerto hacia el asistente (chatbot/*).
type ChatRepository interface {
	SendMessage(ctx context.Context, token, message string, sessionID entity.SessionID) (*entity.ChatReply, error)
	History(ctx context.Context, token string, sessionID entity.SessionID) (*entity.ChatSession, error)
	Sessions(ctx context.Context, token string) ([]entity.ChatSession, error)
	DeleteSession(ctx context.Context, token string, sessionID entity.SessionID) error
}

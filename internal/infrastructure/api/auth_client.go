package api

import (
	"context"
	"net/http"

	"github.com/jhoicas/inventario-console/internal/domain/entity"
	"github.com/jhoicas/inventario-console/internal/domain/repository"
)

var _ repository.AuthRepository = (*AuthClient)(nil)

// AuthClient endpoints auth/*.
type AuthClient struct {
	c *Client
}

// NewAuthClient construye el cliente de autenticación.
func NewAuthClient(c *Client) *AuthClient { return &AuthClient{c: c} }

// authResponse respuesta de login y registro.
type authResponse struct {
	User   entity.User      `json:"user"`
	Tokens entity.TokenPair `json:"tokens"`
}

// Login POST auth/login/.
func (a *AuthClient) Login(ctx context.Context, email, password string) (*entity.User, entity.TokenPair, error) {
	var out authResponse
	err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login/",
		body:   map[string]string{"email": email, "password": password},
	}, &out)
	if err != nil {
		return nil, entity.TokenPair{}, err
	}
	return &out.User, out.Tokens, nil
}

// Register POST auth/register/ público: el rol siempre es EXTERNO.
func (a *AuthClient) Register(ctx context.Context, reg repository.Registration) (*entity.User, entity.TokenPair, error) {
	reg.Role = entity.RoleExterno
	return a.register(ctx, "", reg)
}

// RegisterAdmin crea un usuario ADMIN; el backend exige que token sea de un administrador.
func (a *AuthClient) RegisterAdmin(ctx context.Context, token string, reg repository.Registration) (*entity.User, entity.TokenPair, error) {
	reg.Role = entity.RoleAdmin
	return a.register(ctx, token, reg)
}

func (a *AuthClient) register(ctx context.Context, token string, reg repository.Registration) (*entity.User, entity.TokenPair, error) {
	var out authResponse
	err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/register/",
		token:  token,
		body:   reg,
	}, &out)
	if err != nil {
		return nil, entity.TokenPair{}, err
	}
	return &out.User, out.Tokens, nil
}

// Profile GET auth/profile/.
func (a *AuthClient) Profile(ctx context.Context, token string) (*entity.User, error) {
	var u entity.User
	if err := a.c.do(ctx, request{method: http.MethodGet, path: "/auth/profile/", token: token}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// RefreshToken POST auth/token/refresh/. La consola no lo invoca automáticamente.
func (a *AuthClient) RefreshToken(ctx context.Context, refresh string) (string, error) {
	var out struct {
		Access string `json:"access"`
	}
	err := a.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/token/refresh/",
		body:   map[string]string{"refresh": refresh},
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Access, nil
}

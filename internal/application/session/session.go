// Package session almacén de sesión de la consola: usuario actual y par de tokens,
// en memoria y reflejados en almacenamiento durable.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jhoicas/inventario-console/internal/application/dto"
	"github.com/jhoicas/inventario-console/internal/domain"
	"github.com/jhoicas/inventario-console/internal/domain/entity"
	"github.com/jhoicas/inventario-console/internal/domain/repository"
	"github.com/jhoicas/inventario-console/pkg/logger"
)

// Claves fijas dentro del namespace de cada sesión.
const (
	KeyUser   = "user"
	KeyTokens = "tokens"
	KeySeen   = "seen"
)

const (
	msgLoginFailed    = "Error al iniciar sesión"
	msgRegisterFailed = "Error al registrarse"
	seenPersistEvery  = time.Minute
)

// Storage almacenamiento durable por namespace (implementado por infrastructure/bolt).
type Storage interface {
	PutAll(ns string, values map[string][]byte) error
	Put(ns, key string, value []byte) error
	Get(ns, key string) ([]byte, error)
	DeleteNamespace(ns string) error
	Namespaces() ([]string, error)
}

// Result resultado de Login/Register. Error es un mensaje legible cuando Success es false.
type Result struct {
	Success bool
	User    *entity.User
	Error   string
}

// Session estado de una sesión de consola. Es seguro usarla desde varias goroutines.
type Session struct {
	id    string
	auth  repository.AuthRepository
	store Storage
	log   *logger.Logger
	now   func() time.Time

	// admit registra la sesión en el Manager al autenticarse; release la retira en Logout.
	admit   func(*Session)
	release func(id string)

	mu            sync.RWMutex
	user          *entity.User
	tokens        entity.TokenPair
	lastSeen      time.Time
	seenPersisted time.Time
}

// ID identificador de la sesión (valor de la cookie).
func (s *Session) ID() string { return s.id }

// Login autentica contra el backend. Solo en éxito persiste y expone usuario y tokens;
// en fallo no toca ni memoria ni almacenamiento.
func (s *Session) Login(ctx context.Context, email, password string) Result {
	u, tokens, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.log.Debug().Err(err).Str("session", s.id).Msg("login rechazado")
		return Result{Error: domain.MessageOr(err, msgLoginFailed)}
	}
	if err := s.establish(u, tokens); err != nil {
		s.log.Error().Err(err).Str("session", s.id).Msg("persistir sesión")
		return Result{Error: msgLoginFailed}
	}
	return Result{Success: true, User: u}
}

// Register registro público (rol EXTERNO). El mensaje de error prioriza el campo email,
// luego username y luego el mensaje general del backend.
func (s *Session) Register(ctx context.Context, f dto.RegisterForm) Result {
	u, tokens, err := s.auth.Register(ctx, repository.Registration{
		Email:     f.Email,
		Username:  f.Username,
		Password:  f.Password,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Role:      entity.RoleExterno,
	})
	if err != nil {
		s.log.Debug().Err(err).Str("session", s.id).Msg("registro rechazado")
		msg := domain.FieldMessage(err, "email")
		if msg == "" {
			msg = domain.FieldMessage(err, "username")
		}
		if msg == "" {
			msg = domain.MessageOr(err, msgRegisterFailed)
		}
		return Result{Error: msg}
	}
	if err := s.establish(u, tokens); err != nil {
		s.log.Error().Err(err).Str("session", s.id).Msg("persistir sesión")
		return Result{Error: msgRegisterFailed}
	}
	return Result{Success: true, User: u}
}

// establish persiste primero y solo después publica en memoria.
func (s *Session) establish(u *entity.User, tokens entity.TokenPair) error {
	userJSON, err := json.Marshal(u)
	if err != nil {
		return err
	}
	tokensJSON, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	now := s.now()
	seen, _ := now.MarshalText()
	if err := s.store.PutAll(s.id, map[string][]byte{
		KeyUser:   userJSON,
		KeyTokens: tokensJSON,
		KeySeen:   seen,
	}); err != nil {
		return err
	}

	s.mu.Lock()
	cp := *u
	s.user = &cp
	s.tokens = tokens
	s.lastSeen = now
	s.seenPersisted = now
	s.mu.Unlock()
	if s.admit != nil {
		s.admit(s)
	}
	return nil
}

// Logout limpia memoria y almacenamiento y libera los recursos asociados a la sesión.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.user = nil
	s.tokens = entity.TokenPair{}
	s.mu.Unlock()

	err := s.store.DeleteNamespace(s.id)
	if s.release != nil {
		s.release(s.id)
	}
	return err
}

// IsAuthenticated hay usuario y tokens.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.tokens.Valid()
}

// IsAdmin el usuario actual tiene rol ADMIN.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsAdmin()
}

// User copia del usuario actual.
func (s *Session) User() (entity.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return entity.User{}, false
	}
	return *s.user, true
}

// Tokens par de tokens en memoria.
func (s *Session) Tokens() entity.TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens
}

// AccessToken token para las llamadas al backend: primero memoria, si no hay se relee
// del almacenamiento. No hay refresco automático.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	tok := s.tokens.Access
	s.mu.RUnlock()
	if tok != "" {
		return tok
	}
	raw, err := s.store.Get(s.id, KeyTokens)
	if err != nil {
		return ""
	}
	var stored entity.TokenPair
	if json.Unmarshal(raw, &stored) != nil {
		return ""
	}
	return stored.Access
}

// Touch marca actividad. La marca se persiste como mucho una vez por minuto.
func (s *Session) Touch() {
	now := s.now()
	s.mu.Lock()
	s.lastSeen = now
	persist := s.user != nil && now.Sub(s.seenPersisted) >= seenPersistEvery
	if persist {
		s.seenPersisted = now
	}
	s.mu.Unlock()

	if persist {
		seen, _ := now.MarshalText()
		if err := s.store.Put(s.id, KeySeen, seen); err != nil {
			s.log.Warn().Err(err).Str("session", s.id).Msg("persistir actividad")
		}
	}
}

// LastSeen última actividad registrada.
func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

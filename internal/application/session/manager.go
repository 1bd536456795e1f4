package session

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/jhoicas/inventario-console/internal/domain/entity"
	"github.com/jhoicas/inventario-console/internal/domain/repository"
	pkgjwt "github.com/jhoicas/inventario-console/pkg/jwt"
	"github.com/jhoicas/inventario-console/pkg/logger"
)

// Manager dueño de todas las sesiones de consola del proceso. Se construye una vez en main.
type Manager struct {
	store   Storage
	auth    repository.AuthRepository
	log     *logger.Logger
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	onDrop   []func(id string)

	sched *cron.Cron
}

// Option configura el Manager.
type Option func(*Manager)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager construye el manager e hidrata sincrónicamente todas las sesiones persistidas,
// de modo que al arrancar el servidor ninguna sesión válida se vea como anónima.
// Namespaces corruptos o incompletos se eliminan.
func NewManager(store Storage, auth repository.AuthRepository, log *logger.Logger, idleTTL time.Duration, opts ...Option) (*Manager, error) {
	if log == nil {
		log = logger.Nop()
	}
	m := &Manager{
		store:    store,
		auth:     auth,
		log:      log,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: map[string]*Session{},
	}
	for _, o := range opts {
		o(m)
	}
	if err := m.hydrate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) hydrate() error {
	ids, err := m.store.Namespaces()
	if err != nil {
		return fmt.Errorf("listar sesiones persistidas: %w", err)
	}
	for _, id := range ids {
		s, err := m.load(id)
		if err != nil {
			m.log.Warn().Err(err).Str("session", id).Msg("sesión persistida inválida, se descarta")
			if delErr := m.store.DeleteNamespace(id); delErr != nil {
				return fmt.Errorf("descartar sesión %s: %w", id, delErr)
			}
			continue
		}
		m.sessions[id] = s
	}
	m.log.Info().Int("sesiones", len(m.sessions)).Msg("sesiones hidratadas")
	return nil
}

func (m *Manager) load(id string) (*Session, error) {
	rawUser, err := m.store.Get(id, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}
	rawTokens, err := m.store.Get(id, KeyTokens)
	if err != nil {
		return nil, fmt.Errorf("tokens: %w", err)
	}
	var u entity.User
	if err := json.Unmarshal(rawUser, &u); err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}
	var tokens entity.TokenPair
	if err := json.Unmarshal(rawTokens, &tokens); err != nil {
		return nil, fmt.Errorf("tokens: %w", err)
	}
	if !tokens.Valid() {
		return nil, fmt.Errorf("tokens incompletos")
	}

	s := m.newSession(id)
	s.user = &u
	s.tokens = tokens
	s.lastSeen = m.now()
	if raw, err := m.store.Get(id, KeySeen); err == nil {
		var seen time.Time
		if seen.UnmarshalText(raw) == nil {
			s.lastSeen = seen
		}
	}
	s.seenPersisted = s.lastSeen
	return s, nil
}

func (m *Manager) newSession(id string) *Session {
	return &Session{
		id:       id,
		auth:     m.auth,
		store:    m.store,
		log:      m.log,
		now:      m.now,
		admit:    m.admit,
		release:  m.release,
		lastSeen: m.now(),
	}
}

// Create abre una sesión anónima nueva. No se persiste ni queda registrada en el Manager
// hasta que Login o Register tienen éxito; una anónima no guarda estado entre requests.
func (m *Manager) Create() *Session {
	return m.newSession(uuid.NewString())
}

func (m *Manager) admit(s *Session) {
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
}

// Get busca una sesión por id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Len número de sesiones autenticadas en memoria.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// OnDrop registra un callback que se invoca al cerrar sesión o purgarla.
func (m *Manager) OnDrop(fn func(id string)) {
	m.mu.Lock()
	m.onDrop = append(m.onDrop, fn)
	m.mu.Unlock()
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	hooks := append([]func(string){}, m.onDrop...)
	m.mu.Unlock()
	for _, fn := range hooks {
		fn(id)
	}
}

// Purge elimina las sesiones cuyo refresh token venció o que llevan más de idleTTL sin
// actividad. Devuelve cuántas eliminó.
func (m *Manager) Purge(now time.Time) int {
	m.mu.RLock()
	var expired []*Session
	for _, s := range m.sessions {
		if m.expired(s, now) {
			expired = append(expired, s)
		}
	}
	m.mu.RUnlock()

	for _, s := range expired {
		if err := m.store.DeleteNamespace(s.id); err != nil {
			m.log.Warn().Err(err).Str("session", s.id).Msg("purgar sesión")
		}
		m.release(s.id)
	}
	if len(expired) > 0 {
		m.log.Info().Int("purgadas", len(expired)).Msg("sesiones purgadas")
	}
	return len(expired)
}

func (m *Manager) expired(s *Session, now time.Time) bool {
	if m.idleTTL > 0 && now.Sub(s.LastSeen()) > m.idleTTL {
		return true
	}
	refresh := s.Tokens().Refresh
	if refresh == "" {
		return false
	}
	exp, ok := pkgjwt.ExpiresAt(refresh)
	return ok && !exp.After(now)
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// StartJanitor programa Purge con la expresión cron dada (p. ej. "@every 10m").
func (m *Manager) StartJanitor(spec string) error {
	m.sched = cron.New(cron.WithParser(cronParser))
	_, err := m.sched.AddFunc(spec, func() {
		defer func() {
			if r := recover(); r != nil {
				m.log.Error().Interface("panic", r).Msg("janitor de sesiones")
			}
		}()
		m.Purge(m.now())
	})
	if err != nil {
		return fmt.Errorf("programar janitor %q: %w", spec, err)
	}
	m.sched.Start()
	return nil
}

// Close detiene el janitor. El almacenamiento lo cierra su dueño.
func (m *Manager) Close() {
	if m.sched != nil {
		<-m.sched.Stop().Done()
	}
}

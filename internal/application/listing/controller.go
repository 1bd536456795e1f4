package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-console/internal/domain"
	"github.com/jhoicas/inventario-console/pkg/logger"
)

// State estado de la página.
type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateError    State = "error"
	StateSaving   State = "saving"
	StateDeleting State = "deleting"
)

// Source operaciones remotas sobre la colección. Los repositorios de empresa, producto e
// inventario la satisfacen tal cual.
type Source[K comparable, T any] interface {
	List(ctx context.Context, token string) ([]T, error)
	Create(ctx context.Context, token string, item T) (*T, error)
	Update(ctx context.Context, token string, key K, item T) (*T, error)
	Delete(ctx context.Context, token string, key K) error
}

// Messages textos genéricos cuando el backend no trae un mensaje utilizable.
type Messages struct {
	Load   string
	Save   string
	Delete string
}

// Config cableado de un Controller para una entidad.
type Config[K comparable, T any, In any] struct {
	Name   string
	Source Source[K, T]
	Token  func() string
	Key    func(T) K

	// Validate validación local; un mapa no vacío detiene la operación sin llamar al backend.
	Validate func(In) domain.FieldErrors
	// Apply construye la entidad a enviar. base es el valor cero al crear y el elemento
	// actual al editar.
	Apply func(base T, in In) (T, error)
	// Prompt texto de confirmación que nombra al elemento a eliminar.
	Prompt func(T) string
	// Gate autorización previa a eliminar (consultiva; el backend decide).
	Gate func() error

	Messages Messages
	Log      *logger.Logger
}

// Failure error presentable de una operación: errores por campo y/o un mensaje de banner.
type Failure struct {
	Message string
	Fields  domain.FieldErrors
	Err     error
}

func (f *Failure) Error() string {
	if f.Message != "" {
		return f.Message
	}
	if len(f.Fields) > 0 {
		return f.Fields.Error()
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	return "operación fallida"
}

func (f *Failure) Unwrap() error {
	if f.Err != nil {
		return f.Err
	}
	if len(f.Fields) > 0 {
		return f.Fields
	}
	return nil
}

// UserMessage mensaje para el banner.
func (f *Failure) UserMessage() string { return f.Message }

// Confirmation paso explícito antes de eliminar.
type Confirmation struct {
	Token  string
	Prompt string
}

// Snapshot vista coherente del controlador en un instante.
type Snapshot[T any] struct {
	State State
	Items []T // proyección filtrada
	Total int // tamaño de la colección completa
	Error string
}

type pendingDelete[K comparable] struct {
	token string
	key   K
}

// Controller máquina de estados de una página de listado. Es el único dueño de su Collection.
//
// Cada Load toma una generación; al terminar solo se aplica si nadie empezó otro Load ni se
// asentó una escritura después. Mientras la colección no se haya obtenido nunca, las
// escrituras confirmadas no invalidan la carga: quedan en el diario y se reaplican sobre su
// resultado. Reset (la página se desmonta) avanza la época y descarta todo lo que estuviera
// en vuelo.
type Controller[K comparable, T any, In any] struct {
	cfg Config[K, T, In]

	mu      sync.Mutex
	items   *Collection[K, T]
	state   State
	loadErr string
	loadGen uint64
	epoch   uint64
	pending *pendingDelete[K]

	loading bool                      // hay un Load vigente en vuelo
	loaded  bool                      // la colección vino al menos una vez del backend
	journal []func(*Collection[K, T]) // escrituras asentadas antes de la primera carga
}

// NewController construye el controlador en estado idle.
func NewController[K comparable, T any, In any](cfg Config[K, T, In]) *Controller[K, T, In] {
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	if cfg.Token == nil {
		cfg.Token = func() string { return "" }
	}
	return &Controller[K, T, In]{
		cfg:   cfg,
		items: NewCollection(cfg.Key),
		state: StateIdle,
	}
}

// Load trae la colección completa y la reemplaza. Devuelve ErrStale si la respuesta llegó
// después de otro Load, de un Reset o, con la colección ya obtenida, de una escritura asentada.
func (c *Controller[K, T, In]) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loadGen++
	gen, epoch := c.loadGen, c.epoch
	c.loading = true
	if c.state != StateSaving && c.state != StateDeleting {
		c.state = StateLoading
	}
	c.mu.Unlock()

	items, err := c.cfg.Source.List(ctx, c.cfg.Token())

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.loadGen || epoch != c.epoch {
		c.cfg.Log.Debug().Str("listado", c.cfg.Name).Uint64("gen", gen).Msg("respuesta de listado obsoleta descartada")
		return domain.ErrStale
	}
	c.loading = false
	if err != nil {
		c.cfg.Log.Warn().Err(err).Str("listado", c.cfg.Name).Msg("error al cargar")
		c.loadErr = c.cfg.Messages.Load
		c.settle(StateError)
		return &Failure{Message: c.cfg.Messages.Load, Err: err}
	}
	c.items.Replace(items)
	for _, w := range c.journal {
		w(c.items)
	}
	c.journal = nil
	c.loaded = true
	c.loadErr = ""
	c.settle(StateReady)
	return nil
}

// settle fija el estado final de una carga sin pisar una escritura en curso. Requiere c.mu.
func (c *Controller[K, T, In]) settle(s State) {
	if c.state == StateSaving || c.state == StateDeleting {
		return
	}
	c.state = s
}

// Create valida, envía y, solo si el backend confirma, agrega el elemento a la colección.
func (c *Controller[K, T, In]) Create(ctx context.Context, in In) (T, error) {
	var zero T
	if fe := c.cfg.Validate(in); !fe.Empty() {
		return zero, &Failure{Fields: fe, Err: domain.ErrInvalidInput}
	}
	item, err := c.cfg.Apply(zero, in)
	if err != nil {
		return zero, c.failure(err, c.cfg.Messages.Save)
	}
	epoch, prev, err := c.begin(StateSaving)
	if err != nil {
		return zero, err
	}

	created, err := c.cfg.Source.Create(ctx, c.cfg.Token(), item)
	return c.finishWrite(epoch, prev, created, err, func(col *Collection[K, T], v T) { col.Upsert(v) })
}

// Update como Create pero reemplaza por identificador. Rechaza un cambio de identificador.
func (c *Controller[K, T, In]) Update(ctx context.Context, key K, in In) (T, error) {
	var zero T
	if fe := c.cfg.Validate(in); !fe.Empty() {
		return zero, &Failure{Fields: fe, Err: domain.ErrInvalidInput}
	}
	c.mu.Lock()
	base, ok := c.items.Find(key)
	c.mu.Unlock()
	if !ok {
		return zero, &Failure{Message: c.cfg.Messages.Save, Err: domain.ErrNotFound}
	}
	item, err := c.cfg.Apply(base, in)
	if err != nil {
		return zero, c.failure(err, c.cfg.Messages.Save)
	}
	if c.cfg.Key(item) != key {
		return zero, &Failure{Message: domain.ErrImmutableField.Error(), Err: domain.ErrImmutableField}
	}
	epoch, prev, err := c.begin(StateSaving)
	if err != nil {
		return zero, err
	}

	updated, err := c.cfg.Source.Update(ctx, c.cfg.Token(), key, item)
	return c.finishWrite(epoch, prev, updated, err, func(col *Collection[K, T], v T) {
		if !col.ReplaceByKey(key, v) {
			col.Upsert(v)
		}
	})
}

// RequestDelete primer paso de la eliminación: devuelve el token y el texto a confirmar.
func (c *Controller[K, T, In]) RequestDelete(key K) (Confirmation, error) {
	if c.cfg.Gate != nil {
		if err := c.cfg.Gate(); err != nil {
			return Confirmation{}, err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items.Find(key)
	if !ok {
		return Confirmation{}, &Failure{Message: c.cfg.Messages.Delete, Err: domain.ErrNotFound}
	}
	p := &pendingDelete[K]{token: uuid.NewString(), key: key}
	c.pending = p
	return Confirmation{Token: p.token, Prompt: c.cfg.Prompt(item)}, nil
}

// CancelDelete descarta la confirmación pendiente.
func (c *Controller[K, T, In]) CancelDelete(token string) {
	c.mu.Lock()
	if c.pending != nil && c.pending.token == token {
		c.pending = nil
	}
	c.mu.Unlock()
}

// ConfirmDelete ejecuta la eliminación confirmada y quita exactamente un elemento al confirmar
// el backend. En fallo la colección no cambia.
func (c *Controller[K, T, In]) ConfirmDelete(ctx context.Context, token string) (T, error) {
	var zero T
	if c.cfg.Gate != nil {
		if err := c.cfg.Gate(); err != nil {
			return zero, err
		}
	}
	c.mu.Lock()
	p := c.pending
	if p == nil || p.token != token {
		c.mu.Unlock()
		return zero, &Failure{Err: domain.ErrConfirmation}
	}
	if c.state == StateSaving || c.state == StateDeleting {
		c.mu.Unlock()
		return zero, domain.ErrBusy
	}
	c.pending = nil
	item, _ := c.items.Find(p.key)
	prev, epoch := c.state, c.epoch
	c.state = StateDeleting
	c.mu.Unlock()

	err := c.cfg.Source.Delete(ctx, c.cfg.Token(), p.key)

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return zero, domain.ErrStale
	}
	c.state = c.restore(prev)
	if err != nil {
		c.cfg.Log.Warn().Err(err).Str("listado", c.cfg.Name).Msg("error al eliminar")
		return zero, c.failure(err, c.cfg.Messages.Delete)
	}
	key := p.key
	c.settleWrite(func(col *Collection[K, T]) { col.RemoveByKey(key) })
	return item, nil
}

// begin marca una escritura en curso. ErrBusy si ya hay una.
func (c *Controller[K, T, In]) begin(s State) (uint64, State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSaving || c.state == StateDeleting {
		return 0, "", domain.ErrBusy
	}
	prev := c.state
	c.state = s
	return c.epoch, prev, nil
}

func (c *Controller[K, T, In]) finishWrite(epoch uint64, prev State, got *T, err error, apply func(*Collection[K, T], T)) (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return zero, domain.ErrStale
	}
	c.state = c.restore(prev)
	if err != nil {
		c.cfg.Log.Warn().Err(err).Str("listado", c.cfg.Name).Msg("error al guardar")
		return zero, c.failure(err, c.cfg.Messages.Save)
	}
	if got == nil {
		return zero, &Failure{Message: c.cfg.Messages.Save, Err: fmt.Errorf("%s: respuesta vacía", c.cfg.Name)}
	}
	v := *got
	c.settleWrite(func(col *Collection[K, T]) { apply(col, v) })
	return v, nil
}

// settleWrite aplica una escritura confirmada. Con la colección ya obtenida, un listado que
// salió antes ya no refleja el servidor y se invalida; si todavía no hubo carga exitosa, la
// escritura va al diario para reaplicarse sobre la primera. Requiere c.mu.
func (c *Controller[K, T, In]) settleWrite(w func(*Collection[K, T])) {
	w(c.items)
	if c.loaded {
		c.loadGen++
		return
	}
	c.journal = append(c.journal, w)
}

// restore estado al que vuelve la página tras una escritura. Sin una colección obtenida la
// página no pasa a ready: refleja si la carga sigue en vuelo o falló. Requiere c.mu.
func (c *Controller[K, T, In]) restore(prev State) State {
	if !c.loaded {
		switch {
		case c.loading:
			return StateLoading
		case c.loadErr != "":
			return StateError
		}
		return StateIdle
	}
	if prev == StateLoading || prev == StateIdle {
		return StateReady
	}
	return prev
}

// failure traduce un error del backend: campos si los hay; si no, su mensaje o el genérico.
func (c *Controller[K, T, In]) failure(err error, generic string) error {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	if errors.Is(err, domain.ErrImmutableField) {
		return &Failure{Message: domain.ErrImmutableField.Error(), Err: err}
	}
	if fe, ok := domain.AsFieldErrors(err); ok {
		return &Failure{Fields: fe, Message: domain.MessageOr(err, ""), Err: err}
	}
	return &Failure{Message: domain.MessageOr(err, generic), Err: err}
}

// View proyección filtrada de la última colección obtenida. Los filtros se combinan con AND.
func (c *Controller[K, T, In]) View(filters ...func(T) bool) Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	all := c.items.Items()
	out := make([]T, 0, len(all))
next:
	for _, it := range all {
		for _, f := range filters {
			if f != nil && !f(it) {
				continue next
			}
		}
		out = append(out, it)
	}
	return Snapshot[T]{State: c.state, Items: out, Total: len(all), Error: c.loadErr}
}

// Items copia de la colección completa.
func (c *Controller[K, T, In]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Items()
}

// Find busca en la colección.
func (c *Controller[K, T, In]) Find(key K) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Find(key)
}

// State estado actual.
func (c *Controller[K, T, In]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reset desmonta la página: vacía la colección y descarta toda respuesta en vuelo.
func (c *Controller[K, T, In]) Reset() {
	c.mu.Lock()
	c.epoch++
	c.loadGen++
	c.items.Clear()
	c.state = StateIdle
	c.loadErr = ""
	c.pending = nil
	c.loading = false
	c.loaded = false
	c.journal = nil
	c.mu.Unlock()
}

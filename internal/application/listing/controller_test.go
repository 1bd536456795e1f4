package listing_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-console/internal/application/listing"
	"github.com/jhoicas/inventario-console/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fuente en memoria
// ──────────────────────────────────────────────────────────────────────────────

type item struct {
	ID     string
	Nombre string
}

type input struct {
	ID     string
	Nombre string
}

type fakeSource struct {
	mu     sync.Mutex
	data   []item
	fail   map[string]error
	listed chan struct{} // si no es nil, List avisa que empezó
	gate   chan struct{} // si no es nil, List espera aquí antes de responder
	late   error         // error que List devuelve después de pasar el gate
	calls  map[string]int
}

func newSource(items ...item) *fakeSource {
	return &fakeSource{data: items, fail: map[string]error{}, calls: map[string]int{}}
}

func (s *fakeSource) hit(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	err := s.fail[op]
	delete(s.fail, op)
	return err
}

func (s *fakeSource) List(ctx context.Context, token string) ([]item, error) {
	if err := s.hit("list"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	snapshot := append([]item(nil), s.data...)
	listed, gate, late := s.listed, s.gate, s.late
	s.mu.Unlock()
	if listed != nil {
		listed <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if late != nil {
		return nil, late
	}
	return snapshot, nil
}

func (s *fakeSource) Create(ctx context.Context, token string, it item) (*item, error) {
	if err := s.hit("create"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, it)
	return &it, nil
}

func (s *fakeSource) Update(ctx context.Context, token, key string, it item) (*item, error) {
	if err := s.hit("update"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data {
		if s.data[i].ID == key {
			s.data[i] = it
			return &it, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeSource) Delete(ctx context.Context, token, key string) error {
	if err := s.hit("delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data {
		if s.data[i].ID == key {
			s.data = append(s.data[:i], s.data[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// userErr error del backend con mensaje para el usuario.
type userErr struct{ msg string }

func (e userErr) Error() string       { return "backend: " + e.msg }
func (e userErr) UserMessage() string { return e.msg }

func newController(src *fakeSource, gate func() error) *listing.Controller[string, item, input] {
	return listing.NewController(listing.Config[string, item, input]{
		Name:   "items",
		Source: src,
		Key:    func(it item) string { return it.ID },
		Validate: func(in input) domain.FieldErrors {
			fe := domain.FieldErrors{}
			if in.Nombre == "" {
				fe.Add("nombre", "El nombre es requerido")
			}
			return fe
		},
		Apply: func(base item, in input) (item, error) {
			base.ID = in.ID
			base.Nombre = in.Nombre
			return base, nil
		},
		Prompt: func(it item) string { return fmt.Sprintf("¿Eliminar %q?", it.Nombre) },
		Gate:   gate,
		Messages: listing.Messages{
			Load: "Error al cargar", Save: "Error al guardar", Delete: "Error al eliminar",
		},
	})
}

func count(items []item, id string) int {
	n := 0
	for _, it := range items {
		if it.ID == id {
			n++
		}
	}
	return n
}

// ──────────────────────────────────────────────────────────────────────────────
// Carga
// ──────────────────────────────────────────────────────────────────────────────

func TestController_LoadPasaAReadyYLimpiaError(t *testing.T) {
	src := newSource(item{"1", "Uno"})
	c := newController(src, nil)
	assert.Equal(t, listing.StateIdle, c.State())

	src.fail["list"] = errors.New("dial tcp: refused")
	err := c.Load(context.Background())
	require.Error(t, err)
	snap := c.View()
	assert.Equal(t, listing.StateError, snap.State)
	assert.Equal(t, "Error al cargar", snap.Error, "no se expone el error de transporte")

	require.NoError(t, c.Load(context.Background()))
	snap = c.View()
	assert.Equal(t, listing.StateReady, snap.State)
	assert.Empty(t, snap.Error)
	assert.Len(t, snap.Items, 1)
}

func TestController_LoadObsoletoSeDescarta(t *testing.T) {
	src := newSource(item{"1", "Viejo"})
	src.listed = make(chan struct{}, 1)
	gate := make(chan struct{})
	src.gate = gate
	c := newController(src, nil)

	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background()) }()
	<-src.listed // la primera carga ya tomó su foto y quedó bloqueada

	src.mu.Lock()
	src.data = []item{{"2", "Nuevo"}}
	src.listed, src.gate = nil, nil
	src.mu.Unlock()
	require.NoError(t, c.Load(context.Background()))

	close(gate)
	assert.ErrorIs(t, <-done, domain.ErrStale)
	assert.Equal(t, listing.StateReady, c.State())
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].ID, "la respuesta vieja no debe pisar a la nueva")
}

func TestController_EscrituraDuranteLaPrimeraCargaConservaElServidor(t *testing.T) {
	src := newSource(item{"1", "Uno"}, item{"3", "Tres"})
	src.listed = make(chan struct{}, 1)
	gate := make(chan struct{})
	src.gate = gate
	c := newController(src, nil)

	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background()) }()
	<-src.listed // la foto del servidor no incluye la escritura

	_, err := c.Create(context.Background(), input{ID: "2", Nombre: "Dos"})
	require.NoError(t, err)
	assert.Equal(t, listing.StateLoading, c.State(), "sin colección obtenida no pasa a ready")
	close(gate)

	require.NoError(t, <-done)
	items := c.Items()
	assert.Equal(t, 1, count(items, "1"), "lo que el servidor ya tenía sigue listado")
	assert.Equal(t, 1, count(items, "3"))
	assert.Equal(t, 1, count(items, "2"), "la escritura confirmada se reaplica sobre la carga")
	assert.Equal(t, listing.StateReady, c.State())
}

func TestController_PrimeraCargaFallidaDuranteEscrituraQuedaEnError(t *testing.T) {
	src := newSource(item{"1", "Uno"})
	src.listed = make(chan struct{}, 1)
	gate := make(chan struct{})
	src.gate = gate
	src.late = errors.New("dial tcp: refused")
	c := newController(src, nil)

	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background()) }()
	<-src.listed

	_, err := c.Create(context.Background(), input{ID: "2", Nombre: "Dos"})
	require.NoError(t, err)
	close(gate)
	require.Error(t, <-done)
	assert.Equal(t, listing.StateError, c.State(), "la página ofrece reintentar")

	src.mu.Lock()
	src.listed, src.gate, src.late = nil, nil, nil
	src.mu.Unlock()
	require.NoError(t, c.Load(context.Background()))
	items := c.Items()
	assert.Equal(t, 1, count(items, "1"))
	assert.Equal(t, 1, count(items, "2"))
}

func TestController_EscrituraAsentadaInvalidaRecargaPosterior(t *testing.T) {
	src := newSource(item{"1", "Uno"})
	c := newController(src, nil)
	require.NoError(t, c.Load(context.Background()))

	src.mu.Lock()
	src.listed = make(chan struct{}, 1)
	gate := make(chan struct{})
	src.gate = gate
	src.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background()) }()
	<-src.listed

	_, err := c.Create(context.Background(), input{ID: "2", Nombre: "Dos"})
	require.NoError(t, err)
	close(gate)

	assert.ErrorIs(t, <-done, domain.ErrStale)
	items := c.Items()
	assert.Equal(t, 1, count(items, "1"))
	assert.Equal(t, 1, count(items, "2"), "la recarga previa a la escritura no la borra")
	assert.Equal(t, listing.StateReady, c.State())
}

func TestController_ResetDescartaRespuestasEnVuelo(t *testing.T) {
	src := newSource(item{"1", "Uno"})
	src.listed = make(chan struct{}, 1)
	gate := make(chan struct{})
	src.gate = gate
	c := newController(src, nil)

	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background()) }()
	<-src.listed
	c.Reset()
	close(gate)

	assert.ErrorIs(t, <-done, domain.ErrStale)
	assert.Equal(t, listing.StateIdle, c.State())
	assert.Empty(t, c.Items())
}

// ──────────────────────────────────────────────────────────────────────────────
// Escrituras
// ──────────────────────────────────────────────────────────────────────────────

func TestController_IdaYVueltaSinDuplicados(t *testing.T) {
	src := newSource(item{"1", "Uno"})
	c := newController(src, nil)
	require.NoError(t, c.Load(context.Background()))

	_, err := c.Create(context.Background(), input{ID: "2", Nombre: "Dos"})
	require.NoError(t, err)
	assert.Equal(t, 1, count(c.Items(), "2"), "creado aparece exactamente una vez")
	assert.Equal(t, 1, src.calls["list"], "no se recarga tras crear")

	_, err = c.Update(context.Background(), "2", input{ID: "2", Nombre: "Dos editado"})
	require.NoError(t, err)
	items := c.Items()
	assert.Equal(t, 1, count(items, "2"))
	assert.Equal(t, "Dos editado", items[1].Nombre, "se reemplaza en su posición")

	conf, err := c.RequestDelete("2")
	require.NoError(t, err)
	assert.Equal(t, `¿Eliminar "Dos editado"?`, conf.Prompt)
	_, err = c.ConfirmDelete(context.Background(), conf.Token)
	require.NoError(t, err)
	assert.Equal(t, 0, count(c.Items(), "2"))
	assert.Len(t, c.Items(), 1)
	assert.Equal(t, 1, src.calls["list"])
}

func TestController_ValidacionLocalNoLlamaAlBackend(t *testing.T) {
	src := newSource()
	c := newController(src, nil)
	_, err := c.Create(context.Background(), input{ID: "x"})
	require.Error(t, err)

	var f *listing.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, "El nombre es requerido", f.Fields["nombre"])
	assert.Equal(t, 0, src.calls["create"])
}

func TestController_EscrituraFallidaNoMutaLaColeccion(t *testing.T) {
	src := newSource(item{"1", "Uno"})
	c := newController(src, nil)
	require.NoError(t, c.Load(context.Background()))
	before := c.Items()

	src.fail["create"] = domain.FieldErrors{"id": "Ya existe"}
	_, err := c.Create(context.Background(), input{ID: "1", Nombre: "Otro"})
	var f *listing.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, "Ya existe", f.Fields["id"])

	src.fail["update"] = userErr{"Registro bloqueado"}
	_, err = c.Update(context.Background(), "1", input{ID: "1", Nombre: "Cambio"})
	require.ErrorAs(t, err, &f)
	assert.Equal(t, "Registro bloqueado", f.Message)

	src.fail["delete"] = errors.New("connection reset")
	conf, err := c.RequestDelete("1")
	require.NoError(t, err)
	_, err = c.ConfirmDelete(context.Background(), conf.Token)
	require.ErrorAs(t, err, &f)
	assert.Equal(t, "Error al eliminar", f.Message)

	assert.Equal(t, before, c.Items())
	assert.Equal(t, listing.StateReady, c.State())
}

func TestController_UpdateRechazaCambioDeIdentificador(t *testing.T) {
	src := newSource(item{"1", "Uno"})
	c := newController(src, nil)
	require.NoError(t, c.Load(context.Background()))

	_, err := c.Update(context.Background(), "1", input{ID: "9", Nombre: "Uno"})
	assert.ErrorIs(t, err, domain.ErrImmutableField)
	assert.Equal(t, 0, src.calls["update"])
}

func TestController_ConfirmacionDeEliminacion(t *testing.T) {
	src := newSource(item{"1", "Uno"}, item{"2", "Dos"})
	c := newController(src, nil)
	require.NoError(t, c.Load(context.Background()))

	_, err := c.ConfirmDelete(context.Background(), "sin-pedir")
	assert.ErrorIs(t, err, domain.ErrConfirmation)

	conf, err := c.RequestDelete("1")
	require.NoError(t, err)
	c.CancelDelete(conf.Token)
	_, err = c.ConfirmDelete(context.Background(), conf.Token)
	assert.ErrorIs(t, err, domain.ErrConfirmation, "cancelada no se puede confirmar")

	first, err := c.RequestDelete("1")
	require.NoError(t, err)
	second, err := c.RequestDelete("2")
	require.NoError(t, err)
	_, err = c.ConfirmDelete(context.Background(), first.Token)
	assert.ErrorIs(t, err, domain.ErrConfirmation, "solo vale la última confirmación")
	_, err = c.ConfirmDelete(context.Background(), second.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls["delete"])

	_, err = c.RequestDelete("no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestController_GateBloqueaEliminar(t *testing.T) {
	src := newSource(item{"1", "Uno"})
	denied := &listing.Failure{Message: "Solo administradores", Err: domain.ErrForbidden}
	c := newController(src, func() error { return denied })
	require.NoError(t, c.Load(context.Background()))

	_, err := c.RequestDelete("1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 0, src.calls["delete"])
}

func TestController_ViewFiltraConAND(t *testing.T) {
	src := newSource(item{"1", "EmpresaX"}, item{"2", "Other"}, item{"3", "empresa y"})
	c := newController(src, nil)
	require.NoError(t, c.Load(context.Background()))

	search := func(q string) func(item) bool {
		return func(it item) bool { return listing.AnyContains(q, it.Nombre) }
	}
	snap := c.View(search("emp"))
	require.Len(t, snap.Items, 2)
	assert.Equal(t, 3, snap.Total)

	snap = c.View(search("EMP"), func(it item) bool { return strings.HasPrefix(it.ID, "1") })
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "EmpresaX", snap.Items[0].Nombre)
}

func TestAnyContains_PlegadoUnicode(t *testing.T) {
	assert.True(t, listing.AnyContains("ÑANDÚ", "Mouse", "Compañía Ñandú"))
	assert.False(t, listing.AnyContains("teclado", "Mouse"))
	assert.True(t, listing.AnyContains("  ", "lo que sea"))
}

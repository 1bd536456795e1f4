package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-console/internal/application/chat"
	"github.com/jhoicas/inventario-console/internal/domain"
	"github.com/jhoicas/inventario-console/internal/domain/entity"
	"github.com/jhoicas/inventario-console/internal/infrastructure/api"
	"github.com/jhoicas/inventario-console/internal/infrastructure/api/apitest"
)

func newWidget(t *testing.T) (*apitest.Backend, *chat.Widget) {
	t.Helper()
	b := apitest.New(t)
	token := b.Tokens(t, apitest.ExternoEmail).Access
	repo := api.NewChatbotClient(api.NewClient(b.URL(), 5*time.Second, nil))
	return b, chat.NewWidget(repo, func() string { return token }, nil)
}

func TestWidget_OpenSiembraBienvenidaUnaVez(t *testing.T) {
	_, w := newWidget(t)
	assert.Empty(t, w.Transcript())

	msgs := w.Open()
	require.Len(t, msgs, 1)
	assert.Equal(t, entity.ChatRoleModel, msgs[0].Role)
	assert.Equal(t, chat.Welcome, msgs[0].Content)

	w.Close()
	assert.False(t, w.IsOpen())
	assert.Len(t, w.Open(), 1, "reabrir no vuelve a sembrar")
}

func TestWidget_SendCapturaYReutilizaSesion(t *testing.T) {
	b, w := newWidget(t)
	w.Open()

	reply, err := w.Send(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, apitest.Reply("hola"), reply.Content)
	sid := w.SessionID()
	require.False(t, sid.IsZero(), "el id llega con la primera respuesta")

	_, err = w.Send(context.Background(), "otra")
	require.NoError(t, err)
	assert.Equal(t, sid, w.SessionID(), "se reutiliza la misma sesión")

	msgs := w.Transcript()
	require.Len(t, msgs, 5)
	assert.Equal(t, entity.ChatRoleUser, msgs[1].Role)
	assert.Equal(t, "hola", msgs[1].Content)
	assert.Equal(t, 2, b.Calls("POST", "/chatbot/message"))

	sessions, err := w.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1, "dos turnos, una sola sesión en el servidor")
}

func TestWidget_FalloAgregaDisculpaSinRevertir(t *testing.T) {
	b, w := newWidget(t)
	w.Open()
	b.Fail("POST", "/chatbot/message", 500, nil)

	reply, err := w.Send(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, chat.Apology, reply.Content)
	assert.True(t, w.SessionID().IsZero())

	msgs := w.Transcript()
	require.Len(t, msgs, 3)
	assert.Equal(t, "hola", msgs[1].Content, "el mensaje del usuario se conserva")
	assert.Equal(t, chat.Apology, msgs[2].Content)
}

func TestWidget_SendVacioNoLlamaAlBackend(t *testing.T) {
	b, w := newWidget(t)
	_, err := w.Send(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, b.Calls("POST", "/chatbot/message"))
}

func TestWidget_EnvioConcurrenteEsBusy(t *testing.T) {
	b, w := newWidget(t)
	started := make(chan struct{})
	release := make(chan struct{})
	b.OnRequest("POST", "/chatbot/message", func() {
		close(started)
		<-release
	})

	done := make(chan error, 1)
	go func() {
		_, err := w.Send(context.Background(), "primero")
		done <- err
	}()
	<-started
	assert.True(t, w.Sending())
	_, err := w.Send(context.Background(), "segundo")
	assert.ErrorIs(t, err, domain.ErrBusy)

	b.OnRequest("POST", "/chatbot/message", nil)
	close(release)
	require.NoError(t, <-done)
	assert.False(t, w.Sending())
}

func TestWidget_NewChatDescartaRespuestaTardia(t *testing.T) {
	b, w := newWidget(t)
	w.Open()
	started := make(chan struct{})
	release := make(chan struct{})
	b.OnRequest("POST", "/chatbot/message", func() {
		close(started)
		<-release
	})

	done := make(chan error, 1)
	go func() {
		_, err := w.Send(context.Background(), "hola")
		done <- err
	}()
	<-started
	msgs := w.NewChat()
	close(release)

	assert.ErrorIs(t, <-done, domain.ErrStale)
	require.Len(t, msgs, 1)
	assert.Len(t, w.Transcript(), 1, "la respuesta de la conversación descartada no aparece")
	assert.True(t, w.SessionID().IsZero())
}

func TestWidget_NewChatNoBorraEnServidor(t *testing.T) {
	b, w := newWidget(t)
	_, err := w.Send(context.Background(), "hola")
	require.NoError(t, err)

	msgs := w.NewChat()
	require.Len(t, msgs, 1)
	assert.Equal(t, chat.Welcome, msgs[0].Content)
	assert.True(t, w.SessionID().IsZero())
	assert.Equal(t, 0, b.Calls("DELETE", "/chatbot/sessions/delete"))

	sessions, err := w.Sessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestWidget_ResumeYDeleteSession(t *testing.T) {
	_, w := newWidget(t)
	_, err := w.Send(context.Background(), "uno")
	require.NoError(t, err)
	sid := w.SessionID()
	w.NewChat()

	msgs, err := w.Resume(context.Background(), sid)
	require.NoError(t, err)
	require.Len(t, msgs, 3, "bienvenida + historial del servidor")
	assert.Equal(t, "uno", msgs[1].Content)
	assert.Equal(t, apitest.Reply("uno"), msgs[2].Content)
	assert.Equal(t, sid.String(), w.SessionID().String())

	require.NoError(t, w.DeleteSession(context.Background(), sid))
	assert.True(t, w.SessionID().IsZero(), "borrar la conversación actual empieza una nueva")
	sessions, err := w.Sessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

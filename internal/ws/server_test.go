package ws_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MariaBraganca/immobyte/internal/config"
	"github.com/MariaBraganca/immobyte/internal/domain"
	"github.com/MariaBraganca/immobyte/internal/protocol"
	"github.com/MariaBraganca/immobyte/internal/ws"
)

type stubAuth struct {
	user domain.User
	ok   bool
}

func (a stubAuth) Authenticate(r *http.Request) (domain.User, bool) {
	return a.user, a.ok
}

type stubSession struct {
	reply  string
	panics bool
}

func (s stubSession) Call(ctx context.Context, content string) string {
	if s.panics {
		panic("session blew up")
	}
	return s.reply
}

func testConfig() *config.Config {
	return &config.Config{
		PingInterval:   30 * time.Second,
		WriteTimeout:   5 * time.Second,
		ReadTimeout:    30 * time.Second,
		MaxMessageSize: 65536,
	}
}

// newTestServer starts an echo server with the relay mounted at /ws/chat and
// returns a connected client.
func newTestServer(t *testing.T, authenticated bool, factory ws.SessionFactory) *websocket.Conn {
	t.Helper()

	authenticator := stubAuth{user: domain.User{UserID: "u1", Username: "user0"}, ok: authenticated}
	relay := ws.NewServer(testConfig(), authenticator, factory)

	e := echo.New()
	e.GET("/ws/chat", relay.HandleChat)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func staticFactory(session ws.Session) ws.SessionFactory {
	return func(ctx context.Context, user domain.User) (ws.Session, error) {
		return session, nil
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) protocol.ChatEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var event protocol.ChatEvent
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestUnauthenticatedConnectionClosed(t *testing.T) {
	var sessionsCreated atomic.Int32
	factory := func(ctx context.Context, user domain.User) (ws.Session, error) {
		sessionsCreated.Add(1)
		return stubSession{}, nil
	}

	conn := newTestServer(t, false, factory)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
	assert.Equal(t, "forbidden", closeErr.Text)
	assert.Zero(t, sessionsCreated.Load(), "no session may be created for an unauthenticated caller")
}

func TestSessionCreationFailureClosesConnection(t *testing.T) {
	factory := func(ctx context.Context, user domain.User) (ws.Session, error) {
		return nil, errors.New("assistant unavailable")
	}

	conn := newTestServer(t, true, factory)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseInternalServerErr, closeErr.Code)
	assert.Equal(t, "session unavailable", closeErr.Text)
}

func TestEchoThenReply(t *testing.T) {
	conn := newTestServer(t, true, staticFactory(stubSession{reply: "bar"}))

	require.NoError(t, conn.WriteJSON(map[string]string{"message": "foo"}))

	userEcho := readEvent(t, conn)
	assert.Equal(t, protocol.ChatEvent{Message: "foo", Sender: "Du", Avatar: "gray-300"}, userEcho)

	reply := readEvent(t, conn)
	assert.Equal(t, protocol.ChatEvent{Message: "bar", Sender: "Immobyte-GPT", Avatar: "sky-500"}, reply)
}

func TestInvalidEnvelopeEmitsSingleErrorNotice(t *testing.T) {
	conn := newTestServer(t, true, staticFactory(stubSession{reply: "bar"}))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"msg":"foo"}`)))

	notice := readEvent(t, conn)
	assert.Equal(t, "Error: unable to validate message.", notice.Message)
	assert.Equal(t, protocol.SenderSystem, notice.Sender)

	// A following valid payload is handled normally; the invalid one emitted
	// nothing but the single error notice.
	require.NoError(t, conn.WriteJSON(map[string]string{"message": "foo"}))
	userEcho := readEvent(t, conn)
	assert.Equal(t, "foo", userEcho.Message)
	assert.Equal(t, protocol.SenderUser, userEcho.Sender)
}

func TestSessionPanicEmitsErrorNotice(t *testing.T) {
	conn := newTestServer(t, true, staticFactory(stubSession{panics: true}))

	require.NoError(t, conn.WriteJSON(map[string]string{"message": "foo"}))

	userEcho := readEvent(t, conn)
	assert.Equal(t, protocol.SenderUser, userEcho.Sender)

	notice := readEvent(t, conn)
	assert.Equal(t, "Error: unable to process the message.", notice.Message)
	assert.Equal(t, protocol.SenderSystem, notice.Sender)
}

// blockingSession blocks until its context is cancelled, recording that the
// cancellation happened.
type blockingSession struct {
	cancelled chan struct{}
}

func (s *blockingSession) Call(ctx context.Context, content string) string {
	<-ctx.Done()
	close(s.cancelled)
	return "abandoned"
}

func TestDisconnectAbandonsInFlightCall(t *testing.T) {
	session := &blockingSession{cancelled: make(chan struct{})}
	conn := newTestServer(t, true, staticFactory(session))

	require.NoError(t, conn.WriteJSON(map[string]string{"message": "foo"}))

	// The echo confirms the call is in flight before we disconnect.
	userEcho := readEvent(t, conn)
	assert.Equal(t, protocol.SenderUser, userEcho.Sender)

	require.NoError(t, conn.Close())

	select {
	case <-session.cancelled:
	case <-time.After(3 * time.Second):
		t.Fatal("in-flight call was not abandoned after disconnect")
	}
}

func TestMessagesProcessedInOrder(t *testing.T) {
	conn := newTestServer(t, true, staticFactory(stubSession{reply: "bar"}))

	require.NoError(t, conn.WriteJSON(map[string]string{"message": "first"}))
	require.NoError(t, conn.WriteJSON(map[string]string{"message": "second"}))

	// The second payload is not processed until the first has fully resolved.
	want := []string{"first", "bar", "second", "bar"}
	for i, expected := range want {
		event := readEvent(t, conn)
		assert.Equal(t, expected, event.Message, "event %d", i)
	}
}

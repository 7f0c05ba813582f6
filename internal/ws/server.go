// Package ws provides the WebSocket relay between end users and the assistant.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/MariaBraganca/immobyte/internal/auth"
	"github.com/MariaBraganca/immobyte/internal/config"
	"github.com/MariaBraganca/immobyte/internal/domain"
	"github.com/MariaBraganca/immobyte/internal/protocol"
)

// Session is one user conversation with the assistant. Call never returns an
// error; every failure resolves to a user-facing reply string.
type Session interface {
	Call(ctx context.Context, content string) string
}

// SessionFactory creates a session for an authenticated user at connect time.
type SessionFactory func(ctx context.Context, user domain.User) (Session, error)

// Server handles WebSocket chat connections.
type Server struct {
	cfg        *config.Config
	auth       auth.Authenticator
	newSession SessionFactory
	upgrader   websocket.Upgrader
}

// NewServer creates a new WebSocket relay server.
func NewServer(cfg *config.Config, authenticator auth.Authenticator, factory SessionFactory) *Server {
	return &Server{
		cfg:        cfg,
		auth:       authenticator,
		newSession: factory,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleChat handles the WebSocket upgrade and connection lifecycle for one
// chat session. The session lives exactly as long as the connection.
func (s *Server) HandleChat(c echo.Context) error {
	user, authenticated := s.auth.Authenticate(c.Request())

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("failed to upgrade websocket: %v", err)
		return err
	}

	if !authenticated {
		s.closeWith(ws, websocket.ClosePolicyViolation, "forbidden")
		return nil
	}

	// The connection context outlives the HTTP request: cancelling it on
	// disconnect lets an in-flight poll be abandoned without blocking.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := s.newSession(ctx, user)
	if err != nil {
		log.Printf("failed to create chat session for user %s: %v", user.UserID, err)
		s.closeWith(ws, websocket.CloseInternalServerErr, "session unavailable")
		return nil
	}

	conn := newConnection(ws, s.cfg)
	go conn.writePump()

	log.Printf("chat connection %s opened for user %s", conn.id, user.UserID)
	s.serve(ctx, cancel, conn, session)
	log.Printf("chat connection %s closed", conn.id)
	return nil
}

// serve processes inbound payloads strictly one at a time, in arrival order.
// Processing the next payload only starts once the current one has resolved
// to an emitted event. The reader goroutine keeps draining the socket in the
// meantime so a disconnect cancels the connection context even while a
// payload is still being processed, abandoning any in-flight poll.
func (s *Server) serve(ctx context.Context, cancel context.CancelFunc, conn *connection, session Session) {
	defer conn.close()

	inbound := make(chan []byte, 256)
	go s.readPump(cancel, conn, inbound)

	for data := range inbound {
		s.handlePayload(ctx, conn, session, data)
	}
}

// readPump reads payloads from the WebSocket connection until it fails or the
// peer disconnects, then cancels the connection context.
func (s *Server) readPump(cancel context.CancelFunc, conn *connection, inbound chan<- []byte) {
	defer func() {
		cancel()
		close(inbound)
	}()

	conn.ws.SetReadLimit(s.cfg.MaxMessageSize)
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	for {
		conn.ws.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}
		inbound <- data
	}
}

// handlePayload validates one inbound envelope and drives the session. The
// user echo is always emitted before the corresponding reply or error notice.
func (s *Server) handlePayload(ctx context.Context, conn *connection, session Session, data []byte) {
	message, err := protocol.ParseEnvelope(data)
	if err != nil {
		conn.sendEvent(protocol.ErrorNotice("unable to validate message"))
		return
	}

	conn.sendEvent(protocol.UserEcho(message))

	reply, ok := callSession(ctx, session, message)
	if !ok {
		conn.sendEvent(protocol.ErrorNotice("unable to process the message"))
		return
	}
	conn.sendEvent(protocol.AssistantReply(reply))
}

// callSession invokes the session behind a defensive recover boundary.
// Session.Call is designed not to panic, but the relay must not trust that
// absolutely.
func callSession(ctx context.Context, session Session, message string) (reply string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("session call panicked: %v", r)
			ok = false
		}
	}()
	return session.Call(ctx, message), true
}

// closeWith writes a close frame with the given code and reason, then closes.
func (s *Server) closeWith(ws *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(s.cfg.WriteTimeout)
	msg := websocket.FormatCloseMessage(code, reason)
	if err := ws.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		log.Printf("failed to write close frame: %v", err)
	}
	ws.Close()
}

// connection wraps one WebSocket connection with an ordered send queue.
type connection struct {
	id   string
	ws   *websocket.Conn
	cfg  *config.Config
	send chan []byte
	done chan struct{}
}

func newConnection(ws *websocket.Conn, cfg *config.Config) *connection {
	return &connection{
		id:   uuid.New().String(),
		ws:   ws,
		cfg:  cfg,
		send: make(chan []byte, 256),
		done: make(chan struct{}),
	}
}

// sendEvent queues an outbound event. Events queued by the processing loop
// are written in queue order, which preserves the echo-before-reply
// guarantee. A full queue drops the event instead of blocking the loop.
func (c *connection) sendEvent(event protocol.ChatEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal chat event: %v", err)
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
		log.Printf("send queue full, dropping chat event")
	}
}

// writePump writes queued events to the WebSocket connection. A failed write
// is fatal: it is logged and the connection is closed with an unexpected
// condition close code.
func (c *connection) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("failed to write message: %v", err)
				deadline := time.Now().Add(c.cfg.WriteTimeout)
				msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "unexpected condition")
				c.ws.WriteControl(websocket.CloseMessage, msg, deadline)
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// close shuts down the write pump and the underlying socket.
func (c *connection) close() {
	close(c.done)
}

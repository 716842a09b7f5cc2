// Package websocket streams the chat agent over a WebSocket
// connection: the client sends chat:ask messages and receives
// chat:answer replies on the same socket.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gripulse/internal/agent"
	"gripulse/internal/infrastructure"
	"gripulse/internal/llm"
	"gripulse/pkg/contracts/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// ChatHandler upgrades HTTP requests to chat sockets. Each connection
// gets its own session history.
type ChatHandler struct {
	llm      llm.Completer
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewChatHandler creates a chat socket handler.
func NewChatHandler(completer llm.Completer, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		llm: completer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: infrastructure.WithComponent(logger, "websocket.chat"),
	}
}

// ServeHTTP handles GET /api/agent/ws
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	defer conn.Close()

	ctx := infrastructure.EnsureTraceID(r.Context())
	traceID := infrastructure.GetTraceID(ctx)
	client := &chatClient{
		id:      uuid.New().String(),
		conn:    conn,
		session: agent.NewSession(h.llm),
		traceID: traceID,
	}
	client.logger = h.logger.With(
		slog.String("client_id", client.id),
		slog.String("trace_id", traceID))

	client.logger.InfoContext(ctx, "chat client connected",
		slog.String("remote_addr", conn.RemoteAddr().String()))

	// Greet with the assigned client ID so the peer can correlate logs.
	client.write(events.BaseMessage{
		ID:        client.id,
		Type:      events.MessageTypeConnect,
		Timestamp: time.Now(),
		TraceID:   traceID,
	})

	client.run(ctx)
	client.logger.Info("chat client disconnected")
}

type chatClient struct {
	id      string
	conn    *websocket.Conn
	session *agent.Session
	traceID string
	logger  *slog.Logger

	writeMu sync.Mutex
}

func (c *chatClient) run(ctx context.Context) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	stop := make(chan struct{})
	defer close(stop)
	go c.pingLoop(stop)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected close", slog.String("error", err.Error()))
			}
			return
		}

		var base events.BaseMessage
		if err := json.Unmarshal(raw, &base); err != nil {
			c.writeError(base.ID, "invalid message")
			continue
		}

		switch base.Type {
		case events.MessageTypeChatAsk:
			var ask events.ChatAsk
			if err := json.Unmarshal(raw, &ask); err != nil || ask.Question == "" {
				c.writeError(base.ID, "chat:ask requires a question")
				continue
			}
			c.handleAsk(ctx, ask)
		case events.MessageTypeChatReset:
			c.session.Reset()
			c.write(events.BaseMessage{
				ID:        base.ID,
				Type:      events.MessageTypeChatReset,
				Timestamp: time.Now(),
				TraceID:   c.traceID,
			})
		default:
			c.writeError(base.ID, "unsupported message type")
		}
	}
}

func (c *chatClient) handleAsk(ctx context.Context, ask events.ChatAsk) {
	answer, err := c.session.Ask(ctx, ask.Question)
	if err != nil {
		c.logger.Warn("chat completion failed", slog.String("error", err.Error()))
		c.writeError(ask.ID, err.Error())
		return
	}
	c.write(events.ChatAnswer{
		BaseMessage: events.BaseMessage{
			ID:        ask.ID,
			Type:      events.MessageTypeChatAnswer,
			Timestamp: time.Now(),
			TraceID:   c.traceID,
		},
		Answer: answer,
	})
}

func (c *chatClient) writeError(id, message string) {
	c.write(events.ErrorMessage{
		BaseMessage: events.BaseMessage{
			ID:        id,
			Type:      events.MessageTypeError,
			Timestamp: time.Now(),
			TraceID:   c.traceID,
		},
		Error: message,
	})
}

func (c *chatClient) write(v interface{}) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(v); err != nil {
		c.logger.Debug("write failed", slog.String("error", err.Error()))
	}
}

func (c *chatClient) pingLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.writeMu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

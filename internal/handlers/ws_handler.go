package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"chat-realtime-api/internal/chat"
	"chat-realtime-api/internal/logger"
	"chat-realtime-api/internal/middleware"
	"chat-realtime-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

// wsClient implements realtime.Client on top of a websocket connection.
// Frames are queued and written by a single writer goroutine.
type wsClient struct {
	id     string
	userID string
	conn   *websocket.Conn
	cfg    WSConfig

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newWSClient(conn *websocket.Conn, userID string, cfg WSConfig) *wsClient {
	return &wsClient{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
		cfg:    cfg,
		send:   make(chan []byte, cfg.SendBuffer),
		done:   make(chan struct{}),
	}
}

func (c *wsClient) ID() string     { return c.id }
func (c *wsClient) UserID() string { return c.userID }

// Send queues a frame. It reports false when the connection is closed or
// its buffer is full; the frame is then dropped.
func (c *wsClient) Send(message []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// Close stops the writer, which sends a close frame and closes the socket.
func (c *wsClient) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *wsClient) writePump(log *zap.Logger) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug("websocket write failed", zap.String("conn_id", c.id), zap.Error(err))
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.Close()
				return
			}
		}
	}
}

func (c *wsClient) readPump(ctx context.Context, session *realtime.Session, log *zap.Logger) {
	c.conn.SetReadLimit(c.cfg.MaxFrameBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("websocket closed", zap.String("conn_id", c.id), zap.Error(err))
			}
			return
		}

		var env realtime.Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			session.Fail(&chat.ValidationError{Reason: "malformed frame"})
			continue
		}
		if err := session.HandleEvent(ctx, env); err != nil {
			log.Warn("frame not handled", zap.String("conn_id", c.id), zap.Error(err))
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled at Gin level; allow upgrade from any origin here
		return true
	},
}

// WebSocketHandler authenticates the caller, upgrades the connection and
// runs it until either side closes. Authentication happens before the
// upgrade so a rejected caller gets a plain 401 and never reaches the
// registry.
// GET /ws?token=<jwt>
func (h *Handler) WebSocketHandler(c *gin.Context) {
	log := logger.FromContext(c.Request.Context())
	session := realtime.NewSession(h.sessions)

	user, err := h.authn.Resolve(c.Request.Context(), middleware.TokenFromRequest(c))
	if err != nil {
		_ = session.Reject(err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		session.Close()
		return
	}

	client := newWSClient(conn, user.ID, h.ws)
	go client.writePump(log)
	defer client.Close()
	defer session.Close()

	if err := session.Authenticate(*user, client); err != nil {
		log.Error("authenticate session", zap.Error(err))
		return
	}

	// sends outlive the upgrade request's context
	client.readPump(context.WithoutCancel(c.Request.Context()), session, log)
}

package handlers

import (
	"net/http"
	"time"

	"chat-realtime-api/internal/auth"
	"chat-realtime-api/internal/middleware"
	"chat-realtime-api/internal/realtime"
	"chat-realtime-api/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WSConfig tunes the websocket transport.
type WSConfig struct {
	SendBuffer    int
	PingInterval  time.Duration
	PongWait      time.Duration
	MaxFrameBytes int64
}

// Deps are the collaborators the HTTP and websocket handlers need.
type Deps struct {
	Store    *store.Store
	Tokens   *auth.Manager
	Authn    middleware.Authenticator
	Registry *realtime.Registry
	Sessions realtime.SessionDeps
	WS       WSConfig
	Log      *zap.Logger
}

// Handler serves every route of the API.
type Handler struct {
	store    *store.Store
	tokens   *auth.Manager
	authn    middleware.Authenticator
	registry *realtime.Registry
	sessions realtime.SessionDeps
	ws       WSConfig
	log      *zap.Logger
}

func (c WSConfig) withDefaults() WSConfig {
	if c.SendBuffer <= 0 {
		c.SendBuffer = 256
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.PongWait <= c.PingInterval {
		c.PongWait = 2 * c.PingInterval
	}
	if c.MaxFrameBytes <= 0 {
		c.MaxFrameBytes = 16 * 1024
	}
	return c
}

// New builds a Handler from d.
func New(d Deps) *Handler {
	return &Handler{
		store:    d.Store,
		tokens:   d.Tokens,
		authn:    d.Authn,
		registry: d.Registry,
		sessions: d.Sessions,
		ws:       d.WS.withDefaults(),
		log:      d.Log,
	}
}

// Authn exposes the authenticator for route-level middleware.
func (h *Handler) Authn() middleware.Authenticator {
	return h.authn
}

// currentUser returns the id set by the auth middleware, answering 401 when absent.
func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in token",
		})
		return "", false
	}
	return userID, true
}

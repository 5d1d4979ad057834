package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"chat-realtime-api/internal/auth"
	"chat-realtime-api/internal/cache"
	"chat-realtime-api/internal/chat"
	"chat-realtime-api/internal/identity"
	"chat-realtime-api/internal/middleware"
	"chat-realtime-api/internal/realtime"
	"chat-realtime-api/internal/store"
	"chat-realtime-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	store    *store.Store
	tokens   *auth.Manager
	registry *realtime.Registry
	router   *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustDB(t)
	st := store.New(db)
	log := zap.NewNop()
	tokens := auth.NewManager("test-secret", "chat-test", "chat-test-clients", time.Hour)
	resolver := identity.NewResolver(tokens, st, cache.New[string, identity.UserRecord](time.Minute), log)

	svc, err := chat.NewService(st, st, chat.Options{NodeID: 1, MaxContentLength: 200}, log)
	require.NoError(t, err)

	registry := realtime.NewRegistry()
	t.Cleanup(registry.Close)

	h := New(Deps{
		Store:    st,
		Tokens:   tokens,
		Authn:    resolver,
		Registry: registry,
		Sessions: realtime.SessionDeps{
			Broadcaster: realtime.NewBroadcaster(registry, log),
			Sender:      svc,
			Log:         log,
		},
		WS:  WSConfig{SendBuffer: 16, PingInterval: time.Second, PongWait: 5 * time.Second, MaxFrameBytes: 4096},
		Log: log,
	})

	r := gin.New()
	r.GET("/ws", h.WebSocketHandler)
	r.POST("/api/login", h.Login)
	r.POST("/api/register", h.Register)
	p := r.Group("/api")
	p.Use(middleware.JWTAuthMiddleware(resolver))
	p.GET("/users", h.GetAllUsers)
	p.GET("/online", h.GetOnlineUsers)
	p.GET("/friends", h.ListFriends)
	p.GET("/friends/requests", h.ListFriendRequests)
	p.POST("/friends/requests", h.SendFriendRequest)
	p.POST("/friends/requests/:id/accept", h.AcceptFriendRequest)
	p.GET("/messages/:peerId", h.GetConversation)
	p.GET("/notifications", h.ListNotifications)
	p.PATCH("/notifications/:id/read", h.MarkNotificationRead)
	p.GET("/songs", h.GetAllSongs)
	p.GET("/songs/random", h.GetRandomSongs)
	p.GET("/songs/category/:category", h.GetSongsByCategory)

	return &testEnv{db: db, store: st, tokens: tokens, registry: registry, router: r}
}

// token issues an access token for a user created by testutil.SeedUser.
func (e *testEnv) token(t *testing.T, userID, username string) string {
	t.Helper()
	tok, err := e.tokens.GenerateToken("ext-"+userID, username)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}


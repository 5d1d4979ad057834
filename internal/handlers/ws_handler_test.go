package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chat-realtime-api/internal/models"
	"chat-realtime-api/internal/realtime"
	"chat-realtime-api/internal/testutil"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame[T any](t *testing.T, conn *websocket.Conn, event string) T {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var env realtime.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	require.Equal(t, event, env.Event)
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestWebSocket_RejectsBadToken(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	require.Equal(t, 0, env.registry.Len())
}

func TestWebSocket_PresenceAndMessaging(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedUser(t, env.db, "u-1", "alice")
	testutil.SeedUser(t, env.db, "u-2", "bob")
	testutil.SeedFriendship(t, env.db, "u-1", "u-2", models.FriendshipAccepted)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	alice := dialWS(t, srv, env.token(t, "u-1", "alice"))
	st := readFrame[realtime.StatusUpdate](t, alice, realtime.EventUserStatusUpdate)
	require.Equal(t, "u-1", st.UserID)
	require.Equal(t, realtime.ActionConnected, st.Action)
	require.Equal(t, []string{"u-1"}, st.OnlineUsers)

	bob := dialWS(t, srv, env.token(t, "u-2", "bob"))
	for _, c := range []*websocket.Conn{alice, bob} {
		st = readFrame[realtime.StatusUpdate](t, c, realtime.EventUserStatusUpdate)
		require.Equal(t, "u-2", st.UserID)
		require.Equal(t, []string{"u-1", "u-2"}, st.OnlineUsers)
	}

	require.NoError(t, alice.WriteJSON(map[string]any{
		"event": realtime.EventSendMessage,
		"data":  map[string]string{"receiverId": "u-2", "content": "  hello bob  "},
	}))

	got := readFrame[realtime.MessageUpdate](t, bob, realtime.EventMessageUpdate)
	require.Equal(t, "hello bob", got.Message.Content)
	require.Equal(t, "u-1", got.Message.SenderID)
	require.NotNil(t, got.Notification)
	require.Equal(t, "New message from alice", got.Notification.Text)

	echo := readFrame[realtime.MessageUpdate](t, alice, realtime.EventMessageUpdate)
	require.Equal(t, got.Message.ID, echo.Message.ID)
	require.Nil(t, echo.Notification)

	// malformed frames are answered, not fatal
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("not json")))
	fail := readFrame[realtime.MessageError](t, alice, realtime.EventMessageError)
	require.Equal(t, "malformed frame", fail.Message)

	require.NoError(t, bob.Close())
	st = readFrame[realtime.StatusUpdate](t, alice, realtime.EventUserStatusUpdate)
	require.Equal(t, "u-2", st.UserID)
	require.Equal(t, realtime.ActionDisconnected, st.Action)
	require.Equal(t, []string{"u-1"}, st.OnlineUsers)
}

func TestWebSocket_NotFriends(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedUser(t, env.db, "u-1", "alice")
	testutil.SeedUser(t, env.db, "u-3", "carol")
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	alice := dialWS(t, srv, env.token(t, "u-1", "alice"))
	readFrame[realtime.StatusUpdate](t, alice, realtime.EventUserStatusUpdate)

	require.NoError(t, alice.WriteJSON(map[string]any{
		"event": realtime.EventSendMessage,
		"data":  map[string]string{"receiverId": "u-3", "content": "hi"},
	}))
	fail := readFrame[realtime.MessageError](t, alice, realtime.EventMessageError)
	require.Equal(t, "not friends", fail.Message)

	var count int64
	require.NoError(t, env.db.Model(&models.Message{}).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, env.db.Model(&models.Notification{}).Count(&count).Error)
	require.Zero(t, count)
}

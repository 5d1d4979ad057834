package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"chat-realtime-api/internal/chat"
	"chat-realtime-api/internal/identity"
	"chat-realtime-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	friends map[[2]string]bool
	nextID  int64
	calls   int
}

func (f *fakeSender) Send(_ context.Context, req chat.SendRequest) (*chat.Delivery, error) {
	f.calls++
	if req.Content == "" {
		return nil, &chat.ValidationError{Reason: "empty content"}
	}
	if !f.friends[[2]string{req.SenderID, req.ReceiverID}] {
		return nil, &chat.SendRejected{Reason: "not friends"}
	}
	f.nextID++
	msg := &models.Message{ID: f.nextID, SenderID: req.SenderID, ReceiverID: req.ReceiverID, Content: req.Content}
	return &chat.Delivery{
		Message:      msg,
		Notification: &models.Notification{ID: "n", UserID: req.ReceiverID, Type: models.NotificationMessage, MessageID: msg.ID},
	}, nil
}

type harness struct {
	reg    *Registry
	sender *fakeSender
	deps   SessionDeps
}

func newHarness() *harness {
	reg, b := newBroadcaster()
	s := &fakeSender{friends: map[[2]string]bool{{"u-1", "u-2"}: true, {"u-2", "u-1"}: true}}
	return &harness{
		reg:    reg,
		sender: s,
		deps:   SessionDeps{Broadcaster: b, Sender: s, Log: zap.NewNop()},
	}
}

func (h *harness) connect(t *testing.T, user identity.UserRecord, client *fakeClient) *Session {
	t.Helper()
	s := NewSession(h.deps)
	require.NoError(t, s.Authenticate(user, client))
	return s
}

func sendFrame(t *testing.T, receiverID, content string) Envelope {
	t.Helper()
	data, err := json.Marshal(SendMessagePayload{ReceiverID: receiverID, Content: content})
	require.NoError(t, err)
	return Envelope{Event: EventSendMessage, Data: data}
}

var (
	alice = identity.UserRecord{ID: "u-1", Username: "alice"}
	bob   = identity.UserRecord{ID: "u-2", Username: "bob"}
	carol = identity.UserRecord{ID: "u-3", Username: "carol"}
)

func TestSession_RejectNeverRegisters(t *testing.T) {
	h := newHarness()
	s := NewSession(h.deps)

	require.NoError(t, s.Reject(&identity.AuthenticationError{Reason: "missing token"}))
	require.Equal(t, StateRejected, s.State())
	require.Zero(t, h.reg.Len())

	err := s.Authenticate(alice, newFakeClient("c-1", "u-1"))
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Zero(t, h.reg.Len())

	require.ErrorIs(t, s.HandleEvent(context.Background(), sendFrame(t, "u-2", "hi")), ErrNotAuthenticated)
	s.Close()
	require.Equal(t, StateClosed, s.State())
}

func TestSession_ConnectBroadcastsRosterAfterChange(t *testing.T) {
	h := newHarness()
	ac := newFakeClient("c-1", "u-1")
	h.connect(t, alice, ac)
	bc := newFakeClient("c-2", "u-2")
	h.connect(t, bob, bc)

	evts := ac.events(EventUserStatusUpdate)
	require.Len(t, evts, 2)
	last := decode[StatusUpdate](t, evts[1])
	require.Equal(t, "u-2", last.UserID)
	require.Equal(t, ActionConnected, last.Action)
	require.Equal(t, []string{"u-1", "u-2"}, last.OnlineUsers)
}

func TestSession_DisconnectRosterExcludesLeaver(t *testing.T) {
	h := newHarness()
	ac := newFakeClient("c-1", "u-1")
	h.connect(t, alice, ac)
	bs := h.connect(t, bob, newFakeClient("c-2", "u-2"))
	ac.reset()

	bs.Close()
	bs.Close()

	evts := ac.events(EventUserStatusUpdate)
	require.Len(t, evts, 1)
	upd := decode[StatusUpdate](t, evts[0])
	require.Equal(t, ActionDisconnected, upd.Action)
	require.Equal(t, "u-2", upd.UserID)
	require.Equal(t, []string{"u-1"}, upd.OnlineUsers)
}

func TestSession_StaleCloseKeepsUserOnline(t *testing.T) {
	h := newHarness()
	watcher := newFakeClient("c-w", "u-3")
	h.connect(t, carol, watcher)

	s1 := h.connect(t, alice, newFakeClient("h1", "u-1"))
	h.connect(t, alice, newFakeClient("h2", "u-1"))
	watcher.reset()

	s1.Close()

	cur, ok := h.reg.Lookup("u-1")
	require.True(t, ok)
	require.Equal(t, "h2", cur.ID())
	require.Empty(t, watcher.events(EventUserStatusUpdate))
}

func TestSession_SendReceiverOnline(t *testing.T) {
	h := newHarness()
	ac := newFakeClient("c-1", "u-1")
	bc := newFakeClient("c-2", "u-2")
	as := h.connect(t, alice, ac)
	h.connect(t, bob, bc)

	require.NoError(t, as.HandleEvent(context.Background(), sendFrame(t, "u-2", "hello")))

	got := bc.events(EventMessageUpdate)
	require.Len(t, got, 1)
	toBob := decode[MessageUpdate](t, got[0])
	require.Equal(t, "hello", toBob.Message.Content)
	require.NotNil(t, toBob.Notification)
	require.Equal(t, toBob.Message.ID, toBob.Notification.MessageID)

	confirm := ac.events(EventMessageUpdate)
	require.Len(t, confirm, 1)
	toAlice := decode[MessageUpdate](t, confirm[0])
	require.Equal(t, "u-1", toAlice.Message.SenderID)
	require.Nil(t, toAlice.Notification)
	require.NotContains(t, string(confirm[0].Data), "notification")
}

func TestSession_SendReceiverOffline(t *testing.T) {
	h := newHarness()
	ac := newFakeClient("c-1", "u-1")
	as := h.connect(t, alice, ac)

	require.NoError(t, as.HandleEvent(context.Background(), sendFrame(t, "u-2", "are you there")))

	require.Len(t, ac.events(EventMessageUpdate), 1)
	require.Empty(t, ac.events(EventMessageError))
}

func TestSession_SendToNonFriend(t *testing.T) {
	h := newHarness()
	ac := newFakeClient("c-1", "u-1")
	cc := newFakeClient("c-3", "u-3")
	as := h.connect(t, alice, ac)
	h.connect(t, carol, cc)

	require.NoError(t, as.HandleEvent(context.Background(), sendFrame(t, "u-3", "hi")))

	errs := ac.events(EventMessageError)
	require.Len(t, errs, 1)
	require.Equal(t, "not friends", decode[MessageError](t, errs[0]).Message)
	require.Empty(t, cc.events(EventMessageUpdate))
	require.Empty(t, cc.events(EventMessageError))
}

func TestSession_SenderIdentityComesFromSession(t *testing.T) {
	h := newHarness()
	bc := newFakeClient("c-2", "u-2")
	h.connect(t, bob, bc)
	as := h.connect(t, alice, newFakeClient("c-1", "u-1"))

	// a forged senderId in the payload is ignored
	data := json.RawMessage(`{"receiverId":"u-2","content":"hi","senderId":"u-9"}`)
	require.NoError(t, as.HandleEvent(context.Background(), Envelope{Event: EventSendMessage, Data: data}))

	got := bc.events(EventMessageUpdate)
	require.Len(t, got, 1)
	require.Equal(t, "u-1", decode[MessageUpdate](t, got[0]).Message.SenderID)
}

func TestSession_BadFrames(t *testing.T) {
	h := newHarness()
	ac := newFakeClient("c-1", "u-1")
	as := h.connect(t, alice, ac)

	require.NoError(t, as.HandleEvent(context.Background(), Envelope{Event: EventSendMessage, Data: json.RawMessage(`"nope"`)}))
	require.NoError(t, as.HandleEvent(context.Background(), Envelope{Event: "typing"}))
	as.Fail(&chat.ValidationError{Reason: "malformed frame"})

	errs := ac.events(EventMessageError)
	require.Len(t, errs, 3)
	require.Equal(t, "invalid sendMessage payload", decode[MessageError](t, errs[0]).Message)
	require.Equal(t, "unknown event typing", decode[MessageError](t, errs[1]).Message)
	require.Zero(t, h.sender.calls)
}

func TestSession_DoubleAuthenticate(t *testing.T) {
	h := newHarness()
	s := h.connect(t, alice, newFakeClient("c-1", "u-1"))
	err := s.Authenticate(alice, newFakeClient("c-2", "u-1"))
	require.True(t, errors.Is(err, ErrInvalidTransition))
}

// gatedClient blocks inside its first Send until released.
type gatedClient struct {
	*fakeClient
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedClient(id, userID string) *gatedClient {
	return &gatedClient{
		fakeClient: newFakeClient(id, userID),
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (g *gatedClient) Send(message []byte) bool {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.fakeClient.Send(message)
}

func TestSession_ReconnectDuringCloseKeepsPresenceOrdered(t *testing.T) {
	h := newHarness()
	old := h.connect(t, alice, newFakeClient("c-1", "u-1"))

	observer := newGatedClient("c-obs", "u-2")
	h.reg.Register(observer)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		old.Close()
	}()
	<-observer.entered

	go func() {
		defer wg.Done()
		s := NewSession(h.deps)
		assert.NoError(t, s.Authenticate(alice, newFakeClient("c-2", "u-1")))
	}()
	time.Sleep(50 * time.Millisecond)
	close(observer.release)
	wg.Wait()

	require.Equal(t, []string{"u-1", "u-2"}, h.reg.Snapshot())

	evts := observer.events(EventUserStatusUpdate)
	require.Len(t, evts, 2)
	first := decode[StatusUpdate](t, evts[0])
	last := decode[StatusUpdate](t, evts[1])
	require.Equal(t, ActionDisconnected, first.Action)
	require.Equal(t, ActionConnected, last.Action)
	require.Equal(t, h.reg.Snapshot(), last.OnlineUsers)
}

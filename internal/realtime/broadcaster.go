package realtime

import (
	"sync"

	"chat-realtime-api/internal/chat"

	"go.uber.org/zap"
)

// Broadcaster turns presence changes and deliveries into frames and
// routes them through the registry.
type Broadcaster struct {
	registry *Registry
	log      *zap.Logger

	// presence serializes registry mutation, roster snapshot and fan-out so
	// every client sees presence events in registry order.
	presence sync.Mutex
}

// NewBroadcaster builds a Broadcaster over registry.
func NewBroadcaster(registry *Registry, log *zap.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, log: log}
}

// Join registers client as its user's connection and announces the user
// as connected. It returns the handle that was replaced, if any.
func (b *Broadcaster) Join(client Client) Client {
	b.presence.Lock()
	defer b.presence.Unlock()
	prev := b.registry.Register(client)
	b.announce(client.UserID(), ActionConnected)
	return prev
}

// Leave unregisters client and announces the user as disconnected. A stale
// handle is ignored and nothing is sent; Leave then reports false.
func (b *Broadcaster) Leave(client Client) bool {
	b.presence.Lock()
	defer b.presence.Unlock()
	if !b.registry.Unregister(client) {
		return false
	}
	b.announce(client.UserID(), ActionDisconnected)
	return true
}

// announce sends the roster to every connected client. Callers hold presence.
func (b *Broadcaster) announce(userID string, action PresenceAction) {
	frame, err := Encode(EventUserStatusUpdate, StatusUpdate{
		UserID:      userID,
		Action:      action,
		OnlineUsers: b.registry.Snapshot(),
	})
	if err != nil {
		b.log.Error("encode presence event", zap.Error(err))
		return
	}

	for _, c := range b.registry.Clients() {
		if !c.Send(frame) {
			b.log.Warn("presence event dropped", zap.String("user_id", c.UserID()), zap.String("conn_id", c.ID()))
		}
	}
}

// Deliver pushes d to the receiver if they are online and always confirms
// to sender. Offline receivers fetch the message later over HTTP.
func (b *Broadcaster) Deliver(d *chat.Delivery, sender Client) {
	if receiver, ok := b.registry.Lookup(d.Message.ReceiverID); ok {
		b.send(receiver, EventMessageUpdate, MessageUpdate{Message: d.Message, Notification: d.Notification})
	} else {
		b.log.Debug("receiver offline, delivery skipped",
			zap.Int64("message_id", d.Message.ID),
			zap.String("receiver_id", d.Message.ReceiverID))
	}

	b.send(sender, EventMessageUpdate, MessageUpdate{Message: d.Message})
}

// Fail reports err to the sender only.
func (b *Broadcaster) Fail(sender Client, err error) {
	b.send(sender, EventMessageError, MessageError{Message: chat.PublicMessage(err)})
}

func (b *Broadcaster) send(c Client, event string, data any) {
	frame, err := Encode(event, data)
	if err != nil {
		b.log.Error("encode event", zap.String("event", event), zap.Error(err))
		return
	}
	if !c.Send(frame) {
		b.log.Warn("event dropped", zap.String("event", event), zap.String("user_id", c.UserID()), zap.String("conn_id", c.ID()))
	}
}

package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"chat-realtime-api/internal/models"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FriendshipGate answers whether two users may message each other.
type FriendshipGate interface {
	IsAccepted(ctx context.Context, a, b string) (bool, error)
}

// MessageStore appends messages and notifications.
type MessageStore interface {
	CreateMessage(ctx context.Context, m *models.Message) error
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// SendRequest is one message send. SenderID and SenderName come from the
// authenticated connection, never from the client payload.
type SendRequest struct {
	SenderID   string
	SenderName string
	ReceiverID string
	Content    string
}

// Delivery is the result of a successful send.
type Delivery struct {
	Message      *models.Message
	Notification *models.Notification
}

// Options tunes a Service.
type Options struct {
	NodeID           int64
	MaxContentLength int
}

// Service validates, authorizes and persists direct messages.
type Service struct {
	gate   FriendshipGate
	store  MessageStore
	ids    *snowflake.Node
	maxLen int
	now    func() time.Time
	log    *zap.Logger
}

// NewService builds a Service. NodeID must be unique per running instance.
func NewService(gate FriendshipGate, store MessageStore, opts Options, log *zap.Logger) (*Service, error) {
	node, err := snowflake.NewNode(opts.NodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", opts.NodeID, err)
	}
	return &Service{
		gate:   gate,
		store:  store,
		ids:    node,
		maxLen: opts.MaxContentLength,
		now:    time.Now,
		log:    log,
	}, nil
}

// Send runs the pipeline: validate, check friendship, store the message,
// store the notification. A notification failure leaves the message in
// place; the caller gets a *PersistenceFault with Stage "notification".
func (s *Service) Send(ctx context.Context, req SendRequest) (*Delivery, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, &ValidationError{Reason: "empty content"}
	}
	if s.maxLen > 0 && utf8.RuneCountInString(content) > s.maxLen {
		return nil, &ValidationError{Reason: fmt.Sprintf("content exceeds %d characters", s.maxLen)}
	}
	receiverID := strings.TrimSpace(req.ReceiverID)
	if receiverID == "" {
		return nil, &ValidationError{Reason: "receiverId is required"}
	}

	ok, err := s.gate.IsAccepted(ctx, req.SenderID, receiverID)
	if err != nil {
		return nil, &SendRejected{Reason: "friendship check failed", Err: err}
	}
	if !ok {
		return nil, &SendRejected{Reason: "not friends"}
	}

	now := s.now()
	msg := &models.Message{
		ID:         s.ids.Generate().Int64(),
		SenderID:   req.SenderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  now,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, &PersistenceFault{Stage: "message", Err: err}
	}

	notif := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    receiverID,
		Text:      "New message from " + senderLabel(req),
		Type:      models.NotificationMessage,
		MessageID: msg.ID,
		CreatedAt: now,
	}
	if err := s.store.CreateNotification(ctx, notif); err != nil {
		s.log.Warn("message stored without notification",
			zap.Int64("message_id", msg.ID),
			zap.String("receiver_id", receiverID),
			zap.Error(err))
		return nil, &PersistenceFault{Stage: "notification", Err: err}
	}

	return &Delivery{Message: msg, Notification: notif}, nil
}

func senderLabel(req SendRequest) string {
	if req.SenderName != "" {
		return req.SenderName
	}
	return req.SenderID
}

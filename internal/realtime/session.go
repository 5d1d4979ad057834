package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"chat-realtime-api/internal/chat"
	"chat-realtime-api/internal/identity"

	"go.uber.org/zap"
)

// ConnState is the lifecycle state of one connection.
type ConnState int

const (
	StatePending ConnState = iota
	StateAuthenticated
	StateRejected
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAuthenticated:
		return "authenticated"
	case StateRejected:
		return "rejected"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("ConnState(%d)", int(s))
	}
}

var (
	ErrInvalidTransition = errors.New("invalid connection state transition")
	ErrNotAuthenticated  = errors.New("connection is not authenticated")
)

// MessageSender runs the message pipeline.
type MessageSender interface {
	Send(ctx context.Context, req chat.SendRequest) (*chat.Delivery, error)
}

// SessionDeps are the shared collaborators every session uses.
type SessionDeps struct {
	Broadcaster *Broadcaster
	Sender      MessageSender
	Log         *zap.Logger
}

// Session drives one connection through Pending -> Authenticated -> Closed.
// A Pending session can also end in Rejected, which never touches the registry.
type Session struct {
	deps SessionDeps

	mu     sync.Mutex
	state  ConnState
	user   identity.UserRecord
	client Client
}

// NewSession returns a Pending session.
func NewSession(deps SessionDeps) *Session {
	return &Session{deps: deps, state: StatePending}
}

// State returns the current state.
func (s *Session) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reject ends a Pending session after failed authentication.
func (s *Session) Reject(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, StateRejected)
	}
	s.state = StateRejected
	s.deps.Log.Warn("connection rejected", zap.Error(err))
	return nil
}

// Authenticate binds user and client to the session, registers the client
// as the user's connection and announces the user to everyone.
func (s *Session) Authenticate(user identity.UserRecord, client Client) error {
	s.mu.Lock()
	if s.state != StatePending {
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, st, StateAuthenticated)
	}
	s.state = StateAuthenticated
	s.user = user
	s.client = client
	s.mu.Unlock()

	if prev := s.deps.Broadcaster.Join(client); prev != nil {
		s.deps.Log.Info("connection superseded",
			zap.String("user_id", user.ID),
			zap.String("old_conn_id", prev.ID()),
			zap.String("new_conn_id", client.ID()))
	}
	s.deps.Log.Info("user connected", zap.String("user_id", user.ID), zap.String("conn_id", client.ID()))
	return nil
}

// HandleEvent processes one inbound frame. Send failures are reported to
// the client as messageError and are not returned; the returned error is
// only for frames the session cannot accept at all.
func (s *Session) HandleEvent(ctx context.Context, env Envelope) error {
	s.mu.Lock()
	state, user, client := s.state, s.user, s.client
	s.mu.Unlock()
	if state != StateAuthenticated {
		return ErrNotAuthenticated
	}

	switch env.Event {
	case EventSendMessage:
		var payload SendMessagePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			s.fail(client, user, &chat.ValidationError{Reason: "invalid sendMessage payload"})
			return nil
		}

		d, err := s.deps.Sender.Send(ctx, chat.SendRequest{
			SenderID:   user.ID,
			SenderName: user.Username,
			ReceiverID: payload.ReceiverID,
			Content:    payload.Content,
		})
		if err != nil {
			s.fail(client, user, err)
			return nil
		}
		s.deps.Broadcaster.Deliver(d, client)
	default:
		s.fail(client, user, &chat.ValidationError{Reason: "unknown event " + env.Event})
	}
	return nil
}

// Fail reports a malformed frame to the client.
func (s *Session) Fail(err error) {
	s.mu.Lock()
	state, user, client := s.state, s.user, s.client
	s.mu.Unlock()
	if state != StateAuthenticated {
		return
	}
	s.fail(client, user, err)
}

func (s *Session) fail(client Client, user identity.UserRecord, err error) {
	s.deps.Log.Info("send failed", zap.String("user_id", user.ID), zap.Error(err))
	s.deps.Broadcaster.Fail(client, err)
}

// Close ends the session. If this connection was still the user's
// registered one, the user goes offline and everyone is told. A stale
// connection closes silently. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	prev := s.state
	if prev == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	user, client := s.user, s.client
	s.mu.Unlock()

	if prev != StateAuthenticated {
		return
	}
	if !s.deps.Broadcaster.Leave(client) {
		s.deps.Log.Info("stale connection closed", zap.String("user_id", user.ID), zap.String("conn_id", client.ID()))
		return
	}
	s.deps.Log.Info("user disconnected", zap.String("user_id", user.ID), zap.String("conn_id", client.ID()))
}

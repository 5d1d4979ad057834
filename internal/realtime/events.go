package realtime

import (
	"encoding/json"

	"chat-realtime-api/internal/models"
)

// Event names carried in the "event" field of every frame.
const (
	EventUserStatusUpdate = "user_status_update"
	EventSendMessage      = "sendMessage"
	EventMessageUpdate    = "messageUpdate"
	EventMessageError     = "messageError"
)

// PresenceAction says what happened to a user's connection.
type PresenceAction string

const (
	ActionConnected    PresenceAction = "connected"
	ActionDisconnected PresenceAction = "disconnected"
)

// Envelope is one frame on the socket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// StatusUpdate is the payload of user_status_update.
type StatusUpdate struct {
	UserID      string         `json:"userId"`
	Action      PresenceAction `json:"action"`
	OnlineUsers []string       `json:"onlineUsers"`
}

// SendMessagePayload is the payload of sendMessage.
type SendMessagePayload struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// MessageUpdate is the payload of messageUpdate. Notification is only set
// on the copy sent to the receiver.
type MessageUpdate struct {
	Message      *models.Message      `json:"message"`
	Notification *models.Notification `json:"notification,omitempty"`
}

// MessageError is the payload of messageError.
type MessageError struct {
	Message string `json:"message"`
}

// Encode builds a frame for event with data as payload.
func Encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

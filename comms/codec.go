package comms

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// envelope is how a message looks as JSON.
type envelope struct {
	Type      string          `json:"type"`
	LobbyID   string          `json:"lobby_id"`
	MessageID string          `json:"message_id"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessageID makes a fresh message id.
func NewMessageID() string {
	return uuid.NewString()
}

// Marshal turns a message into a payload, without the frame.
func Marshal(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", m.MessageType(), err)
	}
	h := m.Head()
	return json.Marshal(envelope{
		Type:      m.MessageType(),
		LobbyID:   h.LobbyID,
		MessageID: h.MessageID,
		Data:      data,
	})
}

// Unmarshal reads a payload.
func Unmarshal(payload []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	m, err := newMessage(env.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, env.Type)
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, m); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadPayload, env.Type, err)
		}
	}
	h := m.Head()
	h.LobbyID = env.LobbyID
	h.MessageID = env.MessageID
	return m, nil
}

// Encode makes the framed bytes for a message.
func Encode(m Message) ([]byte, error) {
	payload, err := Marshal(m)
	if err != nil {
		return nil, err
	}
	return Frame(payload), nil
}

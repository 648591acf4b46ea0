package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope is the frame delivered to subscribers for every published event
type Envelope struct {
	Event   string          `json:"event"`
	BoardID uuid.UUID       `json:"boardId"`
	Payload json.RawMessage `json:"payload"`
	SentAt  time.Time       `json:"sentAt"`
}

// Encode marshals payload into an envelope and returns the wire bytes
func Encode(boardID uuid.UUID, event string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	msg, err := json.Marshal(Envelope{
		Event:   event,
		BoardID: boardID,
		Payload: raw,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s envelope: %w", event, err)
	}
	return msg, nil
}

// Decode parses wire bytes back into an envelope
func Decode(msg []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return Envelope{}, err
	}
	if env.Event == "" || env.BoardID == uuid.Nil {
		return Envelope{}, fmt.Errorf("envelope missing event or boardId")
	}
	return env, nil
}

package amqpfeed

import (
	"encoding/json"
	"time"

	"github.com/envelope-zero/ledger/pkg/remote"
)

// ChangeMessage is the message published for every change of a document.
type ChangeMessage struct {
	Change    remote.Change `json:"change"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewChangeMessage creates a new message for a change.
func NewChangeMessage(c remote.Change) *ChangeMessage {
	return &ChangeMessage{
		Change:    c,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}

	return &msg, nil
}

package amqp

import (
	"encoding/json"
	"time"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent signals that a user's transaction list changed. It
// carries only identifiers; consumers fetch current state from the store.
type TransactionEvent struct {
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id"`
	Action        string    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEvent(userID, txID, action string) *TransactionEvent {
	return &TransactionEvent{
		UserID:        userID,
		TransactionID: txID,
		Action:        action,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON creates an event from JSON bytes.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

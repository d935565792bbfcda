package events

import (
	"encoding/json"
	"time"
)

// TransactionCreatedMessage is the event published after a transaction is
// persisted. Consumers fetch further detail from the database if they need
// it.
type TransactionCreatedMessage struct {
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	Type          string    `json:"type"`
	AmountCents   int64     `json:"amount_cents"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionCreatedMessage(transactionID, userID, typ string, amountCents int64) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		TransactionID: transactionID,
		UserID:        userID,
		Type:          typ,
		AmountCents:   amountCents,
		Timestamp:     time.Now(),
	}
}

func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

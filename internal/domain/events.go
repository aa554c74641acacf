package domain

import "time"

// Event types
const (
	EventTypeTransferCommitted = "transfer.committed"
)

// Event is an outbound notification emitted after a successful commit.
// Payload holds the type-specific body and must marshal to JSON.
type Event struct {
	ID         string
	Type       string
	Payload    any
	OccurredAt time.Time
}

// TransferCommittedEvent is the payload of an EventTypeTransferCommitted
// event.
type TransferCommittedEvent struct {
	DebitEntryID  string `json:"debit_entry_id"`
	CreditEntryID string `json:"credit_entry_id"`
	FromAccount   string `json:"from_account"`
	ToAccount     string `json:"to_account"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	OccurredAt    string `json:"occurred_at"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a recorded money movement.
type TransactionType string

const (
	Deposit    TransactionType = "DEPOSIT"
	Withdrawal TransactionType = "WITHDRAWAL"
	Transfer   TransactionType = "TRANSFER"
)

// TransactionStatus is the terminal state of a ledger record.
type TransactionStatus string

const (
	Pending   TransactionStatus = "PENDING"
	Completed TransactionStatus = "COMPLETED"
	Failed    TransactionStatus = "FAILED"
)

// TransactionRecord is one immutable entry in the ledger. Once written no
// field ever changes; there is no update path.
// SourceAccount and DestinationAccount are independently optional: a pure
// deposit has no source, a pure withdrawal has no destination. Accounts are
// referenced by number only, with no foreign-key ownership.
type TransactionRecord struct {
	TransactionID      string            `json:"transactionID"`
	SourceAccount      string            `json:"sourceAccount,omitempty"`
	DestinationAccount string            `json:"destinationAccount,omitempty"`
	Amount             decimal.Decimal   `json:"amount"`
	TransactionType    TransactionType   `json:"transactionType"`
	Status             TransactionStatus `json:"status"`
	Description        string            `json:"description,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationEntry records a detected divergence between balance state and
// the ledger: a balance mutation succeeded but the matching ledger record (or a
// compensating credit) could not be written. Entries are queued durably for an
// operator or an automated reconciliation job, never handled inline.
type ReconciliationEntry struct {
	EntryID            string          `json:"entryID"`
	SourceAccount      string          `json:"sourceAccount,omitempty"`
	DestinationAccount string          `json:"destinationAccount,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	Reason             string          `json:"reason"`
	Resolved           bool            `json:"resolved"`
	CreatedAt          time.Time       `json:"createdAt"`
}

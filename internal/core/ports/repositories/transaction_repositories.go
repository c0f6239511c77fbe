package repositories

import (
	"context"

	"github.com/techbank/banking-backend/internal/core/domain"
)

// TransactionReader defines read operations for the ledger.
type TransactionReader interface {
	// FindTransactionByID retrieves a single ledger record.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionRecord, error)

	// ListBySourceAccount retrieves ledger records whose source is the given
	// account, ordered by created_at descending with transaction_id as the
	// tie-breaker. Returns the page and an opaque token for the next page;
	// a nil token means no further pages.
	ListBySourceAccount(ctx context.Context, accountNumber string, limit int, nextToken *string) ([]domain.TransactionRecord, *string, error)

	// ListByDestinationAccount is the destination-side counterpart of
	// ListBySourceAccount with identical ordering and token semantics.
	ListByDestinationAccount(ctx context.Context, accountNumber string, limit int, nextToken *string) ([]domain.TransactionRecord, *string, error)
}

// TransactionWriter defines the single append operation on the ledger.
// There is deliberately no update or delete: records are immutable once written.
type TransactionWriter interface {
	// SaveTransaction appends a new ledger record. Returns
	// apperrors.ErrDuplicate if the transaction ID already exists, which is a
	// fatal id-generator misconfiguration rather than a retryable condition.
	SaveTransaction(ctx context.Context, record domain.TransactionRecord) error
}

// TransactionRepositoryFacade combines ledger read and append interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

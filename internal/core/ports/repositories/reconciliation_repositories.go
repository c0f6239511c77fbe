package repositories

import (
	"context"

	"github.com/techbank/banking-backend/internal/core/domain"
)

// ReconciliationRepositoryFacade persists detected balance/ledger mismatches.
// Writes happen off the request hot path and must be durable: losing an entry
// means silently losing money-movement history.
type ReconciliationRepositoryFacade interface {
	// SaveEntry durably records a mismatch for later resolution.
	SaveEntry(ctx context.Context, entry domain.ReconciliationEntry) error

	// ListUnresolved retrieves queued entries that still need resolution,
	// oldest first.
	ListUnresolved(ctx context.Context, limit int) ([]domain.ReconciliationEntry, error)
}

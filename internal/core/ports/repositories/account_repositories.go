package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/techbank/banking-backend/internal/core/domain"
)

// AccountReader defines read operations for account data.
type AccountReader interface {
	// FindAccountByNumber retrieves a single account snapshot. The read is
	// atomic: balance, version and updated_at always belong to one write.
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts in insertion order.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
type AccountWriter interface {
	// SaveAccount persists a new account. Insert-if-absent semantics: returns
	// apperrors.ErrDuplicate when the account number is already taken.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccountBalance writes a new balance if and only if the stored
	// version still equals expectedVersion (compare-and-swap). Returns
	// apperrors.ErrContention on a version mismatch so the caller can re-run
	// its whole check-then-apply cycle, and apperrors.ErrNotFound when the
	// account does not exist.
	UpdateAccountBalance(ctx context.Context, accountNumber string, expectedVersion int64, newBalance decimal.Decimal, now time.Time) error

	// UpdateAccountStatus transitions the account lifecycle status under the
	// same compare-and-swap contract as UpdateAccountBalance.
	UpdateAccountStatus(ctx context.Context, accountNumber string, expectedVersion int64, status domain.AccountStatus, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}

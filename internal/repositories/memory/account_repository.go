package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/techbank/banking-backend/internal/apperrors"
	"github.com/techbank/banking-backend/internal/core/domain"
	portsrepo "github.com/techbank/banking-backend/internal/core/ports/repositories"
)

// InMemoryAccountRepository keeps accounts in a mutex-guarded map. The version
// check under the lock gives the same compare-and-swap contract as the
// conditional UPDATE in the pgsql implementation, which makes it a faithful
// stand-in for concurrency tests.
type InMemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	order    []string
}

// NewInMemoryAccountRepository creates an empty in-memory account store.
func NewInMemoryAccountRepository() *InMemoryAccountRepository {
	return &InMemoryAccountRepository{
		accounts: make(map[string]domain.Account),
	}
}

// Ensure InMemoryAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*InMemoryAccountRepository)(nil)

// SaveAccount inserts a new account, rejecting duplicates.
func (r *InMemoryAccountRepository) SaveAccount(_ context.Context, account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.AccountNumber]; ok {
		return fmt.Errorf("%w: account %s already exists", apperrors.ErrDuplicate, account.AccountNumber)
	}
	r.accounts[account.AccountNumber] = account
	r.order = append(r.order, account.AccountNumber)
	return nil
}

// FindAccountByNumber retrieves a copy of the stored account.
func (r *InMemoryAccountRepository) FindAccountByNumber(_ context.Context, accountNumber string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[accountNumber]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountNumber)
	}
	return &account, nil
}

// ListAccounts returns accounts in insertion order.
func (r *InMemoryAccountRepository) ListAccounts(_ context.Context, limit int, offset int) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if offset >= len(r.order) || limit <= 0 {
		return []domain.Account{}, nil
	}
	end := offset + limit
	if end > len(r.order) {
		end = len(r.order)
	}

	accounts := make([]domain.Account, 0, end-offset)
	for _, number := range r.order[offset:end] {
		accounts = append(accounts, r.accounts[number])
	}
	return accounts, nil
}

// UpdateAccountBalance applies the compare-and-swap write under the lock.
func (r *InMemoryAccountRepository) UpdateAccountBalance(_ context.Context, accountNumber string, expectedVersion int64, newBalance decimal.Decimal, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[accountNumber]
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountNumber)
	}
	if account.Version != expectedVersion {
		return fmt.Errorf("%w: account %s was modified concurrently", apperrors.ErrContention, accountNumber)
	}

	account.Balance = newBalance
	account.Version++
	account.UpdatedAt = now
	r.accounts[accountNumber] = account
	return nil
}

// UpdateAccountStatus transitions the lifecycle status under the same
// compare-and-swap contract as UpdateAccountBalance.
func (r *InMemoryAccountRepository) UpdateAccountStatus(_ context.Context, accountNumber string, expectedVersion int64, status domain.AccountStatus, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[accountNumber]
	if !ok {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountNumber)
	}
	if account.Version != expectedVersion {
		return fmt.Errorf("%w: account %s was modified concurrently", apperrors.ErrContention, accountNumber)
	}

	account.Status = status
	account.Version++
	account.UpdatedAt = now
	r.accounts[accountNumber] = account
	return nil
}

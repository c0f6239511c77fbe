package memory

import (
	portsrepo "github.com/techbank/banking-backend/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the in-memory implementations together, matching
// the shape of the pgsql provider so callers can swap stores at composition
// time.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:        NewInMemoryAccountRepository(),
		TransactionRepo:    NewInMemoryTransactionRepository(),
		ReconciliationRepo: NewInMemoryReconciliationRepository(),
	}
}

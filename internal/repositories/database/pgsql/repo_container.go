package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/techbank/banking-backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:        newPgxAccountRepository(dbPool),
		TransactionRepo:    newPgxTransactionRepository(dbPool),
		ReconciliationRepo: newPgxReconciliationRepository(dbPool),
	}
}

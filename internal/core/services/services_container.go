package services

import (
	portsrepo "github.com/techbank/banking-backend/internal/core/ports/repositories"
	portssvc "github.com/techbank/banking-backend/internal/core/ports/services"
	"github.com/techbank/banking-backend/internal/platform/clock"
	"github.com/techbank/banking-backend/internal/platform/config"
	"github.com/techbank/banking-backend/internal/platform/idgen"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	clk := clock.System()
	gen := idgen.UUID()

	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.AccountRepo, clk, cfg.BalanceMaxRetries, cfg.RetryBackoffBase)
	container.Transaction = NewTransactionService(repos.TransactionRepo, clk, gen)

	// The transfer coordinator composes the two facades above instead of
	// reaching into the repositories, so its compensation path goes through
	// the same invariant checks as a direct deposit.
	container.Transfer = NewTransferService(container.Account, container.Transaction, repos.ReconciliationRepo, clk, gen)

	return container
}

package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/techbank/banking-backend/internal/core/domain"
	"github.com/techbank/banking-backend/internal/dto"
)

// ServiceContainer holds every service facade the handler layer consumes.
type ServiceContainer struct {
	Account     AccountSvcFacade
	Transaction TransactionSvcFacade
	Transfer    TransferSvcFacade
}

// AccountSvcFacade exposes the balance-mutation core to the handler layer.
// Every mutating operation is an atomic check-then-apply on one account.
type AccountSvcFacade interface {
	OpenAccount(ctx context.Context, req dto.OpenAccountRequest) (*domain.Account, error)
	Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*domain.Account, error)
	Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal) (*domain.Account, error)
	GetBalance(ctx context.Context, accountNumber string) (decimal.Decimal, error)
	GetAccount(ctx context.Context, accountNumber string) (*domain.Account, error)
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
	FreezeAccount(ctx context.Context, accountNumber string) (*domain.Account, error)
	CloseAccount(ctx context.Context, accountNumber string) (*domain.Account, error)
}

// TransactionSvcFacade exposes the ledger to the handler layer. The recorder
// trusts its caller that the underlying balance mutation already happened.
type TransactionSvcFacade interface {
	RecordTransaction(ctx context.Context, req dto.RecordTransactionRequest) (*domain.TransactionRecord, error)
	RecordFailedTransaction(ctx context.Context, req dto.RecordTransactionRequest) (*domain.TransactionRecord, error)
	GetTransaction(ctx context.Context, transactionID string) (*domain.TransactionRecord, error)
	ListBySourceAccount(ctx context.Context, accountNumber string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
	ListByDestinationAccount(ctx context.Context, accountNumber string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// TransferSvcFacade sequences balance mutations with ledger recording. The two
// stores are not covered by one transaction; the facade owns the compensation
// and reconciliation-escalation policy for the gap.
type TransferSvcFacade interface {
	Transfer(ctx context.Context, req dto.TransferRequest) (*domain.TransactionRecord, error)
	ListUnresolvedMismatches(ctx context.Context, limit int) ([]domain.ReconciliationEntry, error)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/techbank/banking-backend/internal/apperrors"
	"github.com/techbank/banking-backend/internal/core/domain"
	portsrepo "github.com/techbank/banking-backend/internal/core/ports/repositories"
	portssvc "github.com/techbank/banking-backend/internal/core/ports/services"
	"github.com/techbank/banking-backend/internal/dto"
	"github.com/techbank/banking-backend/internal/middleware"
	"github.com/techbank/banking-backend/internal/platform/clock"
	"github.com/techbank/banking-backend/internal/platform/idgen"
)

const defaultTransactionPageSize = 20

// TransactionService appends immutable records to the ledger and serves
// paginated history lookups. It does not verify balances: the recorder trusts
// its caller that the underlying balance mutation already succeeded.
type TransactionService struct {
	repo  portsrepo.TransactionRepositoryFacade
	clock clock.Clock
	idGen idgen.Generator
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(repo portsrepo.TransactionRepositoryFacade, clk clock.Clock, gen idgen.Generator) *TransactionService {
	return &TransactionService{
		repo:  repo,
		clock: clk,
		idGen: gen,
	}
}

// Ensure TransactionService implements the portssvc.TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*TransactionService)(nil)

// RecordTransaction appends a COMPLETED ledger record for a movement whose
// balance mutation already succeeded.
func (s *TransactionService) RecordTransaction(ctx context.Context, req dto.RecordTransactionRequest) (*domain.TransactionRecord, error) {
	return s.record(ctx, req, domain.Completed)
}

// RecordFailedTransaction appends a FAILED ledger record, used by the transfer
// coordinator to mark a movement that was rolled back by a compensating credit.
func (s *TransactionService) RecordFailedTransaction(ctx context.Context, req dto.RecordTransactionRequest) (*domain.TransactionRecord, error) {
	return s.record(ctx, req, domain.Failed)
}

func (s *TransactionService) record(ctx context.Context, req dto.RecordTransactionRequest, status domain.TransactionStatus) (*domain.TransactionRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: transaction amount must be positive, got %s", apperrors.ErrValidation, req.Amount.String())
	}
	if req.SourceAccount == "" && req.DestinationAccount == "" {
		return nil, fmt.Errorf("%w: transaction must reference a source or a destination account", apperrors.ErrValidation)
	}

	record := domain.TransactionRecord{
		TransactionID:      s.idGen.NewID(),
		SourceAccount:      req.SourceAccount,
		DestinationAccount: req.DestinationAccount,
		Amount:             req.Amount,
		TransactionType:    req.TransactionType,
		Status:             status,
		Description:        req.Description,
		CreatedAt:          s.clock.Now(),
	}

	if err := s.repo.SaveTransaction(ctx, record); err != nil {
		logger.Error("Failed to save ledger record", slog.String("error", err.Error()), slog.String("transaction_id", record.TransactionID))
		return nil, err
	}

	logger.Info("Ledger record written", slog.String("transaction_id", record.TransactionID), slog.String("type", string(record.TransactionType)), slog.String("status", string(record.Status)))
	return &record, nil
}

// GetTransaction retrieves a single ledger record by its identifier.
func (s *TransactionService) GetTransaction(ctx context.Context, transactionID string) (*domain.TransactionRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	record, err := s.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find ledger record", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	return record, nil
}

// ListBySourceAccount retrieves the account's outgoing history, newest first.
func (s *TransactionService) ListBySourceAccount(ctx context.Context, accountNumber string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	return s.list(ctx, accountNumber, params, s.repo.ListBySourceAccount)
}

// ListByDestinationAccount retrieves the account's incoming history, newest first.
func (s *TransactionService) ListByDestinationAccount(ctx context.Context, accountNumber string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	return s.list(ctx, accountNumber, params, s.repo.ListByDestinationAccount)
}

func (s *TransactionService) list(ctx context.Context, accountNumber string, params dto.ListTransactionsParams,
	query func(context.Context, string, int, *string) ([]domain.TransactionRecord, *string, error)) (*dto.ListTransactionsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = defaultTransactionPageSize
	}

	records, nextToken, err := query(ctx, accountNumber, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list ledger records", slog.String("error", err.Error()), slog.String("account_number", accountNumber))
		return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(records),
		NextToken:    nextToken,
	}, nil
}

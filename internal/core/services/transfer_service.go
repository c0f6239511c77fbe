package services

import (
	"context"
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

const defaultReconciliationPageSize = 20

// TransferService sequences withdraw, deposit and ledger recording for
// transfers. The balance store and the ledger store are not covered by one
// transaction; when the sequence breaks mid-way the service compensates the
// source account and, if even that is impossible, queues the mismatch for
// reconciliation rather than dropping it.
type TransferService struct {
	accountSvc portssvc.AccountSvcFacade
	txnSvc     portssvc.TransactionSvcFacade
	reconRepo  portsrepo.ReconciliationRepositoryFacade
	clock      clock.Clock
	idGen      idgen.Generator
}

// NewTransferService creates a new TransferService.
func NewTransferService(accountSvc portssvc.AccountSvcFacade, txnSvc portssvc.TransactionSvcFacade, reconRepo portsrepo.ReconciliationRepositoryFacade, clk clock.Clock, gen idgen.Generator) *TransferService {
	return &TransferService{
		accountSvc: accountSvc,
		txnSvc:     txnSvc,
		reconRepo:  reconRepo,
		clock:      clk,
		idGen:      gen,
	}
}

// Ensure TransferService implements the portssvc.TransferSvcFacade interface
var _ portssvc.TransferSvcFacade = (*TransferService)(nil)

// Transfer moves amount from the source account to the destination account and
// appends one COMPLETED TRANSFER record to the ledger.
//
// Failure policy:
//   - the withdrawal fails: nothing happened, the error is returned as-is.
//   - the deposit fails: a compensating credit restores the source and a FAILED
//     record documents the attempt; if the compensating credit itself fails the
//     mismatch is queued for reconciliation and ErrReconciliationRequired is
//     returned.
//   - the ledger write fails after both legs succeeded: the balances stand, the
//     mismatch is queued for reconciliation and ErrReconciliationRequired is
//     returned.
func (s *TransferService) Transfer(ctx context.Context, req dto.TransferRequest) (*domain.TransactionRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: transfer amount must be positive, got %s", apperrors.ErrValidation, req.Amount.String())
	}
	if req.SourceAccount == req.DestinationAccount {
		return nil, fmt.Errorf("%w: source and destination accounts must differ", apperrors.ErrValidation)
	}

	if _, err := s.accountSvc.Withdraw(ctx, req.SourceAccount, req.Amount); err != nil {
		return nil, err
	}

	if _, err := s.accountSvc.Deposit(ctx, req.DestinationAccount, req.Amount); err != nil {
		return nil, s.compensate(ctx, req, err)
	}

	record, err := s.txnSvc.RecordTransaction(ctx, dto.RecordTransactionRequest{
		SourceAccount:      req.SourceAccount,
		DestinationAccount: req.DestinationAccount,
		Amount:             req.Amount,
		TransactionType:    domain.Transfer,
		Description:        req.Description,
	})
	if err != nil {
		logger.Error("Ledger record failed after both transfer legs succeeded", slog.String("error", err.Error()), slog.String("source", req.SourceAccount), slog.String("destination", req.DestinationAccount))
		s.queueMismatch(ctx, req, "ledger record failed after completed transfer: "+err.Error())
		return nil, fmt.Errorf("%w: transfer of %s from %s to %s completed without a ledger record", apperrors.ErrReconciliationRequired, req.Amount.String(), req.SourceAccount, req.DestinationAccount)
	}

	logger.Info("Transfer completed", slog.String("transaction_id", record.TransactionID), slog.String("source", req.SourceAccount), slog.String("destination", req.DestinationAccount), slog.String("amount", req.Amount.String()))
	return record, nil
}

// compensate credits the withdrawn amount back to the source after a failed
// deposit leg and documents the attempt with a FAILED ledger record. The
// original deposit error is returned so the caller sees why the transfer
// did not happen.
func (s *TransferService) compensate(ctx context.Context, req dto.TransferRequest, depositErr error) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	logger.Warn("Transfer deposit leg failed, crediting source back", slog.String("error", depositErr.Error()), slog.String("source", req.SourceAccount), slog.String("destination", req.DestinationAccount))

	if _, err := s.accountSvc.Deposit(ctx, req.SourceAccount, req.Amount); err != nil {
		// Money left the source and can be restored by neither leg. This is the
		// one state that must reach an operator.
		logger.Error("Compensating credit failed", slog.String("error", err.Error()), slog.String("source", req.SourceAccount))
		s.queueMismatch(ctx, req, "compensating credit failed after aborted transfer: "+err.Error())
		return fmt.Errorf("%w: %s withdrawn from %s could not be credited back", apperrors.ErrReconciliationRequired, req.Amount.String(), req.SourceAccount)
	}

	// Best effort: the FAILED record is audit trail, not state. Losing it does
	// not change any balance.
	if _, err := s.txnSvc.RecordFailedTransaction(ctx, dto.RecordTransactionRequest{
		SourceAccount:      req.SourceAccount,
		DestinationAccount: req.DestinationAccount,
		Amount:             req.Amount,
		TransactionType:    domain.Transfer,
		Description:        req.Description,
	}); err != nil {
		logger.Warn("Failed to write FAILED transfer record", slog.String("error", err.Error()))
	}

	return fmt.Errorf("transfer aborted, source account refunded: %w", depositErr)
}

// queueMismatch durably records a balance/ledger divergence. If even the
// reconciliation store is down the entry is logged at error level as the
// final fallback.
func (s *TransferService) queueMismatch(ctx context.Context, req dto.TransferRequest, reason string) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry := domain.ReconciliationEntry{
		EntryID:            s.idGen.NewID(),
		SourceAccount:      req.SourceAccount,
		DestinationAccount: req.DestinationAccount,
		Amount:             req.Amount,
		Reason:             reason,
		CreatedAt:          s.clock.Now(),
	}
	if err := s.reconRepo.SaveEntry(ctx, entry); err != nil {
		logger.Error("Failed to queue reconciliation entry",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.EntryID),
			slog.String("source", entry.SourceAccount),
			slog.String("destination", entry.DestinationAccount),
			slog.String("amount", entry.Amount.String()),
			slog.String("reason", entry.Reason),
		)
	}
}

// ListUnresolvedMismatches returns queued reconciliation entries, oldest
// first. Non-positive limits fall back to the default page size.
func (s *TransferService) ListUnresolvedMismatches(ctx context.Context, limit int) ([]domain.ReconciliationEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if limit <= 0 {
		limit = defaultReconciliationPageSize
	}
	entries, err := s.reconRepo.ListUnresolved(ctx, limit)
	if err != nil {
		logger.Error("Failed to list reconciliation entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve reconciliation entries: %w", err)
	}
	if entries == nil {
		return []domain.ReconciliationEntry{}, nil
	}
	return entries, nil
}

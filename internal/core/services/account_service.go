package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"github.com/techbank/banking-backend/internal/apperrors"
	"github.com/techbank/banking-backend/internal/core/domain"
	portsrepo "github.com/techbank/banking-backend/internal/core/ports/repositories"
	portssvc "github.com/techbank/banking-backend/internal/core/ports/services"
	"github.com/techbank/banking-backend/internal/dto"
	"github.com/techbank/banking-backend/internal/middleware"
	"github.com/techbank/banking-backend/internal/platform/clock"
)

const defaultAccountPageSize = 20

// AccountService enforces the balance invariants: non-negative result, positive
// amount, only ACTIVE accounts mutable. Every mutation is one check-then-apply
// cycle against the store's compare-and-swap write; a lost race re-runs the
// whole cycle with exponential backoff until the retry budget is spent.
type AccountService struct {
	repo       portsrepo.AccountRepositoryFacade
	clock      clock.Clock
	maxRetries uint64
	retryBase  time.Duration
}

// NewAccountService creates a new AccountService.
func NewAccountService(repo portsrepo.AccountRepositoryFacade, clk clock.Clock, maxRetries uint64, retryBase time.Duration) *AccountService {
	if maxRetries == 0 {
		maxRetries = 5
	}
	if retryBase <= 0 {
		retryBase = 10 * time.Millisecond
	}
	return &AccountService{
		repo:       repo,
		clock:      clk,
		maxRetries: maxRetries,
		retryBase:  retryBase,
	}
}

// Ensure AccountService implements the portssvc.AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*AccountService)(nil)

// OpenAccount creates a new account with a zero balance and ACTIVE status.
func (s *AccountService) OpenAccount(ctx context.Context, req dto.OpenAccountRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := s.clock.Now()
	account := domain.Account{
		AccountNumber: req.AccountNumber,
		AccountHolder: req.AccountHolder,
		Balance:       decimal.Zero,
		Status:        domain.AccountActive,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.SaveAccount(ctx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save account in repository", slog.String("error", err.Error()), slog.String("account_number", account.AccountNumber))
		}
		return nil, err
	}

	logger.Info("Account opened successfully", slog.String("account_number", account.AccountNumber))
	return &account, nil
}

// Deposit atomically adds a positive amount to the account balance and returns
// the post-mutation snapshot.
func (s *AccountService) Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: deposit amount must be positive, got %s", apperrors.ErrValidation, amount.String())
	}

	account, err := s.mutateBalance(ctx, accountNumber, func(current domain.Account) (decimal.Decimal, error) {
		return current.Balance.Add(amount), nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Deposit applied", slog.String("account_number", accountNumber), slog.String("amount", amount.String()), slog.String("balance", account.Balance.String()))
	return account, nil
}

// Withdraw atomically subtracts a positive amount from the account balance.
// The sufficiency check and the balance write observe no interleaving mutation;
// an insufficient balance fails the request and leaves the account untouched.
func (s *AccountService) Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive, got %s", apperrors.ErrValidation, amount.String())
	}

	account, err := s.mutateBalance(ctx, accountNumber, func(current domain.Account) (decimal.Decimal, error) {
		if current.Balance.LessThan(amount) {
			return decimal.Zero, fmt.Errorf("%w: balance %s is less than withdrawal amount %s", apperrors.ErrInsufficientFunds, current.Balance.String(), amount.String())
		}
		return current.Balance.Sub(amount), nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Withdrawal applied", slog.String("account_number", accountNumber), slog.String("amount", amount.String()), slog.String("balance", account.Balance.String()))
	return account, nil
}

// GetBalance returns the current balance without side effects.
func (s *AccountService) GetBalance(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	account, err := s.GetAccount(ctx, accountNumber)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// GetAccount retrieves an account snapshot by its number.
func (s *AccountService) GetAccount(ctx context.Context, accountNumber string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	account, err := s.repo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account in repository", slog.String("error", err.Error()), slog.String("account_number", accountNumber))
		}
		return nil, err
	}
	return account, nil
}

// ListAccounts retrieves a paginated list of accounts in insertion order.
// Non-positive limits fall back to the default page size and negative offsets
// to zero, so no store implementation ever sees negative bounds.
func (s *AccountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if limit <= 0 {
		limit = defaultAccountPageSize
	}
	if offset < 0 {
		offset = 0
	}
	accounts, err := s.repo.ListAccounts(ctx, limit, offset)
	if err != nil {
		logger.Error("Failed to list accounts from repository", slog.String("error", err.Error()), slog.Int("limit", limit), slog.Int("offset", offset))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

// FreezeAccount transitions an ACTIVE account to FROZEN. Frozen accounts keep
// their balance but reject deposits and withdrawals.
func (s *AccountService) FreezeAccount(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return s.transitionStatus(ctx, accountNumber, domain.AccountFrozen, func(current domain.Account) error {
		if current.Status != domain.AccountActive {
			return fmt.Errorf("%w: only an ACTIVE account can be frozen, account %s is %s", apperrors.ErrValidation, current.AccountNumber, current.Status)
		}
		return nil
	})
}

// CloseAccount transitions an ACTIVE or FROZEN account to CLOSED. Accounts are
// never deleted; closure is the terminal lifecycle state.
func (s *AccountService) CloseAccount(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return s.transitionStatus(ctx, accountNumber, domain.AccountClosed, func(current domain.Account) error {
		if current.Status == domain.AccountClosed {
			return fmt.Errorf("%w: account %s is already closed", apperrors.ErrValidation, current.AccountNumber)
		}
		return nil
	})
}

// mutateBalance runs one full check-then-apply cycle: read the snapshot, check
// the business rules, compute the new balance, and write it with the version
// observed at read time. A version mismatch means another writer got there
// first; the cycle is re-run from the fresh snapshot. Business failures are
// terminal and never retried.
func (s *AccountService) mutateBalance(ctx context.Context, accountNumber string, apply func(domain.Account) (decimal.Decimal, error)) (*domain.Account, error) {
	var result *domain.Account

	operation := func() error {
		account, err := s.repo.FindAccountByNumber(ctx, accountNumber)
		if err != nil {
			return classifyRetry(err)
		}
		if !account.IsMutable() {
			return backoff.Permanent(fmt.Errorf("%w: account %s is %s and cannot be mutated", apperrors.ErrValidation, accountNumber, account.Status))
		}

		newBalance, err := apply(*account)
		if err != nil {
			return backoff.Permanent(err)
		}

		now := s.clock.Now()
		if err := s.repo.UpdateAccountBalance(ctx, accountNumber, account.Version, newBalance, now); err != nil {
			return classifyRetry(err)
		}

		snapshot := *account
		snapshot.Balance = newBalance
		snapshot.Version = account.Version + 1
		snapshot.UpdatedAt = now
		result = &snapshot
		return nil
	}

	if err := backoff.Retry(operation, s.newBackOff(ctx)); err != nil {
		return nil, err
	}
	return result, nil
}

// transitionStatus applies a lifecycle transition under the same
// compare-and-swap retry contract as balance mutations.
func (s *AccountService) transitionStatus(ctx context.Context, accountNumber string, target domain.AccountStatus, check func(domain.Account) error) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	var result *domain.Account

	operation := func() error {
		account, err := s.repo.FindAccountByNumber(ctx, accountNumber)
		if err != nil {
			return classifyRetry(err)
		}
		if err := check(*account); err != nil {
			return backoff.Permanent(err)
		}

		now := s.clock.Now()
		if err := s.repo.UpdateAccountStatus(ctx, accountNumber, account.Version, target, now); err != nil {
			return classifyRetry(err)
		}

		snapshot := *account
		snapshot.Status = target
		snapshot.Version = account.Version + 1
		snapshot.UpdatedAt = now
		result = &snapshot
		return nil
	}

	if err := backoff.Retry(operation, s.newBackOff(ctx)); err != nil {
		return nil, err
	}

	logger.Info("Account status changed", slog.String("account_number", accountNumber), slog.String("status", string(target)))
	return result, nil
}

// newBackOff builds the bounded exponential retry policy for one mutation.
func (s *AccountService) newBackOff(ctx context.Context) backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.retryBase
	expo.MaxElapsedTime = 0 // bounded by the retry count, not wall time
	return backoff.WithContext(backoff.WithMaxRetries(expo, s.maxRetries), ctx)
}

// classifyRetry keeps ErrContention and ErrStoreUnavailable retryable and
// marks every other failure as terminal.
func classifyRetry(err error) error {
	if errors.Is(err, apperrors.ErrContention) || errors.Is(err, apperrors.ErrStoreUnavailable) {
		return err
	}
	return backoff.Permanent(err)
}

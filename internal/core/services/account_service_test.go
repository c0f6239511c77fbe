package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/techbank/banking-backend/internal/apperrors"
	"github.com/techbank/banking-backend/internal/core/domain"
	"github.com/techbank/banking-backend/internal/core/services"
	"github.com/techbank/banking-backend/internal/dto"
	"github.com/techbank/banking-backend/internal/platform/clock"
	"github.com/techbank/banking-backend/internal/repositories/memory"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalance(ctx context.Context, accountNumber string, expectedVersion int64, newBalance decimal.Decimal, now time.Time) error {
	args := m.Called(ctx, accountNumber, expectedVersion, newBalance, now)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccountStatus(ctx context.Context, accountNumber string, expectedVersion int64, status domain.AccountStatus, now time.Time) error {
	args := m.Called(ctx, accountNumber, expectedVersion, status, now)
	return args.Error(0)
}

// --- Test Suite Setup ---

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	service  *services.AccountService
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockRepo, clock.System(), 3, time.Millisecond)
}

func activeAccount(number string, balance string) *domain.Account {
	now := time.Now().UTC().Add(-time.Minute)
	return &domain.Account{
		AccountNumber: number,
		AccountHolder: "Holder",
		Balance:       decimal.RequireFromString(balance),
		Status:        domain.AccountActive,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// --- Test Cases ---

func (suite *AccountServiceTestSuite) TestOpenAccount_Success() {
	ctx := context.Background()
	req := dto.OpenAccountRequest{AccountNumber: "A-1", AccountHolder: "Alice"}

	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.OpenAccount(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.Equal("A-1", account.AccountNumber)
	suite.Equal("Alice", account.AccountHolder)
	suite.True(account.Balance.IsZero())
	suite.Equal(domain.AccountActive, account.Status)
	suite.Equal(int64(1), account.Version)
	suite.WithinDuration(time.Now(), account.CreatedAt, time.Second)

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestOpenAccount_Duplicate() {
	ctx := context.Background()
	req := dto.OpenAccountRequest{AccountNumber: "A-1", AccountHolder: "Alice"}

	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(apperrors.ErrDuplicate).Once()

	account, err := suite.service.OpenAccount(ctx, req)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Nil(account)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeposit_Success() {
	ctx := context.Background()
	existing := activeAccount("A-1", "50.00")

	suite.mockRepo.On("FindAccountByNumber", ctx, "A-1").Return(existing, nil).Once()
	suite.mockRepo.On("UpdateAccountBalance", ctx, "A-1", int64(1), decimal.RequireFromString("120.00"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	account, err := suite.service.Deposit(ctx, "A-1", decimal.RequireFromString("70.00"))

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.True(account.Balance.Equal(decimal.RequireFromString("120.00")))
	suite.Equal(int64(2), account.Version)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeposit_NonPositiveAmount() {
	ctx := context.Background()

	account, err := suite.service.Deposit(ctx, "A-1", decimal.Zero)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(account)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindAccountByNumber")
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccountBalance")
}

func (suite *AccountServiceTestSuite) TestDeposit_AccountNotFound() {
	ctx := context.Background()

	suite.mockRepo.On("FindAccountByNumber", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.Deposit(ctx, "missing", decimal.RequireFromString("10.00"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(account)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeposit_FrozenAccount() {
	ctx := context.Background()
	frozen := activeAccount("A-1", "50.00")
	frozen.Status = domain.AccountFrozen

	suite.mockRepo.On("FindAccountByNumber", ctx, "A-1").Return(frozen, nil).Once()

	account, err := suite.service.Deposit(ctx, "A-1", decimal.RequireFromString("10.00"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(account)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccountBalance")
}

func (suite *AccountServiceTestSuite) TestWithdraw_Success() {
	ctx := context.Background()
	existing := activeAccount("A-1", "50.00")

	suite.mockRepo.On("FindAccountByNumber", ctx, "A-1").Return(existing, nil).Once()
	suite.mockRepo.On("UpdateAccountBalance", ctx, "A-1", int64(1), decimal.RequireFromString("30.00"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	account, err := suite.service.Withdraw(ctx, "A-1", decimal.RequireFromString("20.00"))

	suite.Require().NoError(err)
	suite.True(account.Balance.Equal(decimal.RequireFromString("30.00")))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestWithdraw_InsufficientFunds() {
	ctx := context.Background()
	existing := activeAccount("A-1", "10.00")

	suite.mockRepo.On("FindAccountByNumber", ctx, "A-1").Return(existing, nil).Once()

	account, err := suite.service.Withdraw(ctx, "A-1", decimal.RequireFromString("50.00"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.Nil(account)
	// The balance write never happens on a failed sufficiency check.
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccountBalance")
}

func (suite *AccountServiceTestSuite) TestWithdraw_ExactBalance() {
	ctx := context.Background()
	existing := activeAccount("A-1", "50.00")

	suite.mockRepo.On("FindAccountByNumber", ctx, "A-1").Return(existing, nil).Once()
	suite.mockRepo.On("UpdateAccountBalance", ctx, "A-1", int64(1), mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.IsZero()
	}), mock.AnythingOfType("time.Time")).Return(nil).Once()

	account, err := suite.service.Withdraw(ctx, "A-1", decimal.RequireFromString("50.00"))

	suite.Require().NoError(err)
	suite.True(account.Balance.IsZero())
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeposit_RetriesAfterContention() {
	ctx := context.Background()
	first := activeAccount("A-1", "50.00")
	second := activeAccount("A-1", "60.00")
	second.Version = 2

	suite.mockRepo.On("FindAccountByNumber", ctx, "A-1").Return(first, nil).Once()
	suite.mockRepo.On("UpdateAccountBalance", ctx, "A-1", int64(1), mock.Anything, mock.Anything).Return(apperrors.ErrContention).Once()
	suite.mockRepo.On("FindAccountByNumber", ctx, "A-1").Return(second, nil).Once()
	suite.mockRepo.On("UpdateAccountBalance", ctx, "A-1", int64(2), decimal.RequireFromString("70.00"), mock.Anything).Return(nil).Once()

	account, err := suite.service.Deposit(ctx, "A-1", decimal.RequireFromString("10.00"))

	suite.Require().NoError(err)
	suite.True(account.Balance.Equal(decimal.RequireFromString("70.00")))
	suite.Equal(int64(3), account.Version)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeposit_ContentionBudgetExhausted() {
	ctx := context.Background()

	suite.mockRepo.On("FindAccountByNumber", ctx, "A-1").Return(activeAccount("A-1", "50.00"), nil)
	suite.mockRepo.On("UpdateAccountBalance", ctx, "A-1", int64(1), mock.Anything, mock.Anything).Return(apperrors.ErrContention)

	account, err := suite.service.Deposit(ctx, "A-1", decimal.RequireFromString("10.00"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrContention)
	suite.Nil(account)
}

func (suite *AccountServiceTestSuite) TestFreezeAccount_Success() {
	ctx := context.Background()
	existing := activeAccount("A-1", "50.00")

	suite.mockRepo.On("FindAccountByNumber", ctx, "A-1").Return(existing, nil).Once()
	suite.mockRepo.On("UpdateAccountStatus", ctx, "A-1", int64(1), domain.AccountFrozen, mock.AnythingOfType("time.Time")).Return(nil).Once()

	account, err := suite.service.FreezeAccount(ctx, "A-1")

	suite.Require().NoError(err)
	suite.Equal(domain.AccountFrozen, account.Status)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestFreezeAccount_NotActive() {
	ctx := context.Background()
	closed := activeAccount("A-1", "0")
	closed.Status = domain.AccountClosed

	suite.mockRepo.On("FindAccountByNumber", ctx, "A-1").Return(closed, nil).Once()

	account, err := suite.service.FreezeAccount(ctx, "A-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(account)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccountStatus")
}

func (suite *AccountServiceTestSuite) TestCloseAccount_FromFrozen() {
	ctx := context.Background()
	frozen := activeAccount("A-1", "50.00")
	frozen.Status = domain.AccountFrozen

	suite.mockRepo.On("FindAccountByNumber", ctx, "A-1").Return(frozen, nil).Once()
	suite.mockRepo.On("UpdateAccountStatus", ctx, "A-1", int64(1), domain.AccountClosed, mock.AnythingOfType("time.Time")).Return(nil).Once()

	account, err := suite.service.CloseAccount(ctx, "A-1")

	suite.Require().NoError(err)
	suite.Equal(domain.AccountClosed, account.Status)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCloseAccount_AlreadyClosed() {
	ctx := context.Background()
	closed := activeAccount("A-1", "0")
	closed.Status = domain.AccountClosed

	suite.mockRepo.On("FindAccountByNumber", ctx, "A-1").Return(closed, nil).Once()

	account, err := suite.service.CloseAccount(ctx, "A-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(account)
}

func (suite *AccountServiceTestSuite) TestGetBalance_Success() {
	ctx := context.Background()
	existing := activeAccount("A-1", "42.50")

	suite.mockRepo.On("FindAccountByNumber", ctx, "A-1").Return(existing, nil).Once()

	balance, err := suite.service.GetBalance(ctx, "A-1")

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.RequireFromString("42.50")))
}

func (suite *AccountServiceTestSuite) TestListAccounts_EmptyResult() {
	ctx := context.Background()

	suite.mockRepo.On("ListAccounts", ctx, 20, 0).Return(nil, nil).Once()

	accounts, err := suite.service.ListAccounts(ctx, 20, 0)

	suite.Require().NoError(err)
	suite.NotNil(accounts)
	suite.Empty(accounts)
}

func (suite *AccountServiceTestSuite) TestListAccounts_NegativeBoundsClamped() {
	ctx := context.Background()

	// The store must never see negative bounds; they clamp to the defaults.
	suite.mockRepo.On("ListAccounts", ctx, 20, 0).Return([]domain.Account{}, nil).Once()

	accounts, err := suite.service.ListAccounts(ctx, -5, -1)

	suite.Require().NoError(err)
	suite.Empty(accounts)
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

// TestListAccounts_NegativeBoundsReachRealStore drives negative paging bounds
// through the service into the real in-memory store, which would slice out of
// range if the clamp ever regressed.
func TestListAccounts_NegativeBoundsReachRealStore(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewInMemoryAccountRepository()
	svc := services.NewAccountService(repo, clock.System(), 3, time.Millisecond)

	for _, number := range []string{"A-1", "A-2", "A-3"} {
		if _, err := svc.OpenAccount(ctx, dto.OpenAccountRequest{AccountNumber: number, AccountHolder: "Holder"}); err != nil {
			t.Fatalf("open account %s: %v", number, err)
		}
	}

	accounts, err := svc.ListAccounts(ctx, 10, -1)
	if err != nil {
		t.Fatalf("list with negative offset: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(accounts))
	}

	accounts, err = svc.ListAccounts(ctx, -1, -3)
	if err != nil {
		t.Fatalf("list with negative limit and offset: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(accounts))
	}
}

// TestConcurrentDeposits exercises the full check-then-apply loop against the
// real in-memory store: every lost compare-and-swap race must be retried, so
// no deposit may ever be dropped.
func TestConcurrentDeposits(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewInMemoryAccountRepository()
	// Generous retry budget: with 50 writers hammering one account the
	// contention rate is the whole point of the test.
	svc := services.NewAccountService(repo, clock.System(), 200, time.Microsecond)

	_, err := svc.OpenAccount(ctx, dto.OpenAccountRequest{AccountNumber: "A-1", AccountHolder: "Alice"})
	if err != nil {
		t.Fatalf("open account: %v", err)
	}

	const writers = 50
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Deposit(ctx, "A-1", decimal.New(1, 0)); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent deposit failed: %v", err)
	}

	balance, err := svc.GetBalance(ctx, "A-1")
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if !balance.Equal(decimal.New(writers, 0)) {
		t.Fatalf("expected balance %d, got %s", writers, balance.String())
	}
}

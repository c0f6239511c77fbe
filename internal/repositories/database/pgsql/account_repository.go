package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/techbank/banking-backend/internal/apperrors"
	"github.com/techbank/banking-backend/internal/core/domain"
	portsrepo "github.com/techbank/banking-backend/internal/core/ports/repositories"
)

type PgxAccountRepository struct {
	pool *pgxpool.Pool
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{pool: pool}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// SaveAccount inserts a new account. The primary key on account_number gives
// the insert-if-absent semantics.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (account_number, account_holder, balance, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.pool.Exec(ctx, query,
		account.AccountNumber,
		account.AccountHolder,
		account.Balance,
		account.Status,
		account.Version,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account %s already exists", apperrors.ErrDuplicate, account.AccountNumber)
		}
		return mapStoreError(err, fmt.Sprintf("save account %s", account.AccountNumber))
	}
	return nil
}

// FindAccountByNumber retrieves an account by its number.
func (r *PgxAccountRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `
		SELECT account_number, account_holder, balance, status, version, created_at, updated_at
		FROM accounts
		WHERE account_number = $1;
	`
	var account domain.Account
	err := r.pool.QueryRow(ctx, query, accountNumber).Scan(
		&account.AccountNumber,
		&account.AccountHolder,
		&account.Balance,
		&account.Status,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountNumber)
		}
		return nil, mapStoreError(err, fmt.Sprintf("find account %s", accountNumber))
	}
	return &account, nil
}

// ListAccounts retrieves accounts in insertion order using limit/offset.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	query := `
		SELECT account_number, account_holder, balance, status, version, created_at, updated_at
		FROM accounts
		ORDER BY created_at ASC, account_number ASC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, mapStoreError(err, "list accounts")
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0, limit)
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.AccountNumber,
			&account.AccountHolder,
			&account.Balance,
			&account.Status,
			&account.Version,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, mapStoreError(err, "scan account row")
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStoreError(err, "list accounts")
	}
	return accounts, nil
}

// UpdateAccountBalance writes the new balance with a single conditional
// UPDATE. The version predicate makes the write a compare-and-swap: zero rows
// affected means either a lost race or a missing account, and a follow-up read
// tells the two apart.
func (r *PgxAccountRepository) UpdateAccountBalance(ctx context.Context, accountNumber string, expectedVersion int64, newBalance decimal.Decimal, now time.Time) error {
	query := `
		UPDATE accounts
		SET balance = $3, version = version + 1, updated_at = $4
		WHERE account_number = $1 AND version = $2;
	`
	tag, err := r.pool.Exec(ctx, query, accountNumber, expectedVersion, newBalance, now)
	if err != nil {
		return mapStoreError(err, fmt.Sprintf("update balance of account %s", accountNumber))
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMissedWrite(ctx, accountNumber)
	}
	return nil
}

// UpdateAccountStatus transitions the lifecycle status under the same
// compare-and-swap contract as UpdateAccountBalance.
func (r *PgxAccountRepository) UpdateAccountStatus(ctx context.Context, accountNumber string, expectedVersion int64, status domain.AccountStatus, now time.Time) error {
	query := `
		UPDATE accounts
		SET status = $3, version = version + 1, updated_at = $4
		WHERE account_number = $1 AND version = $2;
	`
	tag, err := r.pool.Exec(ctx, query, accountNumber, expectedVersion, status, now)
	if err != nil {
		return mapStoreError(err, fmt.Sprintf("update status of account %s", accountNumber))
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMissedWrite(ctx, accountNumber)
	}
	return nil
}

// classifyMissedWrite distinguishes a version mismatch from a vanished row
// after a conditional UPDATE touched nothing.
func (r *PgxAccountRepository) classifyMissedWrite(ctx context.Context, accountNumber string) error {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1);`, accountNumber).Scan(&exists)
	if err != nil {
		return mapStoreError(err, fmt.Sprintf("verify account %s after missed write", accountNumber))
	}
	if !exists {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountNumber)
	}
	return fmt.Errorf("%w: account %s was modified concurrently", apperrors.ErrContention, accountNumber)
}

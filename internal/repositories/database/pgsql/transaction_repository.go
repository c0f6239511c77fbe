package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techbank/banking-backend/internal/apperrors"
	"github.com/techbank/banking-backend/internal/core/domain"
	portsrepo "github.com/techbank/banking-backend/internal/core/ports/repositories"
	"github.com/techbank/banking-backend/internal/utils/pagination"
)

const transactionColumns = `transaction_id, source_account, destination_account, amount, transaction_type, status, description, created_at`

type PgxTransactionRepository struct {
	pool *pgxpool.Pool
}

// newPgxTransactionRepository creates a new repository for the ledger.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{pool: pool}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// SaveTransaction appends a new ledger record. There is no UPDATE statement
// anywhere in this file on purpose: the ledger is append-only.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, record domain.TransactionRecord) error {
	query := `
		INSERT INTO transactions (transaction_id, source_account, destination_account, amount, transaction_type, status, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.pool.Exec(ctx, query,
		record.TransactionID,
		record.SourceAccount,
		record.DestinationAccount,
		record.Amount,
		record.TransactionType,
		record.Status,
		record.Description,
		record.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction %s already recorded", apperrors.ErrDuplicate, record.TransactionID)
		}
		return mapStoreError(err, fmt.Sprintf("save transaction %s", record.TransactionID))
	}
	return nil
}

// FindTransactionByID retrieves a ledger record by its identifier.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionRecord, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`

	var record domain.TransactionRecord
	err := r.pool.QueryRow(ctx, query, transactionID).Scan(
		&record.TransactionID,
		&record.SourceAccount,
		&record.DestinationAccount,
		&record.Amount,
		&record.TransactionType,
		&record.Status,
		&record.Description,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return nil, mapStoreError(err, fmt.Sprintf("find transaction %s", transactionID))
	}
	return &record, nil
}

// ListBySourceAccount retrieves the account's outgoing records, newest first,
// as one keyset page.
func (r *PgxTransactionRepository) ListBySourceAccount(ctx context.Context, accountNumber string, limit int, nextToken *string) ([]domain.TransactionRecord, *string, error) {
	return r.listByAccountColumn(ctx, "source_account", accountNumber, limit, nextToken)
}

// ListByDestinationAccount retrieves the account's incoming records, newest
// first, as one keyset page.
func (r *PgxTransactionRepository) ListByDestinationAccount(ctx context.Context, accountNumber string, limit int, nextToken *string) ([]domain.TransactionRecord, *string, error) {
	return r.listByAccountColumn(ctx, "destination_account", accountNumber, limit, nextToken)
}

// listByAccountColumn runs one keyset-paginated query ordered by created_at
// DESC with transaction_id DESC as the tie-breaker. The cursor predicate keeps
// pages disjoint while new records keep arriving at the head. Fetches limit+1
// rows to decide whether a next page exists.
func (r *PgxTransactionRepository) listByAccountColumn(ctx context.Context, column string, accountNumber string, limit int, nextToken *string) ([]domain.TransactionRecord, *string, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + column + ` = $1`
	args := []any{accountNumber}

	if nextToken != nil && *nextToken != "" {
		createdAt, transactionID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` AND (created_at, transaction_id) < ($2, $3)`
		args = append(args, createdAt, transactionID)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC, transaction_id DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, mapStoreError(err, fmt.Sprintf("list transactions by %s", column))
	}
	defer rows.Close()

	records := make([]domain.TransactionRecord, 0, limit+1)
	for rows.Next() {
		var record domain.TransactionRecord
		if err := rows.Scan(
			&record.TransactionID,
			&record.SourceAccount,
			&record.DestinationAccount,
			&record.Amount,
			&record.TransactionType,
			&record.Status,
			&record.Description,
			&record.CreatedAt,
		); err != nil {
			return nil, nil, mapStoreError(err, "scan transaction row")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapStoreError(err, fmt.Sprintf("list transactions by %s", column))
	}

	var token *string
	if len(records) > limit {
		records = records[:limit]
		last := records[limit-1]
		encoded := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		token = &encoded
	}
	return records, token, nil
}

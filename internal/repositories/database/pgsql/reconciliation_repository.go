package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/techbank/banking-backend/internal/apperrors"
	"github.com/techbank/banking-backend/internal/core/domain"
	portsrepo "github.com/techbank/banking-backend/internal/core/ports/repositories"
)

type PgxReconciliationRepository struct {
	pool *pgxpool.Pool
}

// newPgxReconciliationRepository creates a new repository for the
// reconciliation queue.
func newPgxReconciliationRepository(pool *pgxpool.Pool) portsrepo.ReconciliationRepositoryFacade {
	return &PgxReconciliationRepository{pool: pool}
}

// Ensure PgxReconciliationRepository implements portsrepo.ReconciliationRepositoryFacade
var _ portsrepo.ReconciliationRepositoryFacade = (*PgxReconciliationRepository)(nil)

// SaveEntry durably records a balance/ledger mismatch.
func (r *PgxReconciliationRepository) SaveEntry(ctx context.Context, entry domain.ReconciliationEntry) error {
	query := `
		INSERT INTO reconciliation_entries (entry_id, source_account, destination_account, amount, reason, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.pool.Exec(ctx, query,
		entry.EntryID,
		entry.SourceAccount,
		entry.DestinationAccount,
		entry.Amount,
		entry.Reason,
		entry.Resolved,
		entry.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reconciliation entry %s already exists", apperrors.ErrDuplicate, entry.EntryID)
		}
		return mapStoreError(err, fmt.Sprintf("save reconciliation entry %s", entry.EntryID))
	}
	return nil
}

// ListUnresolved retrieves queued entries that still need resolution, oldest
// first so the longest-standing mismatch is handled first.
func (r *PgxReconciliationRepository) ListUnresolved(ctx context.Context, limit int) ([]domain.ReconciliationEntry, error) {
	query := `
		SELECT entry_id, source_account, destination_account, amount, reason, resolved, created_at
		FROM reconciliation_entries
		WHERE resolved = FALSE
		ORDER BY created_at ASC, entry_id ASC
		LIMIT $1;
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, mapStoreError(err, "list unresolved reconciliation entries")
	}
	defer rows.Close()

	entries := make([]domain.ReconciliationEntry, 0, limit)
	for rows.Next() {
		var entry domain.ReconciliationEntry
		if err := rows.Scan(
			&entry.EntryID,
			&entry.SourceAccount,
			&entry.DestinationAccount,
			&entry.Amount,
			&entry.Reason,
			&entry.Resolved,
			&entry.CreatedAt,
		); err != nil {
			return nil, mapStoreError(err, "scan reconciliation entry row")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, mapStoreError(err, "list unresolved reconciliation entries")
	}
	return entries, nil
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/techbank/banking-backend/internal/apperrors"
	"github.com/techbank/banking-backend/internal/core/domain"
	portsrepo "github.com/techbank/banking-backend/internal/core/ports/repositories"
	"github.com/techbank/banking-backend/internal/utils/pagination"
)

// InMemoryTransactionRepository keeps the ledger as an append-only slice under
// a mutex. Listing mirrors the pgsql keyset pagination so both implementations
// hand out the same pages for the same tokens.
type InMemoryTransactionRepository struct {
	mu      sync.RWMutex
	records []domain.TransactionRecord
	byID    map[string]int
}

// NewInMemoryTransactionRepository creates an empty in-memory ledger.
func NewInMemoryTransactionRepository() *InMemoryTransactionRepository {
	return &InMemoryTransactionRepository{
		byID: make(map[string]int),
	}
}

// Ensure InMemoryTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*InMemoryTransactionRepository)(nil)

// SaveTransaction appends a new ledger record.
func (r *InMemoryTransactionRepository) SaveTransaction(_ context.Context, record domain.TransactionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[record.TransactionID]; ok {
		return fmt.Errorf("%w: transaction %s already recorded", apperrors.ErrDuplicate, record.TransactionID)
	}
	r.byID[record.TransactionID] = len(r.records)
	r.records = append(r.records, record)
	return nil
}

// FindTransactionByID retrieves a ledger record by its identifier.
func (r *InMemoryTransactionRepository) FindTransactionByID(_ context.Context, transactionID string) (*domain.TransactionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[transactionID]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	record := r.records[idx]
	return &record, nil
}

// ListBySourceAccount retrieves the account's outgoing records, newest first.
func (r *InMemoryTransactionRepository) ListBySourceAccount(_ context.Context, accountNumber string, limit int, nextToken *string) ([]domain.TransactionRecord, *string, error) {
	return r.list(accountNumber, limit, nextToken, func(record domain.TransactionRecord) bool {
		return record.SourceAccount == accountNumber
	})
}

// ListByDestinationAccount retrieves the account's incoming records, newest first.
func (r *InMemoryTransactionRepository) ListByDestinationAccount(_ context.Context, accountNumber string, limit int, nextToken *string) ([]domain.TransactionRecord, *string, error) {
	return r.list(accountNumber, limit, nextToken, func(record domain.TransactionRecord) bool {
		return record.DestinationAccount == accountNumber
	})
}

func (r *InMemoryTransactionRepository) list(accountNumber string, limit int, nextToken *string, match func(domain.TransactionRecord) bool) ([]domain.TransactionRecord, *string, error) {
	var cursorSet bool
	var cursorAt time.Time
	var cursorID string
	if nextToken != nil && *nextToken != "" {
		var err error
		cursorAt, cursorID, err = pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		cursorSet = true
	}

	r.mu.RLock()
	matched := make([]domain.TransactionRecord, 0, limit+1)
	for _, record := range r.records {
		if match(record) {
			matched = append(matched, record)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].TransactionID > matched[j].TransactionID
	})

	page := make([]domain.TransactionRecord, 0, limit+1)
	for _, record := range matched {
		if cursorSet && !beforeCursor(record, cursorAt, cursorID) {
			continue
		}
		page = append(page, record)
		if len(page) == limit+1 {
			break
		}
	}

	var token *string
	if len(page) > limit {
		page = page[:limit]
		last := page[limit-1]
		encoded := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		token = &encoded
	}
	return page, token, nil
}

// beforeCursor reports whether record sorts strictly after the cursor position
// in created_at DESC, transaction_id DESC order.
func beforeCursor(record domain.TransactionRecord, cursorAt time.Time, cursorID string) bool {
	if record.CreatedAt.Before(cursorAt) {
		return true
	}
	return record.CreatedAt.Equal(cursorAt) && record.TransactionID < cursorID
}

package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/techbank/banking-backend/internal/apperrors"
	"github.com/techbank/banking-backend/internal/core/domain"
	portsrepo "github.com/techbank/banking-backend/internal/core/ports/repositories"
)

// InMemoryReconciliationRepository keeps queued mismatches in insertion order,
// which for entries produced by one process is oldest first.
type InMemoryReconciliationRepository struct {
	mu      sync.RWMutex
	entries []domain.ReconciliationEntry
	byID    map[string]struct{}
}

// NewInMemoryReconciliationRepository creates an empty in-memory queue.
func NewInMemoryReconciliationRepository() *InMemoryReconciliationRepository {
	return &InMemoryReconciliationRepository{
		byID: make(map[string]struct{}),
	}
}

// Ensure InMemoryReconciliationRepository implements portsrepo.ReconciliationRepositoryFacade
var _ portsrepo.ReconciliationRepositoryFacade = (*InMemoryReconciliationRepository)(nil)

// SaveEntry records a mismatch for later resolution.
func (r *InMemoryReconciliationRepository) SaveEntry(_ context.Context, entry domain.ReconciliationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[entry.EntryID]; ok {
		return fmt.Errorf("%w: reconciliation entry %s already exists", apperrors.ErrDuplicate, entry.EntryID)
	}
	r.byID[entry.EntryID] = struct{}{}
	r.entries = append(r.entries, entry)
	return nil
}

// ListUnresolved retrieves queued entries that still need resolution, oldest first.
func (r *InMemoryReconciliationRepository) ListUnresolved(_ context.Context, limit int) ([]domain.ReconciliationEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]domain.ReconciliationEntry, 0, limit)
	for _, entry := range r.entries {
		if entry.Resolved {
			continue
		}
		entries = append(entries, entry)
		if len(entries) == limit {
			break
		}
	}
	return entries, nil
}

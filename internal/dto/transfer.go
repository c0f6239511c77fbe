package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/techbank/banking-backend/internal/core/domain"
)

// TransferRequest defines the data needed to move money between two accounts.
type TransferRequest struct {
	SourceAccount      string          `json:"sourceAccount" binding:"required"`
	DestinationAccount string          `json:"destinationAccount" binding:"required"`
	Amount             decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Description        string          `json:"description"`
}

// ReconciliationEntryResponse defines the data returned for a queued
// balance/ledger mismatch.
type ReconciliationEntryResponse struct {
	EntryID            string          `json:"entryID"`
	SourceAccount      string          `json:"sourceAccount,omitempty"`
	DestinationAccount string          `json:"destinationAccount,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	Reason             string          `json:"reason"`
	Resolved           bool            `json:"resolved"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// ListReconciliationParams defines query parameters for listing the
// unresolved mismatch queue.
type ListReconciliationParams struct {
	Limit int `form:"limit,default=20" binding:"omitempty,gte=0"`
}

// ListReconciliationResponse wraps the unresolved mismatch queue.
type ListReconciliationResponse struct {
	Entries []ReconciliationEntryResponse `json:"entries"`
}

// ToReconciliationEntryResponse converts a domain entry to its DTO.
func ToReconciliationEntryResponse(e *domain.ReconciliationEntry) ReconciliationEntryResponse {
	return ReconciliationEntryResponse{
		EntryID:            e.EntryID,
		SourceAccount:      e.SourceAccount,
		DestinationAccount: e.DestinationAccount,
		Amount:             e.Amount,
		Reason:             e.Reason,
		Resolved:           e.Resolved,
		CreatedAt:          e.CreatedAt,
	}
}

// ToListReconciliationResponse converts a slice of entries to the list DTO.
func ToListReconciliationResponse(entries []domain.ReconciliationEntry) ListReconciliationResponse {
	res := make([]ReconciliationEntryResponse, len(entries))
	for i := range entries {
		res[i] = ToReconciliationEntryResponse(&entries[i])
	}
	return ListReconciliationResponse{Entries: res}
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/techbank/banking-backend/internal/core/domain"
)

// RecordTransactionRequest defines the data needed to append a ledger record.
// Source and destination are independently optional: a pure deposit has no
// source, a pure withdrawal has no destination.
type RecordTransactionRequest struct {
	SourceAccount      string                 `json:"sourceAccount"`
	DestinationAccount string                 `json:"destinationAccount"`
	Amount             decimal.Decimal        `json:"amount" binding:"required,dgt0"`
	TransactionType    domain.TransactionType `json:"transactionType" binding:"required,oneof=DEPOSIT WITHDRAWAL TRANSFER"`
	Description        string                 `json:"description"`
}

// TransactionResponse defines the data returned for a ledger record.
type TransactionResponse struct {
	TransactionID      string                   `json:"transactionID"`
	SourceAccount      string                   `json:"sourceAccount,omitempty"`
	DestinationAccount string                   `json:"destinationAccount,omitempty"`
	Amount             decimal.Decimal          `json:"amount"`
	TransactionType    domain.TransactionType   `json:"transactionType"`
	Status             domain.TransactionStatus `json:"status"`
	Description        string                   `json:"description,omitempty"`
	CreatedAt          time.Time                `json:"createdAt"`
}

// ListTransactionsParams defines query parameters for listing ledger records.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20" binding:"omitempty,gte=0"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of ledger records plus the cursor for
// the following page. NextToken is nil on the last page.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.TransactionRecord to its DTO.
func ToTransactionResponse(txn *domain.TransactionRecord) TransactionResponse {
	return TransactionResponse{
		TransactionID:      txn.TransactionID,
		SourceAccount:      txn.SourceAccount,
		DestinationAccount: txn.DestinationAccount,
		Amount:             txn.Amount,
		TransactionType:    txn.TransactionType,
		Status:             txn.Status,
		Description:        txn.Description,
		CreatedAt:          txn.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of records to DTOs.
func ToTransactionResponses(txns []domain.TransactionRecord) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}

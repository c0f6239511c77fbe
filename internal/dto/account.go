package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/techbank/banking-backend/internal/core/domain"
)

// OpenAccountRequest defines the data needed to open a new account.
type OpenAccountRequest struct {
	AccountNumber string `json:"accountNumber" binding:"required"`
	AccountHolder string `json:"accountHolder" binding:"required"`
}

// AmountRequest carries the amount for deposit and withdrawal operations.
// dgt0 is the registered decimal-greater-than-zero binding rule.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,dgt0"`
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account; the version stamp stays internal.
type AccountResponse struct {
	AccountNumber string               `json:"accountNumber"`
	AccountHolder string               `json:"accountHolder"`
	Balance       decimal.Decimal      `json:"balance"`
	Status        domain.AccountStatus `json:"status"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// BalanceResponse defines the data returned for a balance query.
type BalanceResponse struct {
	AccountNumber string          `json:"accountNumber"`
	Balance       decimal.Decimal `json:"balance"`
}

// ListAccountsParams defines query parameters for listing accounts.
// Negative bounds are rejected at binding time; the service clamps again for
// callers that bypass the HTTP layer.
type ListAccountsParams struct {
	Limit  int `form:"limit,default=20" binding:"omitempty,gte=0"`
	Offset int `form:"offset,default=0" binding:"omitempty,gte=0"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse converts a domain.Account to an AccountResponse DTO.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountNumber: acc.AccountNumber,
		AccountHolder: acc.AccountHolder,
		Balance:       acc.Balance,
		Status:        acc.Status,
		CreatedAt:     acc.CreatedAt,
		UpdatedAt:     acc.UpdatedAt,
	}
}

// ToListAccountsResponse converts a slice of domain.Account to the list DTO.
func ToListAccountsResponse(accounts []domain.Account) ListAccountsResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return ListAccountsResponse{Accounts: res}
}

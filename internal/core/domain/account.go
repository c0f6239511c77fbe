package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus describes the lifecycle state of an account.
// Accounts are never physically deleted; CLOSED and FROZEN model closure.
type AccountStatus string

const (
	AccountActive AccountStatus = "ACTIVE"
	AccountClosed AccountStatus = "CLOSED"
	AccountFrozen AccountStatus = "FROZEN"
)

// Account is the authoritative balance record for one account number.
// Balance is a precise decimal and is never negative. Version is the
// optimistic-concurrency stamp checked on every balance mutation.
type Account struct {
	AccountNumber string          `json:"accountNumber"`
	AccountHolder string          `json:"accountHolder"`
	Balance       decimal.Decimal `json:"balance"`
	Status        AccountStatus   `json:"status"`
	Version       int64           `json:"-"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// IsMutable reports whether deposits and withdrawals are allowed.
// Only ACTIVE accounts accept balance mutations.
func (a Account) IsMutable() bool {
	return a.Status == AccountActive
}

package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientFunds indicates a withdrawal was rejected because the account
// balance is lower than the requested amount. A business outcome, not a fault.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrContention indicates a balance mutation lost its optimistic-concurrency race
// and the bounded retry budget was exhausted. Callers may retry the whole request.
var ErrContention = errors.New("account contention, retries exhausted")

// ErrStoreUnavailable indicates a transient infrastructure failure talking to the
// backing store (timeouts, dropped connections). Retryable, unlike business errors.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrReconciliationRequired indicates a balance was mutated but the matching ledger
// record could not be written. The mismatch has been queued for reconciliation and
// must never be silently swallowed.
var ErrReconciliationRequired = errors.New("balance and ledger diverged, reconciliation required")

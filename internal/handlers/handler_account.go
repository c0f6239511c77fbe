package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/techbank/banking-backend/internal/apperrors"
	"github.com/techbank/banking-backend/internal/core/domain"
	portssvc "github.com/techbank/banking-backend/internal/core/ports/services"
	"github.com/techbank/banking-backend/internal/dto"
	"github.com/techbank/banking-backend/internal/middleware"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.openAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountNumber", h.getAccount)
		accounts.GET("/:accountNumber/balance", h.getBalance)
		accounts.POST("/:accountNumber/deposit", h.deposit)
		accounts.POST("/:accountNumber/withdraw", h.withdraw)
		accounts.POST("/:accountNumber/freeze", h.freezeAccount)
		accounts.POST("/:accountNumber/close", h.closeAccount)
	}
}

// openAccount godoc
// @Summary Open a new account
// @Description Opens a new account with a zero balance and ACTIVE status
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.OpenAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 409 {object} map[string]string "Account number already taken"
// @Failure 500 {object} map[string]string "Failed to open account"
// @Router /accounts [post]
func (h *accountHandler) openAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for OpenAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	account, err := h.accountService.OpenAccount(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Duplicate account number on OpenAccount", slog.String("account_number", req.AccountNumber))
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to open account in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open account"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account by number
// @Description Retrieves the current snapshot of a specific account
// @Tags accounts
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve account"
// @Router /accounts/{accountNumber} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountNumber := c.Param("accountNumber")

	account, err := h.accountService.GetAccount(c.Request.Context(), accountNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get account in service", slog.String("error", err.Error()), slog.String("account_number", accountNumber))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve account"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getBalance godoc
// @Summary Get an account balance
// @Description Retrieves the current balance of a specific account
// @Tags accounts
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Success 200 {object} dto.BalanceResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve balance"
// @Router /accounts/{accountNumber}/balance [get]
func (h *accountHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountNumber := c.Param("accountNumber")

	balance, err := h.accountService.GetBalance(c.Request.Context(), accountNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get balance in service", slog.String("error", err.Error()), slog.String("account_number", accountNumber))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve balance"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{AccountNumber: accountNumber, Balance: balance})
}

// listAccounts godoc
// @Summary List accounts
// @Description Retrieves a paginated list of accounts in insertion order
// @Tags accounts
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list accounts in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts))
}

// deposit godoc
// @Summary Deposit into an account
// @Description Atomically adds a positive amount to the account balance
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Param   deposit body dto.AmountRequest true "Deposit amount"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account under too much contention"
// @Failure 503 {object} map[string]string "Balance store unavailable"
// @Router /accounts/{accountNumber}/deposit [post]
func (h *accountHandler) deposit(c *gin.Context) {
	h.mutate(c, "deposit", h.accountService.Deposit)
}

// withdraw godoc
// @Summary Withdraw from an account
// @Description Atomically subtracts a positive amount, rejecting overdrafts
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Param   withdrawal body dto.AmountRequest true "Withdrawal amount"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Account under too much contention"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Failure 503 {object} map[string]string "Balance store unavailable"
// @Router /accounts/{accountNumber}/withdraw [post]
func (h *accountHandler) withdraw(c *gin.Context) {
	h.mutate(c, "withdraw", h.accountService.Withdraw)
}

// mutate binds the amount payload, runs one balance mutation and translates
// the error taxonomy to HTTP status codes. Deposit and withdraw share the
// same surface apart from the service call.
func (h *accountHandler) mutate(c *gin.Context, operation string, call func(context.Context, string, decimal.Decimal) (*domain.Account, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountNumber := c.Param("accountNumber")

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for balance mutation", slog.String("operation", operation), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	account, err := call(c.Request.Context(), accountNumber, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrContention):
			logger.Warn("Balance mutation lost retry budget", slog.String("operation", operation), slog.String("account_number", accountNumber))
			c.JSON(http.StatusConflict, gin.H{"error": "Account is under heavy contention, please retry"})
		case errors.Is(err, apperrors.ErrStoreUnavailable):
			logger.Error("Balance store unavailable", slog.String("operation", operation), slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Balance store unavailable, please retry later"})
		default:
			logger.Error("Balance mutation failed in service", slog.String("operation", operation), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + operation})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// freezeAccount godoc
// @Summary Freeze an account
// @Description Transitions an ACTIVE account to FROZEN, blocking mutations
// @Tags accounts
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Account not in a freezable state"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to freeze account"
// @Router /accounts/{accountNumber}/freeze [post]
func (h *accountHandler) freezeAccount(c *gin.Context) {
	h.transition(c, "freeze", h.accountService.FreezeAccount)
}

// closeAccount godoc
// @Summary Close an account
// @Description Transitions an account to CLOSED, the terminal lifecycle state
// @Tags accounts
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Account already closed"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to close account"
// @Router /accounts/{accountNumber}/close [post]
func (h *accountHandler) closeAccount(c *gin.Context) {
	h.transition(c, "close", h.accountService.CloseAccount)
}

func (h *accountHandler) transition(c *gin.Context, operation string, call func(context.Context, string) (*domain.Account, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountNumber := c.Param("accountNumber")

	account, err := call(c.Request.Context(), accountNumber)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrContention):
			c.JSON(http.StatusConflict, gin.H{"error": "Account is under heavy contention, please retry"})
		case errors.Is(err, apperrors.ErrStoreUnavailable):
			logger.Error("Balance store unavailable", slog.String("operation", operation), slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Balance store unavailable, please retry later"})
		default:
			logger.Error("Status transition failed in service", slog.String("operation", operation), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + operation + " account"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

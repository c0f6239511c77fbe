package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techbank/banking-backend/internal/apperrors"
	portssvc "github.com/techbank/banking-backend/internal/core/ports/services"
	"github.com/techbank/banking-backend/internal/dto"
	"github.com/techbank/banking-backend/internal/middleware"
)

// transactionHandler handles HTTP requests related to the ledger.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

// newTransactionHandler creates a new transactionHandler.
func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{
		transactionService: ts,
	}
}

// registerTransactionRoutes registers routes related to the ledger.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(transactionService)

	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.recordTransaction)
		transactions.GET("/:transactionID", h.getTransaction)
	}

	accounts := rg.Group("/accounts")
	{
		accounts.GET("/:accountNumber/transactions/outgoing", h.listOutgoing)
		accounts.GET("/:accountNumber/transactions/incoming", h.listIncoming)
	}
}

// recordTransaction godoc
// @Summary Record a completed transaction
// @Description Appends a COMPLETED record for a movement whose balance mutation already happened
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.RecordTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 500 {object} map[string]string "Failed to record transaction"
// @Router /transactions [post]
func (h *transactionHandler) recordTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	record, err := h.transactionService.RecordTransaction(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to record transaction in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record transaction"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(record))
}

// getTransaction godoc
// @Summary Get a transaction by ID
// @Description Retrieves a single ledger record
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve transaction"
// @Router /transactions/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	record, err := h.transactionService.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get transaction in service", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transaction"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(record))
}

// listOutgoing godoc
// @Summary List outgoing transactions of an account
// @Description Retrieves records where the account is the source, newest first, keyset paginated
// @Tags transactions
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Cursor returned by the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters or cursor"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Router /accounts/{accountNumber}/transactions/outgoing [get]
func (h *transactionHandler) listOutgoing(c *gin.Context) {
	h.list(c, h.transactionService.ListBySourceAccount)
}

// listIncoming godoc
// @Summary List incoming transactions of an account
// @Description Retrieves records where the account is the destination, newest first, keyset paginated
// @Tags transactions
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Cursor returned by the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters or cursor"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Router /accounts/{accountNumber}/transactions/incoming [get]
func (h *transactionHandler) listIncoming(c *gin.Context) {
	h.list(c, h.transactionService.ListByDestinationAccount)
}

func (h *transactionHandler) list(c *gin.Context, call func(context.Context, string, dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountNumber := c.Param("accountNumber")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := call(c.Request.Context(), accountNumber, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list transactions in service", slog.String("error", err.Error()), slog.String("account_number", accountNumber))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		}
		return
	}

	c.JSON(http.StatusOK, page)
}

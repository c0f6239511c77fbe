package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techbank/banking-backend/internal/apperrors"
	portssvc "github.com/techbank/banking-backend/internal/core/ports/services"
	"github.com/techbank/banking-backend/internal/dto"
	"github.com/techbank/banking-backend/internal/middleware"
)

// transferHandler handles HTTP requests for transfers and the reconciliation
// queue.
type transferHandler struct {
	transferService portssvc.TransferSvcFacade
}

// newTransferHandler creates a new transferHandler.
func newTransferHandler(ts portssvc.TransferSvcFacade) *transferHandler {
	return &transferHandler{
		transferService: ts,
	}
}

// registerTransferRoutes registers routes related to transfers.
func registerTransferRoutes(rg *gin.RouterGroup, transferService portssvc.TransferSvcFacade) {
	h := newTransferHandler(transferService)

	rg.POST("/transfers", h.transfer)
	rg.GET("/reconciliation", h.listReconciliation)
}

// transfer godoc
// @Summary Transfer between two accounts
// @Description Moves an amount from the source to the destination account and records the movement
// @Tags transfers
// @Accept  json
// @Produce  json
// @Param   transfer body dto.TransferRequest true "Transfer details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Source or destination account not found"
// @Failure 409 {object} map[string]string "Account under too much contention"
// @Failure 422 {object} map[string]string "Insufficient funds on the source account"
// @Failure 500 {object} map[string]string "Transfer left a mismatch queued for reconciliation"
// @Failure 503 {object} map[string]string "Balance store unavailable"
// @Router /transfers [post]
func (h *transferHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	record, err := h.transferService.Transfer(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrContention):
			c.JSON(http.StatusConflict, gin.H{"error": "Account is under heavy contention, please retry"})
		case errors.Is(err, apperrors.ErrReconciliationRequired):
			logger.Error("Transfer queued for reconciliation", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrStoreUnavailable):
			logger.Error("Store unavailable during transfer", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable, please retry later"})
		default:
			logger.Error("Failed to transfer in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to transfer"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(record))
}

// listReconciliation godoc
// @Summary List unresolved reconciliation entries
// @Description Retrieves queued balance/ledger mismatches, oldest first
// @Tags transfers
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Success 200 {object} dto.ListReconciliationResponse
// @Failure 500 {object} map[string]string "Failed to list reconciliation entries"
// @Router /reconciliation [get]
func (h *transferHandler) listReconciliation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListReconciliationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	entries, err := h.transferService.ListUnresolvedMismatches(c.Request.Context(), params.Limit)
	if err != nil {
		logger.Error("Failed to list reconciliation entries in service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reconciliation entries"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListReconciliationResponse(entries))
}

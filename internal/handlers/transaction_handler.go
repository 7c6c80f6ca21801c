package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finwell/internal/errors"
	"finwell/internal/models"
	"finwell/internal/pagination"
	"finwell/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
type CreateTransactionRequest struct {
	CategoryID  *uint             `json:"category_id"`
	Type        string            `json:"type" binding:"omitempty,oneof=expense income"`
	Amount      int64             `json:"amount" binding:"required,gt=0"`
	Description string            `json:"description" binding:"required,min=1,max=255"`
	Date        time.Time         `json:"date" binding:"required"`
	Notes       string            `json:"notes" binding:"omitempty,max=1000"`
	Tags        map[string]string `json:"tags"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
type UpdateTransactionRequest struct {
	CategoryID  *uint      `json:"category_id"`
	Amount      *int64     `json:"amount" binding:"omitempty,gt=0"`
	Description *string    `json:"description" binding:"omitempty,min=1,max=255"`
	Notes       *string    `json:"notes" binding:"omitempty,max=1000"`
	Date        *time.Time `json:"date"`
}

// CreateTransaction handles recording a new transaction.
// @Summary     Create a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transactionType := models.TransactionTypeExpense
	if req.Type != "" {
		transactionType = models.TransactionType(req.Type)
	}

	txn, err := h.transactionService.CreateTransaction(
		userID, req.CategoryID, transactionType, req.Amount, req.Description, req.Date, req.Notes, req.Tags,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": txn})
}

// GetTransactions handles listing transactions with filters.
// @Summary     Get transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       from         query string false "Start date (YYYY-MM-DD)"
// @Param       to           query string false "End date (YYYY-MM-DD)"
// @Param       type         query string false "Transaction type (expense/income)"
// @Param       category_id  query int    false "Filter by category"
// @Param       min_amount   query int    false "Minimum amount in cents"
// @Param       max_amount   query int    false "Maximum amount in cents"
// @Param       is_recurring query bool   false "Only recurring transactions"
// @Param       search       query string false "Match against description"
// @Param       page         query int    false "Page number (default 1)"
// @Param       page_size    query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, *filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransaction handles retrieving a specific transaction.
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": txn, "tags": txn.TagMap()})
}

// UpdateTransaction handles updating a transaction.
// @Summary     Update a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                      true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	txn, err := h.transactionService.UpdateTransaction(
		userID, transactionID, req.CategoryID, req.Amount, req.Description, req.Notes, req.Date,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// DeleteTransaction handles deleting a transaction.
// @Summary     Delete a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     204 "Deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseTransactionFilter(c *gin.Context) (*services.TransactionFilter, error) {
	filter := &services.TransactionFilter{Search: c.Query("search")}

	var err error
	if filter.FromDate, err = parseQueryDate(c, "from"); err != nil {
		return nil, err
	}
	if filter.ToDate, err = parseQueryDate(c, "to"); err != nil {
		return nil, err
	}

	if v := c.Query("type"); v != "" {
		t := models.TransactionType(v)
		if t != models.TransactionTypeExpense && t != models.TransactionTypeIncome {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be 'expense' or 'income'")
		}
		filter.Type = &t
	}

	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid category_id")
		}
		categoryID := uint(id)
		filter.CategoryID = &categoryID
	}

	if v := c.Query("min_amount"); v != "" {
		amount, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid min_amount")
		}
		filter.MinAmount = &amount
	}
	if v := c.Query("max_amount"); v != "" {
		amount, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid max_amount")
		}
		filter.MaxAmount = &amount
	}

	if v := c.Query("is_recurring"); v != "" {
		switch v {
		case "true":
			b := true
			filter.IsRecurring = &b
		case "false":
			b := false
			filter.IsRecurring = &b
		default:
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "is_recurring must be 'true' or 'false'")
		}
	}

	return filter, nil
}

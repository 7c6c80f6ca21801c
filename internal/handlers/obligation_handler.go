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

// ObligationHandler handles recurring-obligation requests.
type ObligationHandler struct {
	obligationService services.ObligationServicer
}

// NewObligationHandler creates a new ObligationHandler.
func NewObligationHandler(obligationService services.ObligationServicer) *ObligationHandler {
	return &ObligationHandler{obligationService: obligationService}
}

// CreateObligationRequest represents the request payload for creating an obligation.
type CreateObligationRequest struct {
	CategoryID  *uint      `json:"category_id"`
	Description string     `json:"description" binding:"required,min=1,max=255"`
	Amount      int64      `json:"amount" binding:"required,gt=0"`
	Frequency   string     `json:"frequency" binding:"required,frequency"`
	StartDate   time.Time  `json:"start_date" binding:"required"`
	EndDate     *time.Time `json:"end_date"`
	DayOfMonth  *int       `json:"day_of_month" binding:"omitempty,day_of_month"`
	Notes       string     `json:"notes" binding:"omitempty,max=1000"`
}

// UpdateObligationRequest represents the request payload for updating an obligation.
type UpdateObligationRequest struct {
	CategoryID  *uint      `json:"category_id"`
	Description *string    `json:"description" binding:"omitempty,min=1,max=255"`
	Amount      *int64     `json:"amount" binding:"omitempty,gt=0"`
	EndDate     *time.Time `json:"end_date"`
	DayOfMonth  *int       `json:"day_of_month" binding:"omitempty,day_of_month"`
	Notes       *string    `json:"notes" binding:"omitempty,max=1000"`
}

// CreateObligation handles registering a recurring obligation.
// @Summary     Create an obligation
// @Description Register a recurring commitment that will be materialized into transactions
// @Tags        obligations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateObligationRequest true "Obligation details"
// @Success     201 {object} models.Obligation "Obligation created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /obligations [post]
func (h *ObligationHandler) CreateObligation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateObligationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	obligation, err := h.obligationService.CreateObligation(
		userID, req.CategoryID, req.Description, req.Amount, req.Frequency,
		req.StartDate, req.EndDate, req.DayOfMonth, req.Notes,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"obligation": obligation})
}

// GetObligations handles listing obligations for the authenticated user.
// @Summary     Get obligations
// @Tags        obligations
// @Produce     json
// @Security    BearerAuth
// @Param       status    query string false "Filter by status (active/paused/completed)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Obligation] "Paginated obligations"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /obligations [get]
func (h *ObligationHandler) GetObligations(c *gin.Context) {
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

	var status *models.ObligationStatus
	if v := c.Query("status"); v != "" {
		s := models.ObligationStatus(v)
		if s != models.ObligationStatusActive && s != models.ObligationStatusPaused && s != models.ObligationStatusCompleted {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be 'active', 'paused', or 'completed'"))
			return
		}
		status = &s
	}

	result, err := h.obligationService.GetUserObligations(userID, page, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetObligation handles retrieving a specific obligation.
// @Summary     Get obligation by ID
// @Tags        obligations
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Obligation ID"
// @Success     200 {object} models.Obligation "Obligation"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /obligations/{id} [get]
func (h *ObligationHandler) GetObligation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	obligationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	obligation, err := h.obligationService.GetObligationByID(userID, obligationID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"obligation": obligation})
}

// UpdateObligation handles updating an obligation.
// @Summary     Update an obligation
// @Tags        obligations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                     true "Obligation ID"
// @Param       request body UpdateObligationRequest true "Fields to update"
// @Success     200 {object} models.Obligation "Updated obligation"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /obligations/{id} [put]
func (h *ObligationHandler) UpdateObligation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	obligationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateObligationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	obligation, err := h.obligationService.UpdateObligation(
		userID, obligationID, req.CategoryID, req.Description, req.Amount,
		req.EndDate, req.DayOfMonth, req.Notes,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"obligation": obligation})
}

// DeleteObligation handles deleting an obligation.
// @Summary     Delete an obligation
// @Tags        obligations
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Obligation ID"
// @Success     204 "Deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /obligations/{id} [delete]
func (h *ObligationHandler) DeleteObligation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	obligationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.obligationService.DeleteObligation(userID, obligationID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// PauseObligation pauses an active obligation.
// @Summary     Pause an obligation
// @Tags        obligations
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Obligation ID"
// @Success     200 {object} models.Obligation "Paused obligation"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Not active"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /obligations/{id}/pause [post]
func (h *ObligationHandler) PauseObligation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	obligationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	obligation, err := h.obligationService.PauseObligation(userID, obligationID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"obligation": obligation})
}

// ResumeObligation resumes a paused obligation.
// @Summary     Resume an obligation
// @Description Resume a paused obligation; missed occurrences are skipped, not back-filled
// @Tags        obligations
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Obligation ID"
// @Success     200 {object} models.Obligation "Resumed obligation"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Not paused"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /obligations/{id}/resume [post]
func (h *ObligationHandler) ResumeObligation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	obligationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	obligation, err := h.obligationService.ResumeObligation(userID, obligationID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"obligation": obligation})
}

// GenerateNow materializes an obligation immediately.
// @Summary     Generate a transaction now
// @Description Materialize the obligation today, outside its schedule
// @Tags        obligations
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Obligation ID"
// @Success     201 {object} models.Transaction "Generated transaction"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Not active"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /obligations/{id}/generate-now [post]
func (h *ObligationHandler) GenerateNow(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	obligationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.obligationService.GenerateNow(userID, obligationID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": txn})
}

// MarkPaid materializes a due obligation and extends the payment streak.
// @Summary     Mark an obligation paid
// @Tags        obligations
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Obligation ID"
// @Success     201 {object} models.Transaction "Recorded transaction"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     409 {object} ErrorResponse "Not due"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /obligations/{id}/paid [post]
func (h *ObligationHandler) MarkPaid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	obligationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	txn, err := h.obligationService.MarkPaid(userID, obligationID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": txn})
}

// Scan materializes all of the user's due obligations.
// @Summary     Scan due obligations
// @Description Materialize every due obligation for the authenticated user
// @Tags        obligations
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.MaterializeResult "Scan result"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /obligations/scan [post]
func (h *ObligationHandler) Scan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.obligationService.ScanUser(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Upcoming lists obligations due soon.
// @Summary     Upcoming obligations
// @Tags        obligations
// @Produce     json
// @Security    BearerAuth
// @Param       days query int false "Window in days (default 14, max 90)"
// @Success     200 {object} map[string]interface{} "Upcoming obligations"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /obligations/upcoming [get]
func (h *ObligationHandler) Upcoming(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	days := 14
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 90 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "days must be between 1 and 90"))
			return
		}
		days = parsed
	}

	obligations, err := h.obligationService.UpcomingObligations(userID, time.Now(), days)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"obligations": obligations})
}

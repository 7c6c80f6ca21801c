package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finwell/internal/errors"
	"finwell/internal/models"
	"finwell/internal/pagination"
	"finwell/internal/services"
)

// UserHandler handles profile, income source, and notification requests.
type UserHandler struct {
	userService         services.UserServicer
	notificationService services.NotificationServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserServicer, notificationService services.NotificationServicer) *UserHandler {
	return &UserHandler{userService: userService, notificationService: notificationService}
}

// UpdateProfileRequest represents the request payload for profile updates.
// Monetary amounts are in cents.
type UpdateProfileRequest struct {
	FirstName     *string `json:"first_name" binding:"omitempty,max=100"`
	LastName      *string `json:"last_name" binding:"omitempty,max=100"`
	MonthlyIncome *int64  `json:"monthly_income" binding:"omitempty,gte=0"`
	SavingsAmount *int64  `json:"savings_amount" binding:"omitempty,gte=0"`
	SavingsTarget *int64  `json:"savings_target" binding:"omitempty,gte=0"`
}

// AddIncomeSourceRequest represents the request payload for adding an income source.
type AddIncomeSourceRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Frequency string `json:"frequency" binding:"required,income_frequency"`
}

// UpdateProfile handles profile updates.
// @Summary     Update profile
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Fields to update"
// @Success     200 {object} models.User "Updated user"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/me [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.UpdateProfile(userID, req.FirstName, req.LastName, req.MonthlyIncome, req.SavingsAmount, req.SavingsTarget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// AddIncomeSource handles adding an income source.
// @Summary     Add income source
// @Description Add a named income stream; monthly income is recomputed from all sources
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddIncomeSourceRequest true "Income source"
// @Success     201 {object} models.IncomeSource "Income source created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/me/income-sources [post]
func (h *UserHandler) AddIncomeSource(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddIncomeSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	source, err := h.userService.AddIncomeSource(userID, req.Name, req.Amount, models.IncomeFrequency(req.Frequency))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"income_source": source})
}

// GetIncomeSources handles listing income sources.
// @Summary     Get income sources
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Income sources"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/me/income-sources [get]
func (h *UserHandler) GetIncomeSources(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sources, err := h.userService.GetIncomeSources(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"income_sources": sources})
}

// DeleteIncomeSource handles removing an income source.
// @Summary     Delete income source
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Income source ID"
// @Success     204 "Deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /users/me/income-sources/{id} [delete]
func (h *UserHandler) DeleteIncomeSource(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sourceID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.userService.DeleteIncomeSource(userID, sourceID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetNotifications handles listing in-app notifications.
// @Summary     Get notifications
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       unread    query bool false "Only unread notifications"
// @Param       page      query int  false "Page number (default 1)"
// @Param       page_size query int  false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Notification] "Paginated notifications"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications [get]
func (h *UserHandler) GetNotifications(c *gin.Context) {
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

	unreadOnly := c.Query("unread") == "true"

	result, err := h.notificationService.GetUserNotifications(userID, page, unreadOnly)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// MarkNotificationRead marks a notification as read.
// @Summary     Mark notification read
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Notification ID"
// @Success     204 "Marked read"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications/{id}/read [post]
func (h *UserHandler) MarkNotificationRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	notificationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.notificationService.MarkRead(userID, notificationID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

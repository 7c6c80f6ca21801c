package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"finwell/internal/services"
)

// DashboardHandler handles dashboard and financial health requests.
type DashboardHandler struct {
	healthService services.HealthServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(healthService services.HealthServicer) *DashboardHandler {
	return &DashboardHandler{healthService: healthService}
}

// GetHealth returns the composite financial health score.
// @Summary     Financial health score
// @Description Composite score built from savings rate, budget adherence, and streaks
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.HealthScore "Health score"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/health [get]
func (h *DashboardHandler) GetHealth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	score, err := h.healthService.Score(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, score)
}

// GetSummary returns the dashboard summary for the current month.
// @Summary     Dashboard summary
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.DashboardSummary "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.healthService.Summary(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

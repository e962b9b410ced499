package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "saldo/internal/errors"
	"saldo/internal/services"
)

// SummaryHandler serves the dashboard summary and the balance forecast.
type SummaryHandler struct {
	summaryService  services.SummaryServicer
	forecastService services.ForecastServicer
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaryService services.SummaryServicer, forecastService services.ForecastServicer) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService, forecastService: forecastService}
}

// GetSummary handles the balance summary request
// @Summary     Get balance summary
// @Description Totals over all of the user's transactions and accounts, with pending and overdue expenses as of today
// @Tags        summary
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.BalanceSummary "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.summaryService.GetSummary(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetForecast handles the balance forecast request
// @Summary     Get balance forecast
// @Description Project account balances over the coming months from recurring transactions
// @Tags        summary
// @Produce     json
// @Security    BearerAuth
// @Param       months query int false "Months to project, including the current one (default 3, max 24)"
// @Success     200 {object} services.Forecast "Forecast"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /forecast [get]
func (h *SummaryHandler) GetForecast(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	months := 0
	if raw := c.Query("months"); raw != "" {
		months, err = strconv.Atoi(raw)
		if err != nil || months < 1 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "months must be a positive integer"))
			return
		}
	}

	forecast, err := h.forecastService.GetForecast(c.Request.Context(), userID, months)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"forecast": forecast})
}

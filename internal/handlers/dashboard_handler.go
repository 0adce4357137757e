package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vestora/internal/services"
)

// DashboardHandler serves the owner's read path and balance row.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
	balanceService   services.BalanceServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer, balanceService services.BalanceServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, balanceService: balanceService}
}

// GetDashboard returns the live portfolio summary.
// @Summary     Get dashboard
// @Description Live summary, category breakdown, status counts and the stored balance row
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.Dashboard "Dashboard"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Record store error"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetBalance returns the stored balance row.
// @Summary     Get balance
// @Description The stored balance row, as last synchronized
// @Tags        balance
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.BalanceRecord "Balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No balance row yet"
// @Router      /balance [get]
func (h *DashboardHandler) GetBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.balanceService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// SyncBalance recomputes the balance row from the owner's assets.
// @Summary     Synchronize balance
// @Description Recompute and store the balance row. available_cash is preserved.
// @Tags        balance
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.BalanceRecord "Synchronized balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     502 {object} ErrorResponse "Record store error"
// @Router      /balance/sync [post]
func (h *DashboardHandler) SyncBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balance, err := h.balanceService.Synchronize(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

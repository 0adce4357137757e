package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "vestora/internal/errors"
	"vestora/internal/reconcile"
	"vestora/internal/store"
)

// Reconciler runs one reconciliation pass.
type Reconciler interface {
	RunOnce(ctx context.Context) (*reconcile.RunResult, error)
}

// OpsHandler serves operator endpoints guarded by OpsKeyMiddleware.
type OpsHandler struct {
	reconciler Reconciler
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(reconciler Reconciler) *OpsHandler {
	return &OpsHandler{reconciler: reconciler}
}

// Reconcile synchronizes every known owner.
// @Summary     Reconcile balances
// @Description Synchronize every owner with assets or a balance row. Per-owner failures are reported, not fatal.
// @Tags        ops
// @Produce     json
// @Param       X-API-Key header string true "Operator API key"
// @Success     200 {object} reconcile.RunResult "Run summary"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     502 {object} ErrorResponse "Record store error"
// @Failure     503 {object} ErrorResponse "Not configured"
// @Router      /ops/reconcile [post]
func (h *OpsHandler) Reconcile(c *gin.Context) {
	result, err := h.reconciler.RunOnce(c.Request.Context())
	if err != nil {
		if errors.Is(err, store.ErrUnconfigured) {
			respondWithError(c, apperrors.ErrStoreUnavailable)
			return
		}
		respondWithError(c, apperrors.StoreFailure(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "vestora/internal/errors"
	"vestora/internal/middleware"
	"vestora/internal/models"
	"vestora/internal/pagination"
	"vestora/internal/services"
)

// AdminHandler serves the operator surface. Every route except Unlock sits
// behind AdminMiddleware.
type AdminHandler struct {
	adminService services.AdminServicer
	userService  services.UserServicer
	tokens       *middleware.TokenManager
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService services.AdminServicer, userService services.UserServicer, tokens *middleware.TokenManager) *AdminHandler {
	return &AdminHandler{adminService: adminService, userService: userService, tokens: tokens}
}

// UnlockRequest carries the shared admin passcode.
type UnlockRequest struct {
	Passcode string `json:"passcode" binding:"required"`
}

// UnlockResponse carries the admin session token.
type UnlockResponse struct {
	AdminToken string    `json:"admin_token"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// SetCashRequest sets an owner's available cash.
type SetCashRequest struct {
	AvailableCash *decimal.Decimal `json:"available_cash" binding:"required,gte=0"`
}

// SetProfileAdminRequest sets a profile's admin flag.
type SetProfileAdminRequest struct {
	IsAdmin *bool `json:"is_admin" binding:"required"`
}

// Unlock exchanges an access token and the admin passcode for an admin session.
// @Summary     Unlock admin surface
// @Description Both gates must pass: the caller must be an admin and know a configured passcode
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UnlockRequest true "Admin passcode"
// @Success     200 {object} UnlockResponse "Admin session"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin access denied"
// @Failure     502 {object} ErrorResponse "Record store error"
// @Router      /admin/unlock [post]
func (h *AdminHandler) Unlock(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	identity := user.Identity()
	if err := h.adminService.Unlock(c.Request.Context(), identity, req.Passcode); err != nil {
		respondWithError(c, err)
		return
	}

	token, expiresAt, err := h.tokens.GenerateAdminToken(identity)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, UnlockResponse{AdminToken: token, ExpiresAt: expiresAt})
}

// ListOwners lists every owner known to the record store.
// @Summary     List owners
// @Description Union of profiles, the calling admin, asset owners and balance owners. Users with none of these are not listed.
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]services.Owner "Owners"
// @Failure     403 {object} ErrorResponse "Admin access denied"
// @Failure     502 {object} ErrorResponse "Record store error"
// @Router      /admin/owners [get]
func (h *AdminHandler) ListOwners(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	owners, err := h.adminService.ListOwners(c.Request.Context(), actor)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if owners == nil {
		owners = []services.Owner{}
	}

	c.JSON(http.StatusOK, gin.H{"owners": owners})
}

// GetOwnerAssets lists an owner's assets.
// @Summary     List owner assets
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       ownerID path string true "Owner ID"
// @Success     200 {object} map[string][]models.AssetRecord "Assets"
// @Failure     400 {object} ErrorResponse "Invalid owner ID"
// @Failure     403 {object} ErrorResponse "Admin access denied"
// @Router      /admin/owners/{ownerID}/assets [get]
func (h *AdminHandler) GetOwnerAssets(c *gin.Context) {
	ownerID, err := parsePathID(c, "ownerID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	assets, err := h.adminService.GetOwnerAssets(c.Request.Context(), ownerID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if assets == nil {
		assets = []models.AssetRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"assets": assets})
}

// CreateAsset creates an asset for an owner.
// @Summary     Create owner asset
// @Description Create an asset (status defaults to active) and synchronize the owner's balance
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       ownerID path string true "Owner ID"
// @Param       request body CreateAssetRequest true "Asset details"
// @Success     201 {object} services.MutationResult "Asset created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Admin access denied"
// @Router      /admin/owners/{ownerID}/assets [post]
func (h *AdminHandler) CreateAsset(c *gin.Context) {
	actor, ownerID, ok := h.actorAndOwner(c)
	if !ok {
		return
	}

	var req CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.adminService.CreateAsset(c.Request.Context(), actor, ownerID, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// UpdateAsset updates any field of an owner's asset.
// @Summary     Update owner asset
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       ownerID path string true "Owner ID"
// @Param       id path string true "Asset ID"
// @Param       request body UpdateAssetRequest true "Fields to change"
// @Success     200 {object} services.MutationResult "Asset updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Admin access denied"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Router      /admin/owners/{ownerID}/assets/{id} [put]
func (h *AdminHandler) UpdateAsset(c *gin.Context) {
	actor, ownerID, ok := h.actorAndOwner(c)
	if !ok {
		return
	}

	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.adminService.UpdateAsset(c.Request.Context(), actor, ownerID, assetID, req.patch())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteAsset deletes an owner's asset.
// @Summary     Delete owner asset
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       ownerID path string true "Owner ID"
// @Param       id path string true "Asset ID"
// @Success     200 {object} services.MutationResult "Asset deleted"
// @Failure     403 {object} ErrorResponse "Admin access denied"
// @Failure     404 {object} ErrorResponse "Asset not found"
// @Router      /admin/owners/{ownerID}/assets/{id} [delete]
func (h *AdminHandler) DeleteAsset(c *gin.Context) {
	actor, ownerID, ok := h.actorAndOwner(c)
	if !ok {
		return
	}

	assetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.adminService.DeleteAsset(c.Request.Context(), actor, ownerID, assetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SyncOwner synchronizes an owner's balance row.
// @Summary     Synchronize owner balance
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       ownerID path string true "Owner ID"
// @Success     200 {object} models.BalanceRecord "Synchronized balance"
// @Failure     403 {object} ErrorResponse "Admin access denied"
// @Failure     502 {object} ErrorResponse "Record store error"
// @Router      /admin/owners/{ownerID}/sync [post]
func (h *AdminHandler) SyncOwner(c *gin.Context) {
	actor, ownerID, ok := h.actorAndOwner(c)
	if !ok {
		return
	}

	balance, err := h.adminService.Synchronize(c.Request.Context(), actor, ownerID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// SetAvailableCash sets an owner's available cash.
// @Summary     Set available cash
// @Description Write available_cash only. Creates the balance row when missing.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       ownerID path string true "Owner ID"
// @Param       request body SetCashRequest true "New cash amount"
// @Success     200 {object} models.BalanceRecord "Balance"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Admin access denied"
// @Router      /admin/owners/{ownerID}/cash [put]
func (h *AdminHandler) SetAvailableCash(c *gin.Context) {
	actor, ownerID, ok := h.actorAndOwner(c)
	if !ok {
		return
	}

	var req SetCashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	balance, err := h.adminService.SetAvailableCash(c.Request.Context(), actor, ownerID, *req.AvailableCash)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}

// ListOwnerTransactions lists an owner's transaction log.
// @Summary     List owner transactions
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Param       ownerID   path  string true  "Owner ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.TransactionRecord] "Paginated transactions"
// @Failure     403 {object} ErrorResponse "Admin access denied"
// @Router      /admin/owners/{ownerID}/transactions [get]
func (h *AdminHandler) ListOwnerTransactions(c *gin.Context) {
	ownerID, err := parsePathID(c, "ownerID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.adminService.ListTransactions(c.Request.Context(), ownerID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateOwnerTransaction records a log entry for an owner.
// @Summary     Record owner transaction
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       ownerID path string true "Owner ID"
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.TransactionRecord "Transaction recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Admin access denied"
// @Router      /admin/owners/{ownerID}/transactions [post]
func (h *AdminHandler) CreateOwnerTransaction(c *gin.Context) {
	actor, ownerID, ok := h.actorAndOwner(c)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	tx, err := h.adminService.RecordTransaction(c.Request.Context(), actor, ownerID, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// SetProfileAdmin grants or revokes the profile admin flag.
// @Summary     Set profile admin flag
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       userID path string true "User ID"
// @Param       request body SetProfileAdminRequest true "Admin flag"
// @Success     200 {object} models.Profile "Profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Admin access denied"
// @Router      /admin/profiles/{userID} [put]
func (h *AdminHandler) SetProfileAdmin(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	userID, err := parsePathID(c, "userID")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetProfileAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	profile, err := h.adminService.SetProfileAdmin(c.Request.Context(), actor, userID, *req.IsAdmin)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// actorAndOwner reads the acting admin and the ownerID path parameter,
// writing the error response on failure.
func (h *AdminHandler) actorAndOwner(c *gin.Context) (services.Actor, string, bool) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return services.Actor{}, "", false
	}
	ownerID, err := parsePathID(c, "ownerID")
	if err != nil {
		respondWithError(c, err)
		return services.Actor{}, "", false
	}
	return actor, ownerID, true
}

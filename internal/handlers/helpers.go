package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "vestora/internal/errors"
	"vestora/internal/middleware"
	"vestora/internal/models"
	"vestora/internal/services"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// getActor returns the admin performing the request. AdminMiddleware puts
// the identity in the context.
func getActor(c *gin.Context) (services.Actor, error) {
	value, exists := c.Get(middleware.ContextIdentity)
	identity, ok := value.(models.Identity)
	if !exists || !ok || identity.ID == "" {
		return services.Actor{}, apperrors.ErrUnauthorized
	}
	return services.Actor{Identity: identity, IPAddress: c.ClientIP()}, nil
}

// parsePathID reads a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id.String(), nil
}

// bindError converts a binding failure into an INVALID_INPUT error.
func bindError(err error) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// respondWithError writes the standard error body for err.
func respondWithError(c *gin.Context, err error) {
	middleware.RespondError(c, err)
}

// CreateAssetRequest represents the request payload for creating an asset.
type CreateAssetRequest struct {
	Name             string               `json:"name" binding:"required,min=1,max=200"`
	Symbol           string               `json:"symbol" binding:"required,min=1,max=20"`
	Category         models.AssetCategory `json:"category" binding:"required,asset_category"`
	InvestmentAmount *decimal.Decimal     `json:"investment_amount" binding:"required,gte=0"`
	CurrentValue     *decimal.Decimal     `json:"current_value" binding:"omitempty,gte=0"`
	Quantity         *decimal.Decimal     `json:"quantity" binding:"omitempty,gte=0"`
	Status           models.AssetStatus   `json:"status" binding:"omitempty,asset_status"`
	Notes            string               `json:"notes" binding:"max=1000"`
}

func (r CreateAssetRequest) input() services.AssetInput {
	input := services.AssetInput{
		Name:         r.Name,
		Symbol:       r.Symbol,
		Category:     r.Category,
		CurrentValue: r.CurrentValue,
		Status:       r.Status,
		Notes:        r.Notes,
	}
	if r.InvestmentAmount != nil {
		input.InvestmentAmount = *r.InvestmentAmount
	}
	if r.Quantity != nil {
		input.Quantity = *r.Quantity
	}
	return input
}

// UpdateAssetRequest represents a partial asset update. Omitted fields are
// left unchanged.
type UpdateAssetRequest struct {
	Name             *string               `json:"name" binding:"omitempty,min=1,max=200"`
	Symbol           *string               `json:"symbol" binding:"omitempty,min=1,max=20"`
	Category         *models.AssetCategory `json:"category" binding:"omitempty,asset_category"`
	InvestmentAmount *decimal.Decimal      `json:"investment_amount" binding:"omitempty,gte=0"`
	CurrentValue     *decimal.Decimal      `json:"current_value" binding:"omitempty,gte=0"`
	Quantity         *decimal.Decimal      `json:"quantity" binding:"omitempty,gte=0"`
	Status           *models.AssetStatus   `json:"status" binding:"omitempty,asset_status"`
	Notes            *string               `json:"notes" binding:"omitempty,max=1000"`
}

func (r UpdateAssetRequest) patch() models.AssetPatch {
	patch := models.AssetPatch{
		Name:             r.Name,
		Symbol:           r.Symbol,
		Category:         r.Category,
		InvestmentAmount: r.InvestmentAmount,
		CurrentValue:     r.CurrentValue,
		Quantity:         r.Quantity,
		Status:           r.Status,
		Notes:            r.Notes,
	}
	if patch.Symbol != nil {
		symbol := strings.TrimSpace(*patch.Symbol)
		patch.Symbol = &symbol
	}
	return patch
}

// CreateTransactionRequest represents the request payload for a log entry.
type CreateTransactionRequest struct {
	AssetID         *string                `json:"asset_id" binding:"omitempty,uuid"`
	Type            models.TransactionKind `json:"type" binding:"required,transaction_kind"`
	Amount          *decimal.Decimal       `json:"amount" binding:"required,gt=0"`
	TransactionDate *time.Time             `json:"transaction_date"`
	Description     string                 `json:"description" binding:"max=500"`
}

func (r CreateTransactionRequest) input() services.TransactionInput {
	input := services.TransactionInput{
		AssetID:         r.AssetID,
		Type:            r.Type,
		TransactionDate: r.TransactionDate,
		Description:     r.Description,
	}
	if r.Amount != nil {
		input.Amount = *r.Amount
	}
	return input
}

// ErrorResponse documents the error body in the API docs.
type ErrorResponse = middleware.ErrorBody

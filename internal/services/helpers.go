package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "vestora/internal/errors"
	"vestora/internal/models"
	"vestora/internal/store"
)

// storeError maps a record-store failure onto the AppError taxonomy.
// notFound, when non-nil, is returned for keyed misses.
func storeError(err error, notFound *apperrors.AppError) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrUnconfigured):
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	case notFound != nil && errors.Is(err, store.ErrNotFound):
		return notFound
	default:
		return apperrors.StoreFailure(err)
	}
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return apperrors.ErrUnauthorized
	}
	return nil
}

// Amount columns are decimal(20,8): at most 12 integer digits and 8
// decimal places.
const (
	amountScale         = 8
	amountIntegerDigits = 12
)

var amountLimit = decimal.New(1, amountIntegerDigits)

// checkAmount rejects amounts the store could not hold exactly, so a value
// reads back as it was written.
func checkAmount(field string, d decimal.Decimal) error {
	switch {
	case d.IsNegative():
		return apperrors.WithMessage(apperrors.ErrInvalidInput, field+" must not be negative")
	case !d.Equal(d.Truncate(amountScale)):
		return apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("%s must have at most %d decimal places", field, amountScale))
	case d.Abs().GreaterThanOrEqual(amountLimit):
		return apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("%s must have at most %d integer digits", field, amountIntegerDigits))
	}
	return nil
}

// newAssetRecord validates input and builds the record to insert. An empty
// status falls back to defaultStatus.
func newAssetRecord(ownerID string, input AssetInput, defaultStatus models.AssetStatus) (*models.AssetRecord, error) {
	name := strings.TrimSpace(input.Name)
	symbol := strings.TrimSpace(input.Symbol)
	if name == "" || symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name and symbol are required")
	}
	if !input.Category.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown asset category")
	}

	status := input.Status
	if status == "" {
		status = defaultStatus
	}
	if !status.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown asset status")
	}

	current := input.InvestmentAmount
	if input.CurrentValue != nil {
		current = *input.CurrentValue
	}

	if err := checkAmount("investment_amount", input.InvestmentAmount); err != nil {
		return nil, err
	}
	if err := checkAmount("current_value", current); err != nil {
		return nil, err
	}
	if err := checkAmount("quantity", input.Quantity); err != nil {
		return nil, err
	}

	return &models.AssetRecord{
		OwnerID:          ownerID,
		Name:             name,
		Symbol:           symbol,
		Category:         input.Category,
		InvestmentAmount: input.InvestmentAmount,
		CurrentValue:     current,
		Quantity:         input.Quantity,
		Status:           status,
		Notes:            strings.TrimSpace(input.Notes),
	}, nil
}

// validatePatch rejects blank text and out-of-range amounts in a partial
// update and returns the patch with the symbol trimmed.
func validatePatch(patch models.AssetPatch) (models.AssetPatch, error) {
	invalid := func(msg string) (models.AssetPatch, error) {
		return patch, apperrors.WithMessage(apperrors.ErrInvalidInput, msg)
	}

	if patch.IsEmpty() {
		return invalid("no fields to update")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return invalid("name must not be empty")
	}
	if patch.Symbol != nil {
		symbol := strings.TrimSpace(*patch.Symbol)
		if symbol == "" {
			return invalid("symbol must not be empty")
		}
		patch.Symbol = &symbol
	}
	if patch.Category != nil && !patch.Category.Valid() {
		return invalid("unknown asset category")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return invalid("unknown asset status")
	}

	amounts := []struct {
		field string
		value *decimal.Decimal
	}{
		{"investment_amount", patch.InvestmentAmount},
		{"current_value", patch.CurrentValue},
		{"quantity", patch.Quantity},
	}
	for _, a := range amounts {
		if a.value == nil {
			continue
		}
		if err := checkAmount(a.field, *a.value); err != nil {
			return patch, err
		}
	}
	return patch, nil
}

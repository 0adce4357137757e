// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"vestora/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Configure(v)
	}
}

// Configure installs the custom validators on v.
func Configure(v *validator.Validate) {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation("asset_category", validateAssetCategory)
	_ = v.RegisterValidation("asset_status", validateAssetStatus)
	_ = v.RegisterValidation("transaction_kind", validateTransactionKind)
}

// decimalValue lets numeric tags such as gte=0 apply to decimal fields.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}

func validateAssetCategory(fl validator.FieldLevel) bool {
	return models.AssetCategory(fl.Field().String()).Valid()
}

func validateAssetStatus(fl validator.FieldLevel) bool {
	return models.AssetStatus(fl.Field().String()).Valid()
}

func validateTransactionKind(fl validator.FieldLevel) bool {
	return models.TransactionKind(fl.Field().String()).Valid()
}

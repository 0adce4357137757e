package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetCategory is the market an asset belongs to.
type AssetCategory string

const (
	AssetCategoryForex          AssetCategory = "forex"
	AssetCategoryCryptocurrency AssetCategory = "cryptocurrency"
	AssetCategoryStock          AssetCategory = "stock"
	AssetCategoryIndex          AssetCategory = "index"
	AssetCategoryCommodity      AssetCategory = "commodity"
)

// AssetCategories lists every valid category in display order.
var AssetCategories = []AssetCategory{
	AssetCategoryForex,
	AssetCategoryCryptocurrency,
	AssetCategoryStock,
	AssetCategoryIndex,
	AssetCategoryCommodity,
}

// Valid reports whether c is one of the known categories.
func (c AssetCategory) Valid() bool {
	for _, known := range AssetCategories {
		if c == known {
			return true
		}
	}
	return false
}

// AssetStatus tracks where an investment request is in its lifecycle.
type AssetStatus string

const (
	AssetStatusPending AssetStatus = "pending"
	AssetStatusActive  AssetStatus = "active"
	AssetStatusSold    AssetStatus = "sold"
)

// AssetStatuses lists every valid status.
var AssetStatuses = []AssetStatus{AssetStatusPending, AssetStatusActive, AssetStatusSold}

// Valid reports whether s is one of the known statuses.
func (s AssetStatus) Valid() bool {
	switch s {
	case AssetStatusPending, AssetStatusActive, AssetStatusSold:
		return true
	}
	return false
}

// AssetRecord is a manually-entered investment position owned by one user.
// Amounts are entered by the owner or an admin; there is no pricing feed.
type AssetRecord struct {
	Record
	OwnerID          string          `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name             string          `gorm:"not null" json:"name"`
	Symbol           string          `gorm:"not null" json:"symbol"`
	Category         AssetCategory   `gorm:"not null" json:"category"`
	InvestmentAmount decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"investment_amount"`
	CurrentValue     decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"current_value"`
	Quantity         decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"quantity"`
	Status           AssetStatus     `gorm:"not null;default:'pending'" json:"status"`
	Notes            string          `json:"notes,omitempty"`
}

// TableName pins the table name shared with the hosted record store.
func (AssetRecord) TableName() string { return "assets" }

// AssetPatch carries a partial update. Nil fields are left untouched.
type AssetPatch struct {
	Name             *string
	Symbol           *string
	Category         *AssetCategory
	InvestmentAmount *decimal.Decimal
	CurrentValue     *decimal.Decimal
	Quantity         *decimal.Decimal
	Status           *AssetStatus
	Notes            *string
}

// IsEmpty reports whether the patch changes nothing.
func (p AssetPatch) IsEmpty() bool {
	return p.Name == nil && p.Symbol == nil && p.Category == nil &&
		p.InvestmentAmount == nil && p.CurrentValue == nil && p.Quantity == nil &&
		p.Status == nil && p.Notes == nil
}

// Columns returns the patch as a column -> value map, the shape both
// record-store backends accept for partial updates.
func (p AssetPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Symbol != nil {
		cols["symbol"] = *p.Symbol
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.InvestmentAmount != nil {
		cols["investment_amount"] = *p.InvestmentAmount
	}
	if p.CurrentValue != nil {
		cols["current_value"] = *p.CurrentValue
	}
	if p.Quantity != nil {
		cols["quantity"] = *p.Quantity
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.Notes != nil {
		cols["notes"] = *p.Notes
	}
	return cols
}

// Apply copies the patch onto an in-memory record and bumps UpdatedAt.
func (p AssetPatch) Apply(a *AssetRecord, now time.Time) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Symbol != nil {
		a.Symbol = *p.Symbol
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.InvestmentAmount != nil {
		a.InvestmentAmount = *p.InvestmentAmount
	}
	if p.CurrentValue != nil {
		a.CurrentValue = *p.CurrentValue
	}
	if p.Quantity != nil {
		a.Quantity = *p.Quantity
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	a.UpdatedAt = now
}

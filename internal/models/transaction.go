package models

import (
	"time"

	"vestora/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionKind is the type of a ledger entry.
type TransactionKind string

const (
	TransactionKindPurchase TransactionKind = "purchase"
	TransactionKindSale     TransactionKind = "sale"
	TransactionKindDividend TransactionKind = "dividend"
	TransactionKindFee      TransactionKind = "fee"
)

// Valid reports whether k is one of the known kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case TransactionKindPurchase, TransactionKindSale, TransactionKindDividend, TransactionKindFee:
		return true
	}
	return false
}

// TransactionRecord is an append-only history entry. It is shown to owners
// but never consulted when computing balances.
type TransactionRecord struct {
	ID              string          `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID         string          `gorm:"type:uuid;not null;index" json:"owner_id"`
	AssetID         *string         `gorm:"type:uuid" json:"asset_id,omitempty"`
	Type            TransactionKind `gorm:"not null" json:"type"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	TransactionDate time.Time       `gorm:"not null" json:"transaction_date"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TableName pins the table name shared with the hosted record store.
func (TransactionRecord) TableName() string { return "transactions" }

// BeforeCreate hook generates a UUIDv7 for new records
func (t *TransactionRecord) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New()
	}
	return nil
}

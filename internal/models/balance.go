package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceRecord is the denormalized, one-row-per-owner projection of an
// owner's assets at their last synchronization. AvailableCash is not
// derived from assets and is only written by an explicit cash update.
type BalanceRecord struct {
	OwnerID               string          `gorm:"type:uuid;primaryKey" json:"owner_id"`
	TotalInvested         decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"total_invested"`
	CurrentPortfolioValue decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"current_portfolio_value"`
	TotalProfitLoss       decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"total_profit_loss"`
	AvailableCash         decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"available_cash"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// TableName pins the table name shared with the hosted record store.
func (BalanceRecord) TableName() string { return "balances" }

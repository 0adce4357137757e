// Package portfolio computes aggregate figures over an owner's asset records.
//
// Every function here is pure and total. Negative amounts never reach the
// stores through the API, but rows written by other tools might carry them,
// so they are clamped to zero before summing.
package portfolio

import (
	"github.com/shopspring/decimal"

	"vestora/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Summary is the aggregate view of a list of assets.
type Summary struct {
	TotalInvested        decimal.Decimal `json:"total_invested"`
	CurrentValue         decimal.Decimal `json:"current_value"`
	ProfitLoss           decimal.Decimal `json:"profit_loss"`
	ProfitLossPercentage decimal.Decimal `json:"profit_loss_percentage"`
	AssetCount           int             `json:"asset_count"`
}

// CategorySummary is the aggregate of the assets in one category.
type CategorySummary struct {
	Category      models.AssetCategory `json:"category"`
	TotalInvested decimal.Decimal      `json:"total_invested"`
	CurrentValue  decimal.Decimal      `json:"current_value"`
	ProfitLoss    decimal.Decimal      `json:"profit_loss"`
	AssetCount    int                  `json:"asset_count"`
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Summarize totals the assets. The percentage is rounded to two places and
// is zero when nothing was invested.
func Summarize(assets []models.AssetRecord) Summary {
	invested := decimal.Zero
	current := decimal.Zero
	for _, a := range assets {
		invested = invested.Add(nonNegative(a.InvestmentAmount))
		current = current.Add(nonNegative(a.CurrentValue))
	}

	profitLoss := current.Sub(invested)
	return Summary{
		TotalInvested:        invested,
		CurrentValue:         current,
		ProfitLoss:           profitLoss,
		ProfitLossPercentage: Percentage(profitLoss, invested),
		AssetCount:           len(assets),
	}
}

// Percentage returns part/whole*100 rounded to two places, or zero when
// whole is zero.
func Percentage(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

// SummarizeByCategory groups the assets by category. Categories without
// assets are omitted; known categories come first in display order and
// unknown ones follow in the order they were seen.
func SummarizeByCategory(assets []models.AssetRecord) []CategorySummary {
	groups := make(map[models.AssetCategory]*CategorySummary)
	var unknown []models.AssetCategory

	for _, a := range assets {
		g, ok := groups[a.Category]
		if !ok {
			g = &CategorySummary{
				Category:      a.Category,
				TotalInvested: decimal.Zero,
				CurrentValue:  decimal.Zero,
			}
			groups[a.Category] = g
			if !a.Category.Valid() {
				unknown = append(unknown, a.Category)
			}
		}
		g.TotalInvested = g.TotalInvested.Add(nonNegative(a.InvestmentAmount))
		g.CurrentValue = g.CurrentValue.Add(nonNegative(a.CurrentValue))
		g.AssetCount++
	}

	order := append(append([]models.AssetCategory{}, models.AssetCategories...), unknown...)
	out := make([]CategorySummary, 0, len(groups))
	for _, c := range order {
		g, ok := groups[c]
		if !ok {
			continue
		}
		g.ProfitLoss = g.CurrentValue.Sub(g.TotalInvested)
		out = append(out, *g)
	}
	return out
}

// SummarizeByStatus counts assets per status. Every known status is present.
func SummarizeByStatus(assets []models.AssetRecord) map[models.AssetStatus]int {
	counts := make(map[models.AssetStatus]int, len(models.AssetStatuses))
	for _, s := range models.AssetStatuses {
		counts[s] = 0
	}
	for _, a := range assets {
		counts[a.Status]++
	}
	return counts
}

// Matches reports whether a stored balance row carries the same derived
// totals as the summary.
func (s Summary) Matches(b *models.BalanceRecord) bool {
	if b == nil {
		return false
	}
	return b.TotalInvested.Equal(s.TotalInvested) &&
		b.CurrentPortfolioValue.Equal(s.CurrentValue) &&
		b.TotalProfitLoss.Equal(s.ProfitLoss)
}

// Balance projects the summary onto a balance row for the owner.
// AvailableCash is left zero; stores never overwrite it from this value.
func (s Summary) Balance(ownerID string) *models.BalanceRecord {
	return &models.BalanceRecord{
		OwnerID:               ownerID,
		TotalInvested:         s.TotalInvested,
		CurrentPortfolioValue: s.CurrentValue,
		TotalProfitLoss:       s.ProfitLoss,
	}
}

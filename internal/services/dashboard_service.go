package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"vestora/internal/models"
	"vestora/internal/portfolio"
	"vestora/internal/store"
)

// dashboardService builds the owner's dashboard from live asset rows.
type dashboardService struct {
	assets   store.AssetStore
	balances store.BalanceStore
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(assets store.AssetStore, balances store.BalanceStore) DashboardServicer {
	return &dashboardService{assets: assets, balances: balances}
}

// GetDashboard summarizes the owner's assets and compares the result with
// the stored balance row. A read failure is returned as an error so that
// zeros are never shown as confirmed figures.
func (s *dashboardService) GetDashboard(ctx context.Context, ownerID string) (*Dashboard, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	assets, err := s.assets.ListAssets(ctx, ownerID)
	if err != nil {
		return nil, storeError(err, nil)
	}
	if assets == nil {
		assets = []models.AssetRecord{}
	}

	balance, err := s.balances.GetBalance(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, storeError(err, nil)
		}
		balance = nil
	}

	summary := portfolio.Summarize(assets)
	cash := decimal.Zero
	if balance != nil {
		cash = balance.AvailableCash
	}

	return &Dashboard{
		Summary:       summary,
		Categories:    portfolio.SummarizeByCategory(assets),
		StatusCounts:  portfolio.SummarizeByStatus(assets),
		Balance:       balance,
		AvailableCash: cash,
		BalanceStale:  !summary.Matches(balance),
		Assets:        assets,
	}, nil
}

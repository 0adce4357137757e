package services

import (
	"context"
	"time"

	apperrors "vestora/internal/errors"
	"vestora/internal/logger"
	"vestora/internal/models"
	"vestora/internal/portfolio"
	"vestora/internal/store"
)

// balanceService keeps the denormalized balance row in line with the
// owner's assets.
//
// Synchronizations are not coordinated. Two concurrent runs for one owner
// interleave and the last upsert wins, so an asset write landing between
// another run's read and write can be lost until the next run.
type balanceService struct {
	assets   store.AssetStore
	balances store.BalanceStore
	now      func() time.Time
}

// NewBalanceService creates a new BalanceServicer.
func NewBalanceService(assets store.AssetStore, balances store.BalanceStore) BalanceServicer {
	return &balanceService{
		assets:   assets,
		balances: balances,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Synchronize re-reads every asset of the owner and overwrites the derived
// totals of the balance row. available_cash is never written here.
func (s *balanceService) Synchronize(ctx context.Context, ownerID string) (*models.BalanceRecord, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	log := logger.ForOwner("sync", ownerID)

	assets, err := s.assets.ListAssets(ctx, ownerID)
	if err != nil {
		log.Warnw("asset read failed, balance left untouched", "error", err)
		return nil, storeError(err, nil)
	}

	summary := portfolio.Summarize(assets)
	row := summary.Balance(ownerID)
	row.UpdatedAt = s.now()

	saved, err := s.balances.UpsertBalanceTotals(ctx, row)
	if err != nil {
		log.Warnw("balance upsert failed", "error", err)
		return nil, storeError(err, nil)
	}

	log.Debugw("balance synchronized",
		"asset_count", summary.AssetCount,
		"total_invested", summary.TotalInvested.String(),
		"current_value", summary.CurrentValue.String(),
	)
	return saved, nil
}

// GetBalance returns the stored balance row without recomputing it.
func (s *balanceService) GetBalance(ctx context.Context, ownerID string) (*models.BalanceRecord, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	balance, err := s.balances.GetBalance(ctx, ownerID)
	if err != nil {
		return nil, storeError(err, apperrors.ErrBalanceNotFound)
	}
	return balance, nil
}

// synchronizeAfter runs the synchronizer after a successful asset write and
// folds its outcome into a MutationResult.
func synchronizeAfter(ctx context.Context, sync Synchronizer, ownerID string, asset *models.AssetRecord) *MutationResult {
	result := &MutationResult{Asset: asset}

	balance, err := sync.Synchronize(ctx, ownerID)
	if err != nil {
		result.BalanceStale = true
		result.SyncError = err.Error()
		return result
	}
	result.Balance = balance
	return result
}

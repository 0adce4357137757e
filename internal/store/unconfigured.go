package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"vestora/internal/models"
	"vestora/internal/pagination"
)

// Unconfigured is the placeholder store used when connection settings are
// missing. The service still starts; every record operation fails.
type Unconfigured struct {
	err error
}

var _ Store = (*Unconfigured)(nil)

// NewUnconfigured returns a store whose calls all fail with ErrUnconfigured.
func NewUnconfigured(reason string) *Unconfigured {
	return &Unconfigured{err: fmt.Errorf("%w: %s", ErrUnconfigured, reason)}
}

func (u *Unconfigured) ListAssets(context.Context, string) ([]models.AssetRecord, error) {
	return nil, u.err
}

func (u *Unconfigured) GetAsset(context.Context, string) (*models.AssetRecord, error) {
	return nil, u.err
}

func (u *Unconfigured) CreateAsset(context.Context, *models.AssetRecord) error { return u.err }

func (u *Unconfigured) UpdateAsset(context.Context, string, models.AssetPatch) (*models.AssetRecord, error) {
	return nil, u.err
}

func (u *Unconfigured) DeleteAsset(context.Context, string) error { return u.err }

func (u *Unconfigured) ListAssetOwnerIDs(context.Context) ([]string, error) { return nil, u.err }

func (u *Unconfigured) GetBalance(context.Context, string) (*models.BalanceRecord, error) {
	return nil, u.err
}

func (u *Unconfigured) UpsertBalanceTotals(context.Context, *models.BalanceRecord) (*models.BalanceRecord, error) {
	return nil, u.err
}

func (u *Unconfigured) SetAvailableCash(context.Context, string, decimal.Decimal) (*models.BalanceRecord, error) {
	return nil, u.err
}

func (u *Unconfigured) ListBalanceOwnerIDs(context.Context) ([]string, error) { return nil, u.err }

func (u *Unconfigured) CreateTransaction(context.Context, *models.TransactionRecord) error {
	return u.err
}

func (u *Unconfigured) ListTransactions(context.Context, string, pagination.PageRequest) ([]models.TransactionRecord, int64, error) {
	return nil, 0, u.err
}

func (u *Unconfigured) GetProfile(context.Context, string) (*models.Profile, error) {
	return nil, u.err
}

func (u *Unconfigured) ListProfiles(context.Context) ([]models.Profile, error) { return nil, u.err }

func (u *Unconfigured) UpsertProfile(context.Context, *models.Profile) (*models.Profile, error) {
	return nil, u.err
}

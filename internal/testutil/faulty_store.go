package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"vestora/internal/models"
	"vestora/internal/pagination"
	"vestora/internal/store"
)

// ErrInjected is the default failure returned by FaultyStore.
var ErrInjected = errors.New("injected store failure")

// FaultyStore wraps a real store and fails selected operations on demand.
// Operations are named after the Store method, e.g. "ListAssets".
type FaultyStore struct {
	store.Store

	mu       sync.Mutex
	failures map[string]error
	calls    map[string]int
}

// NewFaultyStore wraps inner.
func NewFaultyStore(inner store.Store) *FaultyStore {
	return &FaultyStore{Store: inner, failures: map[string]error{}, calls: map[string]int{}}
}

// Fail makes every later call to op return err (ErrInjected when nil).
func (f *FaultyStore) Fail(op string, err error) {
	if err == nil {
		err = ErrInjected
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

// Heal removes the injected failure for op.
func (f *FaultyStore) Heal(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, op)
}

// Calls returns how many times op was invoked, failed calls included.
func (f *FaultyStore) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *FaultyStore) check(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.failures[op]
}

func (f *FaultyStore) ListAssets(ctx context.Context, ownerID string) ([]models.AssetRecord, error) {
	if err := f.check("ListAssets"); err != nil {
		return nil, err
	}
	return f.Store.ListAssets(ctx, ownerID)
}

func (f *FaultyStore) GetAsset(ctx context.Context, id string) (*models.AssetRecord, error) {
	if err := f.check("GetAsset"); err != nil {
		return nil, err
	}
	return f.Store.GetAsset(ctx, id)
}

func (f *FaultyStore) CreateAsset(ctx context.Context, asset *models.AssetRecord) error {
	if err := f.check("CreateAsset"); err != nil {
		return err
	}
	return f.Store.CreateAsset(ctx, asset)
}

func (f *FaultyStore) UpdateAsset(ctx context.Context, id string, patch models.AssetPatch) (*models.AssetRecord, error) {
	if err := f.check("UpdateAsset"); err != nil {
		return nil, err
	}
	return f.Store.UpdateAsset(ctx, id, patch)
}

func (f *FaultyStore) DeleteAsset(ctx context.Context, id string) error {
	if err := f.check("DeleteAsset"); err != nil {
		return err
	}
	return f.Store.DeleteAsset(ctx, id)
}

func (f *FaultyStore) ListAssetOwnerIDs(ctx context.Context) ([]string, error) {
	if err := f.check("ListAssetOwnerIDs"); err != nil {
		return nil, err
	}
	return f.Store.ListAssetOwnerIDs(ctx)
}

func (f *FaultyStore) GetBalance(ctx context.Context, ownerID string) (*models.BalanceRecord, error) {
	if err := f.check("GetBalance"); err != nil {
		return nil, err
	}
	return f.Store.GetBalance(ctx, ownerID)
}

func (f *FaultyStore) UpsertBalanceTotals(ctx context.Context, balance *models.BalanceRecord) (*models.BalanceRecord, error) {
	if err := f.check("UpsertBalanceTotals"); err != nil {
		return nil, err
	}
	return f.Store.UpsertBalanceTotals(ctx, balance)
}

func (f *FaultyStore) SetAvailableCash(ctx context.Context, ownerID string, amount decimal.Decimal) (*models.BalanceRecord, error) {
	if err := f.check("SetAvailableCash"); err != nil {
		return nil, err
	}
	return f.Store.SetAvailableCash(ctx, ownerID, amount)
}

func (f *FaultyStore) ListBalanceOwnerIDs(ctx context.Context) ([]string, error) {
	if err := f.check("ListBalanceOwnerIDs"); err != nil {
		return nil, err
	}
	return f.Store.ListBalanceOwnerIDs(ctx)
}

func (f *FaultyStore) CreateTransaction(ctx context.Context, tx *models.TransactionRecord) error {
	if err := f.check("CreateTransaction"); err != nil {
		return err
	}
	return f.Store.CreateTransaction(ctx, tx)
}

func (f *FaultyStore) ListTransactions(ctx context.Context, ownerID string, page pagination.PageRequest) ([]models.TransactionRecord, int64, error) {
	if err := f.check("ListTransactions"); err != nil {
		return nil, 0, err
	}
	return f.Store.ListTransactions(ctx, ownerID, page)
}

func (f *FaultyStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if err := f.check("GetProfile"); err != nil {
		return nil, err
	}
	return f.Store.GetProfile(ctx, userID)
}

func (f *FaultyStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	if err := f.check("ListProfiles"); err != nil {
		return nil, err
	}
	return f.Store.ListProfiles(ctx)
}

func (f *FaultyStore) UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if err := f.check("UpsertProfile"); err != nil {
		return nil, err
	}
	return f.Store.UpsertProfile(ctx, profile)
}

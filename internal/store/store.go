// Package store defines the record-store collaborator the portfolio core
// depends on, plus the gorm-backed implementation. The hosted
// backend-as-a-service client lives in store/rest.
//
// Stores give no transactional guarantee across calls: an asset write and
// the balance upsert that follows it are independent operations.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"vestora/internal/models"
	"vestora/internal/pagination"
)

var (
	// ErrNotFound is returned when a keyed read, update or delete matches no row.
	ErrNotFound = errors.New("record not found")

	// ErrUnconfigured is returned by every call on a store whose connection
	// settings are missing.
	ErrUnconfigured = errors.New("record store is not configured")
)

// AssetStore is the owner-keyed table of asset records.
type AssetStore interface {
	// ListAssets returns every asset of the owner, newest first.
	ListAssets(ctx context.Context, ownerID string) ([]models.AssetRecord, error)
	GetAsset(ctx context.Context, id string) (*models.AssetRecord, error)
	// CreateAsset inserts the asset and fills in its id and timestamps.
	CreateAsset(ctx context.Context, asset *models.AssetRecord) error
	UpdateAsset(ctx context.Context, id string, patch models.AssetPatch) (*models.AssetRecord, error)
	DeleteAsset(ctx context.Context, id string) error
	// ListAssetOwnerIDs returns the distinct owner ids present in the table.
	ListAssetOwnerIDs(ctx context.Context) ([]string, error)
}

// BalanceStore is the one-row-per-owner table of denormalized totals.
type BalanceStore interface {
	GetBalance(ctx context.Context, ownerID string) (*models.BalanceRecord, error)
	// UpsertBalanceTotals writes the three derived totals and updated_at.
	// AvailableCash is never written by this call: an existing value is
	// preserved and a new row starts at zero.
	UpsertBalanceTotals(ctx context.Context, balance *models.BalanceRecord) (*models.BalanceRecord, error)
	// SetAvailableCash writes available_cash only, creating the row if needed.
	SetAvailableCash(ctx context.Context, ownerID string, amount decimal.Decimal) (*models.BalanceRecord, error)
	ListBalanceOwnerIDs(ctx context.Context) ([]string, error)
}

// TransactionStore is the append-only transaction log.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *models.TransactionRecord) error
	// ListTransactions returns one page of the owner's log, newest first,
	// together with the total number of entries.
	ListTransactions(ctx context.Context, ownerID string, page pagination.PageRequest) ([]models.TransactionRecord, int64, error)
}

// ProfileStore holds per-user profile rows.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
}

// Store is the full record-store surface.
type Store interface {
	AssetStore
	BalanceStore
	TransactionStore
	ProfileStore
}

// Dedupe returns ids without blanks or repeats, preserving first-seen order.
func Dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vestora/internal/models"
	"vestora/internal/pagination"
)

// GormStore implements Store on a relational database through gorm.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates a Store over the given database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ListAssets returns every asset of the owner, newest first.
func (s *GormStore) ListAssets(ctx context.Context, ownerID string) ([]models.AssetRecord, error) {
	var assets []models.AssetRecord
	if err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	return assets, nil
}

// GetAsset returns one asset by id.
func (s *GormStore) GetAsset(ctx context.Context, id string) (*models.AssetRecord, error) {
	var asset models.AssetRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&asset).Error; err != nil {
		return nil, notFound(err)
	}
	return &asset, nil
}

// CreateAsset inserts the asset; the BeforeCreate hook assigns its id. The
// asset is then replaced with the stored row so callers see the values the
// column types kept.
func (s *GormStore) CreateAsset(ctx context.Context, asset *models.AssetRecord) error {
	if err := s.db.WithContext(ctx).Create(asset).Error; err != nil {
		return fmt.Errorf("creating asset: %w", err)
	}
	stored, err := s.GetAsset(ctx, asset.ID)
	if err != nil {
		return fmt.Errorf("reading created asset: %w", err)
	}
	*asset = *stored
	return nil
}

// UpdateAsset applies a partial update and returns the stored row.
func (s *GormStore) UpdateAsset(ctx context.Context, id string, patch models.AssetPatch) (*models.AssetRecord, error) {
	if patch.IsEmpty() {
		return s.GetAsset(ctx, id)
	}

	result := s.db.WithContext(ctx).Model(&models.AssetRecord{}).
		Where("id = ?", id).
		Updates(patch.Columns())
	if result.Error != nil {
		return nil, fmt.Errorf("updating asset: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetAsset(ctx, id)
}

// DeleteAsset removes the asset with the given id.
func (s *GormStore) DeleteAsset(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.AssetRecord{})
	if result.Error != nil {
		return fmt.Errorf("deleting asset: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAssetOwnerIDs returns the distinct owners that hold at least one asset.
func (s *GormStore) ListAssetOwnerIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.AssetRecord{}).
		Distinct("owner_id").
		Pluck("owner_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("listing asset owners: %w", err)
	}
	return Dedupe(ids), nil
}

// GetBalance returns the owner's balance row.
func (s *GormStore) GetBalance(ctx context.Context, ownerID string) (*models.BalanceRecord, error) {
	var balance models.BalanceRecord
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&balance).Error; err != nil {
		return nil, notFound(err)
	}
	return &balance, nil
}

// UpsertBalanceTotals inserts or updates the derived totals. available_cash
// is left out of the conflict update set so an existing value survives.
func (s *GormStore) UpsertBalanceTotals(ctx context.Context, balance *models.BalanceRecord) (*models.BalanceRecord, error) {
	row := &models.BalanceRecord{
		OwnerID:               balance.OwnerID,
		TotalInvested:         balance.TotalInvested,
		CurrentPortfolioValue: balance.CurrentPortfolioValue,
		TotalProfitLoss:       balance.TotalProfitLoss,
		AvailableCash:         decimal.Zero,
		UpdatedAt:             stamp(balance.UpdatedAt),
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_invested", "current_portfolio_value", "total_profit_loss", "updated_at",
		}),
	}).Create(row).Error; err != nil {
		return nil, fmt.Errorf("upserting balance: %w", err)
	}
	return s.GetBalance(ctx, balance.OwnerID)
}

// SetAvailableCash writes available_cash only, creating the row if needed.
func (s *GormStore) SetAvailableCash(ctx context.Context, ownerID string, amount decimal.Decimal) (*models.BalanceRecord, error) {
	row := &models.BalanceRecord{
		OwnerID:       ownerID,
		AvailableCash: amount,
		UpdatedAt:     time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"available_cash", "updated_at"}),
	}).Create(row).Error; err != nil {
		return nil, fmt.Errorf("setting available cash: %w", err)
	}
	return s.GetBalance(ctx, ownerID)
}

// ListBalanceOwnerIDs returns the owners that have a balance row.
func (s *GormStore) ListBalanceOwnerIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.BalanceRecord{}).
		Pluck("owner_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("listing balance owners: %w", err)
	}
	return Dedupe(ids), nil
}

// CreateTransaction appends an entry to the log.
func (s *GormStore) CreateTransaction(ctx context.Context, tx *models.TransactionRecord) error {
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}
	if err := s.db.WithContext(ctx).Where("id = ?", tx.ID).First(tx).Error; err != nil {
		return fmt.Errorf("reading created transaction: %w", err)
	}
	return nil
}

// ListTransactions returns one page of the owner's log, newest first.
func (s *GormStore) ListTransactions(ctx context.Context, ownerID string, page pagination.PageRequest) ([]models.TransactionRecord, int64, error) {
	var total int64
	base := s.db.WithContext(ctx).Model(&models.TransactionRecord{}).Where("owner_id = ?", ownerID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting transactions: %w", err)
	}

	var txs []models.TransactionRecord
	if err := base.Order("transaction_date DESC").
		Scopes(page.Scope()).
		Find(&txs).Error; err != nil {
		return nil, 0, fmt.Errorf("listing transactions: %w", err)
	}
	return txs, total, nil
}

// GetProfile returns the profile of a user.
func (s *GormStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

// ListProfiles returns every profile row, oldest first.
func (s *GormStore) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	return profiles, nil
}

// UpsertProfile inserts or updates a profile keyed by user id.
func (s *GormStore) UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "is_admin", "updated_at"}),
	}).Create(profile).Error; err != nil {
		return nil, fmt.Errorf("upserting profile: %w", err)
	}
	return s.GetProfile(ctx, profile.UserID)
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

package services

import (
	"context"

	apperrors "vestora/internal/errors"
	"vestora/internal/models"
	"vestora/internal/store"
)

// assetService handles the owner-scoped asset operations.
type assetService struct {
	assets store.AssetStore
	sync   Synchronizer
}

// NewAssetService creates a new AssetServicer.
func NewAssetService(assets store.AssetStore, sync Synchronizer) AssetServicer {
	return &assetService{assets: assets, sync: sync}
}

// ListAssets returns the owner's assets, newest first.
func (s *assetService) ListAssets(ctx context.Context, ownerID string) ([]models.AssetRecord, error) {
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
	return assets, nil
}

// GetAsset returns one of the owner's assets. Assets of other owners are
// reported as not found.
func (s *assetService) GetAsset(ctx context.Context, ownerID, assetID string) (*models.AssetRecord, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return ownedAsset(ctx, s.assets, ownerID, assetID)
}

// CreateAssetRequest records a new investment request. Owner-created assets
// always start pending; an admin activates them.
func (s *assetService) CreateAssetRequest(ctx context.Context, ownerID string, input AssetInput) (*MutationResult, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	input.Status = models.AssetStatusPending
	asset, err := newAssetRecord(ownerID, input, models.AssetStatusPending)
	if err != nil {
		return nil, err
	}

	if err := s.assets.CreateAsset(ctx, asset); err != nil {
		return nil, storeError(err, nil)
	}
	return synchronizeAfter(ctx, s.sync, ownerID, asset), nil
}

// UpdateAsset edits the owner-editable fields of an asset: name, symbol,
// notes and the two amounts.
func (s *assetService) UpdateAsset(ctx context.Context, ownerID, assetID string, patch models.AssetPatch) (*MutationResult, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if patch.Category != nil || patch.Status != nil || patch.Quantity != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category, status and quantity are managed by an admin")
	}

	patch, err := validatePatch(patch)
	if err != nil {
		return nil, err
	}
	if _, err := ownedAsset(ctx, s.assets, ownerID, assetID); err != nil {
		return nil, err
	}

	asset, err := s.assets.UpdateAsset(ctx, assetID, patch)
	if err != nil {
		return nil, storeError(err, apperrors.ErrAssetNotFound)
	}
	return synchronizeAfter(ctx, s.sync, ownerID, asset), nil
}

// DeleteAsset removes one of the owner's assets.
func (s *assetService) DeleteAsset(ctx context.Context, ownerID, assetID string) (*MutationResult, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	asset, err := ownedAsset(ctx, s.assets, ownerID, assetID)
	if err != nil {
		return nil, err
	}
	if err := s.assets.DeleteAsset(ctx, assetID); err != nil {
		return nil, storeError(err, apperrors.ErrAssetNotFound)
	}
	return synchronizeAfter(ctx, s.sync, ownerID, asset), nil
}

// ownedAsset loads an asset and checks that it belongs to ownerID.
func ownedAsset(ctx context.Context, assets store.AssetStore, ownerID, assetID string) (*models.AssetRecord, error) {
	if assetID == "" {
		return nil, apperrors.ErrAssetNotFound
	}
	asset, err := assets.GetAsset(ctx, assetID)
	if err != nil {
		return nil, storeError(err, apperrors.ErrAssetNotFound)
	}
	if asset.OwnerID != ownerID {
		return nil, apperrors.ErrAssetNotFound
	}
	return asset, nil
}

package services

import (
	"context"
	"strings"
	"time"

	apperrors "vestora/internal/errors"
	"vestora/internal/models"
	"vestora/internal/pagination"
	"vestora/internal/store"
)

// transactionService handles the append-only transaction log. Entries are
// informational; balances never read them.
type transactionService struct {
	transactions store.TransactionStore
	assets       store.AssetStore
	now          func() time.Time
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(transactions store.TransactionStore, assets store.AssetStore) TransactionServicer {
	return &transactionService{
		transactions: transactions,
		assets:       assets,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// RecordTransaction appends an entry to the owner's log. A referenced asset
// must belong to the same owner.
func (s *transactionService) RecordTransaction(ctx context.Context, ownerID string, input TransactionInput) (*models.TransactionRecord, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if !input.Type.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown transaction type")
	}
	if !input.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if err := checkAmount("amount", input.Amount); err != nil {
		return nil, err
	}

	if input.AssetID != nil {
		if *input.AssetID == "" {
			input.AssetID = nil
		} else if _, err := ownedAsset(ctx, s.assets, ownerID, *input.AssetID); err != nil {
			return nil, err
		}
	}

	date := s.now()
	if input.TransactionDate != nil {
		date = input.TransactionDate.UTC()
	}

	tx := &models.TransactionRecord{
		OwnerID:         ownerID,
		AssetID:         input.AssetID,
		Type:            input.Type,
		Amount:          input.Amount,
		TransactionDate: date,
		Description:     strings.TrimSpace(input.Description),
	}
	if err := s.transactions.CreateTransaction(ctx, tx); err != nil {
		return nil, storeError(err, nil)
	}
	return tx, nil
}

// ListTransactions returns one page of the owner's log, newest first.
func (s *transactionService) ListTransactions(ctx context.Context, ownerID string, page pagination.PageRequest) (*pagination.PageResponse[models.TransactionRecord], error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	page = page.Normalized()

	txs, total, err := s.transactions.ListTransactions(ctx, ownerID, page)
	if err != nil {
		return nil, storeError(err, nil)
	}

	resp := pagination.NewPageResponse(txs, page, total)
	return &resp, nil
}

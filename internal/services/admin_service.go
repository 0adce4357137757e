package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	apperrors "vestora/internal/errors"
	"vestora/internal/logger"
	"vestora/internal/models"
	"vestora/internal/pagination"
	"vestora/internal/portfolio"
	"vestora/internal/store"
)

// ownerFanOut bounds the concurrent per-owner reads of ListOwners.
const ownerFanOut = 8

// Owner listing sources.
const (
	SourceProfile = "profile"
	SourceAdmin   = "admin"
	SourceAssets  = "assets"
	SourceBalance = "balance"
)

// AdminConfig holds the gate settings.
type AdminConfig struct {
	// Emails is the allow-list consulted first by the gate.
	Emails []string
	// Passcodes are the accepted shared secrets. Empty locks the admin surface.
	Passcodes []string
	// Currency is used to format amounts on the owner listing.
	Currency string
}

// adminService implements the operator surface on top of the owner services.
type adminService struct {
	store        store.Store
	sync         Synchronizer
	transactions TransactionServicer
	users        UserServicer
	audit        AuditServicer

	emails    map[string]bool
	passcodes [][]byte
	currency  string
}

// NewAdminService creates a new AdminServicer.
func NewAdminService(st store.Store, sync Synchronizer, transactions TransactionServicer, users UserServicer, audit AuditServicer, cfg AdminConfig) AdminServicer {
	emails := make(map[string]bool, len(cfg.Emails))
	for _, e := range cfg.Emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			emails[e] = true
		}
	}
	passcodes := make([][]byte, 0, len(cfg.Passcodes))
	for _, p := range cfg.Passcodes {
		if p != "" {
			passcodes = append(passcodes, []byte(p))
		}
	}
	currency := cfg.Currency
	if currency == "" {
		currency = portfolio.DefaultCurrency
	}

	return &adminService{
		store:        st,
		sync:         sync,
		transactions: transactions,
		users:        users,
		audit:        audit,
		emails:       emails,
		passcodes:    passcodes,
		currency:     currency,
	}
}

// IsAdmin checks, in order, the email allow-list, the identity metadata and
// the profile flag. A profile read failure is an error, not a denial.
func (s *adminService) IsAdmin(ctx context.Context, identity models.Identity) (bool, error) {
	if identity.ID == "" {
		return false, apperrors.ErrUnauthorized
	}

	log := logger.Named("admin")

	if s.emails[strings.ToLower(strings.TrimSpace(identity.Email))] {
		log.Debugw("admin granted", "user_id", identity.ID, "via", "allow_list")
		return true, nil
	}
	if identity.HasAdminRole() {
		log.Debugw("admin granted", "user_id", identity.ID, "via", "metadata")
		return true, nil
	}

	profile, err := s.store.GetProfile(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, storeError(err, nil)
	}
	if profile.IsAdmin {
		log.Debugw("admin granted", "user_id", identity.ID, "via", "profile")
	}
	return profile.IsAdmin, nil
}

// Unlock runs both gates. Every comparison is made so the time taken does
// not depend on which passcode matched.
func (s *adminService) Unlock(ctx context.Context, identity models.Identity, passcode string) error {
	ok, err := s.IsAdmin(ctx, identity)
	if err != nil {
		return err
	}

	log := logger.Named("admin")
	if !ok {
		log.Warnw("admin unlock denied", "user_id", identity.ID, "reason", "not_admin")
		return apperrors.ErrAdminDenied
	}

	matched := 0
	for _, p := range s.passcodes {
		matched |= subtle.ConstantTimeCompare([]byte(passcode), p)
	}
	if matched != 1 {
		log.Warnw("admin unlock denied", "user_id", identity.ID, "reason", "passcode")
		return apperrors.ErrAdminDenied
	}

	log.Infow("admin unlocked", "user_id", identity.ID)
	return nil
}

// ListOwners enumerates every owner the record store knows about. The set
// is the union of profile rows, the calling admin, asset owners and balance
// owners. A user with none of these is not listed.
func (s *adminService) ListOwners(ctx context.Context, actor Actor) ([]Owner, error) {
	var profiles []models.Profile
	var assetOwners, balanceOwners []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = s.store.ListProfiles(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		assetOwners, err = s.store.ListAssetOwnerIDs(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		balanceOwners, err = s.store.ListBalanceOwnerIDs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError(err, nil)
	}

	sources := make(map[string][]string)
	add := func(id, source string) {
		if id == "" {
			return
		}
		for _, existing := range sources[id] {
			if existing == source {
				return
			}
		}
		sources[id] = append(sources[id], source)
	}
	for _, p := range profiles {
		add(p.UserID, SourceProfile)
	}
	add(actor.Identity.ID, SourceAdmin)
	for _, id := range assetOwners {
		add(id, SourceAssets)
	}
	for _, id := range balanceOwners {
		add(id, SourceBalance)
	}

	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	owners := make([]Owner, len(ids))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(ownerFanOut)
	for i, id := range ids {
		g.Go(func() error {
			owner, err := s.loadOwner(gctx, id)
			if err != nil {
				return err
			}
			owner.Sources = sources[id]
			owners[i] = *owner
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	emails, err := s.users.FindEmails(ids)
	if err != nil {
		return nil, err
	}
	for i := range owners {
		owners[i].Email = emails[owners[i].OwnerID]
	}
	return owners, nil
}

func (s *adminService) loadOwner(ctx context.Context, ownerID string) (*Owner, error) {
	assets, err := s.store.ListAssets(ctx, ownerID)
	if err != nil {
		return nil, storeError(err, nil)
	}
	balance, err := s.store.GetBalance(ctx, ownerID)
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
	return &Owner{
		OwnerID: ownerID,
		Summary: summary,
		Balance: balance,
		Display: OwnerDisplay{
			TotalInvested: portfolio.FormatAmount(summary.TotalInvested, s.currency),
			CurrentValue:  portfolio.FormatAmount(summary.CurrentValue, s.currency),
			ProfitLoss:    portfolio.FormatAmount(summary.ProfitLoss, s.currency),
			AvailableCash: portfolio.FormatAmount(cash, s.currency),
		},
	}, nil
}

// GetOwnerAssets returns every asset of the owner.
func (s *adminService) GetOwnerAssets(ctx context.Context, ownerID string) ([]models.AssetRecord, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	assets, err := s.store.ListAssets(ctx, ownerID)
	if err != nil {
		return nil, storeError(err, nil)
	}
	if assets == nil {
		assets = []models.AssetRecord{}
	}
	return assets, nil
}

// CreateAsset adds an asset for the owner. Status defaults to active.
func (s *adminService) CreateAsset(ctx context.Context, actor Actor, ownerID string, input AssetInput) (*MutationResult, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	asset, err := newAssetRecord(ownerID, input, models.AssetStatusActive)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateAsset(ctx, asset); err != nil {
		return nil, storeError(err, nil)
	}

	s.audit.Log(actor.Identity.ID, ownerID, "asset.create", "asset", asset.ID, actor.IPAddress, map[string]any{
		"name":              asset.Name,
		"symbol":            asset.Symbol,
		"category":          asset.Category,
		"investment_amount": asset.InvestmentAmount,
		"current_value":     asset.CurrentValue,
		"quantity":          asset.Quantity,
		"status":            asset.Status,
	})
	return synchronizeAfter(ctx, s.sync, ownerID, asset), nil
}

// UpdateAsset edits any field of one of the owner's assets.
func (s *adminService) UpdateAsset(ctx context.Context, actor Actor, ownerID, assetID string, patch models.AssetPatch) (*MutationResult, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	patch, err := validatePatch(patch)
	if err != nil {
		return nil, err
	}
	if _, err := ownedAsset(ctx, s.store, ownerID, assetID); err != nil {
		return nil, err
	}

	asset, err := s.store.UpdateAsset(ctx, assetID, patch)
	if err != nil {
		return nil, storeError(err, apperrors.ErrAssetNotFound)
	}

	s.audit.Log(actor.Identity.ID, ownerID, "asset.update", "asset", assetID, actor.IPAddress, patch.Columns())
	return synchronizeAfter(ctx, s.sync, ownerID, asset), nil
}

// DeleteAsset removes one of the owner's assets.
func (s *adminService) DeleteAsset(ctx context.Context, actor Actor, ownerID, assetID string) (*MutationResult, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	asset, err := ownedAsset(ctx, s.store, ownerID, assetID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteAsset(ctx, assetID); err != nil {
		return nil, storeError(err, apperrors.ErrAssetNotFound)
	}

	s.audit.Log(actor.Identity.ID, ownerID, "asset.delete", "asset", assetID, actor.IPAddress, map[string]any{
		"name":   asset.Name,
		"symbol": asset.Symbol,
	})
	return synchronizeAfter(ctx, s.sync, ownerID, asset), nil
}

// Synchronize recomputes the owner's balance on demand.
func (s *adminService) Synchronize(ctx context.Context, actor Actor, ownerID string) (*models.BalanceRecord, error) {
	balance, err := s.sync.Synchronize(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	s.audit.Log(actor.Identity.ID, ownerID, "balance.sync", "balance", ownerID, actor.IPAddress, nil)
	return balance, nil
}

// SetAvailableCash writes the owner's available cash. The derived totals
// are left as they are; a missing row is created.
func (s *adminService) SetAvailableCash(ctx context.Context, actor Actor, ownerID string, amount decimal.Decimal) (*models.BalanceRecord, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if err := checkAmount("available_cash", amount); err != nil {
		return nil, err
	}

	balance, err := s.store.SetAvailableCash(ctx, ownerID, amount)
	if err != nil {
		return nil, storeError(err, nil)
	}

	s.audit.Log(actor.Identity.ID, ownerID, "balance.set_cash", "balance", ownerID, actor.IPAddress, map[string]any{
		"available_cash": amount,
	})
	return balance, nil
}

// RecordTransaction appends an entry to the owner's log.
func (s *adminService) RecordTransaction(ctx context.Context, actor Actor, ownerID string, input TransactionInput) (*models.TransactionRecord, error) {
	tx, err := s.transactions.RecordTransaction(ctx, ownerID, input)
	if err != nil {
		return nil, err
	}
	s.audit.Log(actor.Identity.ID, ownerID, "transaction.create", "transaction", tx.ID, actor.IPAddress, map[string]any{
		"type":   tx.Type,
		"amount": tx.Amount,
	})
	return tx, nil
}

// ListTransactions returns one page of the owner's log.
func (s *adminService) ListTransactions(ctx context.Context, ownerID string, page pagination.PageRequest) (*pagination.PageResponse[models.TransactionRecord], error) {
	return s.transactions.ListTransactions(ctx, ownerID, page)
}

// SetProfileAdmin sets the profile admin flag of a user, creating the
// profile when needed.
func (s *adminService) SetProfileAdmin(ctx context.Context, actor Actor, userID string, isAdmin bool) (*models.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "user id is required")
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, storeError(err, nil)
		}
		profile = &models.Profile{UserID: userID}
	}
	profile.IsAdmin = isAdmin

	saved, err := s.store.UpsertProfile(ctx, profile)
	if err != nil {
		return nil, storeError(err, nil)
	}

	s.audit.Log(actor.Identity.ID, userID, "profile.set_admin", "profile", userID, actor.IPAddress, map[string]any{
		"is_admin": isAdmin,
	})
	return saved, nil
}

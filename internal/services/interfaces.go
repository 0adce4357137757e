package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"vestora/internal/models"
	"vestora/internal/pagination"
	"vestora/internal/portfolio"
)

// UserServicer defines the contract for the identity collaborator.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	FindEmails(ids []string) (map[string]string, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	ClearRefreshTokenHash(userID string) error
	RequestPasswordReset(email string) (string, error)
	ConfirmPasswordReset(token, newPassword string) error
}

// MutationResult is the outcome of an asset write followed by a balance
// synchronization. The write succeeded when a result is returned; a failed
// synchronization is reported through BalanceStale and SyncError.
type MutationResult struct {
	Asset        *models.AssetRecord   `json:"asset,omitempty"`
	Balance      *models.BalanceRecord `json:"balance"`
	BalanceStale bool                  `json:"balance_stale"`
	SyncError    string                `json:"sync_error,omitempty"`
}

// AssetInput holds the fields of a new asset.
type AssetInput struct {
	Name             string
	Symbol           string
	Category         models.AssetCategory
	InvestmentAmount decimal.Decimal
	CurrentValue     *decimal.Decimal
	Quantity         decimal.Decimal
	Status           models.AssetStatus
	Notes            string
}

// Synchronizer recomputes and persists an owner's balance row.
type Synchronizer interface {
	Synchronize(ctx context.Context, ownerID string) (*models.BalanceRecord, error)
}

// BalanceServicer defines the contract for balance reads and synchronization.
type BalanceServicer interface {
	Synchronizer
	GetBalance(ctx context.Context, ownerID string) (*models.BalanceRecord, error)
}

// AssetServicer defines the owner-scoped asset operations.
type AssetServicer interface {
	ListAssets(ctx context.Context, ownerID string) ([]models.AssetRecord, error)
	GetAsset(ctx context.Context, ownerID, assetID string) (*models.AssetRecord, error)
	CreateAssetRequest(ctx context.Context, ownerID string, input AssetInput) (*MutationResult, error)
	UpdateAsset(ctx context.Context, ownerID, assetID string, patch models.AssetPatch) (*MutationResult, error)
	DeleteAsset(ctx context.Context, ownerID, assetID string) (*MutationResult, error)
}

// Dashboard is the owner's read-path view.
type Dashboard struct {
	Summary       portfolio.Summary           `json:"summary"`
	Categories    []portfolio.CategorySummary `json:"categories"`
	StatusCounts  map[models.AssetStatus]int  `json:"status_counts"`
	Balance       *models.BalanceRecord       `json:"balance"`
	AvailableCash decimal.Decimal             `json:"available_cash"`
	BalanceStale  bool                        `json:"balance_stale"`
	Assets        []models.AssetRecord        `json:"assets"`
}

// DashboardServicer defines the contract for the dashboard read path.
type DashboardServicer interface {
	GetDashboard(ctx context.Context, ownerID string) (*Dashboard, error)
}

// TransactionInput holds the fields of a new log entry.
type TransactionInput struct {
	AssetID         *string
	Type            models.TransactionKind
	Amount          decimal.Decimal
	TransactionDate *time.Time
	Description     string
}

// TransactionServicer defines the contract for the transaction log.
type TransactionServicer interface {
	RecordTransaction(ctx context.Context, ownerID string, input TransactionInput) (*models.TransactionRecord, error)
	ListTransactions(ctx context.Context, ownerID string, page pagination.PageRequest) (*pagination.PageResponse[models.TransactionRecord], error)
}

// Owner is one row of the admin owner listing.
type Owner struct {
	OwnerID string                `json:"owner_id"`
	Email   string                `json:"email,omitempty"`
	Sources []string              `json:"sources"`
	Summary portfolio.Summary     `json:"summary"`
	Balance *models.BalanceRecord `json:"balance"`
	Display OwnerDisplay          `json:"display"`
}

// OwnerDisplay carries pre-formatted amounts for the operator screen.
type OwnerDisplay struct {
	TotalInvested string `json:"total_invested"`
	CurrentValue  string `json:"current_value"`
	ProfitLoss    string `json:"profit_loss"`
	AvailableCash string `json:"available_cash"`
}

// Actor is the admin performing an operation.
type Actor struct {
	Identity  models.Identity
	IPAddress string
}

// AdminServicer defines the operator surface. Every method expects an
// identity that already passed the gate; IsAdmin and Unlock implement it.
type AdminServicer interface {
	IsAdmin(ctx context.Context, identity models.Identity) (bool, error)
	Unlock(ctx context.Context, identity models.Identity, passcode string) error
	ListOwners(ctx context.Context, actor Actor) ([]Owner, error)
	GetOwnerAssets(ctx context.Context, ownerID string) ([]models.AssetRecord, error)
	CreateAsset(ctx context.Context, actor Actor, ownerID string, input AssetInput) (*MutationResult, error)
	UpdateAsset(ctx context.Context, actor Actor, ownerID, assetID string, patch models.AssetPatch) (*MutationResult, error)
	DeleteAsset(ctx context.Context, actor Actor, ownerID, assetID string) (*MutationResult, error)
	Synchronize(ctx context.Context, actor Actor, ownerID string) (*models.BalanceRecord, error)
	SetAvailableCash(ctx context.Context, actor Actor, ownerID string, amount decimal.Decimal) (*models.BalanceRecord, error)
	RecordTransaction(ctx context.Context, actor Actor, ownerID string, input TransactionInput) (*models.TransactionRecord, error)
	ListTransactions(ctx context.Context, ownerID string, page pagination.PageRequest) (*pagination.PageResponse[models.TransactionRecord], error)
	SetProfileAdmin(ctx context.Context, actor Actor, userID string, isAdmin bool) (*models.Profile, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(actorID, ownerID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}

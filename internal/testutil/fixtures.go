package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"vestora/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Dec parses a decimal literal, failing loudly on typos in test tables.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	return CreateTestUserWithMetadata(t, db, email, nil)
}

// CreateTestUserWithMetadata creates a user carrying identity metadata.
func CreateTestUserWithMetadata(t *testing.T, db *gorm.DB, email string, metadata map[string]interface{}) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if metadata != nil {
		user.Metadata = datatypes.JSONMap(metadata)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAsset creates an active asset with the given amounts.
func CreateTestAsset(t *testing.T, db *gorm.DB, ownerID, invested, current string) *models.AssetRecord {
	t.Helper()

	n := nextID()
	asset := &models.AssetRecord{
		OwnerID:          ownerID,
		Name:             fmt.Sprintf("Test Asset %d", n),
		Symbol:           fmt.Sprintf("TST%d", n),
		Category:         models.AssetCategoryCryptocurrency,
		InvestmentAmount: Dec(invested),
		CurrentValue:     Dec(current),
		Quantity:         Dec("1"),
		Status:           models.AssetStatusActive,
	}
	if err := db.Create(asset).Error; err != nil {
		t.Fatalf("failed to create test asset: %v", err)
	}
	return asset
}

// CreateTestBalance creates a balance row directly, bypassing synchronization.
func CreateTestBalance(t *testing.T, db *gorm.DB, ownerID, invested, current, cash string) *models.BalanceRecord {
	t.Helper()

	balance := &models.BalanceRecord{
		OwnerID:               ownerID,
		TotalInvested:         Dec(invested),
		CurrentPortfolioValue: Dec(current),
		TotalProfitLoss:       Dec(current).Sub(Dec(invested)),
		AvailableCash:         Dec(cash),
		UpdatedAt:             time.Now().UTC(),
	}
	if err := db.Create(balance).Error; err != nil {
		t.Fatalf("failed to create test balance: %v", err)
	}
	return balance
}

// CreateTestProfile creates a profile row for a user id.
func CreateTestProfile(t *testing.T, db *gorm.DB, userID string, isAdmin bool) *models.Profile {
	t.Helper()

	profile := &models.Profile{
		UserID:      userID,
		DisplayName: fmt.Sprintf("Profile %d", nextID()),
		IsAdmin:     isAdmin,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	return profile
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"vestora/internal/middleware"
	"vestora/internal/models"
	"vestora/internal/pagination"
	"vestora/internal/services"
	"vestora/internal/validator"
)

const (
	testUserID  = "0190a5f0-0000-7000-8000-00000000000a"
	testOwnerID = "0190a5f0-0000-7000-8000-00000000000b"
	testAssetID = "0190a5f0-0000-7000-8000-00000000000c"
)

// --- mock services ---

type mockUserService struct {
	createUserFn            func(email, password, firstName, lastName string) (*models.User, error)
	getUserByIDFn           func(id string) (*models.User, error)
	attemptLoginFn          func(email, password string) (*models.User, error)
	storeRefreshTokenHashFn func(userID, tokenHash string) error
	getRefreshTokenHashFn   func(userID string) (string, error)
	clearRefreshTokenHashFn func(userID string) error
	requestPasswordResetFn  func(email string) (string, error)
	confirmPasswordResetFn  func(token, newPassword string) error
}

func (m *mockUserService) CreateUser(email, password, firstName, lastName string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(email, password, firstName, lastName)
	}
	return testUser(email), nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	return testUser(email), nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	u := testUser("test@example.com")
	u.ID = id
	return u, nil
}

func (m *mockUserService) FindEmails(_ []string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (m *mockUserService) VerifyPassword(_ *models.User, _ string) bool { return true }

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return testUser(email), nil
}

func (m *mockUserService) StoreRefreshTokenHash(userID, tokenHash string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(userID, tokenHash)
	}
	return nil
}

func (m *mockUserService) GetRefreshTokenHash(userID string) (string, error) {
	if m.getRefreshTokenHashFn != nil {
		return m.getRefreshTokenHashFn(userID)
	}
	return "", nil
}

func (m *mockUserService) ClearRefreshTokenHash(userID string) error {
	if m.clearRefreshTokenHashFn != nil {
		return m.clearRefreshTokenHashFn(userID)
	}
	return nil
}

func (m *mockUserService) RequestPasswordReset(email string) (string, error) {
	if m.requestPasswordResetFn != nil {
		return m.requestPasswordResetFn(email)
	}
	return "", nil
}

func (m *mockUserService) ConfirmPasswordReset(token, newPassword string) error {
	if m.confirmPasswordResetFn != nil {
		return m.confirmPasswordResetFn(token, newPassword)
	}
	return nil
}

type mockAuditService struct {
	actions []string
}

func (m *mockAuditService) Log(_, _, action, _, _, _ string, _ map[string]any) {
	m.actions = append(m.actions, action)
}

type mockAdminGate struct {
	isAdminFn func(identity models.Identity) (bool, error)
}

func (m *mockAdminGate) IsAdmin(_ context.Context, identity models.Identity) (bool, error) {
	if m.isAdminFn != nil {
		return m.isAdminFn(identity)
	}
	return false, nil
}

type mockAssetService struct {
	listAssetsFn  func(ownerID string) ([]models.AssetRecord, error)
	getAssetFn    func(ownerID, assetID string) (*models.AssetRecord, error)
	createAssetFn func(ownerID string, input services.AssetInput) (*services.MutationResult, error)
	updateAssetFn func(ownerID, assetID string, patch models.AssetPatch) (*services.MutationResult, error)
	deleteAssetFn func(ownerID, assetID string) (*services.MutationResult, error)
}

func (m *mockAssetService) ListAssets(_ context.Context, ownerID string) ([]models.AssetRecord, error) {
	if m.listAssetsFn != nil {
		return m.listAssetsFn(ownerID)
	}
	return nil, nil
}

func (m *mockAssetService) GetAsset(_ context.Context, ownerID, assetID string) (*models.AssetRecord, error) {
	if m.getAssetFn != nil {
		return m.getAssetFn(ownerID, assetID)
	}
	return &models.AssetRecord{}, nil
}

func (m *mockAssetService) CreateAssetRequest(_ context.Context, ownerID string, input services.AssetInput) (*services.MutationResult, error) {
	if m.createAssetFn != nil {
		return m.createAssetFn(ownerID, input)
	}
	return &services.MutationResult{}, nil
}

func (m *mockAssetService) UpdateAsset(_ context.Context, ownerID, assetID string, patch models.AssetPatch) (*services.MutationResult, error) {
	if m.updateAssetFn != nil {
		return m.updateAssetFn(ownerID, assetID, patch)
	}
	return &services.MutationResult{}, nil
}

func (m *mockAssetService) DeleteAsset(_ context.Context, ownerID, assetID string) (*services.MutationResult, error) {
	if m.deleteAssetFn != nil {
		return m.deleteAssetFn(ownerID, assetID)
	}
	return &services.MutationResult{}, nil
}

type mockDashboardService struct {
	getDashboardFn func(ownerID string) (*services.Dashboard, error)
}

func (m *mockDashboardService) GetDashboard(_ context.Context, ownerID string) (*services.Dashboard, error) {
	if m.getDashboardFn != nil {
		return m.getDashboardFn(ownerID)
	}
	return &services.Dashboard{}, nil
}

type mockBalanceService struct {
	synchronizeFn func(ownerID string) (*models.BalanceRecord, error)
	getBalanceFn  func(ownerID string) (*models.BalanceRecord, error)
}

func (m *mockBalanceService) Synchronize(_ context.Context, ownerID string) (*models.BalanceRecord, error) {
	if m.synchronizeFn != nil {
		return m.synchronizeFn(ownerID)
	}
	return &models.BalanceRecord{OwnerID: ownerID}, nil
}

func (m *mockBalanceService) GetBalance(_ context.Context, ownerID string) (*models.BalanceRecord, error) {
	if m.getBalanceFn != nil {
		return m.getBalanceFn(ownerID)
	}
	return &models.BalanceRecord{OwnerID: ownerID}, nil
}

type mockTransactionService struct {
	recordFn func(ownerID string, input services.TransactionInput) (*models.TransactionRecord, error)
	listFn   func(ownerID string, page pagination.PageRequest) (*pagination.PageResponse[models.TransactionRecord], error)
}

func (m *mockTransactionService) RecordTransaction(_ context.Context, ownerID string, input services.TransactionInput) (*models.TransactionRecord, error) {
	if m.recordFn != nil {
		return m.recordFn(ownerID, input)
	}
	return &models.TransactionRecord{OwnerID: ownerID}, nil
}

func (m *mockTransactionService) ListTransactions(_ context.Context, ownerID string, page pagination.PageRequest) (*pagination.PageResponse[models.TransactionRecord], error) {
	if m.listFn != nil {
		return m.listFn(ownerID, page)
	}
	resp := pagination.NewPageResponse[models.TransactionRecord](nil, page, 0)
	return &resp, nil
}

type mockAdminService struct {
	isAdminFn          func(identity models.Identity) (bool, error)
	unlockFn           func(identity models.Identity, passcode string) error
	listOwnersFn       func(actor services.Actor) ([]services.Owner, error)
	getOwnerAssetsFn   func(ownerID string) ([]models.AssetRecord, error)
	createAssetFn      func(actor services.Actor, ownerID string, input services.AssetInput) (*services.MutationResult, error)
	updateAssetFn      func(actor services.Actor, ownerID, assetID string, patch models.AssetPatch) (*services.MutationResult, error)
	deleteAssetFn      func(actor services.Actor, ownerID, assetID string) (*services.MutationResult, error)
	synchronizeFn      func(actor services.Actor, ownerID string) (*models.BalanceRecord, error)
	setCashFn          func(actor services.Actor, ownerID string, amount decimal.Decimal) (*models.BalanceRecord, error)
	recordFn           func(actor services.Actor, ownerID string, input services.TransactionInput) (*models.TransactionRecord, error)
	listTransactionsFn func(ownerID string, page pagination.PageRequest) (*pagination.PageResponse[models.TransactionRecord], error)
	setProfileAdminFn  func(actor services.Actor, userID string, isAdmin bool) (*models.Profile, error)
}

func (m *mockAdminService) IsAdmin(_ context.Context, identity models.Identity) (bool, error) {
	if m.isAdminFn != nil {
		return m.isAdminFn(identity)
	}
	return true, nil
}

func (m *mockAdminService) Unlock(_ context.Context, identity models.Identity, passcode string) error {
	if m.unlockFn != nil {
		return m.unlockFn(identity, passcode)
	}
	return nil
}

func (m *mockAdminService) ListOwners(_ context.Context, actor services.Actor) ([]services.Owner, error) {
	if m.listOwnersFn != nil {
		return m.listOwnersFn(actor)
	}
	return nil, nil
}

func (m *mockAdminService) GetOwnerAssets(_ context.Context, ownerID string) ([]models.AssetRecord, error) {
	if m.getOwnerAssetsFn != nil {
		return m.getOwnerAssetsFn(ownerID)
	}
	return nil, nil
}

func (m *mockAdminService) CreateAsset(_ context.Context, actor services.Actor, ownerID string, input services.AssetInput) (*services.MutationResult, error) {
	if m.createAssetFn != nil {
		return m.createAssetFn(actor, ownerID, input)
	}
	return &services.MutationResult{}, nil
}

func (m *mockAdminService) UpdateAsset(_ context.Context, actor services.Actor, ownerID, assetID string, patch models.AssetPatch) (*services.MutationResult, error) {
	if m.updateAssetFn != nil {
		return m.updateAssetFn(actor, ownerID, assetID, patch)
	}
	return &services.MutationResult{}, nil
}

func (m *mockAdminService) DeleteAsset(_ context.Context, actor services.Actor, ownerID, assetID string) (*services.MutationResult, error) {
	if m.deleteAssetFn != nil {
		return m.deleteAssetFn(actor, ownerID, assetID)
	}
	return &services.MutationResult{}, nil
}

func (m *mockAdminService) Synchronize(_ context.Context, actor services.Actor, ownerID string) (*models.BalanceRecord, error) {
	if m.synchronizeFn != nil {
		return m.synchronizeFn(actor, ownerID)
	}
	return &models.BalanceRecord{OwnerID: ownerID}, nil
}

func (m *mockAdminService) SetAvailableCash(_ context.Context, actor services.Actor, ownerID string, amount decimal.Decimal) (*models.BalanceRecord, error) {
	if m.setCashFn != nil {
		return m.setCashFn(actor, ownerID, amount)
	}
	return &models.BalanceRecord{OwnerID: ownerID, AvailableCash: amount}, nil
}

func (m *mockAdminService) RecordTransaction(_ context.Context, actor services.Actor, ownerID string, input services.TransactionInput) (*models.TransactionRecord, error) {
	if m.recordFn != nil {
		return m.recordFn(actor, ownerID, input)
	}
	return &models.TransactionRecord{OwnerID: ownerID}, nil
}

func (m *mockAdminService) ListTransactions(_ context.Context, ownerID string, page pagination.PageRequest) (*pagination.PageResponse[models.TransactionRecord], error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(ownerID, page)
	}
	resp := pagination.NewPageResponse[models.TransactionRecord](nil, page, 0)
	return &resp, nil
}

func (m *mockAdminService) SetProfileAdmin(_ context.Context, actor services.Actor, userID string, isAdmin bool) (*models.Profile, error) {
	if m.setProfileAdminFn != nil {
		return m.setProfileAdminFn(actor, userID, isAdmin)
	}
	return &models.Profile{UserID: userID, IsAdmin: isAdmin}, nil
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func testUser(email string) *models.User {
	u := &models.User{Email: email, FirstName: "Test"}
	u.ID = testUserID
	return u
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uid)
		c.Next()
	}
}

func injectAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := models.Identity{ID: testUserID, Email: "boss@vestora.io"}
		c.Set(middleware.ContextUserID, identity.ID)
		c.Set(middleware.ContextIdentity, identity)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

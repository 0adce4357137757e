package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "vestora/internal/errors"
	"vestora/internal/models"
	"vestora/internal/services"
	"vestora/internal/testutil"
)

func setupAssetRouter(handler *AssetHandler) *gin.Engine {
	r := gin.New()
	g := r.Group("/assets", injectUserID(testUserID))
	g.GET("", handler.ListAssets)
	g.POST("", handler.CreateAsset)
	g.GET("/:id", handler.GetAsset)
	g.PUT("/:id", handler.UpdateAsset)
	g.DELETE("/:id", handler.DeleteAsset)
	return r
}

func TestAssetHandler_ListAssets(t *testing.T) {
	t.Run("returns_an_empty_list_not_null", func(t *testing.T) {
		r := setupAssetRouter(NewAssetHandler(&mockAssetService{}))

		rec := doRequest(r, "GET", "/assets", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		assets, ok := parseJSON(t, rec)["assets"].([]interface{})
		if !ok || len(assets) != 0 {
			t.Errorf("expected empty array, got %v", parseJSON(t, rec)["assets"])
		}
	})

	t.Run("maps_store_failures_to_502", func(t *testing.T) {
		svc := &mockAssetService{listAssetsFn: func(_ string) ([]models.AssetRecord, error) {
			return nil, apperrors.StoreFailure(testutil.ErrInjected)
		}}
		r := setupAssetRouter(NewAssetHandler(svc))

		rec := doRequest(r, "GET", "/assets", "")

		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "STORE_ERROR")
	})

	t.Run("maps_an_unconfigured_store_to_503", func(t *testing.T) {
		svc := &mockAssetService{listAssetsFn: func(_ string) ([]models.AssetRecord, error) {
			return nil, apperrors.ErrStoreUnavailable
		}}
		r := setupAssetRouter(NewAssetHandler(svc))

		rec := doRequest(r, "GET", "/assets", "")

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})
}

func TestAssetHandler_GetAsset(t *testing.T) {
	t.Run("rejects_a_malformed_id", func(t *testing.T) {
		r := setupAssetRouter(NewAssetHandler(&mockAssetService{}))

		rec := doRequest(r, "GET", "/assets/42", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns_404_for_foreign_assets", func(t *testing.T) {
		svc := &mockAssetService{getAssetFn: func(_, _ string) (*models.AssetRecord, error) {
			return nil, apperrors.ErrAssetNotFound
		}}
		r := setupAssetRouter(NewAssetHandler(svc))

		rec := doRequest(r, "GET", "/assets/"+testAssetID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ASSET_NOT_FOUND")
	})
}

func TestAssetHandler_CreateAsset(t *testing.T) {
	t.Run("passes_the_owner_and_amounts_to_the_service", func(t *testing.T) {
		var gotOwner string
		var gotInput services.AssetInput
		svc := &mockAssetService{createAssetFn: func(ownerID string, input services.AssetInput) (*services.MutationResult, error) {
			gotOwner, gotInput = ownerID, input
			return &services.MutationResult{Asset: &models.AssetRecord{Name: input.Name}}, nil
		}}
		r := setupAssetRouter(NewAssetHandler(svc))

		rec := doRequest(r, "POST", "/assets",
			`{"name":"Bitcoin","symbol":"btc","category":"cryptocurrency","investment_amount":"1500.50","current_value":1700}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotOwner != testUserID {
			t.Errorf("expected owner %s, got %s", testUserID, gotOwner)
		}
		testutil.AssertDecimal(t, "investment_amount", gotInput.InvestmentAmount, "1500.5")
		if gotInput.CurrentValue == nil {
			t.Fatal("expected current value to be passed")
		}
		testutil.AssertDecimal(t, "current_value", *gotInput.CurrentValue, "1700")
	})

	t.Run("reports_a_stale_balance_with_201", func(t *testing.T) {
		svc := &mockAssetService{createAssetFn: func(_ string, _ services.AssetInput) (*services.MutationResult, error) {
			return &services.MutationResult{
				Asset:        &models.AssetRecord{Name: "Gold"},
				BalanceStale: true,
				SyncError:    "record store error: timeout",
			}, nil
		}}
		r := setupAssetRouter(NewAssetHandler(svc))

		rec := doRequest(r, "POST", "/assets",
			`{"name":"Gold","symbol":"XAU","category":"commodity","investment_amount":100}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["balance_stale"] != true || result["sync_error"] == "" {
			t.Errorf("expected stale balance report, got %v", result)
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"missing_name", `{"symbol":"BTC","category":"cryptocurrency","investment_amount":1}`},
		{"unknown_category", `{"name":"X","symbol":"X","category":"bonds","investment_amount":1}`},
		{"negative_amount", `{"name":"X","symbol":"X","category":"stock","investment_amount":-5}`},
		{"negative_current_value", `{"name":"X","symbol":"X","category":"stock","investment_amount":5,"current_value":-1}`},
		{"missing_amount", `{"name":"X","symbol":"X","category":"stock"}`},
		{"bad_status", `{"name":"X","symbol":"X","category":"stock","investment_amount":5,"status":"frozen"}`},
	}
	for _, tt := range tests {
		t.Run("rejects_"+tt.name, func(t *testing.T) {
			called := false
			svc := &mockAssetService{createAssetFn: func(_ string, _ services.AssetInput) (*services.MutationResult, error) {
				called = true
				return &services.MutationResult{}, nil
			}}
			r := setupAssetRouter(NewAssetHandler(svc))

			rec := doRequest(r, "POST", "/assets", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
			if called {
				t.Error("service must not be called for invalid input")
			}
		})
	}

	t.Run("returns_401_without_owner", func(t *testing.T) {
		handler := NewAssetHandler(&mockAssetService{})
		r := gin.New()
		r.POST("/assets", handler.CreateAsset)

		rec := doRequest(r, "POST", "/assets", `{}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAssetHandler_UpdateAsset(t *testing.T) {
	t.Run("sends_only_provided_fields", func(t *testing.T) {
		var gotPatch models.AssetPatch
		svc := &mockAssetService{updateAssetFn: func(_, assetID string, patch models.AssetPatch) (*services.MutationResult, error) {
			if assetID != testAssetID {
				t.Errorf("expected asset %s, got %s", testAssetID, assetID)
			}
			gotPatch = patch
			return &services.MutationResult{}, nil
		}}
		r := setupAssetRouter(NewAssetHandler(svc))

		rec := doRequest(r, "PUT", "/assets/"+testAssetID, `{"current_value":"2500","symbol":" eth "}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotPatch.Name != nil || gotPatch.InvestmentAmount != nil {
			t.Error("fields not sent must stay nil")
		}
		if gotPatch.CurrentValue == nil {
			t.Fatal("expected current value in patch")
		}
		testutil.AssertDecimal(t, "current_value", *gotPatch.CurrentValue, "2500")
		if gotPatch.Symbol == nil || *gotPatch.Symbol != "eth" {
			t.Errorf("expected trimmed symbol, got %v", gotPatch.Symbol)
		}
	})

	t.Run("surfaces_service_validation", func(t *testing.T) {
		svc := &mockAssetService{updateAssetFn: func(_, _ string, _ models.AssetPatch) (*services.MutationResult, error) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "status can only be changed by an admin")
		}}
		r := setupAssetRouter(NewAssetHandler(svc))

		rec := doRequest(r, "PUT", "/assets/"+testAssetID, `{"status":"active"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAssetHandler_DeleteAsset(t *testing.T) {
	t.Run("returns_the_mutation_result", func(t *testing.T) {
		svc := &mockAssetService{deleteAssetFn: func(_, _ string) (*services.MutationResult, error) {
			return &services.MutationResult{Balance: &models.BalanceRecord{OwnerID: testUserID}}, nil
		}}
		r := setupAssetRouter(NewAssetHandler(svc))

		rec := doRequest(r, "DELETE", "/assets/"+testAssetID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if parseJSON(t, rec)["balance"] == nil {
			t.Error("expected balance in response")
		}
	})

	t.Run("returns_404_for_unknown_ids", func(t *testing.T) {
		svc := &mockAssetService{deleteAssetFn: func(_, _ string) (*services.MutationResult, error) {
			return nil, apperrors.ErrAssetNotFound
		}}
		r := setupAssetRouter(NewAssetHandler(svc))

		rec := doRequest(r, "DELETE", "/assets/"+testAssetID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

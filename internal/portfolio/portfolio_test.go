package portfolio

import (
	"testing"

	"github.com/shopspring/decimal"

	"vestora/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func asset(category models.AssetCategory, status models.AssetStatus, invested, current string) models.AssetRecord {
	return models.AssetRecord{
		Category:         category,
		Status:           status,
		InvestmentAmount: dec(invested),
		CurrentValue:     dec(current),
	}
}

func assertDec(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s: expected %s, got %s", field, want, got)
	}
}

func TestSummarize(t *testing.T) {
	t.Run("two_assets", func(t *testing.T) {
		s := Summarize([]models.AssetRecord{
			asset(models.AssetCategoryCryptocurrency, models.AssetStatusActive, "1000", "1500"),
			asset(models.AssetCategoryForex, models.AssetStatusActive, "500", "400"),
		})
		assertDec(t, "total_invested", s.TotalInvested, "1500")
		assertDec(t, "current_value", s.CurrentValue, "1900")
		assertDec(t, "profit_loss", s.ProfitLoss, "400")
		assertDec(t, "profit_loss_percentage", s.ProfitLossPercentage, "26.67")
		if s.AssetCount != 2 {
			t.Errorf("expected 2 assets, got %d", s.AssetCount)
		}
	})

	t.Run("nil_input", func(t *testing.T) {
		s := Summarize(nil)
		assertDec(t, "total_invested", s.TotalInvested, "0")
		assertDec(t, "current_value", s.CurrentValue, "0")
		assertDec(t, "profit_loss", s.ProfitLoss, "0")
		assertDec(t, "profit_loss_percentage", s.ProfitLossPercentage, "0")
		if s.AssetCount != 0 {
			t.Errorf("expected 0 assets, got %d", s.AssetCount)
		}
	})

	t.Run("zero_invested_has_zero_percentage", func(t *testing.T) {
		s := Summarize([]models.AssetRecord{
			asset(models.AssetCategoryStock, models.AssetStatusPending, "0", "250"),
		})
		assertDec(t, "profit_loss", s.ProfitLoss, "250")
		assertDec(t, "profit_loss_percentage", s.ProfitLossPercentage, "0")
	})

	t.Run("loss", func(t *testing.T) {
		s := Summarize([]models.AssetRecord{
			asset(models.AssetCategoryIndex, models.AssetStatusActive, "200", "150"),
		})
		assertDec(t, "profit_loss", s.ProfitLoss, "-50")
		assertDec(t, "profit_loss_percentage", s.ProfitLossPercentage, "-25")
	})

	t.Run("negative_amounts_clamped", func(t *testing.T) {
		s := Summarize([]models.AssetRecord{
			asset(models.AssetCategoryStock, models.AssetStatusActive, "-100", "50"),
			asset(models.AssetCategoryStock, models.AssetStatusActive, "100", "-20"),
		})
		assertDec(t, "total_invested", s.TotalInvested, "100")
		assertDec(t, "current_value", s.CurrentValue, "50")
		if s.AssetCount != 2 {
			t.Errorf("clamped rows still count, expected 2 got %d", s.AssetCount)
		}
	})

	t.Run("fractional_amounts_exact", func(t *testing.T) {
		s := Summarize([]models.AssetRecord{
			asset(models.AssetCategoryForex, models.AssetStatusActive, "0.1", "0.2"),
			asset(models.AssetCategoryForex, models.AssetStatusActive, "0.2", "0.1"),
		})
		assertDec(t, "total_invested", s.TotalInvested, "0.3")
		assertDec(t, "profit_loss", s.ProfitLoss, "0")
	})
}

func TestSummarizeByCategory(t *testing.T) {
	groups := SummarizeByCategory([]models.AssetRecord{
		asset(models.AssetCategoryStock, models.AssetStatusActive, "100", "110"),
		asset(models.AssetCategoryForex, models.AssetStatusActive, "50", "40"),
		asset(models.AssetCategoryStock, models.AssetStatusSold, "200", "260"),
		asset("bonds", models.AssetStatusActive, "10", "10"),
	})

	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d: %+v", len(groups), groups)
	}
	if groups[0].Category != models.AssetCategoryForex || groups[1].Category != models.AssetCategoryStock {
		t.Errorf("expected display order forex, stock; got %s, %s", groups[0].Category, groups[1].Category)
	}
	if groups[2].Category != "bonds" {
		t.Errorf("expected unknown category last, got %s", groups[2].Category)
	}

	stock := groups[1]
	if stock.AssetCount != 2 {
		t.Errorf("expected 2 stock assets, got %d", stock.AssetCount)
	}
	assertDec(t, "stock total_invested", stock.TotalInvested, "300")
	assertDec(t, "stock profit_loss", stock.ProfitLoss, "70")
	assertDec(t, "forex profit_loss", groups[0].ProfitLoss, "-10")

	if got := SummarizeByCategory(nil); len(got) != 0 {
		t.Errorf("expected no groups for nil input, got %+v", got)
	}
}

func TestSummarizeByStatus(t *testing.T) {
	counts := SummarizeByStatus([]models.AssetRecord{
		asset(models.AssetCategoryStock, models.AssetStatusPending, "1", "1"),
		asset(models.AssetCategoryStock, models.AssetStatusActive, "1", "1"),
		asset(models.AssetCategoryStock, models.AssetStatusActive, "1", "1"),
	})

	if counts[models.AssetStatusPending] != 1 || counts[models.AssetStatusActive] != 2 {
		t.Errorf("unexpected counts: %v", counts)
	}
	if n, ok := counts[models.AssetStatusSold]; !ok || n != 0 {
		t.Errorf("expected sold to be present with 0, got %v", counts)
	}
}

func TestSummaryMatches(t *testing.T) {
	s := Summarize([]models.AssetRecord{
		asset(models.AssetCategoryStock, models.AssetStatusActive, "1000", "1500"),
	})

	if s.Matches(nil) {
		t.Error("missing balance must not match")
	}

	b := s.Balance("owner-1")
	b.AvailableCash = dec("99")
	if !s.Matches(b) {
		t.Error("balance projected from the summary should match regardless of cash")
	}

	b.TotalInvested = dec("999")
	if s.Matches(b) {
		t.Error("drifted balance should not match")
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     string
	}{
		{"usd", "1500", "USD", "$1,500.00"},
		{"rounds_to_cents", "26.666", "usd", "$26.67"},
		{"negative", "-400", "USD", "-$400.00"},
		{"unknown_falls_back", "10", "???", "$10.00"},
		{"empty_falls_back", "0.5", "", "$0.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAmount(dec(tt.amount), tt.currency); got != tt.want {
				t.Errorf("FormatAmount(%s, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
			}
		})
	}
}

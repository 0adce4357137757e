package main

import (
	"fmt"
	"strings"
	"time"

	"vestora/internal/models"
	"vestora/internal/portfolio"
	"vestora/internal/reconcile"
	"vestora/internal/services"
)

func balanceMarkdown(b *models.BalanceRecord, currency string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Balance for %s\n\n", b.OwnerID)
	sb.WriteString("| Field | Amount |\n|:---|---:|\n")
	fmt.Fprintf(&sb, "| Total invested | %s |\n", portfolio.FormatAmount(b.TotalInvested, currency))
	fmt.Fprintf(&sb, "| Current value | %s |\n", portfolio.FormatAmount(b.CurrentPortfolioValue, currency))
	fmt.Fprintf(&sb, "| Profit/loss | %s |\n", portfolio.FormatAmount(b.TotalProfitLoss, currency))
	fmt.Fprintf(&sb, "| Available cash | %s |\n", portfolio.FormatAmount(b.AvailableCash, currency))
	return sb.String()
}

func reconcileMarkdown(r *reconcile.RunResult) string {
	var sb strings.Builder
	sb.WriteString("# Reconciliation\n\n")
	fmt.Fprintf(&sb, "Synchronized **%d** of **%d** owners in %s.\n", r.Synchronized, r.Owners, r.Duration.Round(time.Millisecond))
	if len(r.Failures) == 0 {
		return sb.String()
	}
	sb.WriteString("\n| Owner | Error |\n|:---|:---|\n")
	for _, f := range r.Failures {
		fmt.Fprintf(&sb, "| %s | %s |\n", f.OwnerID, strings.ReplaceAll(f.Error, "|", "\\|"))
	}
	return sb.String()
}

func summaryMarkdown(ownerID string, d *services.Dashboard, currency string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Portfolio for %s\n\n", ownerID)
	if d.BalanceStale {
		sb.WriteString("> The stored balance row does not match the assets. Run `vestoractl sync`.\n\n")
	}

	sb.WriteString("| Category | Assets | Invested | Current value | Profit/loss |\n")
	sb.WriteString("|:---|---:|---:|---:|---:|\n")
	for _, c := range d.Categories {
		fmt.Fprintf(&sb, "| %s | %d | %s | %s | %s |\n",
			c.Category, c.AssetCount,
			portfolio.FormatAmount(c.TotalInvested, currency),
			portfolio.FormatAmount(c.CurrentValue, currency),
			portfolio.FormatAmount(c.ProfitLoss, currency),
		)
	}
	s := d.Summary
	fmt.Fprintf(&sb, "| **Total** | %d | %s | %s | %s (%s%%) |\n\n",
		s.AssetCount,
		portfolio.FormatAmount(s.TotalInvested, currency),
		portfolio.FormatAmount(s.CurrentValue, currency),
		portfolio.FormatAmount(s.ProfitLoss, currency),
		s.ProfitLossPercentage.StringFixed(2),
	)
	fmt.Fprintf(&sb, "Available cash: %s\n", portfolio.FormatAmount(d.AvailableCash, currency))
	return sb.String()
}

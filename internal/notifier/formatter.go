package notifier

import (
	"fmt"
	"strings"

	"WalletWatch/internal/model"
)

// FormatSnapshot renders a portfolio snapshot as a Telegram message.
func FormatSnapshot(snap *model.Snapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("💼 <b>Portfolio</b> | %s UTC\n\n", snap.TakenAt.UTC().Format("2006-01-02 15:04")))

	for _, item := range snap.Items {
		b.WriteString(fmt.Sprintf("%s: %g × $%.4f = $%.2f • %+.2f%% from baseline",
			item.Symbol, item.Quantity, item.Price, item.Value, item.ChangePct))
		if item.Change24h != nil {
			b.WriteString(fmt.Sprintf(" • 24h %+.2f%%", *item.Change24h))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n<b>Total: $%.2f</b> (%+.2f%% from baseline)\n", snap.TotalValue, snap.TotalChangePct))

	switch snap.Source {
	case model.SourceCache:
		b.WriteString("⚠️ Prices served from cache and may be stale.\n")
	case model.SourceSecondary:
		b.WriteString("Price source: CoinGecko.\n")
	case model.SourcePrimary:
		b.WriteString("Price source: Binance.\n")
	}

	return b.String()
}

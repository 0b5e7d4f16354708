package render

import (
	"fmt"
	"strings"

	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

// FormatReportText renders a full report as plain text for logs and
// webhook notifications.
func FormatReportText(r *model.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s (%s) | %s | %s\n\n",
		r.DisplayName, r.Symbol, r.Period, r.GeneratedAt.Format("2006-01-02 15:04")))

	// Price
	b.WriteString(fmt.Sprintf("Price: %s", formatValue(r.Snapshot.Price)))
	if change := formatSigned(r.Snapshot.Change); change != notAvailable {
		b.WriteString(fmt.Sprintf(" (%s, %s)", change, formatPercent(r.Snapshot.ChangePercent)))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("52w range: %s - %s\n\n",
		formatValue(r.Snapshot.Low52w), formatValue(r.Snapshot.High52w)))

	// Indicators
	if r.Indicators != nil && len(r.Indicators.Names()) > 0 {
		b.WriteString("Indicators:\n")
		for _, name := range orderedNames(r.Indicators) {
			b.WriteString(fmt.Sprintf("  %-12s %8s", name, formatValue(r.Indicators.LatestValue(name))))
			if class, ok := r.Classifications[name]; ok {
				b.WriteString(fmt.Sprintf("  %s", class))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Performance
	b.WriteString("Performance:\n")
	b.WriteString(fmt.Sprintf("  Total return:      %s\n", formatPercent(r.Performance.TotalReturn)))
	b.WriteString(fmt.Sprintf("  Annualized return: %s\n", formatPercent(r.Performance.AnnualizedReturn)))
	b.WriteString(fmt.Sprintf("  Volatility:        %s\n", formatPercent(r.Performance.Volatility)))
	b.WriteString(fmt.Sprintf("  Sharpe ratio:      %s\n", formatValue(r.Performance.SharpeRatio)))
	b.WriteString(fmt.Sprintf("  Max drawdown:      %s\n", formatPercent(r.Performance.MaxDrawdown)))

	// Company
	if r.Company.Available {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s | %s / %s | Market cap: %s\n",
			r.Company.LongName, r.Company.Sector, r.Company.Industry,
			formatMarketCap(r.Company.MarketCap)))
	}

	return b.String()
}

// FormatQuoteLine renders a one-line quote for watch-mode logging. The
// change is a fraction, as everywhere else.
func FormatQuoteLine(symbol string, price, change float64) string {
	return fmt.Sprintf("%s %s (%s)", symbol, formatValue(price), formatPercent(change))
}

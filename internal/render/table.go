package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

// TableRenderer writes a report as terminal tables, one per section.
type TableRenderer struct {
	Out io.Writer
}

func NewTableRenderer(out io.Writer) *TableRenderer {
	return &TableRenderer{Out: out}
}

// Render writes the full report.
func (t *TableRenderer) Render(r *model.Report) {
	fmt.Fprintf(t.Out, "\n%s (%s)  period=%s  bars=%d  run=%s\n",
		r.DisplayName, r.Symbol, r.Period, r.Bars, r.RunID)
	fmt.Fprintf(t.Out, "generated %s\n", r.GeneratedAt.Format("2006-01-02 15:04"))

	t.renderSnapshot(r)
	t.renderIndicators(r)
	t.renderPerformance(r)
	t.renderCompany(r)
}

func (t *TableRenderer) section(title string) *tablewriter.Table {
	fmt.Fprintf(t.Out, "\n=== %s ===\n", title)
	table := tablewriter.NewWriter(t.Out)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func (t *TableRenderer) renderSnapshot(r *model.Report) {
	table := t.section("Current Price Information")
	table.SetHeader([]string{"Field", "Value"})

	snap := r.Snapshot
	table.Append([]string{"Price", formatValue(snap.Price)})
	table.Append([]string{"Change", formatSigned(snap.Change)})
	table.Append([]string{"Change %", formatPercent(snap.ChangePercent)})
	table.Append([]string{"52-Week High", formatValue(snap.High52w)})
	table.Append([]string{"52-Week Low", formatValue(snap.Low52w)})
	table.Append([]string{"Volume", formatVolume(snap.Volume)})
	if !snap.AsOf.IsZero() {
		table.Append([]string{"As Of", snap.AsOf.Format("2006-01-02")})
	}
	table.Render()
}

func (t *TableRenderer) renderIndicators(r *model.Report) {
	if r.Indicators == nil || len(r.Indicators.Names()) == 0 {
		return
	}
	table := t.section("Technical Indicators")
	table.SetHeader([]string{"Indicator", "Value", "Signal"})

	for _, name := range orderedNames(r.Indicators) {
		table.Append([]string{name,
			formatValue(r.Indicators.LatestValue(name)),
			r.Classifications[name]})
	}
	table.Render()
}

func (t *TableRenderer) renderPerformance(r *model.Report) {
	table := t.section("Financial Performance")
	table.SetHeader([]string{"Metric", "Value"})

	perf := r.Performance
	table.Append([]string{"Total Return", formatPercent(perf.TotalReturn)})
	table.Append([]string{"Annualized Return", formatPercent(perf.AnnualizedReturn)})
	table.Append([]string{"Volatility (annualized)", formatPercent(perf.Volatility)})
	table.Append([]string{"Sharpe Ratio", formatValue(perf.SharpeRatio)})
	table.Append([]string{"Max Drawdown", formatPercent(perf.MaxDrawdown)})
	table.Append([]string{"Return Periods", strconv.Itoa(perf.Periods)})
	table.Render()
}

func (t *TableRenderer) renderCompany(r *model.Report) {
	if !r.Company.Available {
		fmt.Fprintln(t.Out, "\nCompany information not available.")
		return
	}
	table := t.section("Company Information")
	table.SetHeader([]string{"Field", "Value"})

	c := r.Company
	table.Append([]string{"Name", c.LongName})
	table.Append([]string{"Sector", c.Sector})
	table.Append([]string{"Industry", c.Industry})
	table.Append([]string{"Market Cap", formatMarketCap(c.MarketCap)})
	table.Append([]string{"Currency", c.Currency})
	table.Append([]string{"Exchange", c.Exchange})
	table.Render()
}

func formatVolume(v float64) string {
	if math.IsNaN(v) || v < 0 {
		return notAvailable
	}
	return humanize.Comma(int64(v))
}

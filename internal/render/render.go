package render

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

// notAvailable is what every renderer prints for an undefined value.
const notAvailable = "N/A"

func formatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return fmt.Sprintf("%.2f", v)
}

func formatSigned(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return fmt.Sprintf("%+.2f", v)
}

// formatPercent renders a fraction as a percentage, signed so gains and
// losses read unambiguously.
func formatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return fmt.Sprintf("%+.2f%%", v*100)
}

func formatMarketCap(v float64) string {
	switch {
	case math.IsNaN(v) || v <= 0:
		return notAvailable
	case v >= 1e12:
		return fmt.Sprintf("%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// indicatorRank orders series for display: moving averages first, then
// oscillators, then the MACD and Bollinger groups, each by window size.
func indicatorRank(name string) (int, int) {
	class := 100
	switch {
	case strings.HasPrefix(name, "SMA_"):
		class = 0
	case strings.HasPrefix(name, "EMA_"):
		class = 1
	case strings.HasPrefix(name, "RSI_"):
		class = 2
	case name == model.NameMACD:
		return 3, 0
	case name == model.NameMACDSignal:
		return 3, 1
	case name == model.NameMACDHist:
		return 3, 2
	case name == model.NameBBUpper:
		return 4, 0
	case name == model.NameBBMiddle:
		return 4, 1
	case name == model.NameBBLower:
		return 4, 2
	}
	window := 0
	if i := strings.LastIndex(name, "_"); i >= 0 {
		if n, err := strconv.Atoi(name[i+1:]); err == nil {
			window = n
		}
	}
	return class, window
}

// orderedNames returns indicator names in the fixed display order.
func orderedNames(set *model.IndicatorSet) []string {
	names := set.Names()
	sort.Slice(names, func(i, j int) bool {
		ci, wi := indicatorRank(names[i])
		cj, wj := indicatorRank(names[j])
		if ci != cj {
			return ci < cj
		}
		if wi != wj {
			return wi < wj
		}
		return names[i] < names[j]
	})
	return names
}

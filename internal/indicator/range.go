package indicator

import (
	"errors"
	"math"

	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

// TradingDaysPerYear approximates one year of daily bars.
const TradingDaysPerYear = 252

// Range52Week scans up to the most recent 252 bars and returns the high and
// low traded prices.
func Range52Week(bars []model.OHLCV) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	start := len(bars) - TradingDaysPerYear
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars[start:] {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low, nil
}

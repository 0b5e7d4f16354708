package alert

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/zupad/AFASX-Stock-Program/internal/indicator"
	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

// Evaluate applies the notification rules to a finished report and returns
// the alerts to deliver, in a fixed order. priceChangeThreshold is in
// percentage points; a threshold of 0 or less disables the price move rule.
func Evaluate(r *model.Report, priceChangeThreshold float64) []Alert {
	var alerts []Alert

	if a, ok := priceMoveAlert(r, priceChangeThreshold); ok {
		alerts = append(alerts, a)
	}
	alerts = append(alerts, rsiZoneAlerts(r)...)
	if a, ok := weekRangeAlert(r); ok {
		alerts = append(alerts, a)
	}

	return alerts
}

func priceMoveAlert(r *model.Report, threshold float64) (Alert, bool) {
	if threshold <= 0 {
		return Alert{}, false
	}
	movePct := r.Snapshot.ChangePercent * 100
	if math.IsNaN(movePct) || math.Abs(movePct) < threshold {
		return Alert{}, false
	}

	level := LevelWarning
	if math.Abs(movePct) >= 2*threshold {
		level = LevelCritical
	}
	direction := "up"
	if movePct < 0 {
		direction = "down"
	}
	return Alert{
		Level: level,
		Title: fmt.Sprintf("%s moved %s %.2f%%", r.Symbol, direction, math.Abs(movePct)),
		Message: fmt.Sprintf("%s closed at %.2f, %+.2f (%+.2f%%) on the previous close",
			r.DisplayName, r.Snapshot.Price, r.Snapshot.Change, movePct),
	}, true
}

func rsiZoneAlerts(r *model.Report) []Alert {
	names := make([]string, 0, len(r.Classifications))
	for name := range r.Classifications {
		if strings.HasPrefix(name, "RSI_") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var alerts []Alert
	for _, name := range names {
		zone := r.Classifications[name]
		if zone != indicator.Overbought && zone != indicator.Oversold {
			continue
		}
		alerts = append(alerts, Alert{
			Level: LevelInfo,
			Title: fmt.Sprintf("%s %s %s", r.Symbol, name, strings.ToLower(zone)),
			Message: fmt.Sprintf("%s is at %.1f for %s",
				name, r.Indicators.LatestValue(name), r.DisplayName),
		})
	}
	return alerts
}

// weekRangeAlert fires when the latest close touches the 52-week range
// boundary. The range includes the latest bar, so a fresh extreme shows up
// as equality.
func weekRangeAlert(r *model.Report) (Alert, bool) {
	price := r.Snapshot.Price
	if math.IsNaN(price) {
		return Alert{}, false
	}
	switch {
	case !math.IsNaN(r.Snapshot.High52w) && price >= r.Snapshot.High52w:
		return Alert{
			Level:   LevelInfo,
			Title:   fmt.Sprintf("%s at 52-week high", r.Symbol),
			Message: fmt.Sprintf("%s closed at %.2f, the highest in a year", r.DisplayName, price),
		}, true
	case !math.IsNaN(r.Snapshot.Low52w) && price <= r.Snapshot.Low52w:
		return Alert{
			Level:   LevelInfo,
			Title:   fmt.Sprintf("%s at 52-week low", r.Symbol),
			Message: fmt.Sprintf("%s closed at %.2f, the lowest in a year", r.DisplayName, price),
		}, true
	}
	return Alert{}, false
}

package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriod marks a period code outside the accepted set.
var ErrInvalidPeriod = errors.New("invalid period")

// validPeriods lists the accepted period codes in rendering order.
var validPeriods = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}

// periodDays maps period codes to calendar day counts. "ytd" is resolved
// against the current date and "max" is capped at twenty years, which is as
// far back as the data sources serve daily bars.
var periodDays = map[string]int{
	"1d":  1,
	"5d":  5,
	"1mo": 30,
	"3mo": 90,
	"6mo": 180,
	"1y":  365,
	"2y":  730,
	"5y":  1825,
	"10y": 3650,
	"max": 7300,
}

// PeriodDays resolves a period code to a day count.
func PeriodDays(period string) (int, error) {
	if period == "ytd" {
		start := time.Date(time.Now().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		days := int(time.Since(start).Hours()/24) + 1
		if days < 1 {
			days = 1
		}
		return days, nil
	}
	days, ok := periodDays[period]
	if !ok {
		return 0, fmt.Errorf("%w: %q (valid: %v)", ErrInvalidPeriod, period, validPeriods)
	}
	return days, nil
}

// ValidPeriods lists the accepted period codes, shortest first.
func ValidPeriods() []string {
	return append([]string(nil), validPeriods...)
}

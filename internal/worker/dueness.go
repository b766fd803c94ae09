// Package worker runs the background jobs around the ledger: materializing
// recurring transactions and mirroring ledger state into Home Assistant.
package worker

import (
	"time"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
)

// DuenessChecker decides whether a recurring template should fire now, given
// when it last fired and its anchor start date. Each frequency has its own
// strategy.
type DuenessChecker interface {
	IsDue(lastExecution, now time.Time, startDate core.Date) bool
}

type dailyChecker struct{}

func (dailyChecker) IsDue(lastExecution, now time.Time, _ core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	return lastExecution.Format("2006-01-02") != now.Format("2006-01-02")
}

type weeklyChecker struct{}

func (weeklyChecker) IsDue(lastExecution, now time.Time, _ core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	return now.Sub(lastExecution).Hours()/24 >= 7
}

type monthlyChecker struct{}

// IsDue fires once per month on the start date's day, clamped to shorter
// months (a template anchored on the 31st fires on the 30th in April).
func (monthlyChecker) IsDue(lastExecution, now time.Time, startDate core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	if lastExecution.Year() == now.Year() && lastExecution.Month() == now.Month() {
		return false
	}
	return now.Day() >= clampDay(startDate.Day(), now)
}

type yearlyChecker struct{}

func (yearlyChecker) IsDue(lastExecution, now time.Time, startDate core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	if lastExecution.Year() == now.Year() {
		return false
	}

	targetMonth := int(startDate.Month())
	switch {
	case int(now.Month()) < targetMonth:
		return false
	case int(now.Month()) > targetMonth:
		return true
	}
	return now.Day() >= clampDay(startDate.Day(), now)
}

// clampDay caps a day-of-month to the length of now's month.
func clampDay(day int, now time.Time) int {
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		return lastDay
	}
	return day
}

var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Daily:   dailyChecker{},
	core.Weekly:  weeklyChecker{},
	core.Monthly: monthlyChecker{},
	core.Yearly:  yearlyChecker{},
}

// CheckerFor returns the dueness strategy for a frequency.
func CheckerFor(freq core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[freq]
	if !ok {
		return nil, core.Invalidf("frequency", "unknown value %q", freq)
	}
	return checker, nil
}

package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DjTiagoSantos/home-ledger/internal/core"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 8, 0, 0, 0, time.UTC)
}

func TestDailyChecker(t *testing.T) {
	c, err := CheckerFor(core.Daily)
	require.NoError(t, err)

	assert.True(t, c.IsDue(time.Time{}, day(2025, 3, 10), core.Date{}), "never executed")
	assert.True(t, c.IsDue(day(2025, 3, 9), day(2025, 3, 10), core.Date{}), "executed yesterday")
	assert.False(t, c.IsDue(day(2025, 3, 10), day(2025, 3, 10), core.Date{}), "already executed today")
}

func TestWeeklyChecker(t *testing.T) {
	c, err := CheckerFor(core.Weekly)
	require.NoError(t, err)

	assert.True(t, c.IsDue(time.Time{}, day(2025, 3, 10), core.Date{}))
	assert.True(t, c.IsDue(day(2025, 3, 3), day(2025, 3, 10), core.Date{}), "seven days passed")
	assert.False(t, c.IsDue(day(2025, 3, 5), day(2025, 3, 10), core.Date{}), "only five days")
}

func TestMonthlyChecker(t *testing.T) {
	c, err := CheckerFor(core.Monthly)
	require.NoError(t, err)
	anchor := core.NewDate(2025, 1, 15)

	assert.True(t, c.IsDue(time.Time{}, day(2025, 3, 20), anchor))
	assert.False(t, c.IsDue(day(2025, 3, 15), day(2025, 3, 20), anchor), "already fired this month")
	assert.False(t, c.IsDue(day(2025, 2, 15), day(2025, 3, 10), anchor), "target day not reached")
	assert.True(t, c.IsDue(day(2025, 2, 15), day(2025, 3, 15), anchor), "target day reached")
}

func TestMonthlyCheckerClampsShortMonths(t *testing.T) {
	c, err := CheckerFor(core.Monthly)
	require.NoError(t, err)

	// Anchored on the 31st: April has 30 days, so it fires on the 30th.
	anchor := core.NewDate(2025, 1, 31)
	assert.False(t, c.IsDue(day(2025, 3, 31), day(2025, 4, 29), anchor))
	assert.True(t, c.IsDue(day(2025, 3, 31), day(2025, 4, 30), anchor))
}

func TestYearlyChecker(t *testing.T) {
	c, err := CheckerFor(core.Yearly)
	require.NoError(t, err)
	anchor := core.NewDate(2023, 6, 15)

	assert.True(t, c.IsDue(time.Time{}, day(2025, 3, 10), anchor))
	assert.False(t, c.IsDue(day(2025, 6, 15), day(2025, 12, 1), anchor), "already fired this year")
	assert.False(t, c.IsDue(day(2024, 6, 15), day(2025, 5, 1), anchor), "before target month")
	assert.False(t, c.IsDue(day(2024, 6, 15), day(2025, 6, 14), anchor), "target day not reached")
	assert.True(t, c.IsDue(day(2024, 6, 15), day(2025, 6, 15), anchor))
	assert.True(t, c.IsDue(day(2024, 6, 15), day(2025, 7, 1), anchor), "past target month")
}

func TestCheckerForUnknownFrequency(t *testing.T) {
	_, err := CheckerFor(core.Frequency("fortnightly"))
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

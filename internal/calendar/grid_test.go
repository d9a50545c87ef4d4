package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthGridInvariants(t *testing.T) {
	anchors := []string{
		"2024-01-15", "2024-02-29", "2023-02-01", "2024-03-31",
		"2024-06-01", "2024-09-30", "2026-02-14", "2015-02-01", "2024-12-31",
	}

	for _, s := range anchors {
		t.Run(s, func(t *testing.T) {
			anchor := MustParse(s)
			grid := MonthGrid(anchor)

			require.Len(t, grid, MonthCells)
			assert.Equal(t, time.Sunday, grid[0].Weekday())
			for i := 1; i < len(grid); i++ {
				assert.Equal(t, 24*time.Hour, grid[i].Sub(grid[i-1]), "cell %d", i)
			}

			seen := make(map[string]bool, len(grid))
			for _, d := range grid {
				seen[Format(d)] = true
			}
			for day := 1; day <= DaysIn(anchor.Year(), anchor.Month()); day++ {
				d := time.Date(anchor.Year(), anchor.Month(), day, 0, 0, 0, 0, time.UTC)
				assert.True(t, seen[Format(d)], "missing %s", Format(d))
			}
		})
	}
}

func TestMonthGridStartsOnFirstWhenFirstIsSunday(t *testing.T) {
	// September 2024 starts on a Sunday.
	grid := MonthGrid(MustParse("2024-09-18"))

	assert.Equal(t, "2024-09-01", Format(grid[0]))
	assert.Equal(t, "2024-10-12", Format(grid[MonthCells-1]))
}

func TestMonthGridIgnoresClockAndLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	anchor := time.Date(2024, time.March, 1, 23, 30, 0, 0, loc)

	assert.Equal(t, MonthGrid(MustParse("2024-03-01")), MonthGrid(anchor))
}

func TestWeekGrid(t *testing.T) {
	for _, s := range []string{"2024-03-03", "2024-03-06", "2024-03-09"} {
		anchor := MustParse(s)
		grid := WeekGrid(anchor)

		require.Len(t, grid, WeekCells)
		assert.Equal(t, time.Sunday, grid[0].Weekday())
		assert.Equal(t, "2024-03-03", Format(grid[0]))
		assert.Equal(t, "2024-03-09", Format(grid[6]))
		assert.Contains(t, grid, anchor)
	}
}

func TestWeekGridCrossesMonthBoundary(t *testing.T) {
	grid := WeekGrid(MustParse("2024-01-02"))

	assert.Equal(t, "2023-12-31", Format(grid[0]))
	assert.Equal(t, "2024-01-06", Format(grid[6]))
}

func TestNavigate(t *testing.T) {
	cases := []struct {
		name   string
		anchor string
		dir    Direction
		mode   ViewMode
		want   string
	}{
		{"month forward", "2024-03-15", Forward, ViewMonth, "2024-04-15"},
		{"month backward over year", "2024-01-10", Backward, ViewMonth, "2023-12-10"},
		{"clamp leap february", "2024-01-31", Forward, ViewMonth, "2024-02-29"},
		{"clamp february", "2023-01-31", Forward, ViewMonth, "2023-02-28"},
		{"clamp thirty days", "2024-05-31", Backward, ViewMonth, "2024-04-30"},
		{"december to january", "2024-12-31", Forward, ViewMonth, "2025-01-31"},
		{"week forward", "2024-02-26", Forward, ViewWeek, "2024-03-04"},
		{"week backward", "2024-03-04", Backward, ViewWeek, "2024-02-26"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Navigate(MustParse(tc.anchor), tc.dir, tc.mode)
			assert.Equal(t, tc.want, Format(got))
		})
	}
}

func TestGridIsDeterministic(t *testing.T) {
	anchor := MustParse("2024-07-04")

	assert.Equal(t, Grid(anchor, ViewMonth), Grid(anchor, ViewMonth))
	assert.Equal(t, WeekGrid(anchor), Grid(anchor, ViewWeek))
}

func TestParseViewMode(t *testing.T) {
	mode, err := ParseViewMode("")
	require.NoError(t, err)
	assert.Equal(t, ViewMonth, mode)

	mode, err = ParseViewMode("week")
	require.NoError(t, err)
	assert.Equal(t, ViewWeek, mode)

	_, err = ParseViewMode("year")
	assert.Error(t, err)
}

func TestOrderedAndDaysInclusive(t *testing.T) {
	a, b := Ordered(MustParse("2024-03-05"), MustParse("2024-03-01"))

	assert.Equal(t, "2024-03-01", Format(a))
	assert.Equal(t, "2024-03-05", Format(b))
	assert.Equal(t, 5, DaysInclusive(b, a))
	assert.Equal(t, 1, DaysInclusive(a, a))
}

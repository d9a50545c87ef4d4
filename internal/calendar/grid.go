package calendar

import (
	"fmt"
	"time"
)

const (
	MonthCells = 42
	WeekCells  = 7
)

type ViewMode string

const (
	ViewMonth ViewMode = "month"
	ViewWeek  ViewMode = "week"
)

func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case "", ViewMonth:
		return ViewMonth, nil
	case ViewWeek:
		return ViewWeek, nil
	}
	return "", fmt.Errorf("unknown view mode %q", s)
}

type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

// MonthGrid returns six full weeks starting on the Sunday on or before the first of
// anchor's month.
func MonthGrid(anchor time.Time) []time.Time {
	anchor = DateOf(anchor)
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	return consecutive(startOfWeek(first), MonthCells)
}

// WeekGrid returns the Sunday-to-Saturday week containing anchor.
func WeekGrid(anchor time.Time) []time.Time {
	return consecutive(startOfWeek(DateOf(anchor)), WeekCells)
}

func Grid(anchor time.Time, mode ViewMode) []time.Time {
	if mode == ViewWeek {
		return WeekGrid(anchor)
	}
	return MonthGrid(anchor)
}

// Navigate moves anchor one period in dir. In month mode the day of month is clamped to
// the length of the target month, so Jan 31 moves to the last day of February.
func Navigate(anchor time.Time, dir Direction, mode ViewMode) time.Time {
	anchor = DateOf(anchor)
	step := int(dir)
	if step > 0 {
		step = 1
	} else {
		step = -1
	}

	if mode == ViewWeek {
		return anchor.AddDate(0, 0, 7*step)
	}

	target := time.Date(anchor.Year(), anchor.Month()+time.Month(step), 1, 0, 0, 0, 0, time.UTC)
	day := anchor.Day()
	if last := DaysIn(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, time.UTC)
}

func startOfWeek(d time.Time) time.Time {
	return d.AddDate(0, 0, -int(d.Weekday()))
}

func consecutive(start time.Time, n int) []time.Time {
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

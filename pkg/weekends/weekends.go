// Package weekends parses the yearly production-calendar JSON (the xmlcalendar.ru
// format) into the list of non-working days.
package weekends

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CalendarJSON is the source document for one year.
type CalendarJSON struct {
	Year        int             `json:"year"`
	Months      []MonthWeekends `json:"months"`
	Transitions []Transition    `json:"transitions"`
	Statistic   Statistic       `json:"statistic"`
}

// MonthWeekends lists the days of a month as "1,2,3+,7*". A "+" marks a moved holiday,
// a "*" marks a shortened working day.
type MonthWeekends struct {
	Month int    `json:"month"`
	Days  string `json:"days"`
}

type Transition struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Statistic struct {
	Workdays int     `json:"workdays"`
	Holidays int     `json:"holidays"`
	Hours40  float64 `json:"hours40"`
	Hours36  float64 `json:"hours36"`
	Hours24  float64 `json:"hours24"`
}

// Day is one non-working date.
type Day struct {
	Date  string `json:"date"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
}

// ParseFile reads and parses the calendar at path.
func ParseFile(path string) ([]Day, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse returns the non-working days of the document, shortened working days excluded.
func Parse(r io.Reader) ([]Day, error) {
	var doc CalendarJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal calendar JSON: %w", err)
	}
	if doc.Year == 0 {
		return nil, fmt.Errorf("calendar JSON has no year")
	}

	days := []Day{}
	for _, month := range doc.Months {
		if month.Month < 1 || month.Month > 12 {
			return nil, fmt.Errorf("invalid month %d", month.Month)
		}

		for _, raw := range strings.Split(month.Days, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" || strings.HasSuffix(raw, "*") {
				continue
			}
			raw = strings.TrimSuffix(raw, "+")

			day, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse day '%s' in month %d: %w", raw, month.Month, err)
			}

			date := time.Date(doc.Year, time.Month(month.Month), day, 0, 0, 0, 0, time.UTC)
			if date.Day() != day {
				return nil, fmt.Errorf("day %d does not exist in month %d", day, month.Month)
			}

			days = append(days, Day{
				Date:  date.Format("2006-01-02"),
				Year:  doc.Year,
				Month: month.Month,
				Day:   day,
			})
		}
	}

	return days, nil
}

// ForMonth filters days down to one month.
func ForMonth(days []Day, year, month int) []Day {
	result := []Day{}
	for _, day := range days {
		if day.Year == year && day.Month == month {
			result = append(result, day)
		}
	}
	return result
}

package roster

import (
	"fmt"
	"io"
	"strings"

	"hotel-shift-bot/internal/calendar"
	"hotel-shift-bot/internal/service"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Schedule"

var exportHeader = []any{
	"Date", "Weekday", "Holiday", "Shift", "Start", "End", "Status",
	"Clock in", "Clock out", "Worked", "Absences",
}

// Build renders the in-period dates of view as a workbook, one row per date.
func Build(view *service.CalendarView) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", "K1", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "A", "K", 13); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(exportSheet, "K", "K", 40); err != nil {
		return nil, err
	}

	row := 2
	for _, date := range view.Dates {
		if !view.InPeriod(date) {
			continue
		}

		values := []any{calendar.Format(date), date.Weekday().String()[:3], "", "", "", "", "", "", "", "", ""}
		if view.IsHoliday(date) {
			values[2] = "yes"
		}
		if shift := view.Shift(date); shift != nil {
			values[3] = string(shift.ShiftType)
			values[4] = shift.ShiftStart
			values[5] = shift.ShiftEnd
			values[6] = string(shift.Status)
			if shift.ActualStartTime != nil {
				values[7] = shift.ActualStartTime.Format("15:04")
			}
			if shift.ActualEndTime != nil {
				values[8] = shift.ActualEndTime.Format("15:04")
				values[9] = service.FormatMinutes(int(shift.WorkedDuration().Minutes()))
			}
		}
		if absences := view.Absences(date); len(absences) > 0 {
			parts := make([]string, 0, len(absences))
			for _, a := range absences {
				parts = append(parts, fmt.Sprintf("%s (%s)", a.RequestType, a.Status))
			}
			values[10] = strings.Join(parts, ", ")
		}

		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, err
		}
		row++
	}

	return f, nil
}

// Write streams the workbook for view to w.
func Write(w io.Writer, view *service.CalendarView) error {
	f, err := Build(view)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = f.WriteTo(w)
	return err
}

// FileName is the suggested download name for an export of view.
func FileName(view *service.CalendarView) string {
	if view.Mode == calendar.ViewWeek {
		return fmt.Sprintf("schedule_%d_week_%s.xlsx", view.Scope.StaffID, calendar.Format(view.Dates[0]))
	}
	return fmt.Sprintf("schedule_%d_%s.xlsx", view.Scope.StaffID, view.Anchor.Format("2006-01"))
}

package roster

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"hotel-shift-bot/internal/calendar"
	"hotel-shift-bot/internal/models"
	"hotel-shift-bot/internal/repository"
	"hotel-shift-bot/internal/service"
	"hotel-shift-bot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf := &bytes.Buffer{}
	_, err := f.WriteTo(buf)
	require.NoError(t, err)
	return buf
}

var header = []any{"Staff_ID", "hotel_id", "Date", "shift_type", "start", "end", "break_minutes", "notes"}

func TestParse(t *testing.T) {
	buf := workbook(t,
		header,
		[]any{"7", "1", "2024-03-05", "morning", "07:00", "15:00", "30", "front desk"},
		[]any{},
		[]any{"7", "1", 45357, "NIGHT", "22:00", "06:00"},
	)

	shifts, err := Parse(buf)
	require.NoError(t, err)
	require.Len(t, shifts, 2)

	first := shifts[0]
	assert.Equal(t, uint(7), first.StaffID)
	assert.Equal(t, "2024-03-05", first.ScheduleDate)
	assert.Equal(t, models.ShiftMorning, first.ShiftType)
	assert.Equal(t, models.ShiftScheduled, first.Status)
	require.NotNil(t, first.BreakMinutes)
	assert.Equal(t, 30, *first.BreakMinutes)
	require.NotNil(t, first.Notes)
	assert.Equal(t, "front desk", *first.Notes)

	assert.Equal(t, "2024-03-06", shifts[1].ScheduleDate)
	assert.Nil(t, shifts[1].BreakMinutes)
}

func TestParseReportsBadRows(t *testing.T) {
	buf := workbook(t,
		header,
		[]any{"x", "1", "2024-03-05", "MORNING", "07:00", "15:00"},
		[]any{"7", "1", "2024-03-06", "BRUNCH", "07:00", "15:00"},
		[]any{"7", "1", "2024-03-07", "MORNING", "07:00", "15:00"},
	)

	shifts, err := Parse(buf)
	require.Error(t, err)
	assert.Len(t, shifts, 1)

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Row)
	assert.Contains(t, err.Error(), "row 3")
}

func TestParseRequiresColumns(t *testing.T) {
	buf := workbook(t, []any{"staff_id", "date"})

	_, err := Parse(buf)
	assert.ErrorContains(t, err, "missing column")
}

func TestImportSkipsExistingShifts(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	logger := testutil.NewLogger()
	repo, err := repository.NewGormShiftScheduleRepository(db, logger)
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, &models.ShiftSchedule{
		StaffID: 7, HotelID: 1, ScheduleDate: "2024-03-05",
		ShiftType: models.ShiftEvening, ShiftStart: "15:00", ShiftEnd: "23:00",
	}))

	buf := workbook(t,
		header,
		[]any{"7", "1", "2024-03-05", "MORNING", "07:00", "15:00"},
		[]any{"7", "1", "2024-03-06", "MORNING", "07:00", "15:00"},
		[]any{"7", "1", "2024-03-06", "EVENING", "15:00", "23:00"},
	)

	res, err := NewImporter(repo, logger).Import(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 1, Skipped: 2}, res)

	kept, err := repo.GetByDate(ctx, models.Scope{StaffID: 7, HotelID: 1}, "2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, models.ShiftEvening, kept.ShiftType)
}

func TestBuildExport(t *testing.T) {
	anchor := calendar.MustParse("2024-02-10")
	start := time.Date(2024, 2, 5, 7, 2, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)

	view := &service.CalendarView{
		Scope:  models.Scope{StaffID: 7, HotelID: 1},
		Anchor: anchor,
		Mode:   calendar.ViewMonth,
		Dates:  calendar.MonthGrid(anchor),
		ScheduleByDate: map[string]*models.ShiftSchedule{
			"2024-02-05": {
				ScheduleDate: "2024-02-05", ShiftType: models.ShiftMorning,
				ShiftStart: "07:00", ShiftEnd: "15:00", Status: models.ShiftCompleted,
				ActualStartTime: &start, ActualEndTime: &end,
			},
		},
		AbsencesByDate: map[string][]*models.AbsenceRequest{
			"2024-02-12": {{RequestType: models.AbsenceSick, Status: models.AbsencePending}},
		},
		Holidays: map[string]bool{"2024-02-23": true},
	}

	f, err := Build(view)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1+29, "header plus every day of February 2024")

	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "2024-02-01", rows[1][0])

	feb5 := rows[5]
	assert.Equal(t, "2024-02-05", feb5[0])
	assert.Equal(t, "MORNING", feb5[3])
	assert.Equal(t, "07:02", feb5[7])
	assert.Equal(t, "8h", feb5[9])

	assert.Equal(t, "sick (pending)", rows[12][10])
	assert.Equal(t, "yes", rows[23][2])

	assert.Equal(t, "schedule_7_2024-02.xlsx", FileName(view))
}

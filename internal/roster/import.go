// Package roster moves shift rosters in and out of Excel workbooks.
package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"hotel-shift-bot/internal/models"
	"hotel-shift-bot/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// Columns a roster sheet must carry, matched case-insensitively on the first row.
var requiredColumns = []string{"staff_id", "hotel_id", "date", "shift_type", "start", "end"}

// RowError points at the sheet row (1-based, header is row 1) that failed to parse.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Parse reads the first sheet of an xlsx roster into SCHEDULED shifts. Blank rows are
// skipped; every bad row is reported.
func Parse(r io.Reader) ([]*models.ShiftSchedule, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("no worksheet found")
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("worksheet is empty")
	}

	index := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		index[normalizeHeader(header)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var (
		shifts []*models.ShiftSchedule
		errs   []error
	)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		shift, err := parseRow(row, index)
		if err != nil {
			errs = append(errs, &RowError{Row: i + 2, Err: err})
			continue
		}
		shifts = append(shifts, shift)
	}

	return shifts, errors.Join(errs...)
}

func parseRow(row []string, index map[string]int) (*models.ShiftSchedule, error) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok {
			return ""
		}
		return cellValue(row, i)
	}

	staffID, err := strconv.ParseUint(get("staff_id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid staff_id %q", get("staff_id"))
	}
	hotelID, err := strconv.ParseUint(get("hotel_id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid hotel_id %q", get("hotel_id"))
	}
	date, ok := normalizeDate(get("date"))
	if !ok {
		return nil, fmt.Errorf("invalid date %q", get("date"))
	}

	shift := &models.ShiftSchedule{
		StaffID:      uint(staffID),
		HotelID:      uint(hotelID),
		ScheduleDate: date,
		ShiftType:    models.ShiftType(strings.ToUpper(get("shift_type"))),
		ShiftStart:   get("start"),
		ShiftEnd:     get("end"),
		Status:       models.ShiftScheduled,
	}

	if raw := get("break_minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid break_minutes %q", raw)
		}
		shift.BreakMinutes = &minutes
	}
	if notes := get("notes"); notes != "" {
		shift.Notes = &notes
	}

	if err := shift.Validate(); err != nil {
		return nil, err
	}
	return shift, nil
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// normalizeDate accepts ISO dates, dd.mm.yyyy and Excel date serials.
func normalizeDate(value string) (string, bool) {
	if value == "" {
		return "", false
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial >= 20000 && serial <= 80000 {
			if parsed, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return parsed.Format("2006-01-02"), true
			}
		}
		return "", false
	}

	for _, layout := range []string{"2006-01-02", "02.01.2006", "2006/01/02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("2006-01-02"), true
		}
	}
	return "", false
}

// Result counts what an import did.
type Result struct {
	Created int
	Skipped int
}

// Importer stores parsed rosters.
type Importer struct {
	repo   repository.ShiftScheduleRepository
	logger *logrus.Logger
}

func NewImporter(repo repository.ShiftScheduleRepository, logger *logrus.Logger) *Importer {
	return &Importer{repo: repo, logger: logger}
}

// Import creates the roster's shifts. Dates that already have a shift for the staff
// member are left untouched. Row errors abort before anything is written.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	shifts, err := Parse(r)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, shift := range shifts {
		scope := models.Scope{StaffID: shift.StaffID, HotelID: shift.HotelID}
		existing, err := im.repo.GetByDate(ctx, scope, shift.ScheduleDate)
		if err != nil {
			return res, err
		}
		if existing != nil {
			im.logger.WithFields(logrus.Fields{
				"staff_id": shift.StaffID,
				"date":     shift.ScheduleDate,
			}).Debug("Shift already scheduled, skipping")
			res.Skipped++
			continue
		}

		if err := im.repo.Create(ctx, shift); err != nil {
			return res, err
		}
		res.Created++
	}

	im.logger.WithFields(logrus.Fields{
		"created": res.Created,
		"skipped": res.Skipped,
	}).Info("Roster imported")

	return res, nil
}

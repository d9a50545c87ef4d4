package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"hotel-shift-bot/internal/models"
	"hotel-shift-bot/internal/notify"
	"hotel-shift-bot/internal/repository"
	"hotel-shift-bot/internal/selection"
	"hotel-shift-bot/internal/service"
	"hotel-shift-bot/internal/testutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const secret = "test-secret"

var (
	staff   = &Claims{StaffID: 7, HotelID: 1, Role: models.RoleStaff}
	other   = &Claims{StaffID: 8, HotelID: 1, Role: models.RoleStaff}
	manager = &Claims{StaffID: 9, HotelID: 1, Role: models.RoleManager}
)

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	server    *Server
	shiftRepo *repository.GormShiftScheduleRepository
}

func newTestServer(t *testing.T, now time.Time) *testServer {
	t.Helper()

	db := testutil.NewDB(t)
	logger := testutil.NewLogger()
	clock := &testutil.FixedClock{T: now}

	shiftRepo, err := repository.NewGormShiftScheduleRepository(db, logger)
	require.NoError(t, err)
	absenceRepo, err := repository.NewGormAbsenceRequestRepository(db, logger)
	require.NoError(t, err)

	engine := service.NewSchedulingService(
		service.NewShiftService(shiftRepo, clock, logger),
		service.NewAbsenceService(absenceRepo, clock, logger),
		nil,
		selection.NewMemory(0),
		notify.Nop{},
		clock,
		logger,
	)

	srv, err := NewServer(engine, secret, logger)
	require.NoError(t, err)
	return &testServer{server: srv, shiftRepo: shiftRepo}
}

func token(t *testing.T, c *Claims) string {
	t.Helper()
	claims := *c
	claims.RegisteredClaims = jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func (ts *testServer) do(t *testing.T, who *Claims, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if who != nil {
		req.Header.Set("Authorization", "Bearer "+token(t, who))
	}
	rec := httptest.NewRecorder()
	ts.server.Mux.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (ts *testServer) addShift(t *testing.T, staffID uint, date string) *models.ShiftSchedule {
	t.Helper()
	shift := &models.ShiftSchedule{
		StaffID: staffID, HotelID: 1, ScheduleDate: date,
		ShiftType: models.ShiftMorning, ShiftStart: "07:00", ShiftEnd: "15:00",
	}
	require.NoError(t, ts.shiftRepo.Create(context.Background(), shift))
	return shift
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))

	rec, env := ts.do(t, nil, http.MethodGet, "/calendar", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)

	req := httptest.NewRequest(http.MethodGet, "/calendar", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	ts.server.Mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCalendarWeek(t *testing.T) {
	ts := newTestServer(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))
	ts.addShift(t, staff.StaffID, "2024-03-06")

	rec, env := ts.do(t, staff, http.MethodGet, "/calendar?anchor=2024-03-05&mode=week", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Dates          []time.Time                     `json:"dates"`
		ScheduleByDate map[string]models.ShiftSchedule `json:"schedule_by_date"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Len(t, view.Dates, 7)
	assert.Contains(t, view.ScheduleByDate, "2024-03-06")

	rec, _ = ts.do(t, staff, http.MethodGet, "/calendar?mode=year", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalendarOfAnotherStaffMember(t *testing.T) {
	ts := newTestServer(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))

	rec, _ := ts.do(t, staff, http.MethodGet, "/calendar?staff_id=8", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = ts.do(t, manager, http.MethodGet, "/calendar?staff_id=8", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClockInOverHTTP(t *testing.T) {
	ts := newTestServer(t, time.Date(2024, 3, 5, 7, 0, 0, 0, time.UTC))
	shift := ts.addShift(t, staff.StaffID, "2024-03-05")
	path := "/shifts/" + itoa(shift.ID)

	rec, _ := ts.do(t, other, http.MethodPost, path+"/clock-in", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := ts.do(t, staff, http.MethodPost, path+"/clock-in", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.ShiftSchedule
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, models.ShiftConfirmed, got.Status)

	rec, env = ts.do(t, staff, http.MethodPost, path+"/clock-in", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_started", env.Code)

	rec, env = ts.do(t, staff, http.MethodPost, path+"/clock-out", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, models.ShiftCompleted, got.Status)

	rec, env = ts.do(t, staff, http.MethodGet, "/shifts/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", env.Code)
}

func TestAbsenceLifecycle(t *testing.T) {
	ts := newTestServer(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))

	rec, env := ts.do(t, staff, http.MethodPost, "/absences", map[string]any{
		"request_type": "vacation",
		"start_date":   "2024-03-10",
		"end_date":     "2024-03-12",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.AbsenceRequest
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, models.AbsencePending, created.Status)
	path := "/absences/" + itoa(created.ID)

	rec, env = ts.do(t, staff, http.MethodPatch, path, map[string]any{"notes": "family trip"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.AbsenceRequest
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "family trip", *updated.Notes)

	rec, _ = ts.do(t, staff, http.MethodPatch, path, map[string]any{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = ts.do(t, staff, http.MethodPatch, path, map[string]any{"notes": "x", "status": "cancelled"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = ts.do(t, manager, http.MethodPatch, path, map[string]any{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, models.AbsenceApproved, updated.Status)

	rec, env = ts.do(t, staff, http.MethodPatch, path, map[string]any{"clear_notes": true})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "not_editable", env.Code)

	rec, _ = ts.do(t, other, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = ts.do(t, staff, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted": true}`, string(env.Data))

	rec, _ = ts.do(t, staff, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteAbsenceTwice(t *testing.T) {
	ts := newTestServer(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))

	rec, env := ts.do(t, staff, http.MethodPost, "/absences", map[string]any{
		"request_type": "personal",
		"start_date":   "2024-03-15",
		"end_date":     "2024-03-15",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.AbsenceRequest
	require.NoError(t, json.Unmarshal(env.Data, &created))
	path := "/absences/" + itoa(created.ID)

	rec, env = ts.do(t, staff, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted": true}`, string(env.Data))

	rec, env = ts.do(t, staff, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"deleted": false}`, string(env.Data))

	rec, env = ts.do(t, staff, http.MethodDelete, "/absences/9999", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted": false}`, string(env.Data))

	rec, _ = ts.do(t, staff, http.MethodDelete, "/absences/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitAbsenceValidation(t *testing.T) {
	ts := newTestServer(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))

	rec, env := ts.do(t, staff, http.MethodPost, "/absences", map[string]any{
		"request_type": "vacation",
		"start_date":   "2024-03-12",
		"end_date":     "2024-03-10",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_range", env.Code)

	rec, env = ts.do(t, staff, http.MethodPost, "/absences", map[string]any{
		"request_type": "vacation",
		"start_date":   "12.03.2024",
		"end_date":     "2024-03-14",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Message, "StartDate")

	rec, env = ts.do(t, staff, http.MethodPost, "/absences", map[string]any{
		"request_type": "holiday",
		"start_date":   "2024-03-12",
		"end_date":     "2024-03-14",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", env.Code)
}

func TestSelectionAndConflicts(t *testing.T) {
	ts := newTestServer(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))
	ts.addShift(t, staff.StaffID, "2024-03-11")

	rec, env := ts.do(t, staff, http.MethodPost, "/absences/selection", map[string]string{"date": "2024-03-12"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"complete": false, "start": "2024-03-12"}`, string(env.Data))

	rec, env = ts.do(t, staff, http.MethodPost, "/absences/selection", map[string]string{"date": "2024-03-10"})
	require.Equal(t, http.StatusOK, rec.Code)
	var done struct {
		Complete bool `json:"complete"`
		Range    struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		} `json:"range"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &done))
	assert.True(t, done.Complete)
	assert.Equal(t, "2024-03-10", done.Range.Start.Format("2006-01-02"))
	assert.Equal(t, "2024-03-12", done.Range.End.Format("2006-01-02"))

	rec, env = ts.do(t, staff, http.MethodGet, "/absences/conflicts?start=2024-03-12&end=2024-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var conflicts service.Conflicts
	require.NoError(t, json.Unmarshal(env.Data, &conflicts))
	require.Len(t, conflicts.Shifts, 1)
	assert.Equal(t, "2024-03-11", conflicts.Shifts[0].ScheduleDate)
}

func TestExportCalendar(t *testing.T) {
	ts := newTestServer(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))
	ts.addShift(t, staff.StaffID, "2024-03-06")

	rec, _ := ts.do(t, staff, http.MethodGet, "/calendar/export?anchor=2024-03-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "schedule_7_2024-03.xlsx")

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Schedule")
	require.NoError(t, err)
	assert.Len(t, rows, 1+31)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor("storage_unavailable"))
	assert.Equal(t, http.StatusConflict, statusFor("not_today"))
	assert.Equal(t, http.StatusInternalServerError, statusFor(""))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

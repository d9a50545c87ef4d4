package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"hotel-shift-bot/internal/calendar"
	"hotel-shift-bot/internal/models"
	"hotel-shift-bot/internal/roster"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var errStaffScope = errors.New("only managers can read another staff member's schedule")

// scopeFor returns the caller's scope, or the scope of ?staff_id= in the caller's
// hotel for managers.
func scopeFor(r *http.Request) (models.Scope, error) {
	claims := identity(r)
	raw := r.URL.Query().Get("staff_id")
	if raw == "" {
		return claims.Scope(), nil
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return models.Scope{}, fmt.Errorf("invalid staff_id %q", raw)
	}
	if uint(id) != claims.StaffID && !claims.IsManager() {
		return models.Scope{}, errStaffScope
	}
	return models.Scope{StaffID: uint(id), HotelID: claims.HotelID}, nil
}

// queryDate parses a YYYY-MM-DD query parameter, falling back to def when absent.
func queryDate(r *http.Request, name string, def time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	d, err := calendar.Parse(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", name, raw)
	}
	return d, nil
}

func (s *Server) scopeOrFail(w http.ResponseWriter, r *http.Request) (models.Scope, bool) {
	scope, err := scopeFor(r)
	switch {
	case errors.Is(err, errStaffScope):
		s.forbidden(w, r)
		return models.Scope{}, false
	case err != nil:
		s.badRequest(w, r, err)
		return models.Scope{}, false
	}
	return scope, true
}

// GET /calendar?anchor=YYYY-MM-DD&mode=month|week
func (s *Server) GetCalendar(w http.ResponseWriter, r *http.Request) {
	scope, ok := s.scopeOrFail(w, r)
	if !ok {
		return
	}

	anchor, err := queryDate(r, "anchor", s.engine.Today())
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	mode, err := calendar.ParseViewMode(r.URL.Query().Get("mode"))
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	view, err := s.engine.GetCalendarView(r.Context(), scope, anchor, mode)
	if err != nil {
		s.engineError(w, r, err)
		return
	}

	s.successResponse(w, r, "calendar view", view)
}

// GET /calendar/export?anchor=YYYY-MM-DD streams the month as a workbook.
func (s *Server) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	scope, ok := s.scopeOrFail(w, r)
	if !ok {
		return
	}

	anchor, err := queryDate(r, "anchor", s.engine.Today())
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	view, err := s.engine.GetCalendarView(r.Context(), scope, anchor, calendar.ViewMonth)
	if err != nil {
		s.engineError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", roster.FileName(view)))
	if err := roster.Write(w, view); err != nil {
		s.logger.WithError(err).WithField("staff_id", scope.StaffID).Error("Failed to write export")
	}
}

// GET /summary?month=YYYY-MM
func (s *Server) GetSummary(w http.ResponseWriter, r *http.Request) {
	scope, ok := s.scopeOrFail(w, r)
	if !ok {
		return
	}

	month := s.engine.Today()
	if raw := r.URL.Query().Get("month"); raw != "" {
		var err error
		if month, err = time.Parse("2006-01", raw); err != nil {
			s.badRequest(w, r, fmt.Errorf("invalid month %q, expected YYYY-MM", raw))
			return
		}
	}

	summary, err := s.engine.MonthlySummary(r.Context(), scope, month.Year(), month.Month())
	if err != nil {
		s.engineError(w, r, err)
		return
	}

	s.successResponse(w, r, "monthly summary", summary)
}

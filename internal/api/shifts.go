package api

import (
	"context"
	"net/http"

	"hotel-shift-bot/internal/models"
)

func shiftFrom(r *http.Request) *models.ShiftSchedule {
	return r.Context().Value(shiftCtxKey).(*models.ShiftSchedule)
}

// GET /shifts/today returns the caller's shift for today, or null.
func (s *Server) GetTodayShift(w http.ResponseWriter, r *http.Request) {
	shift, err := s.engine.ShiftOn(r.Context(), identity(r).Scope(), s.engine.Today())
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	if shift == nil {
		s.successResponse(w, r, "no shift scheduled today", nil)
		return
	}
	s.successResponse(w, r, "today's shift", shift)
}

func (s *Server) GetShift(w http.ResponseWriter, r *http.Request) {
	s.successResponse(w, r, "shift", shiftFrom(r))
}

type shiftTransition func(ctx context.Context, scheduleID, actorID uint) (*models.ShiftSchedule, error)

func (s *Server) transition(w http.ResponseWriter, r *http.Request, fn shiftTransition, msg string) {
	shift, err := fn(r.Context(), shiftFrom(r).ID, identity(r).StaffID)
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	s.successResponse(w, r, msg, shift)
}

// POST /shifts/{id}/clock-in
func (s *Server) ClockIn(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.engine.ClockIn, "clocked in")
}

// POST /shifts/{id}/clock-out
func (s *Server) ClockOut(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.engine.ClockOut, "clocked out")
}

// POST /shifts/{id}/confirm
func (s *Server) ConfirmShift(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.engine.ConfirmShift, "shift confirmed")
}

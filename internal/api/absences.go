package api

import (
	"errors"
	"net/http"

	"hotel-shift-bot/internal/calendar"
	"hotel-shift-bot/internal/models"
	"hotel-shift-bot/internal/service"
)

func absenceFrom(r *http.Request) *models.AbsenceRequest {
	request, _ := r.Context().Value(absenceCtxKey).(*models.AbsenceRequest)
	return request
}

// GET /absences
func (s *Server) ListAbsences(w http.ResponseWriter, r *http.Request) {
	scope, ok := s.scopeOrFail(w, r)
	if !ok {
		return
	}

	requests, err := s.engine.AbsencesFor(r.Context(), scope)
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	s.successResponse(w, r, "absence requests", requests)
}

// POST /absences
func (s *Server) SubmitAbsence(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RequestType models.AbsenceType `json:"request_type" validate:"required"`
		StartDate   string             `json:"start_date" validate:"required,datetime=2006-01-02"`
		EndDate     string             `json:"end_date" validate:"required,datetime=2006-01-02"`
		Notes       *string            `json:"notes"`
	}
	if err := s.readJSON(r, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.badRequest(w, r, err)
		return
	}

	start, _ := calendar.Parse(req.StartDate)
	end, _ := calendar.Parse(req.EndDate)
	claims := identity(r)

	request, err := s.engine.SubmitAbsence(r.Context(), service.SubmitAbsenceInput{
		StaffID:     claims.StaffID,
		HotelID:     claims.HotelID,
		RequestType: req.RequestType,
		StartDate:   start,
		EndDate:     end,
		Notes:       req.Notes,
	})
	if err != nil {
		s.engineError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusCreated, Response{Success: true, Message: "absence request submitted", Data: request})
}

func (s *Server) GetAbsence(w http.ResponseWriter, r *http.Request) {
	s.successResponse(w, r, "absence request", absenceFrom(r))
}

// PATCH /absences/{id} takes exactly one change: a note edit (notes or clear_notes)
// or a status change. Approving and rejecting is reserved for managers.
func (s *Server) UpdateAbsence(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes      *string `json:"notes"`
		ClearNotes bool    `json:"clear_notes"`
		Status     string  `json:"status" validate:"omitempty,oneof=approved rejected cancelled"`
	}
	if err := s.readJSON(r, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.badRequest(w, r, err)
		return
	}

	editsNotes := req.Notes != nil || req.ClearNotes
	if editsNotes == (req.Status != "") {
		s.badRequest(w, r, errors.New("send either notes, clear_notes or status"))
		return
	}

	var patch service.AbsencePatch
	if editsNotes {
		notes := req.Notes
		if req.ClearNotes {
			notes = nil
		}
		patch = service.EditNotes{Notes: notes}
	} else {
		status := models.AbsenceStatus(req.Status)
		if status != models.AbsenceCancelled && !identity(r).IsManager() {
			s.forbidden(w, r)
			return
		}
		patch = service.ChangeStatus{Status: status}
	}

	request, err := s.engine.UpdateAbsence(r.Context(), absenceFrom(r).ID, patch)
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	s.successResponse(w, r, "absence request updated", request)
}

// POST /absences/{id}/cancel
func (s *Server) CancelAbsence(w http.ResponseWriter, r *http.Request) {
	request, err := s.engine.CancelAbsence(r.Context(), absenceFrom(r).ID)
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	s.successResponse(w, r, "absence request cancelled", request)
}

// DELETE /absences/{id} succeeds with deleted=false when the request is already gone.
func (s *Server) DeleteAbsence(w http.ResponseWriter, r *http.Request) {
	request := absenceFrom(r)
	if request == nil {
		s.successResponse(w, r, "absence request already deleted", map[string]bool{"deleted": false})
		return
	}

	deleted, err := s.engine.DeleteAbsence(r.Context(), request.ID)
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	s.successResponse(w, r, "absence request deleted", map[string]bool{"deleted": deleted})
}

// POST /absences/selection feeds one date into the caller's range picker.
func (s *Server) PressDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date" validate:"required,datetime=2006-01-02"`
	}
	if err := s.readJSON(r, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.badRequest(w, r, err)
		return
	}

	date, _ := calendar.Parse(req.Date)
	selected, err := s.engine.PressDate(r.Context(), identity(r).StaffID, date)
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	if selected == nil {
		s.successResponse(w, r, "start date picked", map[string]any{"complete": false, "start": req.Date})
		return
	}
	s.successResponse(w, r, "range selected", map[string]any{"complete": true, "range": selected})
}

// DELETE /absences/selection
func (s *Server) CancelSelection(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.CancelSelection(r.Context(), identity(r).StaffID); err != nil {
		s.engineError(w, r, err)
		return
	}
	s.successResponse(w, r, "selection cleared", nil)
}

// GET /absences/conflicts?start=YYYY-MM-DD&end=YYYY-MM-DD
func (s *Server) GetConflicts(w http.ResponseWriter, r *http.Request) {
	scope, ok := s.scopeOrFail(w, r)
	if !ok {
		return
	}

	today := s.engine.Today()
	start, err := queryDate(r, "start", today)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	end, err := queryDate(r, "end", start)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	conflicts, err := s.engine.Conflicts(r.Context(), scope, start, end)
	if err != nil {
		s.engineError(w, r, err)
		return
	}
	s.successResponse(w, r, "conflicts", conflicts)
}

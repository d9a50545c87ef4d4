// internal/service/absence.go
package service

import (
	"context"
	"fmt"
	"time"

	"hotel-shift-bot/internal/apperr"
	"hotel-shift-bot/internal/calendar"
	"hotel-shift-bot/internal/models"
	"hotel-shift-bot/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const maxNotesLength = 1000

var errNotesTooLong = fmt.Errorf("notes must be at most %d characters", maxNotesLength)

type SubmitAbsenceInput struct {
	StaffID     uint               `json:"staff_id" validate:"required"`
	HotelID     uint               `json:"hotel_id" validate:"required"`
	RequestType models.AbsenceType `json:"request_type" validate:"required,oneof=vacation sick personal training other"`
	StartDate   time.Time          `json:"start_date" validate:"required"`
	EndDate     time.Time          `json:"end_date" validate:"required"`
	Notes       *string            `json:"notes" validate:"omitempty,max=1000"`
}

// AbsencePatch is one change to a pending request: EditNotes or ChangeStatus.
type AbsencePatch interface {
	absencePatch()
}

// EditNotes replaces the request notes. Nil clears them.
type EditNotes struct {
	Notes *string
}

// ChangeStatus moves a pending request to approved, rejected or cancelled.
type ChangeStatus struct {
	Status models.AbsenceStatus
}

func (EditNotes) absencePatch()    {}
func (ChangeStatus) absencePatch() {}

type AbsenceService struct {
	repo     repository.AbsenceRequestRepository
	clock    Clock
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewAbsenceService(repo repository.AbsenceRequestRepository, clock Clock, logger *logrus.Logger) *AbsenceService {
	return &AbsenceService{
		repo:     repo,
		clock:    clock,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Submit stores a new pending request. Overlaps with other requests are allowed.
func (s *AbsenceService) Submit(ctx context.Context, in SubmitAbsenceInput) (*models.AbsenceRequest, error) {
	const op = "AbsenceService.Submit"

	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, op, err)
	}

	start, end := calendar.DateOf(in.StartDate), calendar.DateOf(in.EndDate)
	if start.After(end) {
		s.logger.WithFields(logrus.Fields{
			"staff_id": in.StaffID,
			"start":    calendar.Format(start),
			"end":      calendar.Format(end),
		}).Info("Absence request rejected: start after end")
		return nil, apperr.New(apperr.KindInvalidRange, op)
	}

	now := s.clock.Now()
	request := &models.AbsenceRequest{
		StaffID:     in.StaffID,
		HotelID:     in.HotelID,
		RequestType: in.RequestType,
		StartDate:   calendar.Format(start),
		EndDate:     calendar.Format(end),
		Status:      models.AbsencePending,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// Update applies patch to a pending request.
func (s *AbsenceService) Update(ctx context.Context, id uint, patch AbsencePatch) (*models.AbsenceRequest, error) {
	const op = "AbsenceService.Update"

	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !request.IsPending() {
		s.logger.WithFields(logrus.Fields{
			"request_id": id,
			"status":     request.Status,
		}).Info("Absence request is no longer editable")
		return nil, apperr.New(apperr.KindNotEditable, op)
	}

	changes, err := patchChanges(op, patch)
	if err != nil {
		return nil, err
	}
	changes["updated_at"] = s.clock.Now()

	ok, err := s.repo.UpdateIfStatus(ctx, id, models.AbsencePending, changes)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost to a concurrent writer: a delete reads back as NotFound.
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, apperr.New(apperr.KindNotEditable, op)
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": id,
		"staff_id":   updated.StaffID,
		"status":     updated.Status,
	}).Info("Absence request updated")

	return updated, nil
}

func (s *AbsenceService) Cancel(ctx context.Context, id uint) (*models.AbsenceRequest, error) {
	return s.Update(ctx, id, ChangeStatus{Status: models.AbsenceCancelled})
}

// Delete removes the request whatever its status. It reports false when nothing was removed.
func (s *AbsenceService) Delete(ctx context.Context, id uint) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func (s *AbsenceService) Get(ctx context.Context, id uint) (*models.AbsenceRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AbsenceService) ListForStaff(ctx context.Context, scope models.Scope) ([]*models.AbsenceRequest, error) {
	return s.repo.ListByScope(ctx, scope)
}

// OverlapsRange returns every request intersecting the inclusive range, in any status.
func (s *AbsenceService) OverlapsRange(ctx context.Context, scope models.Scope, a, b time.Time) ([]*models.AbsenceRequest, error) {
	start, end := calendar.Ordered(a, b)
	return s.repo.ListOverlapping(ctx, scope, calendar.Format(start), calendar.Format(end))
}

func (s *AbsenceService) ForDate(ctx context.Context, scope models.Scope, date time.Time) ([]*models.AbsenceRequest, error) {
	return s.OverlapsRange(ctx, scope, date, date)
}

func patchChanges(op string, patch AbsencePatch) (map[string]any, error) {
	switch p := patch.(type) {
	case EditNotes:
		if p.Notes == nil {
			return map[string]any{"notes": nil}, nil
		}
		if len([]rune(*p.Notes)) > maxNotesLength {
			return nil, apperr.Wrap(apperr.KindInvalidInput, op, errNotesTooLong)
		}
		return map[string]any{"notes": *p.Notes}, nil
	case ChangeStatus:
		switch p.Status {
		case models.AbsenceApproved, models.AbsenceRejected, models.AbsenceCancelled:
			return map[string]any{"status": p.Status}, nil
		}
		return nil, apperr.New(apperr.KindInvalidTransition, op)
	}
	return nil, apperr.New(apperr.KindInvalidInput, op)
}

// internal/repository/absence_request_repo.go
package repository

import (
	"context"
	"errors"

	"hotel-shift-bot/internal/apperr"
	"hotel-shift-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AbsenceRequestRepository interface {
	Create(ctx context.Context, request *models.AbsenceRequest) error
	GetByID(ctx context.Context, id uint) (*models.AbsenceRequest, error)
	ListByScope(ctx context.Context, scope models.Scope) ([]*models.AbsenceRequest, error)
	ListOverlapping(ctx context.Context, scope models.Scope, start, end string) ([]*models.AbsenceRequest, error)
	UpdateIfStatus(ctx context.Context, id uint, expected models.AbsenceStatus, changes map[string]any) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

type GormAbsenceRequestRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormAbsenceRequestRepository(db *gorm.DB, logger *logrus.Logger) (*GormAbsenceRequestRepository, error) {
	if err := db.AutoMigrate(&models.AbsenceRequest{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate absence_requests table")
		return nil, err
	}
	return &GormAbsenceRequestRepository{db: db, logger: logger}, nil
}

func (r *GormAbsenceRequestRepository) Create(ctx context.Context, request *models.AbsenceRequest) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		r.logger.WithError(err).WithField("staff_id", request.StaffID).Error("Failed to create absence request")
		return apperr.Storage("AbsenceRequestRepository.Create", err)
	}

	r.logger.WithFields(logrus.Fields{
		"id":       request.ID,
		"staff_id": request.StaffID,
		"type":     request.RequestType,
		"start":    request.StartDate,
		"end":      request.EndDate,
	}).Info("Absence request created")
	return nil
}

func (r *GormAbsenceRequestRepository) GetByID(ctx context.Context, id uint) (*models.AbsenceRequest, error) {
	var request models.AbsenceRequest
	err := r.db.WithContext(ctx).First(&request, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "AbsenceRequestRepository.GetByID")
	}
	if err != nil {
		r.logger.WithError(err).Error("Failed to get absence request by ID")
		return nil, apperr.Storage("AbsenceRequestRepository.GetByID", err)
	}
	return &request, nil
}

func (r *GormAbsenceRequestRepository) ListByScope(ctx context.Context, scope models.Scope) ([]*models.AbsenceRequest, error) {
	var requests []*models.AbsenceRequest
	err := scoped(r.db.WithContext(ctx), scope).
		Order("start_date DESC").
		Find(&requests).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to list absence requests")
		return nil, apperr.Storage("AbsenceRequestRepository.ListByScope", err)
	}
	return requests, nil
}

// ListOverlapping returns every request whose inclusive range intersects [start, end].
func (r *GormAbsenceRequestRepository) ListOverlapping(ctx context.Context, scope models.Scope, start, end string) ([]*models.AbsenceRequest, error) {
	var requests []*models.AbsenceRequest
	err := scoped(r.db.WithContext(ctx), scope).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Order("start_date ASC, id ASC").
		Find(&requests).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to list overlapping absence requests")
		return nil, apperr.Storage("AbsenceRequestRepository.ListOverlapping", err)
	}

	r.logger.WithFields(logrus.Fields{
		"staff_id": scope.StaffID,
		"start":    start,
		"end":      end,
		"count":    len(requests),
	}).Debug("Retrieved overlapping absence requests")

	return requests, nil
}

// UpdateIfStatus applies changes only while the request is still in expected status.
func (r *GormAbsenceRequestRepository) UpdateIfStatus(ctx context.Context, id uint, expected models.AbsenceStatus, changes map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.AbsenceRequest{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(changes)
	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("id", id).Error("Failed to update absence request")
		return false, apperr.Storage("AbsenceRequestRepository.UpdateIfStatus", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *GormAbsenceRequestRepository) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.AbsenceRequest{}, id)
	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("id", id).Error("Failed to delete absence request")
		return false, apperr.Storage("AbsenceRequestRepository.Delete", result.Error)
	}

	if result.RowsAffected == 0 {
		r.logger.WithField("id", id).Debug("Absence request already gone")
		return false, nil
	}

	r.logger.WithField("id", id).Info("Absence request deleted")
	return true, nil
}

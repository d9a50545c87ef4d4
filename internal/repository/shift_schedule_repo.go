package repository

import (
	"context"
	"errors"

	"hotel-shift-bot/internal/apperr"
	"hotel-shift-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ShiftScheduleRepository interface {
	Create(ctx context.Context, shift *models.ShiftSchedule) error
	GetByID(ctx context.Context, id uint) (*models.ShiftSchedule, error)
	GetByDate(ctx context.Context, scope models.Scope, date string) (*models.ShiftSchedule, error)
	ListByRange(ctx context.Context, scope models.Scope, start, end string) ([]*models.ShiftSchedule, error)
	Transition(ctx context.Context, id uint, guard ShiftGuard, changes map[string]any) (bool, error)
}

// ShiftGuard is the state a shift must still be in for a transition to be written.
type ShiftGuard struct {
	Status      models.ShiftStatus
	StartUnset  bool
	StartSet    bool
	EndUnset    bool
	Unconfirmed bool
}

type GormShiftScheduleRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormShiftScheduleRepository(db *gorm.DB, logger *logrus.Logger) (*GormShiftScheduleRepository, error) {
	if err := db.AutoMigrate(&models.ShiftSchedule{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate shift_schedules table")
		return nil, err
	}

	logger.Debug("Shift schedule repository initialized")

	return &GormShiftScheduleRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormShiftScheduleRepository) Create(ctx context.Context, shift *models.ShiftSchedule) error {
	if shift.Status == "" {
		shift.Status = models.ShiftScheduled
	}
	if err := shift.Validate(); err != nil {
		return apperr.Wrap(apperr.KindInvalidInput, "ShiftScheduleRepository.Create", err)
	}

	if err := r.db.WithContext(ctx).Create(shift).Error; err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"staff_id": shift.StaffID,
			"date":     shift.ScheduleDate,
		}).Error("Failed to create shift schedule")
		return apperr.Storage("ShiftScheduleRepository.Create", err)
	}

	r.logger.WithFields(logrus.Fields{
		"id":       shift.ID,
		"staff_id": shift.StaffID,
		"hotel_id": shift.HotelID,
		"date":     shift.ScheduleDate,
	}).Info("Shift schedule created")

	return nil
}

func (r *GormShiftScheduleRepository) GetByID(ctx context.Context, id uint) (*models.ShiftSchedule, error) {
	var shift models.ShiftSchedule
	err := r.db.WithContext(ctx).First(&shift, id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.WithField("id", id).Debug("Shift schedule not found")
		return nil, apperr.New(apperr.KindNotFound, "ShiftScheduleRepository.GetByID")
	}
	if err != nil {
		r.logger.WithError(err).Error("Failed to get shift schedule by ID")
		return nil, apperr.Storage("ShiftScheduleRepository.GetByID", err)
	}

	return &shift, nil
}

func (r *GormShiftScheduleRepository) GetByDate(ctx context.Context, scope models.Scope, date string) (*models.ShiftSchedule, error) {
	var shift models.ShiftSchedule
	err := scoped(r.db.WithContext(ctx), scope).
		Where("schedule_date = ?", date).
		First(&shift).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithError(err).Error("Failed to get shift schedule by date")
		return nil, apperr.Storage("ShiftScheduleRepository.GetByDate", err)
	}

	return &shift, nil
}

func (r *GormShiftScheduleRepository) ListByRange(ctx context.Context, scope models.Scope, start, end string) ([]*models.ShiftSchedule, error) {
	var shifts []*models.ShiftSchedule
	err := scoped(r.db.WithContext(ctx), scope).
		Where("schedule_date BETWEEN ? AND ?", start, end).
		Order("schedule_date ASC").
		Find(&shifts).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to list shift schedules by range")
		return nil, apperr.Storage("ShiftScheduleRepository.ListByRange", err)
	}

	r.logger.WithFields(logrus.Fields{
		"staff_id": scope.StaffID,
		"start":    start,
		"end":      end,
		"count":    len(shifts),
	}).Debug("Retrieved shift schedules by range")

	return shifts, nil
}

// Transition writes changes only while the row still satisfies guard. It reports false
// when another writer got there first or the row is gone.
func (r *GormShiftScheduleRepository) Transition(ctx context.Context, id uint, guard ShiftGuard, changes map[string]any) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.ShiftSchedule{}).
		Where("id = ? AND status = ?", id, guard.Status)
	if guard.StartUnset {
		q = q.Where("actual_start_time IS NULL")
	}
	if guard.StartSet {
		q = q.Where("actual_start_time IS NOT NULL")
	}
	if guard.EndUnset {
		q = q.Where("actual_end_time IS NULL")
	}
	if guard.Unconfirmed {
		q = q.Where("is_confirmed = ?", false)
	}

	result := q.Updates(changes)
	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("id", id).Error("Failed to apply shift transition")
		return false, apperr.Storage("ShiftScheduleRepository.Transition", result.Error)
	}

	r.logger.WithFields(logrus.Fields{
		"id":            id,
		"from_status":   guard.Status,
		"rows_affected": result.RowsAffected,
	}).Debug("Shift transition applied")

	return result.RowsAffected == 1, nil
}

func scoped(db *gorm.DB, scope models.Scope) *gorm.DB {
	db = db.Where("staff_id = ?", scope.StaffID)
	if scope.HotelID != 0 {
		db = db.Where("hotel_id = ?", scope.HotelID)
	}
	return db
}

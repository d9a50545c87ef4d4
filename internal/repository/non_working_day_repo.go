package repository

import (
	"context"

	"hotel-shift-bot/internal/apperr"
	"hotel-shift-bot/internal/models"

	"gorm.io/gorm"
)

type NonWorkingDayRepository interface {
	ReplaceAll(ctx context.Context, days []models.NonWorkingDay) error
	ListByRange(ctx context.Context, start, end string) ([]models.NonWorkingDay, error)
	IsNonWorkingDay(ctx context.Context, date string) (bool, error)
}

type GormNonWorkingDayRepository struct {
	db *gorm.DB
}

func NewGormNonWorkingDayRepository(db *gorm.DB) (*GormNonWorkingDayRepository, error) {
	if err := db.AutoMigrate(&models.NonWorkingDay{}); err != nil {
		return nil, err
	}

	return &GormNonWorkingDayRepository{db: db}, nil
}

// ReplaceAll swaps the stored holidays for days in one transaction.
func (r *GormNonWorkingDayRepository) ReplaceAll(ctx context.Context, days []models.NonWorkingDay) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM non_working_days").Error; err != nil {
			return err
		}
		if len(days) == 0 {
			return nil
		}
		return tx.Create(&days).Error
	})
	return apperr.Storage("NonWorkingDayRepository.ReplaceAll", err)
}

func (r *GormNonWorkingDayRepository) ListByRange(ctx context.Context, start, end string) ([]models.NonWorkingDay, error) {
	var days []models.NonWorkingDay
	err := r.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", start, end).
		Order("date ASC").
		Find(&days).Error
	if err != nil {
		return nil, apperr.Storage("NonWorkingDayRepository.ListByRange", err)
	}
	return days, nil
}

func (r *GormNonWorkingDayRepository) IsNonWorkingDay(ctx context.Context, date string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.NonWorkingDay{}).
		Where("date = ?", date).
		Count(&count).Error
	if err != nil {
		return false, apperr.Storage("NonWorkingDayRepository.IsNonWorkingDay", err)
	}
	return count > 0, nil
}

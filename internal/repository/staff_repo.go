package repository

import (
	"context"
	"errors"

	"hotel-shift-bot/internal/apperr"
	"hotel-shift-bot/internal/models"

	"gorm.io/gorm"
)

type StaffRepository interface {
	Create(ctx context.Context, staff *models.Staff) error
	GetByChatID(ctx context.Context, chatID int64) (*models.Staff, error)
	GetByID(ctx context.Context, id uint) (*models.Staff, error)
	ListManagers(ctx context.Context, hotelID uint) ([]*models.Staff, error)
	UpdateRole(ctx context.Context, chatID int64, role models.Role) error
}

type GormStaffRepository struct {
	db *gorm.DB
}

func NewGormStaffRepository(db *gorm.DB) (*GormStaffRepository, error) {
	if err := db.AutoMigrate(&models.Staff{}); err != nil {
		return nil, err
	}
	return &GormStaffRepository{db: db}, nil
}

func (r *GormStaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	var existing models.Staff
	result := r.db.WithContext(ctx).Where("chat_id = ?", staff.ChatID).First(&existing)
	if result.Error == nil {
		return apperr.Wrap(apperr.KindInvalidInput, "StaffRepository.Create", errors.New("staff member already registered"))
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return apperr.Storage("StaffRepository.Create", result.Error)
	}

	if err := r.db.WithContext(ctx).Create(staff).Error; err != nil {
		return apperr.Storage("StaffRepository.Create", err)
	}
	return nil
}

// GetByChatID returns nil, nil for unknown chats.
func (r *GormStaffRepository) GetByChatID(ctx context.Context, chatID int64) (*models.Staff, error) {
	var staff models.Staff
	result := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&staff)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, apperr.Storage("StaffRepository.GetByChatID", result.Error)
	}
	return &staff, nil
}

func (r *GormStaffRepository) GetByID(ctx context.Context, id uint) (*models.Staff, error) {
	var staff models.Staff
	result := r.db.WithContext(ctx).First(&staff, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "StaffRepository.GetByID")
	}
	if result.Error != nil {
		return nil, apperr.Storage("StaffRepository.GetByID", result.Error)
	}
	return &staff, nil
}

func (r *GormStaffRepository) ListManagers(ctx context.Context, hotelID uint) ([]*models.Staff, error) {
	var managers []*models.Staff
	result := r.db.WithContext(ctx).
		Where("hotel_id = ? AND role = ?", hotelID, models.RoleManager).
		Find(&managers)
	if result.Error != nil {
		return nil, apperr.Storage("StaffRepository.ListManagers", result.Error)
	}
	return managers, nil
}

func (r *GormStaffRepository) UpdateRole(ctx context.Context, chatID int64, role models.Role) error {
	result := r.db.WithContext(ctx).Model(&models.Staff{}).
		Where("chat_id = ?", chatID).
		Update("role", role)

	if result.Error != nil {
		return apperr.Storage("StaffRepository.UpdateRole", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "StaffRepository.UpdateRole")
	}
	return nil
}

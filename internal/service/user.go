package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotel-shift-bot/internal/apperr"
	"hotel-shift-bot/internal/models"
	"hotel-shift-bot/internal/repository"

	"github.com/sirupsen/logrus"
)

type StaffService struct {
	repo         repository.StaffRepository
	defaultHotel uint
	logger       *logrus.Logger
}

func NewStaffService(repo repository.StaffRepository, defaultHotel uint, logger *logrus.Logger) *StaffService {
	return &StaffService{repo: repo, defaultHotel: defaultHotel, logger: logger}
}

// Register creates a staff member for a Telegram chat in the default hotel.
func (s *StaffService) Register(ctx context.Context, chatID int64, username, firstName, lastName string) (*models.Staff, error) {
	if strings.TrimSpace(firstName) == "" {
		return nil, apperr.Wrap(apperr.KindInvalidInput, "StaffService.Register", errors.New("first name is required"))
	}

	staff := &models.Staff{
		ChatID:    chatID,
		HotelID:   s.defaultHotel,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Role:      models.RoleStaff,
	}
	if err := s.repo.Create(ctx, staff); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"staff_id": staff.ID,
		"chat_id":  chatID,
		"hotel_id": staff.HotelID,
	}).Info("Staff member registered")

	return staff, nil
}

// ByChatID returns nil for chats that never registered.
func (s *StaffService) ByChatID(ctx context.Context, chatID int64) (*models.Staff, error) {
	return s.repo.GetByChatID(ctx, chatID)
}

func (s *StaffService) ByID(ctx context.Context, id uint) (*models.Staff, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *StaffService) Managers(ctx context.Context, hotelID uint) ([]*models.Staff, error) {
	return s.repo.ListManagers(ctx, hotelID)
}

// Promote gives targetChatID the manager role. Only managers may promote.
func (s *StaffService) Promote(ctx context.Context, actor *models.Staff, targetChatID int64) error {
	if actor == nil || !actor.IsManager() {
		return apperr.Wrap(apperr.KindInvalidInput, "StaffService.Promote", errors.New("only managers can change roles"))
	}
	if err := s.repo.UpdateRole(ctx, targetChatID, models.RoleManager); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"actor_id":       actor.ID,
		"target_chat_id": targetChatID,
	}).Info("Staff member promoted to manager")
	return nil
}

// InitializeAdmin makes sure the configured base admin chat exists as a manager.
func (s *StaffService) InitializeAdmin(ctx context.Context, adminChatID int64) error {
	if adminChatID == 0 {
		return nil
	}

	existing, err := s.repo.GetByChatID(ctx, adminChatID)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.IsManager() {
			return nil
		}
		return s.repo.UpdateRole(ctx, adminChatID, models.RoleManager)
	}

	return s.repo.Create(ctx, &models.Staff{
		ChatID:    adminChatID,
		HotelID:   s.defaultHotel,
		Username:  "admin",
		FirstName: "Administrator",
		Role:      models.RoleManager,
	})
}

// FormatProfile renders a staff member for chat output.
func FormatProfile(staff *models.Staff) string {
	var lines []string

	lines = append(lines, "👤 Profile:")
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("🆔 Staff ID: %d", staff.ID))
	lines = append(lines, fmt.Sprintf("🏨 Hotel: %d", staff.HotelID))
	if staff.Username != "" {
		lines = append(lines, fmt.Sprintf("📛 Username: @%s", staff.Username))
	}
	lines = append(lines, fmt.Sprintf("👨‍💼 Name: %s", staff.FullName()))

	roleEmoji := "👤"
	if staff.IsManager() {
		roleEmoji = "👑"
	}
	lines = append(lines, fmt.Sprintf("%s Role: %s", roleEmoji, staff.Role))

	return strings.Join(lines, "\n")
}

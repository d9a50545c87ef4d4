package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"hotel-shift-bot/internal/models"
	"hotel-shift-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// reviewAbsence approves or rejects a pending request of the manager's hotel.
func (h *Handler) reviewAbsence(ctx context.Context, message *tgbotapi.Message, args string, approve bool) {
	chatID := message.Chat.ID
	manager, ok := h.currentManager(ctx, chatID)
	if !ok {
		return
	}

	id, err := parseID(args)
	if err != nil {
		h.send(chatID, "❌ Usage: /approve ID or /reject ID")
		return
	}

	request, err := h.engine.Absence(ctx, id)
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	if request.HotelID != manager.HotelID {
		h.send(chatID, "❌ This request belongs to another hotel.")
		return
	}

	status := models.AbsenceRejected
	if approve {
		status = models.AbsenceApproved
	}

	updated, err := h.engine.UpdateAbsence(ctx, id, service.ChangeStatus{Status: status})
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.send(chatID, fmt.Sprintf("✅ Request %s.\n\n%s", status, service.FormatAbsence(updated)))

	owner, err := h.staffService.ByID(ctx, updated.StaffID)
	if err != nil || owner == nil {
		h.logger.WithError(err).WithField("staff_id", updated.StaffID).Warn("Failed to load request owner")
		return
	}
	h.send(owner.ChatID, fmt.Sprintf("📬 Your absence request was %s.\n\n%s", status, service.FormatAbsence(updated)))
}

func (h *Handler) promote(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	manager, ok := h.currentManager(ctx, chatID)
	if !ok {
		return
	}

	target, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		h.send(chatID, "❌ Usage: /promote CHAT_ID")
		return
	}

	if err := h.staffService.Promote(ctx, manager, target); err != nil {
		h.replyError(chatID, err)
		return
	}

	h.send(chatID, fmt.Sprintf("👑 Chat %d is now a manager.", target))
	h.send(target, "👑 You have been promoted to manager. Use /help to see the manager commands.")
}

func parseID(args string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(args), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", args)
	}
	return uint(id), nil
}

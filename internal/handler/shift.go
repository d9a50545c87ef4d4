package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotel-shift-bot/internal/models"
	"hotel-shift-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// shiftOn loads the sender's shift for date, telling the chat when there is none.
func (h *Handler) shiftOn(ctx context.Context, chatID int64, staff *models.Staff, date time.Time) (*models.ShiftSchedule, bool) {
	shift, err := h.engine.ShiftOn(ctx, staff.Scope(), date)
	if err != nil {
		h.replyError(chatID, err)
		return nil, false
	}
	if shift == nil {
		h.send(chatID, fmt.Sprintf("📭 No shift scheduled on %s.", date.Format("02.01.2006")))
		return nil, false
	}
	return shift, true
}

func (h *Handler) clockIn(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	staff, ok := h.currentStaff(ctx, chatID)
	if !ok {
		return
	}
	shift, ok := h.shiftOn(ctx, chatID, staff, h.engine.Today())
	if !ok {
		return
	}

	shift, err := h.engine.ClockIn(ctx, shift.ID, staff.ID)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.send(chatID, fmt.Sprintf("✅ Clocked in at %s\n\n%s", shift.ActualStartTime.Format("15:04"), service.FormatShift(shift)))
}

func (h *Handler) clockOut(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	staff, ok := h.currentStaff(ctx, chatID)
	if !ok {
		return
	}
	shift, ok := h.shiftOn(ctx, chatID, staff, h.engine.Today())
	if !ok {
		return
	}

	shift, err := h.engine.ClockOut(ctx, shift.ID, staff.ID)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.send(chatID, fmt.Sprintf("🏁 Clocked out at %s\n\n%s", shift.ActualEndTime.Format("15:04"), service.FormatShift(shift)))
}

func (h *Handler) confirmShift(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	staff, ok := h.currentStaff(ctx, chatID)
	if !ok {
		return
	}

	date := h.engine.Today()
	if strings.TrimSpace(args) != "" {
		var err error
		if date, err = parseDate(args, date); err != nil {
			h.send(chatID, "❌ "+err.Error())
			return
		}
	}

	shift, ok := h.shiftOn(ctx, chatID, staff, date)
	if !ok {
		return
	}

	shift, err := h.engine.ConfirmShift(ctx, shift.ID, staff.ID)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.send(chatID, "👍 Shift confirmed\n\n"+service.FormatShift(shift))
}

func (h *Handler) showToday(ctx context.Context, message *tgbotapi.Message) {
	h.showDay(ctx, message.Chat.ID, h.engine.Today())
}

func (h *Handler) showSummary(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	staff, ok := h.currentStaff(ctx, chatID)
	if !ok {
		return
	}

	month, err := parseAnchor(args, h.engine.Today())
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}

	summary, err := h.engine.MonthlySummary(ctx, staff.Scope(), month.Year(), month.Month())
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.send(chatID, service.FormatSummary(summary))
}

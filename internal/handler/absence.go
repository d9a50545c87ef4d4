package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel-shift-bot/internal/apperr"
	"hotel-shift-bot/internal/calendar"
	"hotel-shift-bot/internal/models"
	"hotel-shift-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// stateAbsenceRange is followed by "<start>:<end>" once both picker dates are pressed.
const stateAbsenceRange = "absence_range:"

var absenceTypeLabels = map[models.AbsenceType]string{
	models.AbsenceVacation: "Vacation",
	models.AbsenceSick:     "Sick leave",
	models.AbsencePersonal: "Personal",
	models.AbsenceTraining: "Training",
	models.AbsenceOther:    "Other",
}

func (h *Handler) startAbsencePicker(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	staff, ok := h.currentStaff(ctx, chatID)
	if !ok {
		return
	}

	if err := h.engine.CancelSelection(ctx, staff.ID); err != nil {
		h.replyError(chatID, err)
		return
	}

	view, err := h.engine.GetCalendarView(ctx, staff.Scope(), h.engine.Today(), calendar.ViewMonth)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	msg := tgbotapi.NewMessage(chatID, calendarText(view, true))
	msg.ReplyMarkup = calendarKeyboard(view, true)
	h.sendMessage(msg)
}

// pressDate handles a day button in the picker and returns the callback answer.
func (h *Handler) pressDate(ctx context.Context, callback *tgbotapi.CallbackQuery, date time.Time) string {
	chatID := callback.Message.Chat.ID
	staff, ok := h.currentStaff(ctx, chatID)
	if !ok {
		return ""
	}

	r, err := h.engine.PressDate(ctx, staff.ID, date)
	if err != nil {
		h.replyError(chatID, err)
		return ""
	}
	if r == nil {
		return fmt.Sprintf("Start: %s. Now pick the last day.", date.Format("02.01.2006"))
	}

	conflicts, err := h.engine.Conflicts(ctx, staff.Scope(), r.Start, r.End)
	if err != nil {
		h.replyError(chatID, err)
		return ""
	}

	h.setState(chatID, stateAbsenceRange+calendar.Format(r.Start)+":"+calendar.Format(r.End))

	text := fmt.Sprintf("🗓 Selected: %s (%d days)\n\nWhat kind of absence is it?", r, r.Days())
	if warning := service.FormatConflicts(conflicts); warning != "" {
		text += "\n\n" + warning
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = absenceTypeKeyboard()
	h.sendMessage(msg)

	return "Range selected"
}

func absenceTypeKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range models.AbsenceTypes {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t.Emoji()+" "+absenceTypeLabels[t], "abs_type:"+string(t)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "abs_cancel"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// selectedRange reads the range stored by pressDate.
func (h *Handler) selectedRange(chatID int64) (calendar.Range, bool) {
	state, ok := h.state(chatID)
	if !ok || !strings.HasPrefix(state, stateAbsenceRange) {
		return calendar.Range{}, false
	}
	parts := strings.Split(strings.TrimPrefix(state, stateAbsenceRange), ":")
	if len(parts) != 2 {
		return calendar.Range{}, false
	}
	start, err1 := calendar.Parse(parts[0])
	end, err2 := calendar.Parse(parts[1])
	if err1 != nil || err2 != nil {
		return calendar.Range{}, false
	}
	return calendar.NewRange(start, end), true
}

func (h *Handler) submitSelectedAbsence(ctx context.Context, callback *tgbotapi.CallbackQuery, absenceType models.AbsenceType) {
	chatID := callback.Message.Chat.ID
	staff, ok := h.currentStaff(ctx, chatID)
	if !ok {
		return
	}

	r, ok := h.selectedRange(chatID)
	if !ok {
		h.send(chatID, "⌛ The selection has expired. Use /absence to pick the dates again.")
		return
	}

	request, err := h.engine.SubmitAbsence(ctx, service.SubmitAbsenceInput{
		StaffID:     staff.ID,
		HotelID:     staff.HotelID,
		RequestType: absenceType,
		StartDate:   r.Start,
		EndDate:     r.End,
	})
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	h.clearState(chatID)

	text := fmt.Sprintf("✅ Absence request submitted!\n\n%s\n\nUse /note %d <text> to add a note.", service.FormatAbsence(request), request.ID)
	h.sendMessage(tgbotapi.NewEditMessageText(chatID, callback.Message.MessageID, text))
}

func (h *Handler) cancelAbsencePicker(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	h.clearState(chatID)

	staff, ok := h.currentStaff(ctx, chatID)
	if !ok {
		return
	}
	if err := h.engine.CancelSelection(ctx, staff.ID); err != nil {
		h.replyError(chatID, err)
		return
	}

	h.sendMessage(tgbotapi.NewEditMessageText(chatID, callback.Message.MessageID, "❌ Absence request cancelled."))
}

func (h *Handler) showMyAbsences(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	staff, ok := h.currentStaff(ctx, chatID)
	if !ok {
		return
	}

	requests, err := h.engine.AbsencesFor(ctx, staff.Scope())
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	h.send(chatID, service.FormatAbsenceList(requests))
}

// ownedAbsence loads a request the sender may change: their own, or any request of
// their hotel for managers.
func (h *Handler) ownedAbsence(ctx context.Context, chatID int64, staff *models.Staff, id uint) (*models.AbsenceRequest, bool) {
	request, err := h.engine.Absence(ctx, id)
	if err != nil {
		h.replyError(chatID, err)
		return nil, false
	}
	if !canManage(staff, request) {
		h.send(chatID, "❌ This is not your request.")
		return nil, false
	}
	return request, true
}

func canManage(staff *models.Staff, request *models.AbsenceRequest) bool {
	return request.StaffID == staff.ID || (staff.IsManager() && request.HotelID == staff.HotelID)
}

func (h *Handler) editAbsenceNote(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	staff, ok := h.currentStaff(ctx, chatID)
	if !ok {
		return
	}

	idArg, text, _ := strings.Cut(strings.TrimSpace(args), " ")
	id, err := parseID(idArg)
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		h.send(chatID, "❌ Usage: /note ID text (use \"-\" to clear the note)")
		return
	}
	if _, ok := h.ownedAbsence(ctx, chatID, staff, id); !ok {
		return
	}

	var notes *string
	if text != "-" {
		notes = &text
	}

	request, err := h.engine.UpdateAbsence(ctx, id, service.EditNotes{Notes: notes})
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	h.send(chatID, "📝 Note updated\n\n"+service.FormatAbsence(request))
}

func (h *Handler) cancelAbsence(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	staff, ok := h.currentStaff(ctx, chatID)
	if !ok {
		return
	}

	id, err := parseID(args)
	if err != nil {
		h.send(chatID, "❌ Usage: /cancelabsence ID")
		return
	}
	if _, ok := h.ownedAbsence(ctx, chatID, staff, id); !ok {
		return
	}

	request, err := h.engine.CancelAbsence(ctx, id)
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	h.send(chatID, "🚫 Request cancelled\n\n"+service.FormatAbsence(request))
}

func (h *Handler) deleteAbsence(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	staff, ok := h.currentStaff(ctx, chatID)
	if !ok {
		return
	}

	id, err := parseID(args)
	if err != nil {
		h.send(chatID, "❌ Usage: /deleteabsence ID")
		return
	}

	request, err := h.engine.Absence(ctx, id)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		h.send(chatID, "📭 The request was already deleted.")
		return
	case err != nil:
		h.replyError(chatID, err)
		return
	case !canManage(staff, request):
		h.send(chatID, "❌ This is not your request.")
		return
	}

	deleted, err := h.engine.DeleteAbsence(ctx, id)
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	if !deleted {
		h.send(chatID, "📭 The request was already deleted.")
		return
	}
	h.send(chatID, fmt.Sprintf("🗑 Request %d deleted.", id))
}

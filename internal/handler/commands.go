package handler

import (
	"context"

	"hotel-shift-bot/internal/calendar"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	args := message.CommandArguments()

	switch command {
	case "start", "help":
		h.sendHelpMessage(message)
	case "register":
		h.startRegistration(ctx, message)
	case "myprofile":
		h.showProfile(ctx, message)

	// Calendar
	case "calendar", "month":
		h.showCalendar(ctx, message, args, calendar.ViewMonth)
	case "week":
		h.showCalendar(ctx, message, args, calendar.ViewWeek)
	case "export":
		h.exportCalendar(ctx, message, args)

	// Shifts
	case "in":
		h.clockIn(ctx, message)
	case "out":
		h.clockOut(ctx, message)
	case "confirm":
		h.confirmShift(ctx, message, args)
	case "today":
		h.showToday(ctx, message)
	case "summary":
		h.showSummary(ctx, message, args)

	// Absences
	case "absence":
		h.startAbsencePicker(ctx, message)
	case "myabsences":
		h.showMyAbsences(ctx, message)
	case "note":
		h.editAbsenceNote(ctx, message, args)
	case "cancelabsence":
		h.cancelAbsence(ctx, message, args)
	case "deleteabsence":
		h.deleteAbsence(ctx, message, args)

	// Managers
	case "approve":
		h.reviewAbsence(ctx, message, args, true)
	case "reject":
		h.reviewAbsence(ctx, message, args, false)
	case "promote":
		h.promote(ctx, message, args)

	default:
		h.send(message.Chat.ID, "❌ Unknown command. Use /help to see the list of commands.")
	}
}

func (h *Handler) sendHelpMessage(message *tgbotapi.Message) {
	text := `📋 Available commands:

👤 Profile:
/register - Create your staff profile
/myprofile - Show your profile

🗓 Calendar:
/calendar [YYYY-MM] - Month view with shifts and absences
/week [date] - Week view
/export [YYYY-MM] - Download the month as an Excel file

⏰ Shifts:
/in - Clock in to today's shift
/out - Clock out of today's shift
/confirm [date] - Confirm an upcoming shift
/today - Today's shift and absences
/summary [YYYY-MM] - Monthly hours summary

🏖️ Absences:
/absence - Pick dates on the calendar and request an absence
/myabsences - Your absence requests
/note ID text - Change the note of a pending request ("-" clears it)
/cancelabsence ID - Cancel a pending request
/deleteabsence ID - Delete a request

👑 Managers:
/approve ID - Approve a pending request
/reject ID - Reject a pending request
/promote CHAT_ID - Make a staff member a manager

💡 Dates can be written as YYYY-MM-DD, DD.MM.YYYY or DD.MM.`

	h.send(message.Chat.ID, text)
}

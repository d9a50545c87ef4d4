// internal/handler/calendar.go
package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"hotel-shift-bot/internal/calendar"
	"hotel-shift-bot/internal/models"
	"hotel-shift-bot/internal/roster"
	"hotel-shift-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type callbackKind int

const (
	callbackNoop callbackKind = iota
	callbackView
	callbackPicker
	callbackDay
	callbackSelect
	callbackAbsenceType
	callbackAbsenceCancel
)

// Callback payloads, all under the 64-byte Bot API limit:
//
//	noop
//	cal:<mode>:<anchor>   navigate the read-only calendar
//	pick:<mode>:<anchor>  navigate the absence range picker
//	day:<date>            show one day
//	sel:<date>            press a date in the picker
//	abs_type:<type>       submit the picked range with a type
//	abs_cancel            abandon the picker
type callbackData struct {
	kind        callbackKind
	mode        calendar.ViewMode
	date        time.Time
	absenceType models.AbsenceType
}

func parseCallback(data string) (callbackData, error) {
	parts := strings.Split(data, ":")
	switch parts[0] {
	case "noop":
		return callbackData{kind: callbackNoop}, nil
	case "abs_cancel":
		return callbackData{kind: callbackAbsenceCancel}, nil
	case "cal", "pick":
		if len(parts) != 3 {
			break
		}
		mode, err := calendar.ParseViewMode(parts[1])
		if err != nil {
			return callbackData{}, err
		}
		anchor, err := calendar.Parse(parts[2])
		if err != nil {
			return callbackData{}, err
		}
		kind := callbackView
		if parts[0] == "pick" {
			kind = callbackPicker
		}
		return callbackData{kind: kind, mode: mode, date: anchor}, nil
	case "day", "sel":
		if len(parts) != 2 {
			break
		}
		date, err := calendar.Parse(parts[1])
		if err != nil {
			return callbackData{}, err
		}
		kind := callbackDay
		if parts[0] == "sel" {
			kind = callbackSelect
		}
		return callbackData{kind: kind, date: date}, nil
	case "abs_type":
		if len(parts) != 2 || !models.AbsenceType(parts[1]).Valid() {
			break
		}
		return callbackData{kind: callbackAbsenceType, absenceType: models.AbsenceType(parts[1])}, nil
	}
	return callbackData{}, fmt.Errorf("unknown callback %q", data)
}

var weekdayHeader = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// calendarKeyboard renders view as an inline keyboard: a navigation row, the weekday
// header, one row per week and a footer. In picker mode day buttons feed the range
// selection instead of opening the day.
func calendarKeyboard(view *service.CalendarView, picker bool) tgbotapi.InlineKeyboardMarkup {
	navPrefix, dayPrefix := "cal", "day"
	if picker {
		navPrefix, dayPrefix = "pick", "sel"
	}

	prev := calendar.Navigate(view.Anchor, calendar.Backward, view.Mode)
	next := calendar.Navigate(view.Anchor, calendar.Forward, view.Mode)

	var rows [][]tgbotapi.InlineKeyboardButton
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀", fmt.Sprintf("%s:%s:%s", navPrefix, view.Mode, calendar.Format(prev))),
		tgbotapi.NewInlineKeyboardButtonData(periodTitle(view), "noop"),
		tgbotapi.NewInlineKeyboardButtonData("▶", fmt.Sprintf("%s:%s:%s", navPrefix, view.Mode, calendar.Format(next))),
	))

	header := make([]tgbotapi.InlineKeyboardButton, 0, calendar.WeekCells)
	for _, day := range weekdayHeader {
		header = append(header, tgbotapi.NewInlineKeyboardButtonData(day, "noop"))
	}
	rows = append(rows, header)

	for week := 0; week < len(view.Dates); week += calendar.WeekCells {
		row := make([]tgbotapi.InlineKeyboardButton, 0, calendar.WeekCells)
		for _, date := range view.Dates[week : week+calendar.WeekCells] {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(
				dayLabel(view, date),
				dayPrefix+":"+calendar.Format(date),
			))
		}
		rows = append(rows, row)
	}

	if picker {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "abs_cancel"),
		))
	} else {
		toggle, label := calendar.ViewWeek, "📆 Week"
		if view.Mode == calendar.ViewWeek {
			toggle, label = calendar.ViewMonth, "🗓 Month"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("cal:%s:%s", toggle, calendar.Format(view.Anchor))),
		))
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// dayLabel marks absences, shifts and holidays on a day button. Days outside the
// anchor's month are dotted.
func dayLabel(view *service.CalendarView, date time.Time) string {
	label := strconv.Itoa(date.Day())
	if !view.InPeriod(date) {
		label = "·" + label
	}

	switch {
	case len(view.Absences(date)) > 0:
		label += view.Absences(date)[0].RequestType.Emoji()
	case view.Shift(date) != nil:
		if view.Shift(date).Status == models.ShiftCompleted {
			label += "✓"
		} else {
			label += "•"
		}
	case view.IsHoliday(date):
		label += "*"
	}
	return label
}

func periodTitle(view *service.CalendarView) string {
	if view.Mode == calendar.ViewWeek {
		first, last := view.Dates[0], view.Dates[len(view.Dates)-1]
		return fmt.Sprintf("%s – %s", first.Format("02 Jan"), last.Format("02 Jan"))
	}
	return view.Anchor.Format("January 2006")
}

// calendarText lists the period's shifts and absences under the keyboard.
func calendarText(view *service.CalendarView, picker bool) string {
	var b strings.Builder
	if picker {
		b.WriteString("🗓 Pick the first and the last day of your absence.\n")
	} else {
		fmt.Fprintf(&b, "🗓 %s\n", periodTitle(view))
	}
	b.WriteString("• shift  ✓ worked  * holiday\n")

	var shifts, absences int
	seen := make(map[uint]bool)
	for _, date := range view.Dates {
		if !view.InPeriod(date) {
			continue
		}
		if shift := view.Shift(date); shift != nil {
			shifts++
		}
		for _, a := range view.Absences(date) {
			if !seen[a.ID] {
				seen[a.ID] = true
				absences++
			}
		}
	}
	fmt.Fprintf(&b, "\n📋 Shifts: %d  🏖️ Absence requests: %d", shifts, absences)
	return b.String()
}

func (h *Handler) showCalendar(ctx context.Context, message *tgbotapi.Message, args string, mode calendar.ViewMode) {
	chatID := message.Chat.ID
	staff, ok := h.currentStaff(ctx, chatID)
	if !ok {
		return
	}

	anchor, err := parseAnchor(args, h.engine.Today())
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}

	view, err := h.engine.GetCalendarView(ctx, staff.Scope(), anchor, mode)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	msg := tgbotapi.NewMessage(chatID, calendarText(view, false))
	msg.ReplyMarkup = calendarKeyboard(view, false)
	h.sendMessage(msg)
}

func (h *Handler) navigateCalendar(ctx context.Context, callback *tgbotapi.CallbackQuery, cb callbackData) {
	chatID := callback.Message.Chat.ID
	staff, ok := h.currentStaff(ctx, chatID)
	if !ok {
		return
	}

	view, err := h.engine.GetCalendarView(ctx, staff.Scope(), cb.date, cb.mode)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	picker := cb.kind == callbackPicker
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, callback.Message.MessageID,
		calendarText(view, picker), calendarKeyboard(view, picker))
	h.sendMessage(edit)
}

func (h *Handler) showDay(ctx context.Context, chatID int64, date time.Time) {
	staff, ok := h.currentStaff(ctx, chatID)
	if !ok {
		return
	}

	text, err := h.dayText(ctx, staff, date)
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	h.send(chatID, text)
}

func (h *Handler) dayText(ctx context.Context, staff *models.Staff, date time.Time) (string, error) {
	shift, err := h.engine.ShiftOn(ctx, staff.Scope(), date)
	if err != nil {
		return "", err
	}
	absences, err := h.engine.AbsencesOn(ctx, staff.Scope(), date)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s\n\n", date.Format("Monday, 02 January 2006"))
	b.WriteString(service.FormatShift(shift))
	if len(absences) > 0 {
		b.WriteString("\n\n")
		for _, a := range absences {
			b.WriteString(service.FormatAbsence(a))
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func (h *Handler) exportCalendar(ctx context.Context, message *tgbotapi.Message, args string) {
	chatID := message.Chat.ID
	staff, ok := h.currentStaff(ctx, chatID)
	if !ok {
		return
	}

	anchor, err := parseAnchor(args, h.engine.Today())
	if err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}

	view, err := h.engine.GetCalendarView(ctx, staff.Scope(), anchor, calendar.ViewMonth)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	f, err := roster.Build(view)
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	defer func() { _ = f.Close() }()

	buf, err := f.WriteToBuffer()
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: roster.FileName(view), Bytes: buf.Bytes()})
	doc.Caption = "📊 " + periodTitle(view)
	h.sendMessage(doc)
}

// parseAnchor reads an optional YYYY-MM, YYYY-MM-DD or DD.MM.YYYY argument.
func parseAnchor(args string, today time.Time) (time.Time, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return today, nil
	}
	if t, err := time.Parse("2006-01", args); err == nil {
		return t, nil
	}
	return parseDate(args, today)
}

// parseDate accepts YYYY-MM-DD, DD.MM.YYYY and DD.MM (current year).
func parseDate(value string, today time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{calendar.DateLayout, "02.01.2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse("02.01", value); err == nil {
		return time.Date(today.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD or DD.MM.YYYY", value)
}

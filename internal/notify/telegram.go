package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI used to post messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts a short summary of each event to a manager chat.
type Telegram struct {
	sender Sender
	chatID int64
}

func NewTelegram(sender Sender, chatID int64) *Telegram {
	return &Telegram{sender: sender, chatID: chatID}
}

func (t *Telegram) Notify(_ context.Context, event Event) error {
	msg := tgbotapi.NewMessage(t.chatID, Describe(event))
	if _, err := t.sender.Send(msg); err != nil {
		return fmt.Errorf("telegram notify: %w", err)
	}
	return nil
}

// Describe renders an event as one human-readable line.
func Describe(event Event) string {
	var what string
	switch event.Type {
	case EventAbsenceSubmitted:
		what = "📨 New absence request"
	case EventAbsenceNotesUpdated:
		what = "📝 Absence request notes updated"
	case EventAbsenceStatusChanged:
		what = "🔄 Absence request " + event.Status
	case EventAbsenceDeleted:
		what = "🗑️ Absence request deleted"
	case EventShiftClockedIn:
		what = "🟢 Clocked in"
	case EventShiftClockedOut:
		what = "✅ Clocked out"
	case EventShiftConfirmed:
		what = "☑️ Shift confirmed"
	default:
		what = string(event.Type)
	}

	dates := ""
	switch len(event.Dates) {
	case 0:
	case 1:
		dates = " on " + event.Dates[0]
	default:
		dates = fmt.Sprintf(" for %s – %s", event.Dates[0], event.Dates[len(event.Dates)-1])
	}

	return strings.TrimSpace(fmt.Sprintf("%s #%d (staff %d)%s", what, event.RequestOrScheduleID, event.StaffID, dates))
}

package handler

import (
	"context"
	"fmt"
	"strings"

	"hotel-shift-bot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	stateAwaitingFirstName = "awaiting_first_name"
	stateAwaitingLastName  = "awaiting_last_name:"
)

// startRegistration asks for the first name, then the last name.
func (h *Handler) startRegistration(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	staff, err := h.staffService.ByChatID(ctx, chatID)
	if err != nil {
		h.replyError(chatID, err)
		return
	}
	if staff != nil {
		h.send(chatID, "❌ You already have a profile.\nUse /myprofile to see it.")
		return
	}

	h.setState(chatID, stateAwaitingFirstName)
	h.send(chatID, "👤 Registration\n\nStep 1 of 2:\n✏️ Please send your first name:")
}

func (h *Handler) handleProfileState(ctx context.Context, message *tgbotapi.Message, state string) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	if state == stateAwaitingFirstName {
		if text == "" {
			h.send(chatID, "✏️ The first name cannot be empty, please send it again:")
			return
		}
		h.setState(chatID, stateAwaitingLastName+text)
		h.send(chatID, fmt.Sprintf("Step 2 of 2:\n✅ First name saved: %s\n✏️ Now send your last name (or \"-\" to skip):", text))
		return
	}

	firstName := strings.TrimPrefix(state, stateAwaitingLastName)
	lastName := text
	if lastName == "-" {
		lastName = ""
	}

	username := ""
	if message.From != nil {
		username = message.From.UserName
	}

	h.clearState(chatID)

	staff, err := h.staffService.Register(ctx, chatID, username, firstName, lastName)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.send(chatID, fmt.Sprintf("🎉 Profile created!\n\n%s\n\nUse /calendar to see your schedule.", service.FormatProfile(staff)))
}

func (h *Handler) showProfile(ctx context.Context, message *tgbotapi.Message) {
	staff, ok := h.currentStaff(ctx, message.Chat.ID)
	if !ok {
		return
	}
	h.send(message.Chat.ID, service.FormatProfile(staff))
}

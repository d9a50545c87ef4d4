package handler

import (
	"context"
	"strings"
	"sync"
	"time"

	"hotel-shift-bot/internal/apperr"
	"hotel-shift-bot/internal/models"
	"hotel-shift-bot/internal/service"
	"hotel-shift-bot/pkg/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	bot          telegram.Bot
	engine       *service.SchedulingService
	staffService *service.StaffService
	timeout      time.Duration
	logger       *logrus.Logger

	mu         sync.Mutex
	userStates map[int64]string
}

func NewHandler(
	bot telegram.Bot,
	engine *service.SchedulingService,
	staffService *service.StaffService,
	timeout time.Duration,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		bot:          bot,
		engine:       engine,
		staffService: staffService,
		timeout:      timeout,
		logger:       logger,
		userStates:   make(map[int64]string),
	}
}

// HandleUpdates processes updates until the channel closes or ctx is done.
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, update)
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	if update.CallbackQuery != nil {
		h.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil {
		return
	}
	h.handleMessage(ctx, update.Message)
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	username := ""
	if message.From != nil {
		username = message.From.UserName
	}
	h.logger.WithFields(logrus.Fields{
		"chat_id":  message.Chat.ID,
		"username": username,
	}).Infof("Message: %s", message.Text)

	if message.IsCommand() {
		// A new command abandons any unfinished dialog.
		h.clearState(message.Chat.ID)
		h.handleCommand(ctx, message)
		return
	}

	if state, ok := h.state(message.Chat.ID); ok {
		h.handleState(ctx, message, state)
		return
	}

	h.send(message.Chat.ID, "🤖 Use /help to see what I can do.")
}

func (h *Handler) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	answer := ""

	cb, err := parseCallback(callback.Data)
	if err != nil {
		h.logger.WithError(err).WithField("data", callback.Data).Warn("Unknown callback")
		h.answer(callback.ID, "")
		return
	}

	switch cb.kind {
	case callbackNoop:
	case callbackView, callbackPicker:
		h.navigateCalendar(ctx, callback, cb)
	case callbackDay:
		h.showDay(ctx, chatID, cb.date)
	case callbackSelect:
		answer = h.pressDate(ctx, callback, cb.date)
	case callbackAbsenceType:
		h.submitSelectedAbsence(ctx, callback, cb.absenceType)
	case callbackAbsenceCancel:
		h.cancelAbsencePicker(ctx, callback)
	}

	h.answer(callback.ID, answer)
}

func (h *Handler) handleState(ctx context.Context, message *tgbotapi.Message, state string) {
	switch {
	case state == stateAwaitingFirstName || strings.HasPrefix(state, stateAwaitingLastName):
		h.handleProfileState(ctx, message, state)
	case strings.HasPrefix(state, stateAbsenceRange):
		h.send(message.Chat.ID, "👆 Pick the absence type with the buttons above, or /absence to start over.")
	default:
		h.clearState(message.Chat.ID)
	}
}

// currentStaff loads the sender's staff record, asking unknown chats to register.
func (h *Handler) currentStaff(ctx context.Context, chatID int64) (*models.Staff, bool) {
	staff, err := h.staffService.ByChatID(ctx, chatID)
	if err != nil {
		h.replyError(chatID, err)
		return nil, false
	}
	if staff == nil {
		h.send(chatID, "❌ You are not registered yet.\nUse /register to create your profile.")
		return nil, false
	}
	return staff, true
}

func (h *Handler) currentManager(ctx context.Context, chatID int64) (*models.Staff, bool) {
	staff, ok := h.currentStaff(ctx, chatID)
	if !ok {
		return nil, false
	}
	if !staff.IsManager() {
		h.send(chatID, "❌ This command is available to managers only.")
		return nil, false
	}
	return staff, true
}

func (h *Handler) state(chatID int64) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	state, ok := h.userStates[chatID]
	return state, ok
}

func (h *Handler) setState(chatID int64, state string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.userStates[chatID] = state
}

func (h *Handler) clearState(chatID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.userStates, chatID)
}

func (h *Handler) send(chatID int64, text string) {
	h.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) sendMessage(msg tgbotapi.Chattable) {
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.WithError(err).Error("Failed to send message")
	}
}

func (h *Handler) answer(callbackID, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		h.logger.WithError(err).Debug("Failed to answer callback")
	}
}

// replyError reports err to the chat. Business-rule rejections are expected and are
// not logged as errors.
func (h *Handler) replyError(chatID int64, err error) {
	entry := h.logger.WithError(err).WithField("chat_id", chatID)
	if apperr.IsBusinessRule(err) {
		entry.Info("Request rejected")
	} else {
		entry.Error("Request failed")
	}
	h.send(chatID, "❌ "+apperr.Message(err))
}

// Package telegram delivers assignment notifications as Telegram messages.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// Sender is the part of *tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends a message to the assignee's linked Telegram chat.
type Notifier struct {
	bot    Sender
	users  store.UserStore
	logger *slog.Logger
}

// NewBot authenticates against the Bot API with token.
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return bot, nil
}

// New creates a Notifier sending through bot.
func New(bot Sender, users store.UserStore, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		bot:    bot,
		users:  users,
		logger: logger.With("component", "telegram_notifier"),
	}
}

// Notify implements notify.Notifier. Unknown users and users without a
// linked chat are skipped.
func (n *Notifier) Notify(ctx context.Context, userID uuid.UUID, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, n.logger)

	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Warn("telegram notification skipped, user not found", "user_id", userID, "task_id", task.ID)
			return nil
		}
		return fmt.Errorf("failed to look up telegram recipient: %w", err)
	}

	if user.TelegramChatID == nil {
		log.Debug("telegram notification skipped, no chat linked", "user_id", userID)
		return nil
	}

	msg := tgbotapi.NewMessage(*user.TelegramChatID, domain.AssignmentMessage(task))
	if _, err := n.bot.Send(msg); err != nil {
		log.Error("failed to send telegram message",
			"error", redact.Error(err),
			"user_id", userID,
			"task_id", task.ID)
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	log.Debug("telegram notification sent", "user_id", userID, "task_id", task.ID)
	return nil
}

package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/mocks"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.sent = append(b.sent, c)
	return tgbotapi.Message{}, b.err
}

func newTask(t *testing.T) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(uuid.New(), domain.TaskFields{Title: "Review budget"})
	require.NoError(t, err)
	return task
}

func TestNotifier_SendsToLinkedChat(t *testing.T) {
	ctx := context.Background()
	task := newTask(t)
	chat := int64(987654)
	user := &domain.User{ID: uuid.New(), Email: "a@example.com", TelegramChatID: &chat}

	users := new(mocks.MockUserStore)
	users.On("GetByID", ctx, user.ID).Return(user, nil)
	bot := &fakeBot{}

	require.NoError(t, New(bot, users, nil).Notify(ctx, user.ID, task))

	require.Len(t, bot.sent, 1)
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, chat, msg.ChatID)
	assert.Equal(t, "You have been assigned a new task: Review budget", msg.Text)
}

func TestNotifier_SkipsUserWithoutChat(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: uuid.New(), Email: "b@example.com"}

	users := new(mocks.MockUserStore)
	users.On("GetByID", ctx, user.ID).Return(user, nil)
	bot := &fakeBot{}

	require.NoError(t, New(bot, users, nil).Notify(ctx, user.ID, newTask(t)))
	assert.Empty(t, bot.sent)
}

func TestNotifier_SkipsUnknownUser(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	users := new(mocks.MockUserStore)
	users.On("GetByID", ctx, id).Return(nil, store.ErrUserNotFound)
	bot := &fakeBot{}

	require.NoError(t, New(bot, users, nil).Notify(ctx, id, newTask(t)))
	assert.Empty(t, bot.sent)
}

func TestNotifier_Errors(t *testing.T) {
	ctx := context.Background()
	chat := int64(1)
	user := &domain.User{ID: uuid.New(), Email: "c@example.com", TelegramChatID: &chat}

	t.Run("lookup failure", func(t *testing.T) {
		lookupErr := errors.New("db down")
		users := new(mocks.MockUserStore)
		users.On("GetByID", ctx, user.ID).Return(nil, lookupErr)

		err := New(&fakeBot{}, users, nil).Notify(ctx, user.ID, newTask(t))
		assert.ErrorIs(t, err, lookupErr)
	})

	t.Run("send failure", func(t *testing.T) {
		sendErr := errors.New("Forbidden: bot was blocked by the user")
		users := new(mocks.MockUserStore)
		users.On("GetByID", ctx, user.ID).Return(user, nil)

		err := New(&fakeBot{err: sendErr}, users, nil).Notify(ctx, user.ID, newTask(t))
		assert.ErrorIs(t, err, sendErr)
	})
}

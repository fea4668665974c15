package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/mocks"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func stubEnvironment(t *testing.T, st store.Store) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, URL: ":memory:"},
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret-that-is-at-least-32-characters",
			TokenLifetimeMinutes: 60,
		},
	}

	origLoad, origOpen := loadConfig, openStore
	loadConfig = func(string) (*config.Config, error) { return cfg, nil }
	openStore = func(context.Context, config.DatabaseConfig, *slog.Logger) (store.Store, error) { return st, nil }
	t.Cleanup(func() {
		loadConfig, openStore = origLoad, origOpen
	})

	return cfg
}

func TestRun_Usage(t *testing.T) {
	assert.ErrorIs(t, run(context.Background(), nil, &bytes.Buffer{}), errUsage)
	assert.ErrorIs(t, run(context.Background(), []string{"delete-everything"}, &bytes.Buffer{}), errUsage)
}

func TestCreateUser(t *testing.T) {
	users := new(mocks.MockUserStore)
	st := mocks.NewMockStore(nil, users, nil)
	stubEnvironment(t, st)

	var created *domain.User
	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.User) }).
		Return(nil)

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"create-user", "-email", "ana@example.com", "-name", "Ana", "-telegram-chat-id", "4242",
	}, &out)
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, "ana@example.com", created.Email)
	assert.Equal(t, "Ana", created.Name)
	require.NotNil(t, created.TelegramChatID)
	assert.Equal(t, int64(4242), *created.TelegramChatID)
	assert.Equal(t, created.ID.String(), strings.TrimSpace(out.String()))
	assert.True(t, st.Closed)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	users := new(mocks.MockUserStore)
	stubEnvironment(t, mocks.NewMockStore(nil, users, nil))
	users.On("Create", mock.Anything, mock.Anything).Return(store.ErrEmailExists)

	err := run(context.Background(), []string{"create-user", "-email", "ana@example.com"}, &bytes.Buffer{})

	assert.ErrorContains(t, err, "already exists")
}

func TestCreateUser_InvalidEmail(t *testing.T) {
	stubEnvironment(t, mocks.NewMockStore(nil, nil, nil))

	err := run(context.Background(), []string{"create-user", "-email", "not-an-email"}, &bytes.Buffer{})

	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestToken(t *testing.T) {
	cfg := stubEnvironment(t, mocks.NewMockStore(nil, nil, nil))
	userID := uuid.New()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"token", "-user", userID.String()}, &out))

	jwtService, err := auth.NewJWTService(cfg.Auth)
	require.NoError(t, err)
	claims, err := jwtService.ValidateToken(context.Background(), strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestToken_InvalidUser(t *testing.T) {
	stubEnvironment(t, mocks.NewMockStore(nil, nil, nil))

	err := run(context.Background(), []string{"token", "-user", "nope"}, &bytes.Buffer{})

	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

package firebaseapp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Emulator(t *testing.T) {
	t.Setenv(EmulatorHostEnv, "localhost:8081")

	app, err := New(context.Background(), "taskboard-local", "")
	require.NoError(t, err)
	assert.NotNil(t, app)
}

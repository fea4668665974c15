package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestRespondWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	RespondWithJSON(rec, req, http.StatusCreated, map[string]string{"title": "A"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"title":"A"}`, rec.Body.String())
}

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks/1", nil)
	req = req.WithContext(SetTraceID(req.Context()))

	RespondWithError(rec, req, http.StatusNotFound, "Task not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Task not found", body["message"])
	assert.Equal(t, GetTraceID(req.Context()), body["traceId"])
	assert.NotContains(t, body, "error")
}

func TestRespondWithError_NoTraceID(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithError(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusForbidden, "nope")

	body := decodeError(t, rec)
	assert.NotContains(t, body, "traceId")
}

func TestRespondWithErrorAndLog(t *testing.T) {
	cause := errors.New("dial tcp db.internal:5432: connection refused")

	t.Run("detail is redacted when requested", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)

		RespondWithErrorAndLog(rec, req, http.StatusInternalServerError, "Task creation failed", cause, WithErrorDetail())

		body := decodeError(t, rec)
		assert.Equal(t, "Task creation failed", body["message"])
		require.Contains(t, body, "error")
		assert.NotContains(t, body["error"], "db.internal")
	})

	t.Run("detail is omitted by default", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)

		RespondWithErrorAndLog(rec, req, http.StatusInternalServerError, "Server error", cause)

		assert.NotContains(t, decodeError(t, rec), "error")
	})

	t.Run("log level follows status", func(t *testing.T) {
		ctx, buf := logger.NewLogCaptureContext(t)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		RespondWithErrorAndLog(rec, req, http.StatusServiceUnavailable, "down", cause)

		entries, err := buf.Entries()
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		assert.Equal(t, "ERROR", entries[len(entries)-1]["level"])
	})

	t.Run("elevated 4xx logs at warn", func(t *testing.T) {
		ctx, buf := logger.NewLogCaptureContext(t)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		RespondWithErrorAndLog(rec, req, http.StatusUnauthorized, "Invalid token", cause, WithElevatedLogLevel())

		entries, err := buf.Entries()
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		assert.Equal(t, "WARN", entries[len(entries)-1]["level"])
	})
}

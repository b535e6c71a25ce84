package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecocollect-backend/internal/dispatch"
	"ecocollect-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestRespondEngineError_Conflict(t *testing.T) {
	rec := httptest.NewRecorder()
	respondEngineError(rec, &dispatch.ConflictError{Reason: dispatch.ReasonPickupDateOverlap})

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "pickup date overlap")
}

func TestRespondEngineError_Auth(t *testing.T) {
	rec := httptest.NewRecorder()
	respondEngineError(rec, &dispatch.AuthError{Message: "not authorized to update this task"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "not authorized to update this task", body["error"])
}

func TestRespondEngineError_State(t *testing.T) {
	rec := httptest.NewRecorder()
	respondEngineError(rec, &dispatch.StateError{Current: models.StatusOnTheWay, Message: "cannot reschedule"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Contains(t, body["error"], "cannot reschedule")
}

func TestRespondEngineError_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	respondEngineError(rec, &dispatch.NotFoundError{Resource: "task", ID: "t-1"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "task not found: t-1", body["error"])
}

func TestRespondEngineError_Unknown(t *testing.T) {
	rec := httptest.NewRecorder()
	respondEngineError(rec, errors.New("connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "Internal server error", body["error"])
}

// Wrapped engine errors still map to their status.
func TestRespondEngineError_Wrapped(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := fmt.Errorf("assigning: %w", &dispatch.ConflictError{Reason: dispatch.ReasonActiveComplaint})
	respondEngineError(rec, wrapped)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

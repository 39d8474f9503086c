package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, map[string]string{"session_id": "s1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"session_id":"s1"}`, rec.Body.String())
}

func TestJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusAccepted, nil)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusConflict, "another answer is being processed")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"Conflict","message":"another answer is being processed"}`, rec.Body.String())
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, Attachment(rec, "application/pdf", "medwatch-report-s1.pdf", []byte("%PDF")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="medwatch-report-s1.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "4", rec.Header().Get("Content-Length"))
	assert.Equal(t, "%PDF", rec.Body.String())
}

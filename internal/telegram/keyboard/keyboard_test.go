package keyboard

import (
	"strings"
	"testing"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	data, err := ParseCallback(EncodeCallback(PrefixDownload, "pdf"))
	require.NoError(t, err)
	assert.Equal(t, &CallbackData{Action: PrefixDownload, Value: "pdf"}, data)

	data, err = ParseCallback("confirm:cancel")
	require.NoError(t, err)
	assert.Equal(t, ConfirmCancel, data.Value)

	for _, bad := range []string{"", "action", "action:", ":start", "project:42", "dl:" + strings.Repeat("x", 64)} {
		_, err := ParseCallback(bad)
		assert.ErrorIs(t, err, ErrBadCallback, bad)
	}
}

func TestKeyboardForStatus(t *testing.T) {
	b := NewBuilder()

	done := b.KeyboardForStatus(entity.SessionStatusQuestionsDone)
	require.NotNil(t, done)
	require.Len(t, done.InlineKeyboard, 2)
	assert.Equal(t, "action:review", *done.InlineKeyboard[0][0].CallbackData)

	reviewed := b.KeyboardForStatus(entity.SessionStatusReviewed)
	require.NotNil(t, reviewed)
	assert.Equal(t, "action:submit", *reviewed.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "dl:pdf", *reviewed.InlineKeyboard[2][0].CallbackData)

	assert.Nil(t, b.KeyboardForStatus(entity.SessionStatusInProgress))
}

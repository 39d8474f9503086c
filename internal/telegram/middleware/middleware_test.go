package middleware

import (
	"testing"
	"time"

	"github.com/futig/medwatch-backend/internal/pkg/metrics"
	"github.com/futig/medwatch-backend/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingSender struct {
	texts []string
}

func (s *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		s.texts = append(s.texts, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID},
			Chat: &tgbotapi.Chat{ID: userID},
			Text: text,
		},
	}
}

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	sender := &recordingSender{}
	rl := NewRateLimiterMiddleware(60, 2, zaptest.NewLogger(t), sender)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	handled := 0
	next := func(tgbotapi.Update) { handled++ }

	for i := 0; i < 4; i++ {
		rl.Handle(textUpdate(1, "answer"), next)
	}
	assert.Equal(t, 2, handled)
	require.Len(t, sender.texts, 1)
	assert.Contains(t, sender.texts[0], "Too many messages")

	// Other users have their own bucket
	rl.Handle(textUpdate(2, "answer"), next)
	assert.Equal(t, 3, handled)

	// One token per second at 60 per minute
	now = now.Add(time.Second)
	rl.Handle(textUpdate(1, "answer"), next)
	assert.Equal(t, 4, handled)
}

func TestRecovery_SendsGenericError(t *testing.T) {
	sender := &recordingSender{}
	m := NewRecoveryMiddleware(zaptest.NewLogger(t), sender)

	assert.NotPanics(t, func() {
		m.Handle(textUpdate(1, "boom"), func(tgbotapi.Update) { panic("handler bug") })
	})
	assert.Equal(t, []string{render.ErrGeneric}, sender.texts)
}

func TestLogging_CountsUpdates(t *testing.T) {
	m := NewLoggingMiddleware(zaptest.NewLogger(t))
	counter := metrics.TelegramUpdates.WithLabelValues("text", "processed")
	before := testutil.ToFloat64(counter)

	called := false
	m.Handle(textUpdate(1, "hello"), func(tgbotapi.Update) { called = true })

	assert.True(t, called)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestUpdateType(t *testing.T) {
	assert.Equal(t, "text", updateType(textUpdate(1, "hi")))
	assert.Equal(t, "callback", updateType(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{}}))
	assert.Equal(t, "other", updateType(tgbotapi.Update{}))

	voice := textUpdate(1, "")
	voice.Message.Voice = &tgbotapi.Voice{FileID: "f"}
	assert.Equal(t, "voice", updateType(voice))
}

func TestRateLimiter_WarningsAreThrottled(t *testing.T) {
	sender := &recordingSender{}
	rl := NewRateLimiterMiddleware(1, 1, zaptest.NewLogger(t), sender)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	next := func(tgbotapi.Update) {}
	rl.Handle(textUpdate(1, "a"), next)
	rl.Handle(textUpdate(1, "b"), next)
	rl.Handle(textUpdate(1, "c"), next)
	require.Len(t, sender.texts, 1)

	now = now.Add(31 * time.Second)
	rl.Handle(textUpdate(1, "d"), next)
	require.Len(t, sender.texts, 2)
	assert.Contains(t, sender.texts[1], "30 seconds")
}

func TestRateLimiter_PassesUpdatesWithoutOrigin(t *testing.T) {
	rl := NewRateLimiterMiddleware(1, 1, zaptest.NewLogger(t), &recordingSender{})

	handled := 0
	inline := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{From: &tgbotapi.User{ID: 1}}}
	for i := 0; i < 3; i++ {
		rl.Handle(inline, func(tgbotapi.Update) { handled++ })
	}
	assert.Equal(t, 3, handled)
}

func TestOriginOf(t *testing.T) {
	src, ok := originOf(textUpdate(7, "hi"))
	require.True(t, ok)
	assert.Equal(t, origin{userID: 7, chatID: 7}, src)

	cb := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		From:    &tgbotapi.User{ID: 3},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 30}},
	}}
	src, ok = originOf(cb)
	require.True(t, ok)
	assert.Equal(t, origin{userID: 3, chatID: 30}, src)

	_, ok = originOf(tgbotapi.Update{})
	assert.False(t, ok)
}

type tagMiddleware struct {
	tag   string
	trace *[]string
}

func (m tagMiddleware) Handle(u tgbotapi.Update, next func(tgbotapi.Update)) {
	*m.trace = append(*m.trace, m.tag)
	next(u)
}

func TestChain_Order(t *testing.T) {
	var trace []string
	handler := Chain(func(tgbotapi.Update) { trace = append(trace, "handler") },
		tagMiddleware{"outer", &trace},
		tagMiddleware{"inner", &trace},
	)

	handler(tgbotapi.Update{})
	assert.Equal(t, []string{"outer", "inner", "handler"}, trace)
}

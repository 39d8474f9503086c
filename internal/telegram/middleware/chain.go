package middleware

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Middleware wraps update handling; it calls next to continue the chain.
type Middleware interface {
	Handle(update tgbotapi.Update, next func(tgbotapi.Update))
}

// Chain returns final wrapped by mws, the first middleware being outermost.
func Chain(final func(tgbotapi.Update), mws ...Middleware) func(tgbotapi.Update) {
	handler := final
	for i := len(mws) - 1; i >= 0; i-- {
		mw, next := mws[i], handler
		handler = func(u tgbotapi.Update) { mw.Handle(u, next) }
	}
	return handler
}

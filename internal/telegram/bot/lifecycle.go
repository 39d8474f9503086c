package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Start begins receiving updates by webhook or long polling and returns.
func (b *Bot) Start(ctx context.Context) error {
	b.baseCtx = ctxzap.ToContext(context.WithoutCancel(ctx), b.logger)

	var err error
	if b.cfg.UseWebhook {
		err = b.startWebhook()
	} else {
		err = b.startPolling()
	}
	if err != nil {
		return err
	}

	go b.processUpdates(ctx)
	return nil
}

func (b *Bot) startPolling() error {
	// A webhook left by another deployment would swallow getUpdates
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		b.logger.Warn("failed to delete webhook", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	b.updates = b.api.GetUpdatesChan(u)

	b.logger.Info("telegram bot polling for updates", zap.Int("timeout_seconds", u.Timeout))
	return nil
}

func (b *Bot) startWebhook() error {
	wh, err := tgbotapi.NewWebhook(b.cfg.WebhookURL)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("register webhook: %w", err)
	}

	// ListenForWebhook registers its handler on the default mux; the token in
	// the path keeps the endpoint unguessable.
	b.updates = b.api.ListenForWebhook("/" + b.api.Token)
	b.webhookSrv = &http.Server{
		Addr:              b.cfg.WebhookListenAddr,
		Handler:           http.DefaultServeMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := b.webhookSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.logger.Error("webhook server error", zap.Error(err))
		}
	}()

	b.logger.Info("telegram bot listening for webhook updates", zap.String("addr", b.cfg.WebhookListenAddr))
	return nil
}

// Stop stops intake and waits up to ShutdownTimeout for running handlers.
func (b *Bot) Stop() error {
	timeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	b.stopOnce.Do(func() { close(b.stop) })

	switch {
	case b.webhookSrv != nil:
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := b.webhookSrv.Shutdown(ctx); err != nil {
			b.logger.Warn("webhook server shutdown error", zap.Error(err))
		}
	case b.api != nil:
		b.api.StopReceivingUpdates()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("telegram bot stopped")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("handlers still running after %s", timeout)
	}
}

// processUpdates fans updates out to at most MaxConcurrentUsers goroutines.
func (b *Bot) processUpdates(ctx context.Context) {
	sem := make(chan struct{}, max(b.cfg.MaxConcurrentUsers, 1))

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.stop:
			return
		case update, ok := <-b.updates:
			if !ok {
				b.logger.Info("updates channel closed")
				return
			}

			sem <- struct{}{}
			b.wg.Add(1)
			go func() {
				defer func() {
					<-sem
					b.wg.Done()
				}()
				b.dispatch(update)
			}()
		}
	}
}

// dispatch runs the pipeline with the sender's stripe locked, so two quick
// messages from one user are answered in order instead of racing for the
// same questionnaire turn.
func (b *Bot) dispatch(update tgbotapi.Update) {
	if userID, ok := senderID(update); ok {
		lock := &b.userLocks[uint64(userID)%userLockStripes]
		lock.Lock()
		defer lock.Unlock()
	}
	b.pipeline(update)
}

func senderID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID, true
	default:
		return 0, false
	}
}

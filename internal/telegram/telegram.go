package telegram

import (
	"context"
	"fmt"

	"github.com/futig/medwatch-backend/internal/config"
	"github.com/futig/medwatch-backend/internal/telegram/bot"
	"github.com/futig/medwatch-backend/internal/telegram/handlers"
	"github.com/futig/medwatch-backend/internal/telegram/state"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot initializes the telegram bot with all dependencies
func NewBot(
	cfg *config.TelegramConfig,
	storage state.Storage,
	reportUC handlers.ReportUsecase,
	logger *zap.Logger,
) (Bot, error) {
	stateManager := state.NewManager(storage)

	b, err := bot.New(cfg, stateManager, reportUC, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	if err := registerHandlers(b, logger); err != nil {
		return nil, fmt.Errorf("register handlers: %w", err)
	}

	logger.Info("telegram bot initialized")

	return b, nil
}

// registerHandlers wires one handler per conversation phase
func registerHandlers(b *bot.Bot, logger *zap.Logger) error {
	api := b.GetAPI()
	stateManager := b.GetStateManager()
	reportUC := b.GetReportUsecase()
	kb := b.GetKeyboard()

	phases := []handlers.Handler{
		// Button clicks in any phase
		handlers.NewCallbackHandler(api, stateManager, reportUC, kb, logger),
		// Text and voice answers while the questionnaire runs
		handlers.NewAnswerHandler(api, stateManager, reportUC, kb, handlers.NewVoiceLoader(b.GetFileAPI()), logger),
		// Free text after the last question
		handlers.NewFinishedHandler(api, stateManager, reportUC, kb, logger),
	}
	for _, h := range phases {
		if err := b.RegisterHandler(h); err != nil {
			return err
		}
	}

	logger.Info("telegram handlers registered", zap.Int("handler_count", len(phases)))
	return nil
}

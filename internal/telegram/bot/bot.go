package bot

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/futig/medwatch-backend/internal/config"
	"github.com/futig/medwatch-backend/internal/telegram/handlers"
	"github.com/futig/medwatch-backend/internal/telegram/keyboard"
	"github.com/futig/medwatch-backend/internal/telegram/middleware"
	"github.com/futig/medwatch-backend/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// userLockStripes bounds the locks that serialize updates of one user.
const userLockStripes = 64

// Bot receives Telegram updates and routes them to the handler registered
// for the status of the user's report session.
type Bot struct {
	api          *tgbotapi.BotAPI
	client       handlers.BotAPI
	cfg          *config.TelegramConfig
	stateManager *state.Manager
	handlers     map[string]handlers.Handler
	reportUC     handlers.ReportUsecase
	keyboard     *keyboard.Builder
	sender       *handlers.MessageSender
	logger       *zap.Logger

	// baseCtx carries the logger into every update; it is not cancelled on
	// shutdown so in-flight turns can finish.
	baseCtx   context.Context
	pipeline  func(tgbotapi.Update)
	userLocks [userLockStripes]sync.Mutex

	updates    tgbotapi.UpdatesChannel
	webhookSrv *http.Server
	stop       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// New authorizes the token against the Bot API
func New(
	cfg *config.TelegramConfig,
	stateManager *state.Manager,
	reportUC handlers.ReportUsecase,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	b := newBot(api, cfg, stateManager, reportUC, logger)
	b.api = api
	return b, nil
}

func newBot(
	client handlers.BotAPI,
	cfg *config.TelegramConfig,
	stateManager *state.Manager,
	reportUC handlers.ReportUsecase,
	logger *zap.Logger,
) *Bot {
	b := &Bot{
		client:       client,
		cfg:          cfg,
		stateManager: stateManager,
		reportUC:     reportUC,
		keyboard:     keyboard.NewBuilder(),
		sender:       handlers.NewMessageSender(client, logger),
		logger:       logger,
		handlers:     make(map[string]handlers.Handler),
		baseCtx:      ctxzap.ToContext(context.Background(), logger),
		stop:         make(chan struct{}),
	}

	// Rate limiting runs first so dropped updates are neither logged as
	// processed nor allowed to panic.
	b.pipeline = middleware.Chain(b.handleUpdate,
		middleware.NewRateLimiterMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst, logger, client),
		middleware.NewLoggingMiddleware(logger),
		middleware.NewRecoveryMiddleware(logger, client),
	)
	return b
}

// RegisterHandler routes every state the handler declares to it
func (b *Bot) RegisterHandler(handler handlers.Handler) error {
	for _, s := range handler.States() {
		if !handlers.IsValidState(s) {
			return fmt.Errorf("handler declares unknown state %q", s)
		}
		if _, taken := b.handlers[s]; taken {
			return fmt.Errorf("state %q already has a handler", s)
		}
		b.handlers[s] = handler
		b.logger.Debug("handler registered", zap.String("state", s))
	}
	return nil
}

// GetAPI returns the Bot API client handlers talk to
func (b *Bot) GetAPI() handlers.BotAPI {
	return b.client
}

// GetFileAPI returns the authorized API, needed to resolve voice files
func (b *Bot) GetFileAPI() *tgbotapi.BotAPI {
	return b.api
}

func (b *Bot) GetStateManager() *state.Manager {
	return b.stateManager
}

func (b *Bot) GetKeyboard() *keyboard.Builder {
	return b.keyboard
}

func (b *Bot) GetReportUsecase() handlers.ReportUsecase {
	return b.reportUC
}

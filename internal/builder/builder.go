package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/medwatch-backend/internal/api"
	reportapi "github.com/futig/medwatch-backend/internal/api/report"
	"github.com/futig/medwatch-backend/internal/config"
	"github.com/futig/medwatch-backend/internal/guard"
	"github.com/futig/medwatch-backend/internal/integration/asr"
	"github.com/futig/medwatch-backend/internal/integration/callback"
	"github.com/futig/medwatch-backend/internal/integration/llm"
	"github.com/futig/medwatch-backend/internal/integration/products"
	"github.com/futig/medwatch-backend/internal/pkg/logger"
	"github.com/futig/medwatch-backend/internal/pkg/validator"
	"github.com/futig/medwatch-backend/internal/repository"
	"github.com/futig/medwatch-backend/internal/telegram"
	"github.com/futig/medwatch-backend/internal/usecase/report"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// core holds the dependencies shared by the HTTP server and the Telegram bot
type core struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *pgxpool.Pool
	redis    *redis.Client
	reportUC *report.ReportUsecase
}

func (c *core) close() {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.logger.Warn("Redis close error", zap.Error(err))
		}
	}
	if c.db != nil {
		c.db.Close()
	}
}

type redisPinger struct{ client *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// dependencies lists the stores the readiness check pings
func (c *core) dependencies() map[string]api.Pinger {
	deps := map[string]api.Pinger{"postgres": c.db}
	if c.redis != nil {
		deps["redis"] = redisPinger{client: c.redis}
	}
	return deps
}

func Build() (*App, error) {
	c, err := buildCore(report.WithChannel(report.ChannelHTTP))
	if err != nil {
		return nil, err
	}

	// Setup API handlers
	fileValidator := validator.NewValidator(c.cfg.FileUploadCfg)
	reportHandler := reportapi.NewHandler(c.reportUC, fileValidator)
	c.logger.Info("API handlers initialized")

	// A turn can spend the whole correction budget plus an ASR round trip
	requestTimeout := c.cfg.LLMConnectorCfg.CorrectionTimeout + 30*time.Second
	router := api.SetupRouter(reportHandler, c.logger, api.RouterOptions{
		RequestTimeout: requestTimeout,
		Dependencies:   c.dependencies(),
	})
	c.logger.Info("HTTP router configured", zap.Duration("request_timeout", requestTimeout))

	server := &http.Server{
		Addr:         c.cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	c.logger.Info("Application built successfully",
		zap.String("environment", c.cfg.Environment),
	)

	return &App{
		server: server,
		core:   c,
		logger: c.logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot.
// The returned cleanup releases the database and Redis connections.
func BuildTelegramBot() (telegram.Bot, *zap.Logger, func(), error) {
	c, err := buildCore(report.WithChannel(report.ChannelTelegram))
	if err != nil {
		return nil, nil, nil, err
	}

	if c.cfg.TelegramCfg.BotToken == "" {
		c.close()
		return nil, nil, nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required to run the bot")
	}

	telegramStateRepo := repository.NewTelegramStatePostgres(c.db)

	bot, err := telegram.NewBot(&c.cfg.TelegramCfg, telegramStateRepo, c.reportUC, c.logger)
	if err != nil {
		c.close()
		return nil, nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	c.logger.Info("Telegram bot built successfully",
		zap.String("environment", c.cfg.Environment),
	)

	return bot, c.logger, c.close, nil
}

func buildCore(opts ...report.Option) (*core, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	log.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.Int("questions", cfg.Questionnaire.Count()),
	)

	c := &core{cfg: cfg, logger: log}

	// Setup database connection
	c.db, err = setupDatabase(ctx, cfg.DatabaseCfg, log)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	log.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseCfg.URL); err != nil {
		c.close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info("Database migrations completed successfully")

	// Initialize repositories
	sessionRepo := repository.NewSessionPostgres(c.db)
	reportRepo := repository.NewReportPostgres(c.db)
	log.Info("Repositories initialized")

	turnGuard, err := c.setupTurnGuard(ctx)
	if err != nil {
		c.close()
		return nil, fmt.Errorf("setup turn guard: %w", err)
	}

	// Initialize external service connectors (with mock support)
	var llmConnector report.LLMConnector
	var asrConnector report.ASRConnector
	var productsConnector report.ProductsConnector

	if cfg.EnableMocks {
		log.Info("Using mock connectors for external services")
		llmConnector = llm.NewMockConnector(log)
		asrConnector = asr.NewMockConnector(log)
		productsConnector = products.NewMockConnector(log)
	} else {
		log.Info("Using real connectors for external services")
		llmConnector = llm.NewConnector(cfg.LLMConnectorCfg, log)
		asrConnector = asr.NewConnector(cfg.ASRConnectorCfg, log)
		productsConnector = products.NewConnector(cfg.ProductsConnectorCfg, log)
	}

	callbackConnector := callback.NewConnector(cfg.CallbackConnectorCfg, log)

	opts = append(opts, report.WithCallback(callbackConnector))
	c.reportUC = report.NewUsecase(
		sessionRepo,
		reportRepo,
		turnGuard,
		cfg.Questionnaire,
		llmConnector,
		asrConnector,
		productsConnector,
		cfg.LLMConnectorCfg.CorrectionTimeout,
		log,
		opts...,
	)
	log.Info("Use cases initialized")

	return c, nil
}

// setupTurnGuard picks the per-session turn lock backend
func (c *core) setupTurnGuard(ctx context.Context) (guard.TurnGuard, error) {
	guardCfg := c.cfg.TurnGuardCfg

	if guardCfg.Backend != config.TurnGuardRedis {
		c.logger.Info("Using in-memory turn guard", zap.Duration("ttl", guardCfg.TTL))
		return guard.NewMemoryGuard(guardCfg.TTL), nil
	}

	c.redis = redis.NewClient(&redis.Options{
		Addr:     c.cfg.RedisCfg.Addr,
		Password: c.cfg.RedisCfg.Password,
		DB:       c.cfg.RedisCfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.redis.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis at %s: %w", c.cfg.RedisCfg.Addr, err)
	}

	c.logger.Info("Using Redis turn guard",
		zap.String("addr", c.cfg.RedisCfg.Addr),
		zap.Duration("ttl", guardCfg.TTL),
	)

	return guard.NewRedisGuard(c.redis, c.cfg.RedisCfg.Prefix, guardCfg.TTL), nil
}

package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/futig/medwatch-backend/internal/pkg/metrics"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	// Buckets of users who went quiet are evicted after idleBucketTTL.
	idleBucketTTL      = time.Hour
	bucketCleanupEvery = 10 * time.Minute
	warningInterval    = 30 * time.Second
)

// Sender delivers service messages to the chat
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type bucket struct {
	mu            sync.Mutex
	tokens        float64
	lastRefill    time.Time
	warnings      int
	lastWarningAt time.Time
}

// RateLimiterMiddleware drops updates from users that exceed a per-user
// token bucket. The bucket holds burst tokens and refills at perMinute/60
// tokens a second.
type RateLimiterMiddleware struct {
	buckets    *cache.Cache
	createMu   sync.Mutex
	capacity   float64
	refillRate float64
	logger     *zap.Logger
	api        Sender
	now        func() time.Time
}

func NewRateLimiterMiddleware(perMinute, burst int, logger *zap.Logger, api Sender) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		buckets:    cache.New(idleBucketTTL, bucketCleanupEvery),
		capacity:   float64(burst),
		refillRate: float64(perMinute) / 60.0,
		logger:     logger,
		api:        api,
		now:        time.Now,
	}
}

func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	src, ok := originOf(update)
	if !ok {
		next(update)
		return
	}

	allowed, warning := rl.take(src.userID)
	if allowed {
		next(update)
		return
	}

	metrics.TelegramUpdates.WithLabelValues(updateType(update), "rate_limited").Inc()
	rl.logger.Warn("rate limit exceeded", src.fields()...)

	if warning != "" {
		if _, err := rl.api.Send(tgbotapi.NewMessage(src.chatID, warning)); err != nil {
			rl.logger.Error("failed to send rate limit warning", append(src.fields(), zap.Error(err))...)
		}
	}
}

// take spends one token. When the bucket is empty it returns the warning to
// show, or an empty string if the user was warned recently.
func (rl *RateLimiterMiddleware) take(userID int64) (bool, string) {
	b := rl.bucketFor(userID)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := rl.now()
	b.tokens = min(rl.capacity, b.tokens+now.Sub(b.lastRefill).Seconds()*rl.refillRate)
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		b.warnings = 0
		return true, ""
	}

	if now.Sub(b.lastWarningAt) <= warningInterval {
		return false, ""
	}
	b.warnings++
	b.lastWarningAt = now
	return false, rateLimitWarning(b.warnings)
}

// bucketFor returns the user's bucket and pushes its eviction back.
func (rl *RateLimiterMiddleware) bucketFor(userID int64) *bucket {
	key := strconv.FormatInt(userID, 10)

	rl.createMu.Lock()
	defer rl.createMu.Unlock()

	b, ok := rl.buckets.Get(key)
	if !ok {
		b = &bucket{tokens: rl.capacity, lastRefill: rl.now()}
	}
	rl.buckets.SetDefault(key, b)
	return b.(*bucket)
}

func rateLimitWarning(n int) string {
	switch n {
	case 1:
		return "⚠️ Too many messages. Please wait a little."
	case 2:
		return "⚠️ Rate limit exceeded. Please wait about 30 seconds before trying again."
	default:
		return "🛑 You are sending messages too often. Please wait a minute."
	}
}

package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	pkghttp "github.com/futig/medwatch-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	defaultAttempts = 3
	defaultDelay    = 200 * time.Millisecond
	defaultMaxDelay = 2 * time.Second
)

type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"200ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"2s"`
}

// ToRetryOptions builds backoff options that stop on context cancellation and
// only retry network failures and retryable HTTP statuses.
func (rc *RetryConfig) ToRetryOptions(ctx context.Context) []retry.Option {
	attempts := rc.Attempts
	if attempts == 0 {
		attempts = 1
	}

	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(rc.Delay),
		retry.MaxDelay(rc.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(pkghttp.IsRetryable),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Warn(ctx, "retrying outbound request",
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	}
}

// Do runs fn with the configured retry policy
func Do(ctx context.Context, rc *RetryConfig, fn func() error) error {
	return retry.Do(fn, rc.ToRetryOptions(ctx)...)
}

// DoWithData runs fn with the configured retry policy and returns its result
func DoWithData[T any](ctx context.Context, rc *RetryConfig, fn func() (T, error)) (T, error) {
	return retry.DoWithData(fn, rc.ToRetryOptions(ctx)...)
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}

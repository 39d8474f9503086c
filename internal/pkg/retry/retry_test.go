package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	pkghttp "github.com/futig/medwatch-backend/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts uint) *RetryConfig {
	return &RetryConfig{Attempts: attempts, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestDo_RetriesRetryableErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return &pkghttp.HTTPError{StatusCode: 503}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnClientError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		calls++
		return &pkghttp.HTTPError{StatusCode: 400, Message: "bad"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var httpErr *pkghttp.HTTPError
	assert.True(t, errors.As(err, &httpErr))
}

func TestDoWithData_ReturnsLastError(t *testing.T) {
	calls := 0
	_, err := DoWithData(context.Background(), fastConfig(2), func() (string, error) {
		calls++
		return "", &pkghttp.NetworkError{Err: errors.New("connection refused")}
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)

	var netErr *pkghttp.NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestDoWithData_Success(t *testing.T) {
	value, err := DoWithData(context.Background(), DefaultRetryConfig(), func() (int, error) {
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, value)
}

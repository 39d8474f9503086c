// Package guard serializes questionnaire turns per report session. A second
// turn on a session that already has one in flight is rejected, not queued.
package guard

import (
	"context"
)

// Release frees a guard acquired with TurnGuard.Acquire
type Release func()

// TurnGuard admits at most one in-flight turn per session
type TurnGuard interface {
	// Acquire returns entity.ErrTurnInProgress when the session is busy
	Acquire(ctx context.Context, sessionID string) (Release, error)
}

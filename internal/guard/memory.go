package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

var _ TurnGuard = &MemoryGuard{}

// MemoryGuard keeps turn locks in process memory. The TTL frees locks left by
// a crashed request.
type MemoryGuard struct {
	// mu makes take and compare-and-delete atomic with respect to each other
	mu    sync.Mutex
	locks *cache.Cache
	ttl   time.Duration
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{
		locks: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

func (g *MemoryGuard) Acquire(_ context.Context, sessionID string) (Release, error) {
	token := uuid.NewString()

	g.mu.Lock()
	err := g.locks.Add(sessionID, token, g.ttl)
	g.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, entity.ErrTurnInProgress)
	}

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		// An expired lock may have been taken by the next turn
		if current, ok := g.locks.Get(sessionID); ok && current == token {
			g.locks.Delete(sessionID)
		}
	}, nil
}

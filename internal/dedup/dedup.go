// Package dedup provides at-most-once claiming of externally identified
// inbound events.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Horizon is how long a claimed event identifier stays claimed. The
// upstream transport retries within this window.
const Horizon = 24 * time.Hour

// Guard marks event identifiers as processed in a shared cache.
type Guard struct {
	rdb *redis.Client
}

// New creates a guard over the shared Redis client.
func New(rdb *redis.Client) *Guard {
	return &Guard{rdb: rdb}
}

// Claim returns true the first time an event identifier is seen and
// false on every later call within the horizon. It must run before any
// side-effecting work; a false result ends processing with no reply and
// no state mutation.
func (g *Guard) Claim(ctx context.Context, eventID string) (bool, error) {
	claimed, err := g.rdb.SetNX(ctx, "msg:"+eventID, "1", Horizon).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim failed: %w", err)
	}
	return claimed, nil
}

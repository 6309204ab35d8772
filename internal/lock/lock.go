// Package lock provides a Redis-backed mutual exclusion scope used to
// serialize balance mutations per account across processes. The database row
// lock is the correctness guarantee; this lock keeps concurrent mutations for
// the same account from queueing inside the database.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockNotAcquired is returned when the lock is held by someone else after
// all retries.
var ErrLockNotAcquired = errors.New("lock not acquired")

// unlockScript deletes the key only if it still holds our value, so an
// expired-and-reacquired lock is never released by the old holder.
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// Manager acquires per-account locks. A nil-client Manager degrades to
// no-op locks, which is what tests and single-process setups use.
type Manager struct {
	client     *redis.Client
	expiration time.Duration
	retryEvery time.Duration
	maxRetries int
}

// NewManager creates a lock Manager over the given Redis client
func NewManager(client *redis.Client) *Manager {
	return &Manager{
		client:     client,
		expiration: 30 * time.Second,
		retryEvery: 50 * time.Millisecond,
		maxRetries: 40,
	}
}

// NewNoopManager creates a Manager whose locks do nothing
func NewNoopManager() *Manager {
	return &Manager{}
}

// AcquireAccount blocks until the per-account lock is held, then returns a
// release function. SET NX with an expiry guarantees mutual exclusion and
// prevents a crashed holder from wedging the account.
func (m *Manager) AcquireAccount(ctx context.Context, accountID uuid.UUID) (func(), error) {
	if m.client == nil {
		return func() {}, nil
	}

	key := fmt.Sprintf("ledger:lock:account:%s", accountID)
	value := uuid.NewString()

	for i := 0; i < m.maxRetries; i++ {
		ok, err := m.client.SetNX(ctx, key, value, m.expiration).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire account lock: %w", err)
		}
		if ok {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = m.client.Eval(releaseCtx, unlockScript, []string{key}, value).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.retryEvery):
		}
	}

	return nil, ErrLockNotAcquired
}

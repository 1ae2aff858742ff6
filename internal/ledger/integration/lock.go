package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrDocumentLocked reports that another request is already producing a
// voucher for the same source document.
var ErrDocumentLocked = errors.New("integration: document locked by concurrent request")

// DocumentLock serialises RequestVoucher per (tenant, module, document) so
// concurrent retries cannot race the link check. The database unique
// constraint remains the correctness guarantee; the lock only avoids wasted
// voucher numbers on retry storms.
type DocumentLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDocumentLock constructs DocumentLock. TTL bounds how long a crashed
// holder can block retries.
func NewDocumentLock(client *redis.Client, ttl time.Duration) *DocumentLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &DocumentLock{client: client, ttl: ttl}
}

var releaseScript = redis.NewScript(`if redis.call("get", KEYS[1]) == ARGV[1] then
return redis.call("del", KEYS[1])
else
return 0
end`)

// Acquire takes the per-document lock, returning a release function. A held
// lock surfaces ErrDocumentLocked instead of blocking.
func (l *DocumentLock) Acquire(ctx context.Context, tenantID int64, module string, documentID uuid.UUID) (func(), error) {
	if l == nil || l.client == nil {
		return func() {}, nil
	}
	key := fmt.Sprintf("integration:lock:%d:%s:%s", tenantID, module, documentID)
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDocumentLocked
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}
	return release, nil
}

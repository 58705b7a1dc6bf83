package imports

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/ssth/ssth-inventory/internal/platform/httpx"
)

// ErrImportInProgress is returned when the same upload is already being imported.
var ErrImportInProgress = httpx.NewStatusError(http.StatusConflict, "Import already in progress")

// ImportLock serialises imports of identical payloads across instances.
type ImportLock struct {
	locker *redislock.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewImportLock returns a lock backed by client. A nil client disables locking.
func NewImportLock(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *ImportLock {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	l := &ImportLock{ttl: ttl, logger: logger}
	if client != nil {
		l.locker = redislock.New(client)
	}
	return l
}

// LockKey derives the lock key for an import kind and payload.
func LockKey(kind string, payload []byte) string {
	sum := sha256.Sum256(payload)
	return "ssth:import:" + kind + ":" + hex.EncodeToString(sum[:])
}

// Acquire takes the lock for payload. When Redis is unreachable the import
// proceeds unlocked. The returned release func is always safe to call.
func (l *ImportLock) Acquire(ctx context.Context, kind string, payload []byte) (func(), error) {
	noop := func() {}
	if l == nil || l.locker == nil {
		return noop, nil
	}
	key := LockKey(kind, payload)
	lock, err := l.locker.Obtain(ctx, key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return noop, ErrImportInProgress
	}
	if err != nil {
		l.logger.WarnContext(ctx, "import lock unavailable, continuing without it", slog.String("kind", kind), slog.Any("error", err))
		return noop, nil
	}
	return func() {
		// The request context may already be done.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("import lock release failed", slog.String("key", key), slog.Any("error", err))
		}
	}, nil
}

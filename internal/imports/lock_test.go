package imports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestImportLockRejectsConcurrentIdenticalUpload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	lock := NewImportLock(client, time.Minute, nil)
	payload := []byte("same workbook")

	release, err := lock.Acquire(context.Background(), KindItems, payload)
	require.NoError(t, err)
	require.True(t, mr.Exists(LockKey(KindItems, payload)))

	_, err = lock.Acquire(context.Background(), KindItems, payload)
	require.ErrorIs(t, err, ErrImportInProgress)

	other, err := lock.Acquire(context.Background(), KindItems, []byte("different workbook"))
	require.NoError(t, err)
	other()

	release()
	require.False(t, mr.Exists(LockKey(KindItems, payload)))

	again, err := lock.Acquire(context.Background(), KindItems, payload)
	require.NoError(t, err)
	again()
}

func TestImportLockProceedsWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	release, err := NewImportLock(client, time.Minute, nil).Acquire(context.Background(), KindPO, []byte("x"))
	require.NoError(t, err)
	release()
}

func TestNilImportLockIsNoop(t *testing.T) {
	var lock *ImportLock
	release, err := lock.Acquire(context.Background(), KindItems, nil)
	require.NoError(t, err)
	release()

	release, err = NewImportLock(nil, 0, nil).Acquire(context.Background(), KindItems, nil)
	require.NoError(t, err)
	release()
}

func TestLockKeyIsStable(t *testing.T) {
	require.Equal(t, LockKey(KindPO, []byte("a")), LockKey(KindPO, []byte("a")))
	require.NotEqual(t, LockKey(KindPO, []byte("a")), LockKey(KindItems, []byte("a")))
}

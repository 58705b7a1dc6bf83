package categories

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ssth/ssth-inventory/internal/masterdata/shared"
)

type memoryRepo struct {
	mu      sync.Mutex
	byKey   map[string]Category
	upserts int
	findErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byKey: map[string]Category{}}
}

func (m *memoryRepo) FindByName(_ context.Context, name string) (Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return Category{}, m.findErr
	}
	c, ok := m.byKey[shared.NameKey(name)]
	if !ok {
		return Category{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepo) Upsert(_ context.Context, c Category) (Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	key := shared.NameKey(c.Name)
	if existing, ok := m.byKey[key]; ok {
		return existing, nil
	}
	for _, existing := range m.byKey {
		if existing.Code == c.Code {
			return Category{}, shared.ErrDuplicateCode
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.IsActive = true
	m.byKey[key] = c
	return c, nil
}

func (m *memoryRepo) List(context.Context) ([]Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Category, 0, len(m.byKey))
	for _, c := range m.byKey {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func fixedClock() time.Time { return time.UnixMilli(1_712_345_123_456) }

func TestResolveCreatesThenReuses(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo).WithClock(fixedClock)

	id, err := svc.Resolve(context.Background(), " Hardware ")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	again, err := svc.Resolve(context.Background(), "HARDWARE")
	require.NoError(t, err)
	require.Equal(t, id, again)
	require.Equal(t, 1, repo.upserts)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Hardware", list[0].Name)
	require.Equal(t, "CAT-123456", list[0].Code)
}

func TestResolveRetriesOnCodeCollision(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo).WithClock(fixedClock)

	first, err := svc.Resolve(context.Background(), "Hardware")
	require.NoError(t, err)
	second, err := svc.Resolve(context.Background(), "Electrical")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "CAT-123456-1", list[0].Code)
	require.Equal(t, "Electrical", list[0].Name)
	require.Equal(t, "CAT-123456", list[1].Code)
}

func TestResolveGivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo).WithClock(fixedClock)
	for attempt := 0; attempt < shared.MaxCodeAttempts; attempt++ {
		code := shared.WithAttempt("CAT-123456", attempt)
		repo.byKey[shared.NameKey(code)] = Category{ID: uuid.New(), Code: code, Name: code}
	}

	_, err := svc.Resolve(context.Background(), "Hardware")
	require.ErrorIs(t, err, shared.ErrDuplicateCode)
}

func TestResolveBlankNameIsNoCategory(t *testing.T) {
	repo := newMemoryRepo()
	id, err := NewService(repo).Resolve(context.Background(), "   ")
	require.NoError(t, err)
	require.Equal(t, uuid.Nil, id)
	require.Zero(t, repo.upserts)
}

func TestResolveLookupFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.findErr = errors.New("connection reset")
	_, err := NewService(repo).Resolve(context.Background(), "Hardware")
	require.ErrorContains(t, err, "connection reset")
	require.Zero(t, repo.upserts)
}

func TestResolveConcurrentCallersConverge(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := svc.Resolve(context.Background(), "Fasteners")
			require.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}
}

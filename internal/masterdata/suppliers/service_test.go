package suppliers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ssth/ssth-inventory/internal/masterdata/shared"
)

type memoryRepo struct {
	mu        sync.Mutex
	rows      []Supplier
	upsertErr error
}

func (m *memoryRepo) FindByName(_ context.Context, name string) (Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if shared.NameKey(s.Name) == shared.NameKey(name) {
			return s, nil
		}
	}
	return Supplier{}, shared.ErrNotFound
}

func (m *memoryRepo) Upsert(_ context.Context, s Supplier) (Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return Supplier{}, m.upsertErr
	}
	for _, existing := range m.rows {
		if shared.NameKey(existing.Name) == shared.NameKey(s.Name) {
			return existing, nil
		}
	}
	for _, existing := range m.rows {
		if existing.Code == s.Code {
			return Supplier{}, shared.ErrDuplicateCode
		}
	}
	s.ID = uuid.New()
	s.IsActive = true
	m.rows = append(m.rows, s)
	return s, nil
}

func (m *memoryRepo) List(context.Context) ([]Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Supplier(nil), m.rows...), nil
}

func TestResolveCreatesSupplierWithCode(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo).WithClock(func() time.Time { return time.UnixMilli(1_700_000_654_321) })

	id, err := svc.Resolve(context.Background(), "Acme Trading")
	require.NoError(t, err)
	require.Len(t, repo.rows, 1)
	require.Equal(t, "SUP-654321", repo.rows[0].Code)

	again, err := svc.Resolve(context.Background(), "acme trading ")
	require.NoError(t, err)
	require.Equal(t, id, again)
	require.Len(t, repo.rows, 1)
}

func TestResolveSuffixesCollidingCode(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo).WithClock(func() time.Time { return time.UnixMilli(1_700_000_654_321) })

	_, err := svc.Resolve(context.Background(), "Acme Trading")
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), "Bolt Supply")
	require.NoError(t, err)

	require.Len(t, repo.rows, 2)
	require.Equal(t, "SUP-654321", repo.rows[0].Code)
	require.Equal(t, "SUP-654321-1", repo.rows[1].Code)
}

func TestIndexKeysMatchDatabaseLowercase(t *testing.T) {
	repo := &memoryRepo{rows: []Supplier{{ID: uuid.New(), Name: "Straße GmbH"}}}
	index, err := NewService(repo).Index(context.Background())
	require.NoError(t, err)
	require.Contains(t, index, "straße gmbh")
	require.NotContains(t, index, "strasse gmbh")
}

func TestResolveRejectsBlankName(t *testing.T) {
	_, err := NewService(&memoryRepo{}).Resolve(context.Background(), "  ")
	require.ErrorIs(t, err, ErrBlankName)
	require.ErrorIs(t, err, shared.ErrRequiredField)
}

func TestResolvePropagatesCreateFailure(t *testing.T) {
	repo := &memoryRepo{upsertErr: errors.New("permission denied")}
	_, err := NewService(repo).Resolve(context.Background(), "Acme")
	require.ErrorContains(t, err, "permission denied")
}

func TestIndexKeysByFoldedName(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	id, err := svc.Resolve(context.Background(), "Bolt Co")
	require.NoError(t, err)

	idx, err := svc.Index(context.Background())
	require.NoError(t, err)
	require.Equal(t, id, idx[shared.NameKey("BOLT CO")])
}

package ai

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type settingsRow struct {
	value []byte
	err   error
}

func (r settingsRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.value
	return nil
}

type settingsQuerier struct {
	rows    map[string][]byte
	lastKey string
}

func (q *settingsQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (q *settingsQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, nil
}

func (q *settingsQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	q.lastKey = args[0].(string)
	v, ok := q.rows[q.lastKey]
	if !ok {
		return settingsRow{err: pgx.ErrNoRows}
	}
	return settingsRow{value: v}
}

func TestSettingsLoader(t *testing.T) {
	q := &settingsQuerier{rows: map[string][]byte{
		"ai-configs": []byte(`{"providers":{"cohere":{"apiKey":"c","isEnabled":true}}}`),
	}}

	cfg, err := NewSettingsLoader(q, "ai-configs").Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ai-configs", q.lastKey)
	require.Equal(t, "cohere", cfg.Default)

	cfg, err = NewSettingsLoader(q, "missing").Load(context.Background())
	require.NoError(t, err)
	require.False(t, cfg.HasProviders())
}

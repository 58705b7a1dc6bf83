package shared

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type execRecorder struct {
	args []any
}

func (e *execRecorder) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	e.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (e *execRecorder) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }

func (e *execRecorder) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func TestAuditLoggerRecord(t *testing.T) {
	rec := &execRecorder{}
	logger := NewAuditLogger(rec)
	actor := uuid.New()
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	err := logger.Record(context.Background(), AuditLog{
		ActorID:  actor,
		Action:   "IMPORT_ITEMS",
		Entity:   "items",
		EntityID: "req-1",
		Meta:     map[string]any{"created": 1},
		At:       at,
	})
	require.NoError(t, err)
	require.Equal(t, actor, rec.args[0])
	require.Equal(t, "IMPORT_ITEMS", rec.args[1])

	var meta map[string]int
	require.NoError(t, json.Unmarshal(rec.args[4].([]byte), &meta))
	require.Equal(t, 1, meta["created"])
	require.Equal(t, &at, rec.args[5])
}

func TestAuditLoggerRejectsIncompleteEntries(t *testing.T) {
	require.Error(t, NewAuditLogger(&execRecorder{}).Record(context.Background(), AuditLog{Action: "IMPORT_PO"}))

	var nilLogger *AuditLogger
	require.Error(t, nilLogger.Record(context.Background(), AuditLog{Action: "A", Entity: "B", EntityID: "C"}))
}

func TestActorContextRoundTrip(t *testing.T) {
	_, ok := ActorFromContext(context.Background())
	require.False(t, ok)

	actor := Actor{UserID: uuid.New(), Email: "ops@ssth.co.th"}
	got, ok := ActorFromContext(ContextWithActor(context.Background(), actor))
	require.True(t, ok)
	require.Equal(t, actor, got)
}

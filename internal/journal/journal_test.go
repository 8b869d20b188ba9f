package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/runebridge/internal/bridge"
)

func openTemp(t *testing.T, opts Options) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "journal.db")
	j, err := Open(context.Background(), path, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j, path
}

func fixedNow() func() time.Time {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func TestOpen_AppliesMigrationsOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(ctx, path, Options{})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(ctx, path, Options{})
	require.NoError(t, err)
	defer j.Close()

	db, err := sql.Open("sqlite", "file:"+path)
	require.NoError(t, err)
	defer db.Close()

	var versions int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&versions))
	assert.Equal(t, len(migrations), versions)
}

func TestJournal_RecordAndQuery(t *testing.T) {
	ctx := context.Background()
	j, _ := openTemp(t, Options{Now: fixedNow()})

	j.Record(bridge.Inbound, bridge.CallSelectEntity, []byte(`[{"id":"e1"}]`))
	j.Record(bridge.Outbound, bridge.CallMoveSelected, []byte(`[0.1,-0.2]`))
	j.Record(bridge.Inbound, bridge.CallSetStatus, []byte(`[4]`))
	require.NoError(t, j.Flush(ctx))

	calls, err := j.Calls(ctx, Query{SessionID: j.SessionID()})
	require.NoError(t, err)
	require.Len(t, calls, 3)

	assert.Equal(t, "in", calls[0].Direction)
	assert.Equal(t, bridge.CallSelectEntity, calls[0].Name)
	assert.Equal(t, `[{"id":"e1"}]`, calls[0].Args)
	assert.Equal(t, "out", calls[1].Direction)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 3, 0, time.UTC), calls[1].Time)
	assert.Less(t, calls[0].Seq, calls[1].Seq)

	outbound, err := j.Calls(ctx, Query{Direction: "out"})
	require.NoError(t, err)
	require.Len(t, outbound, 1)
	assert.Equal(t, bridge.CallMoveSelected, outbound[0].Name)

	byName, err := j.Calls(ctx, Query{Name: bridge.CallSetStatus})
	require.NoError(t, err)
	require.Len(t, byName, 1)

	last, err := j.Calls(ctx, Query{Limit: 2})
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, bridge.CallMoveSelected, last[0].Name, "limit keeps the newest, oldest first")
	assert.Equal(t, bridge.CallSetStatus, last[1].Name)
}

func TestJournal_SessionsAcrossRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	first, err := Open(ctx, path, Options{})
	require.NoError(t, err)
	first.Record(bridge.Inbound, bridge.CallSetSceneName, []byte(`["Level 1"]`))
	require.NoError(t, first.Close(), "close drains pending calls")

	second, err := Open(ctx, path, Options{})
	require.NoError(t, err)
	defer second.Close()
	assert.NotEqual(t, first.SessionID(), second.SessionID())

	sessions, err := second.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	counts := map[string]int{}
	for _, s := range sessions {
		counts[s.ID] = s.Calls
	}
	assert.Equal(t, 1, counts[first.SessionID()])
	assert.Equal(t, 0, counts[second.SessionID()])
}

func TestJournal_ReadOnly(t *testing.T) {
	ctx := context.Background()
	writer, path := openTemp(t, Options{})
	writer.Record(bridge.Outbound, bridge.CallSaveScene, []byte(`[]`))
	require.NoError(t, writer.Flush(ctx))

	reader, err := Open(ctx, path, Options{ReadOnly: true})
	require.NoError(t, err)
	defer reader.Close()

	assert.Empty(t, reader.SessionID())
	reader.Record(bridge.Outbound, bridge.CallSaveScene, []byte(`[]`))
	assert.ErrorIs(t, reader.Flush(ctx), ErrClosed)

	sessions, err := reader.Sessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1, "read-only open starts no session")

	calls, err := reader.Calls(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, calls, 1)
}

func TestJournal_QueueFullDrops(t *testing.T) {
	j, _ := openTemp(t, Options{QueueSize: 1})

	for i := 0; i < 500; i++ {
		j.Record(bridge.Inbound, bridge.CallCameraMoved, []byte(`[0,0,1]`))
	}
	require.NoError(t, j.Flush(context.Background()))

	calls, err := j.Calls(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, uint64(500), uint64(len(calls))+j.Dropped())
}

func TestJournal_Closed(t *testing.T) {
	j, _ := openTemp(t, Options{})
	require.NoError(t, j.Close())
	require.NoError(t, j.Close())

	assert.NotPanics(t, func() { j.Record(bridge.Inbound, bridge.CallSetStatus, []byte(`[1]`)) })
	assert.ErrorIs(t, j.Flush(context.Background()), ErrClosed)

	_, err := j.Calls(context.Background(), Query{})
	assert.ErrorIs(t, err, ErrClosed)
}

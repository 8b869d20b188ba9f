// Package journal persists every boundary call crossing the bridge to a
// SQLite database.
//
// Each process run opens a new session. Record never blocks the event loop:
// calls are queued and written by a background goroutine. When the queue is
// full the call is dropped and counted.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dshills/runebridge/internal/bridge"
	"github.com/dshills/runebridge/internal/logging"
)

// DefaultQueueSize is the number of calls buffered ahead of the writer.
const DefaultQueueSize = 1024

// ErrClosed is returned by operations on a closed journal.
var ErrClosed = errors.New("journal closed")

// Call is one recorded boundary call.
type Call struct {
	Seq       int64
	SessionID string
	Time      time.Time
	Direction string
	Name      string
	Args      string
}

// Session is one process run.
type Session struct {
	ID        string
	StartedAt time.Time
	Calls     int
}

// Options configures Open.
type Options struct {
	QueueSize int
	Logger    *logging.Logger

	// ReadOnly opens the journal for queries only. No session is started
	// and Record is a no-op.
	ReadOnly bool

	// Now stamps recorded calls. Defaults to time.Now.
	Now func() time.Time
}

type request struct {
	call  Call
	flush chan struct{}
}

// Journal is a bridge.Recorder backed by SQLite.
type Journal struct {
	db      *sql.DB
	session string
	now     func() time.Time
	log     *logging.Logger

	queue   chan request
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ bridge.Recorder = (*Journal)(nil)

// Open opens or creates the database at path, applies migrations and starts
// a new session.
func Open(ctx context.Context, path string, opts Options) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}

	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	j := &Journal{
		db:   db,
		now:  opts.Now,
		log:  opts.Logger.WithComponent("journal"),
		done: make(chan struct{}),
	}
	if opts.ReadOnly {
		j.closed = true
		close(j.done)
		return j, nil
	}

	j.session = uuid.NewString()
	j.queue = make(chan request, opts.QueueSize)

	if _, err := db.ExecContext(ctx, `INSERT INTO sessions(session_id, started_at) VALUES (?, ?)`, j.session, ts(j.now())); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("start session: %w", err)
	}

	go j.writeLoop(db)
	return j, nil
}

// SessionID returns the id of the session this journal writes to.
func (j *Journal) SessionID() string {
	return j.session
}

// Dropped returns the number of calls discarded because the queue was full.
func (j *Journal) Dropped() uint64 {
	return j.dropped.Load()
}

// Record queues a call for writing.
func (j *Journal) Record(dir bridge.Direction, name string, args []byte) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return
	}

	call := Call{
		SessionID: j.session,
		Time:      j.now(),
		Direction: dir.String(),
		Name:      name,
		Args:      string(args),
	}
	select {
	case j.queue <- request{call: call}:
	default:
		if j.dropped.Add(1) == 1 {
			j.log.Warn("journal queue full, dropping calls")
		}
	}
}

// Flush waits until every call queued before it has been written.
func (j *Journal) Flush(ctx context.Context) error {
	done := make(chan struct{})

	j.mu.RLock()
	if j.closed {
		j.mu.RUnlock()
		return ErrClosed
	}
	select {
	case j.queue <- request{flush: done}:
	case <-ctx.Done():
		j.mu.RUnlock()
		return ctx.Err()
	}
	j.mu.RUnlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *Journal) writeLoop(db *sql.DB) {
	defer close(j.done)

	for req := range j.queue {
		if req.flush != nil {
			close(req.flush)
			continue
		}
		c := req.call
		_, err := db.Exec(`INSERT INTO calls(session_id, recorded_at, direction, name, args_json) VALUES (?, ?, ?, ?, ?)`,
			c.SessionID, ts(c.Time), c.Direction, c.Name, c.Args)
		if err != nil {
			j.log.Error("write call %s: %v", c.Name, err)
		}
	}
}

// Query filters Calls.
type Query struct {
	// SessionID restricts results to one session. Empty means all.
	SessionID string

	// Name restricts results to one entry point. Empty means all.
	Name string

	// Direction is "in", "out" or empty for both.
	Direction string

	// Limit caps the number of calls returned, newest last. Zero means no
	// limit.
	Limit int
}

// Calls returns recorded calls in recording order.
func (j *Journal) Calls(ctx context.Context, q Query) ([]Call, error) {
	var where []string
	var args []any
	if q.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, q.SessionID)
	}
	if q.Name != "" {
		where = append(where, "name = ?")
		args = append(args, q.Name)
	}
	if q.Direction != "" {
		where = append(where, "direction = ?")
		args = append(args, q.Direction)
	}

	query := `SELECT seq, session_id, recorded_at, direction, name, args_json FROM calls`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	db, err := j.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	var calls []Call
	for rows.Next() {
		var c Call
		var recorded string
		if err := rows.Scan(&c.Seq, &c.SessionID, &recorded, &c.Direction, &c.Name, &c.Args); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		if c.Time, err = parseTS(recorded); err != nil {
			return nil, fmt.Errorf("parse call time: %w", err)
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, k := 0, len(calls)-1; i < k; i, k = i+1, k-1 {
		calls[i], calls[k] = calls[k], calls[i]
	}
	return calls, nil
}

// Sessions lists every session, oldest first, with its call count.
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	db, err := j.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
SELECT s.session_id, s.started_at, COUNT(c.seq)
FROM sessions s LEFT JOIN calls c ON c.session_id = s.session_id
GROUP BY s.session_id, s.started_at
ORDER BY s.started_at, s.session_id`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var started string
		if err := rows.Scan(&s.ID, &started, &s.Calls); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if s.StartedAt, err = parseTS(started); err != nil {
			return nil, fmt.Errorf("parse session time: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (j *Journal) conn() (*sql.DB, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.db == nil {
		return nil, ErrClosed
	}
	return j.db, nil
}

// Close drains the queue and closes the database.
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.db == nil {
		j.mu.Unlock()
		return nil
	}
	if !j.closed {
		j.closed = true
		close(j.queue)
	}
	db := j.db
	j.db = nil
	j.mu.Unlock()

	<-j.done
	return db.Close()
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// Package indexdb maintains a queryable SQLite index of play sessions.
// Writes go through a single writer goroutine so the session tick loops
// never block on the database.
package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"blockstride.dev/internal/sim/avatar"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropStart atomic.Int64
	dropEnd   atomic.Int64
}

type reqKind int

const (
	reqStart reqKind = iota + 1
	reqEnd
	reqBarrier
)

type req struct {
	kind reqKind

	start startRow
	end   endRow
	done  chan struct{}
}

type startRow struct {
	ID         string
	PlayerName string
	StartedAt  string
}

type endRow struct {
	ID      string
	EndedAt string
	Stats   avatar.Stats
}

// SessionRow is one indexed session, as read back by Sessions.
type SessionRow struct {
	ID         string
	PlayerName string
	StartedAt  string
	EndedAt    string
	Ticks      uint64
	Distance   float64
	Jumps      int
	Falls      int
	Landings   int
	Splashes   int
}

// QueueStats reports writer queue health for the health endpoint.
type QueueStats struct {
	QueueDepth     int
	QueueCapacity  int
	DropStartTotal int64
	DropEndTotal   int64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			player_name TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			ticks INTEGER NOT NULL DEFAULT 0,
			distance REAL NOT NULL DEFAULT 0,
			jumps INTEGER NOT NULL DEFAULT 0,
			falls INTEGER NOT NULL DEFAULT 0,
			landings INTEGER NOT NULL DEFAULT 0,
			splashes INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// SessionStarted queues an insert for a new session. Never blocks; the
// row is dropped if the writer falls behind.
func (s *SQLiteIndex) SessionStarted(id, playerName string, start time.Time) {
	if s == nil || s.closed.Load() {
		return
	}
	r := startRow{
		ID:         id,
		PlayerName: playerName,
		StartedAt:  start.UTC().Format(time.RFC3339Nano),
	}
	select {
	case s.ch <- req{kind: reqStart, start: r}:
	default:
		s.dropStart.Add(1)
	}
}

// SessionEnded queues the final stats for a session.
func (s *SQLiteIndex) SessionEnded(id string, end time.Time, st avatar.Stats) {
	if s == nil || s.closed.Load() {
		return
	}
	r := endRow{
		ID:      id,
		EndedAt: end.UTC().Format(time.RFC3339Nano),
		Stats:   st,
	}
	select {
	case s.ch <- req{kind: reqEnd, end: r}:
	default:
		s.dropEnd.Add(1)
	}
}

// Flush blocks until every write queued before the call has been applied.
func (s *SQLiteIndex) Flush() {
	if s == nil || s.closed.Load() {
		return
	}
	done := make(chan struct{})
	s.ch <- req{kind: reqBarrier, done: done}
	<-done
}

func (s *SQLiteIndex) Stats() QueueStats {
	return QueueStats{
		QueueDepth:     len(s.ch),
		QueueCapacity:  cap(s.ch),
		DropStartTotal: s.dropStart.Load(),
		DropEndTotal:   s.dropEnd.Load(),
	}
}

// Sessions returns the most recently started sessions, newest first.
func (s *SQLiteIndex) Sessions(limit int) ([]SessionRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT session_id, player_name, started_at,
		COALESCE(ended_at,''), ticks, distance, jumps, falls, landings, splashes
		FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		if err := rows.Scan(&r.ID, &r.PlayerName, &r.StartedAt, &r.EndedAt,
			&r.Ticks, &r.Distance, &r.Jumps, &r.Falls, &r.Landings, &r.Splashes); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertStart, _ := s.db.Prepare(`INSERT OR REPLACE INTO sessions(session_id,player_name,started_at) VALUES(?,?,?)`)
	updateEnd, _ := s.db.Prepare(`UPDATE sessions SET ended_at=?, ticks=?, distance=?, jumps=?, falls=?, landings=?, splashes=? WHERE session_id=?`)
	defer func() {
		if insertStart != nil {
			_ = insertStart.Close()
		}
		if updateEnd != nil {
			_ = updateEnd.Close()
		}
	}()

	for r := range s.ch {
		switch r.kind {
		case reqStart:
			if insertStart == nil {
				continue
			}
			_, _ = insertStart.ExecContext(ctx, r.start.ID, r.start.PlayerName, r.start.StartedAt)

		case reqEnd:
			if updateEnd == nil {
				continue
			}
			st := r.end.Stats
			_, _ = updateEnd.ExecContext(ctx,
				r.end.EndedAt,
				int64(st.Ticks),
				st.Distance,
				int64(st.Jumps),
				int64(st.Falls),
				int64(st.Landings),
				int64(st.Splashes),
				r.end.ID,
			)

		case reqBarrier:
			close(r.done)
		}
	}
}

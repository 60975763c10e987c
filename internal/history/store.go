// Package history persists completed search results to a local SQLite
// database. Writes are asynchronous and best-effort: the pipeline never
// blocks on, or fails because of, the history store.
package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Aman3189/soriva-backend-sub011/internal/assemble"
)

const schema = `
CREATE TABLE IF NOT EXISTS search_history (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id  TEXT NOT NULL,
	query_used  TEXT NOT NULL,
	domain      TEXT NOT NULL,
	source      TEXT NOT NULL,
	provider    TEXT NOT NULL DEFAULT '',
	fact        TEXT NOT NULL,
	url         TEXT NOT NULL DEFAULT '',
	confidence  TEXT NOT NULL DEFAULT '',
	agreement   TEXT NOT NULL DEFAULT '',
	total_ms    INTEGER NOT NULL,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_search_history_created ON search_history(created_at);
`

const insertSQL = `INSERT INTO search_history
	(request_id, query_used, domain, source, provider, fact, url, confidence, agreement, total_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Entry is one persisted search.
type Entry struct {
	ID         int64     `db:"id"`
	RequestID  string    `db:"request_id"`
	QueryUsed  string    `db:"query_used"`
	Domain     string    `db:"domain"`
	Source     string    `db:"source"`
	Provider   string    `db:"provider"`
	Fact       string    `db:"fact"`
	URL        string    `db:"url"`
	Confidence string    `db:"confidence"`
	Agreement  string    `db:"agreement"`
	TotalMs    int64     `db:"total_ms"`
	CreatedAt  time.Time `db:"created_at"`
}

// Store writes entries through a single background worker. A nil *Store is
// valid and does nothing, so callers need no enabled-check.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
	queue  chan Entry
	wg     sync.WaitGroup
}

// Open opens (creating if needed) the SQLite database at dsn and starts the
// write worker.
func Open(dsn string, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", dsn, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return NewStore(db, logger), nil
}

// NewStore wraps an existing connection; used by tests with a mock.
func NewStore(db *sqlx.DB, logger *zap.Logger) *Store {
	s := &Store{
		db:     db,
		logger: logger,
		queue:  make(chan Entry, 256),
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

func (s *Store) worker() {
	defer s.wg.Done()
	for e := range s.queue {
		if _, err := s.db.Exec(insertSQL,
			e.RequestID, e.QueryUsed, e.Domain, e.Source, e.Provider,
			e.Fact, e.URL, e.Confidence, e.Agreement, e.TotalMs,
		); err != nil {
			s.logger.Warn("history insert failed",
				zap.String("request_id", e.RequestID),
				zap.Error(err),
			)
		}
	}
}

// Record enqueues a completed result. Non-blocking: when the queue is full
// the entry is dropped with a warning.
func (s *Store) Record(res *assemble.SearchResult) {
	if s == nil || res == nil {
		return
	}
	e := Entry{
		RequestID: res.RequestID,
		QueryUsed: res.QueryUsed,
		Domain:    string(res.Domain),
		Source:    res.Source,
		Provider:  res.Provider,
		Fact:      res.Fact,
		URL:       res.URL,
		TotalMs:   res.Timings.TotalMs,
	}
	if res.Verification != nil {
		e.Confidence = string(res.Verification.Confidence)
		e.Agreement = string(res.Verification.Agreement)
	}
	select {
	case s.queue <- e:
	default:
		s.logger.Warn("history queue full, dropping entry",
			zap.String("request_id", res.RequestID),
		)
	}
}

// Recent returns the latest entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	var out []Entry
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, request_id, query_used, domain, source, provider, fact, url,
			confidence, agreement, total_ms, created_at
		FROM search_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return out, nil
}

// Close drains pending writes and closes the database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	close(s.queue)
	s.wg.Wait()
	return s.db.Close()
}

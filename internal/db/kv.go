package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/quizbook/quizbook/internal/registry"
	"github.com/quizbook/quizbook/internal/session"
)

// KVStore is the SQL-backed implementation of registry.KV.
type KVStore struct{ db *sql.DB }

func NewKVStore(db *sql.DB) *KVStore { return &KVStore{db: db} }

func (s *KVStore) Get(key string) ([]byte, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv_store WHERE key=$1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, registry.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (s *KVStore) Set(key string, value []byte) error {
	_, err := s.db.Exec(`INSERT INTO kv_store (key,value,updated_at) VALUES ($1,$2,$3)
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=EXCLUDED.updated_at`,
		key, string(value), time.Now().Unix())
	return err
}

// SessionLog appends completed-session summaries for the history screen.
type SessionLog struct{ db *sql.DB }

func NewSessionLog(db *sql.DB) *SessionLog { return &SessionLog{db: db} }

// LogEntry is one completed session as stored.
type LogEntry struct {
	ID         string `json:"id"`
	Total      int    `json:"total"`
	Answered   int    `json:"answered"`
	Correct    int    `json:"correct"`
	Incorrect  int    `json:"incorrect"`
	Seed       int64  `json:"seed"`
	FinishedAt int64  `json:"finished_at"`
}

func (l *SessionLog) Append(ctx context.Context, sessionID string, sum session.Summary) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO session_log (id,total,answered,correct,incorrect,seed,finished_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		sessionID, sum.Total, sum.Answered, sum.Correct, sum.Incorrect, sum.Seed, time.Now().Unix())
	return err
}

// Recent returns the latest completed sessions, newest first.
func (l *SessionLog) Recent(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id,total,answered,correct,incorrect,seed,finished_at
		 FROM session_log ORDER BY finished_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.Total, &e.Answered, &e.Correct, &e.Incorrect, &e.Seed, &e.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

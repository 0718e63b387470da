package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/asjidimtiaz/leadqual/internal/domain"
)

// SQLiteSessionStore implements engine.SessionStore backed by SQLite.
type SQLiteSessionStore struct {
	db *DB
}

// NewSQLiteSessionStore creates a session store using the given database.
func NewSQLiteSessionStore(db *DB) *SQLiteSessionStore {
	return &SQLiteSessionStore{db: db}
}

// Create inserts a new session row.
func (s *SQLiteSessionStore) Create(ctx context.Context, sess *domain.Session) error {
	meta, err := json.Marshal(sess.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	_, err = s.db.sql.ExecContext(ctx,
		`INSERT INTO sessions (id, mode, lead_score, metadata, is_converted, is_closed, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, string(sess.Mode), sess.LeadScore, string(meta),
		boolToInt(sess.IsConverted), boolToInt(sess.IsClosed),
		sess.CreatedAt.UTC().Format(time.DateTime), sess.UpdatedAt.UTC().Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// Get returns a session with its full message history.
func (s *SQLiteSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	var sess domain.Session
	var metaJSON, createdAt, updatedAt string
	var converted, closed int

	err := s.db.sql.QueryRowContext(ctx,
		`SELECT id, mode, lead_score, metadata, is_converted, is_closed, created_at, updated_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, (*string)(&sess.Mode), &sess.LeadScore, &metaJSON, &converted, &closed, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	if err := json.Unmarshal([]byte(metaJSON), &sess.Metadata); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	sess.IsConverted = converted != 0
	sess.IsClosed = closed != 0
	sess.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	sess.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)

	msgs, err := s.loadMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Messages = msgs
	return &sess, nil
}

// Save writes the session state and appends any messages past the stored
// count, in one transaction. Messages are append-only so the tail of the
// in-memory slice is exactly what the database is missing.
func (s *SQLiteSessionStore) Save(ctx context.Context, sess *domain.Session) error {
	meta, err := json.Marshal(sess.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	tx, err := s.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET mode = ?, lead_score = ?, metadata = ?, is_converted = ?, is_closed = ?, updated_at = ?
		 WHERE id = ?`,
		string(sess.Mode), sess.LeadScore, string(meta),
		boolToInt(sess.IsConverted), boolToInt(sess.IsClosed),
		time.Now().UTC().Format(time.DateTime), sess.ID,
	)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrSessionNotFound
	}

	var stored int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE session_id = ?`, sess.ID,
	).Scan(&stored); err != nil {
		return fmt.Errorf("counting messages: %w", err)
	}

	for _, msg := range sess.Messages[min(stored, len(sess.Messages)):] {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (session_id, role, content, timestamp) VALUES (?, ?, ?, ?)`,
			sess.ID, msg.Role, msg.Content, msg.Timestamp.UTC().Format(time.DateTime),
		); err != nil {
			return fmt.Errorf("appending message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// loadMessages loads all messages for a session in insertion order.
func (s *SQLiteSessionStore) loadMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT role, content, timestamp FROM messages WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var msg domain.Message
		var ts string
		if err := rows.Scan(&msg.Role, &msg.Content, &ts); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.Timestamp, _ = time.Parse(time.DateTime, ts)
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/asjidimtiaz/leadqual/internal/domain"
)

// SQLiteLeadStore persists created leads. It doubles as the first, durable
// CRM sink: a lead that reached this table survives webhook or export outages.
type SQLiteLeadStore struct {
	db *DB
}

// NewSQLiteLeadStore creates a lead store using the given database.
func NewSQLiteLeadStore(db *DB) *SQLiteLeadStore {
	return &SQLiteLeadStore{db: db}
}

// Create inserts a lead row.
func (s *SQLiteLeadStore) Create(ctx context.Context, lead domain.Lead) error {
	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO leads (id, name, email, phone, service, timeline, message, score, tier, source, session_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.Name, lead.Email, lead.Phone, lead.Service, lead.Timeline,
		lead.Message, lead.Score, string(lead.Tier), lead.Source, lead.SessionID,
		lead.CreatedAt.UTC().Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("inserting lead: %w", err)
	}
	return nil
}

// List returns the most recent leads, newest first.
func (s *SQLiteLeadStore) List(ctx context.Context, limit int) ([]domain.Lead, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, name, email, phone, service, timeline, message, score, tier, source, session_id, created_at
		 FROM leads ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		var lead domain.Lead
		var tier, createdAt string
		if err := rows.Scan(&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Service,
			&lead.Timeline, &lead.Message, &lead.Score, &tier, &lead.Source, &lead.SessionID, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning lead: %w", err)
		}
		lead.Tier = domain.Tier(tier)
		lead.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

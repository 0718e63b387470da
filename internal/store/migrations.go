package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create sessions and messages",
		SQL: `
			CREATE TABLE sessions (
				id            TEXT PRIMARY KEY,
				mode          TEXT NOT NULL,
				lead_score    INTEGER NOT NULL DEFAULT 0,
				metadata      TEXT NOT NULL DEFAULT '{}',
				is_converted  INTEGER NOT NULL DEFAULT 0,
				is_closed     INTEGER NOT NULL DEFAULT 0,
				created_at    TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at    TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_sessions_updated ON sessions (updated_at);

			CREATE TABLE messages (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id  TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
				role        TEXT NOT NULL,
				content     TEXT NOT NULL,
				timestamp   TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_messages_session ON messages (session_id, id);
		`,
	},
	{
		Version: 2,
		Name:    "create leads",
		SQL: `
			CREATE TABLE leads (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL,
				email       TEXT NOT NULL,
				phone       TEXT NOT NULL DEFAULT '',
				service     TEXT NOT NULL DEFAULT '',
				timeline    TEXT NOT NULL DEFAULT '',
				message     TEXT NOT NULL DEFAULT '',
				score       INTEGER NOT NULL DEFAULT 0,
				tier        TEXT NOT NULL,
				source      TEXT NOT NULL,
				session_id  TEXT NOT NULL DEFAULT '',
				created_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_leads_created ON leads (created_at);
			CREATE INDEX idx_leads_tier ON leads (tier);
		`,
	},
}

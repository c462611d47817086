package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS triage_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			ticket_id INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			macro_id INTEGER,
			error TEXT,
			entry TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_triage_history_run ON triage_history(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_triage_history_created ON triage_history(created_at)`,
	},
	insert: `INSERT INTO triage_history (run_id, ticket_id, outcome, macro_id, error, entry, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
	selectRun: `SELECT entry FROM triage_history WHERE run_id = ? ORDER BY id`,
	cleanup:   `DELETE FROM triage_history WHERE created_at <= ?`,
	// Fixed width UTC timestamps compare correctly as text.
	formatTime: func(t time.Time) interface{} {
		return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
	},
}

// SQLiteStore is a SQLite implementation of the HistoryStore interface
type SQLiteStore struct {
	*sqlStore
}

// NewSQLiteStore opens or creates the history database at dbPath
func NewSQLiteStore(dbPath string, logger *zap.Logger, retention, cleanupFreq time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store, err := newSQLStore(db, sqliteDialect, logger, retention, cleanupFreq)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{sqlStore: store}, nil
}

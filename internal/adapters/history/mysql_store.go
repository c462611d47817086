package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var mysqlDialect = dialect{
	name: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS triage_history (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id VARCHAR(64) NOT NULL,
			ticket_id BIGINT NOT NULL,
			outcome VARCHAR(32) NOT NULL,
			macro_id BIGINT,
			error TEXT,
			entry JSON NOT NULL,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_triage_history_run (run_id),
			INDEX idx_triage_history_created (created_at)
		)`,
	},
	insert: `INSERT INTO triage_history (run_id, ticket_id, outcome, macro_id, error, entry, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
	selectRun: `SELECT entry FROM triage_history WHERE run_id = ? ORDER BY id`,
	cleanup:   `DELETE FROM triage_history WHERE created_at <= ?`,
	formatTime: func(t time.Time) interface{} {
		return t.UTC().Format("2006-01-02 15:04:05.000000")
	},
}

// MySQLStore is a MySQL implementation of the HistoryStore interface
type MySQLStore struct {
	*sqlStore
}

// NewMySQLStore connects to dsn and ensures the history table exists
func NewMySQLStore(dsn string, logger *zap.Logger, retention, cleanupFreq time.Duration) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	store, err := newSQLStore(db, mysqlDialect, logger, retention, cleanupFreq)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &MySQLStore{sqlStore: store}, nil
}

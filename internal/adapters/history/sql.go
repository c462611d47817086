package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mikey/support-triage/internal/core"
	"go.uber.org/zap"
)

// dialect holds the statements that differ between SQL backends
type dialect struct {
	name       string
	schema     []string
	insert     string
	selectRun  string
	cleanup    string
	formatTime func(time.Time) interface{}
}

// sqlStore is the shared implementation of the SQL history stores
type sqlStore struct {
	db          *sql.DB
	dialect     dialect
	logger      *zap.Logger
	retention   time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

func newSQLStore(db *sql.DB, d dialect, logger *zap.Logger, retention, cleanupFreq time.Duration) (*sqlStore, error) {
	for _, stmt := range d.schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create %s schema: %w", d.name, err)
		}
	}

	store := &sqlStore{
		db:          db,
		dialect:     d,
		logger:      logger,
		retention:   retention,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
		now:         time.Now,
	}

	if retention > 0 && cleanupFreq > 0 {
		go store.startCleanupTask()
	}

	return store, nil
}

// Save inserts all entries of one run in a single transaction
func (s *sqlStore) Save(ctx context.Context, runID string, entries []core.HistoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.dialect.insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	createdAt := s.dialect.formatTime(s.now())
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal history entry %d: %w", entry.TicketID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			runID,
			entry.TicketID,
			string(entry.Outcome),
			entry.MacroID,
			entry.Error,
			string(data),
			createdAt,
		); err != nil {
			return fmt.Errorf("failed to insert history entry %d: %w", entry.TicketID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history: %w", err)
	}

	s.logger.Debug("History rows inserted",
		zap.String("backend", s.dialect.name),
		zap.String("run_id", runID),
		zap.Int("entries", len(entries)))
	return nil
}

// Run returns the entries stored for runID in insertion order
func (s *sqlStore) Run(ctx context.Context, runID string) ([]core.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.selectRun, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []core.HistoryEntry
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		var entry core.HistoryEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			return nil, fmt.Errorf("failed to decode history row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %w", err)
	}
	return entries, nil
}

// Cleanup removes rows older than the retention period
func (s *sqlStore) Cleanup(ctx context.Context) error {
	if s.retention <= 0 {
		return nil
	}

	cutoff := s.dialect.formatTime(s.now().Add(-s.retention))
	result, err := s.db.ExecContext(ctx, s.dialect.cleanup, cutoff)
	if err != nil {
		return fmt.Errorf("failed to clean up expired history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		s.logger.Debug("Cleaned up expired history rows", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired rows
func (s *sqlStore) startCleanupTask() {
	ticker := time.NewTicker(s.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Cleanup(context.Background()); err != nil {
				s.logger.Error("Failed to clean up history", zap.Error(err))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection.
// Calls after the first are no-ops.
func (s *sqlStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close history database",
				zap.String("backend", s.dialect.name),
				zap.Error(err))
		}
	})
}

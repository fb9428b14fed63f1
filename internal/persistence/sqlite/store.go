// Package sqlite persists the event store in a SQLite database. It keeps the
// same full-document write policy as the JSON file backend: every save
// rewrites both tables inside one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/example/personal-calendar/internal/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS single_events (
	date_key    TEXT    NOT NULL,
	position    INTEGER NOT NULL,
	id          TEXT    NOT NULL,
	title       TEXT    NOT NULL,
	category    TEXT    NOT NULL,
	description TEXT    NOT NULL DEFAULT '',
	event_time  TEXT    NOT NULL,
	created_at  TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (date_key, position)
);
CREATE TABLE IF NOT EXISTS periodic_rules (
	position       INTEGER NOT NULL PRIMARY KEY,
	id             TEXT    NOT NULL,
	title          TEXT    NOT NULL,
	category       TEXT    NOT NULL,
	description    TEXT    NOT NULL DEFAULT '',
	event_time     TEXT    NOT NULL,
	period_info    TEXT    NOT NULL DEFAULT '{}',
	original_date  TEXT    NOT NULL,
	created_at     TEXT    NOT NULL DEFAULT '',
	excluded_dates TEXT    NOT NULL DEFAULT '[]',
	end_date       TEXT    NOT NULL DEFAULT ''
);
`

// Store is a SQLite-backed snapshot sink.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to the database at dsn and ensures the schema exists.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", persistence.ErrUnavailable, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads both tables into a document. Rows with unparseable JSON columns
// are skipped with a log entry rather than failing the load.
func (s *Store) Load(ctx context.Context) (persistence.Document, error) {
	doc := persistence.EmptyDocument()

	err := s.withReadOnlyTx(ctx, func(tx *sql.Tx) error {
		if err := s.loadSingles(ctx, tx, &doc); err != nil {
			return err
		}
		return s.loadRules(ctx, tx, &doc)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load events from sqlite, starting empty", "error", err)
		return persistence.EmptyDocument(), nil
	}
	return doc, nil
}

func (s *Store) loadSingles(ctx context.Context, tx *sql.Tx, doc *persistence.Document) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT date_key, id, title, category, description, event_time, created_at
		FROM single_events ORDER BY date_key, position`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var record persistence.EventRecord
		if err := rows.Scan(&key, &record.ID, &record.Title, &record.Category,
			&record.Description, &record.EventTime, &record.CreatedAt); err != nil {
			return err
		}
		doc.SingleEvents[key] = append(doc.SingleEvents[key], record)
	}
	return rows.Err()
}

func (s *Store) loadRules(ctx context.Context, tx *sql.Tx, doc *persistence.Document) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, title, category, description, event_time, period_info,
		       original_date, created_at, excluded_dates, end_date
		FROM periodic_rules ORDER BY position`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var record persistence.RuleRecord
		var periodInfo, excluded string
		if err := rows.Scan(&record.ID, &record.Title, &record.Category,
			&record.Description, &record.EventTime, &periodInfo,
			&record.OriginalDate, &record.CreatedAt, &excluded, &record.EndDate); err != nil {
			return err
		}
		record.IsPeriodic = true
		if err := json.Unmarshal([]byte(periodInfo), &record.PeriodInfo); err != nil {
			s.logger.WarnContext(ctx, "skipping rule with malformed period_info", "id", record.ID, "error", err)
			continue
		}
		if err := json.Unmarshal([]byte(excluded), &record.ExcludedDates); err != nil {
			s.logger.WarnContext(ctx, "skipping rule with malformed excluded_dates", "id", record.ID, "error", err)
			continue
		}
		doc.PeriodicRules = append(doc.PeriodicRules, record)
	}
	return rows.Err()
}

// Save replaces the stored document.
func (s *Store) Save(ctx context.Context, doc persistence.Document) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM single_events`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM periodic_rules`); err != nil {
			return err
		}

		keys := make([]string, 0, len(doc.SingleEvents))
		for key := range doc.SingleEvents {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			for position, record := range doc.SingleEvents[key] {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO single_events (date_key, position, id, title, category, description, event_time, created_at)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
					key, position, record.ID, record.Title, record.Category,
					record.Description, record.EventTime, record.CreatedAt); err != nil {
					return err
				}
			}
		}

		for position, record := range doc.PeriodicRules {
			periodInfo, err := json.Marshal(record.PeriodInfo)
			if err != nil {
				return err
			}
			excluded, err := json.Marshal(nonNil(record.ExcludedDates))
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO periodic_rules (position, id, title, category, description, event_time,
					period_info, original_date, created_at, excluded_dates, end_date)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				position, record.ID, record.Title, record.Category, record.Description,
				record.EventTime, string(periodInfo), record.OriginalDate,
				record.CreatedAt, string(excluded), record.EndDate); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) withReadOnlyTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer tx.Rollback()
	return fn(tx)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

var _ persistence.Store = (*Store)(nil)

// Package jsonfile persists the event store as a single JSON document on the
// local file system.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/example/personal-calendar/internal/persistence"
)

// Store is a file-backed snapshot sink. Loads are tolerant: a missing file
// creates a fresh empty document and a malformed one falls back to empty,
// so a damaged events file never prevents startup.
type Store struct {
	path   string
	logger *slog.Logger
}

// New returns a store writing to path.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Load reads and decodes the document.
//
// Two document shapes are accepted: the current layout with single_events
// and periodic_rules at the top level, and the legacy layout where the top
// level is the single-event map itself (rules default to empty).
func (s *Store) Load(ctx context.Context) (persistence.Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.InfoContext(ctx, "events file missing, creating a fresh one", "path", s.path)
		doc := persistence.EmptyDocument()
		if saveErr := s.Save(ctx, doc); saveErr != nil {
			s.logger.ErrorContext(ctx, "failed to create events file", "path", s.path, "error", saveErr)
		}
		return doc, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to read events file, starting empty", "path", s.path, "error", err)
		return persistence.EmptyDocument(), nil
	}

	return s.decode(ctx, data), nil
}

func (s *Store) decode(ctx context.Context, data []byte) persistence.Document {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		s.logger.ErrorContext(ctx, "events file is malformed, starting empty", "path", s.path, "error", err)
		return persistence.EmptyDocument()
	}

	if _, ok := top["single_events"]; ok {
		var doc persistence.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			s.logger.ErrorContext(ctx, "events file is malformed, starting empty", "path", s.path, "error", err)
			return persistence.EmptyDocument()
		}
		if doc.SingleEvents == nil {
			doc.SingleEvents = map[string][]persistence.EventRecord{}
		}
		if doc.PeriodicRules == nil {
			doc.PeriodicRules = []persistence.RuleRecord{}
		}
		return doc
	}

	// Legacy layout: the whole document is the single-event map.
	var singles map[string][]persistence.EventRecord
	if err := json.Unmarshal(data, &singles); err != nil {
		s.logger.ErrorContext(ctx, "events file is malformed, starting empty", "path", s.path, "error", err)
		return persistence.EmptyDocument()
	}
	doc := persistence.EmptyDocument()
	if singles != nil {
		doc.SingleEvents = singles
	}
	return doc
}

// Save serializes the document and replaces the target file. The document is
// written to a temporary sibling first and renamed into place so a crash
// mid-write cannot truncate the store.
func (s *Store) Save(ctx context.Context, doc persistence.Document) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode events document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create events directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write events document: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace events document: %w", err)
	}
	return nil
}

var _ persistence.Store = (*Store)(nil)

package persistence

import "context"

// Store reads and writes the full serialized event store. Writes replace the
// whole document; there are no partial updates.
type Store interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
}

// Package store persists controlled documents and their append-only version
// history. Every mutation of a single document runs as one read-modify-write
// transaction, which is what makes version increments and per-type code
// assignment linearizable.
package store

import (
	"context"
	"errors"

	"github.com/Lllllllleong/qualitydocs/internal/models"
)

// ErrNotFound is returned when a document or version does not exist.
var ErrNotFound = errors.New("record not found")

// MutateFunc edits doc in place. A non-nil version is appended to the history
// within the same transaction. Returning an error aborts without writing.
// Implementations may call it more than once when a transaction is retried,
// each time with a fresh copy of the stored document.
type MutateFunc func(doc *models.Document) (*models.DocumentVersion, error)

// Store is the record store consumed by the document services.
type Store interface {
	// Create inserts doc, assigning its ID and its per-type code atomically.
	Create(ctx context.Context, doc models.Document) (*models.Document, error)

	// PeekCode returns the code the next Create of type t would receive,
	// without reserving it.
	PeekCode(ctx context.Context, t models.DocumentType) (string, error)

	Get(ctx context.Context, id string) (*models.Document, error)

	// List returns matching documents ordered by creation time, oldest first.
	List(ctx context.Context, f models.Filter) ([]models.Document, error)

	Mutate(ctx context.Context, id string, fn MutateFunc) (*models.Document, error)

	// Delete removes the document record. Version history is retained.
	Delete(ctx context.Context, id string) error

	// Versions returns a document's history, newest first.
	Versions(ctx context.Context, documentID string) ([]models.DocumentVersion, error)

	Version(ctx context.Context, versionID string) (*models.DocumentVersion, error)

	Close() error
}

// counter is the per-type numbering record.
type counter struct {
	Type models.DocumentType `firestore:"type"`
	Last int                 `firestore:"last"`
}

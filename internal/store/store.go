package store

import (
	"context"
	"errors"

	"pdfchat/internal/index"
	"pdfchat/internal/model"
)

// ErrNotFound is returned for lookups and deletes on unknown document ids.
var ErrNotFound = errors.New("document not found")

// Entry is one registered document: its metadata plus the vector index built
// at ingestion.
type Entry struct {
	Document model.Document
	Index    *index.Index
}

// DocumentStore is the process-wide document registry. The default
// implementation is in-memory; a MySQL-backed implementation can be selected
// via configuration for deployments that want documents to survive restarts.
type DocumentStore interface {
	// Put registers a fully-built document. Reusing an id silently
	// overwrites (ids are uuids, so this does not occur in practice).
	Put(ctx context.Context, entry Entry) error
	// Get returns the entry for id, or ErrNotFound.
	Get(ctx context.Context, id string) (Entry, error)
	// List returns metadata for all documents, sorted by creation time.
	List(ctx context.Context) ([]model.Document, error)
	// Delete removes the entry for id, or returns ErrNotFound. An in-flight
	// query holding the entry's index keeps using it; deletion only
	// unregisters the document.
	Delete(ctx context.Context, id string) error
}

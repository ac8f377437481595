package model

import "time"

// Document is the metadata for one ingested PDF. The vector index that backs
// it lives in the DocumentStore entry, keyed by ID.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunks"`
	CreatedAt  time.Time `json:"createdAt"`
}

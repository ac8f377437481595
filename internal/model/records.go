package model

import (
	"encoding/json"
	"time"
)

// DocumentRecord is the MySQL row backing a Document when the persistent
// store backend is enabled.
type DocumentRecord struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	Filename   string    `gorm:"size:256;not null" json:"filename"`
	ChunkCount int       `gorm:"not null" json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChunkRecord stores a text chunk and its embedding for retrieval.
// Embedding is stored as a JSON array of float32 for portability.
type ChunkRecord struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	DocumentID string `gorm:"size:64;not null;index" json:"document_id"`
	ChunkIndex int    `gorm:"not null" json:"chunk_index"`
	Page       int    `json:"page"`
	Offset     int    `gorm:"column:text_offset" json:"offset"`
	Content    string `gorm:"type:text;not null" json:"content"`
	Embedding  string `gorm:"type:text" json:"-"` // JSON array of float32
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *ChunkRecord) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *ChunkRecord) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}

// Chunk converts the row back to the in-memory chunk shape.
func (c *ChunkRecord) Chunk() Chunk {
	return Chunk{Index: c.ChunkIndex, Text: c.Content, Page: c.Page, Offset: c.Offset}
}

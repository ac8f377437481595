package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"pdfchat/internal/index"
	"pdfchat/internal/model"
	"pdfchat/internal/repository"
)

// MySQL is the persistent DocumentStore backend. Embeddings are stored with
// their chunks and the vector index is rebuilt from rows on Get; retrieval
// itself stays in-process, the database only provides durability.
type MySQL struct {
	db     *gorm.DB
	docs   *repository.DocumentRepository
	chunks *repository.ChunkRepository
}

func NewMySQL(db *gorm.DB) *MySQL {
	return &MySQL{
		db:     db,
		docs:   repository.NewDocumentRepository(db),
		chunks: repository.NewChunkRepository(db),
	}
}

func (s *MySQL) Put(ctx context.Context, entry Entry) error {
	chunks := entry.Index.Chunks()
	vectors := entry.Index.Vectors()
	records := make([]model.ChunkRecord, len(chunks))
	for i := range chunks {
		records[i] = model.ChunkRecord{
			DocumentID: entry.Document.ID,
			ChunkIndex: chunks[i].Index,
			Page:       chunks[i].Page,
			Offset:     chunks[i].Offset,
			Content:    chunks[i].Text,
		}
		records[i].SetEmbedding(vectors[i])
	}

	doc := model.DocumentRecord{
		ID:         entry.Document.ID,
		Filename:   entry.Document.Filename,
		ChunkCount: entry.Document.ChunkCount,
		CreatedAt:  entry.Document.CreatedAt,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// id reuse overwrites: clear any previous rows first
		if _, err := s.docs.DeleteByID(tx, doc.ID); err != nil {
			return err
		}
		if err := s.chunks.DeleteByDocumentID(tx, doc.ID); err != nil {
			return err
		}
		if err := s.docs.Create(tx, &doc); err != nil {
			return err
		}
		return s.chunks.CreateBatch(tx, records)
	})
	if err != nil {
		return fmt.Errorf("put document %s failed: %w", doc.ID, err)
	}
	return nil
}

func (s *MySQL) Get(ctx context.Context, id string) (Entry, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	if doc == nil {
		return Entry{}, ErrNotFound
	}

	records, err := s.chunks.ListByDocumentID(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	chunks := make([]model.Chunk, len(records))
	vectors := make([][]float32, len(records))
	for i := range records {
		chunks[i] = records[i].Chunk()
		vectors[i] = records[i].EmbeddingVector()
	}
	ix, err := index.From(chunks, vectors)
	if err != nil {
		return Entry{}, fmt.Errorf("rebuild index for %s failed: %w", id, err)
	}

	return Entry{
		Document: model.Document{
			ID:         doc.ID,
			Filename:   doc.Filename,
			ChunkCount: doc.ChunkCount,
			CreatedAt:  doc.CreatedAt,
		},
		Index: ix,
	}, nil
}

func (s *MySQL) List(ctx context.Context) ([]model.Document, error) {
	records, err := s.docs.List(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]model.Document, len(records))
	for i, r := range records {
		docs[i] = model.Document{
			ID:         r.ID,
			Filename:   r.Filename,
			ChunkCount: r.ChunkCount,
			CreatedAt:  r.CreatedAt,
		}
	}
	return docs, nil
}

func (s *MySQL) Delete(ctx context.Context, id string) error {
	var found bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		found, err = s.docs.DeleteByID(tx, id)
		if err != nil {
			return err
		}
		return s.chunks.DeleteByDocumentID(tx, id)
	})
	if err != nil {
		return fmt.Errorf("delete document %s failed: %w", id, err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pdfchat/internal/ai"
	"pdfchat/internal/cache"
	"pdfchat/internal/events"
	"pdfchat/internal/index"
	"pdfchat/internal/model"
	"pdfchat/internal/pkg/pdfextract"
	"pdfchat/internal/splitter"
	"pdfchat/internal/store"
)

const systemPrompt = "You are a helpful assistant that answers questions about a document. " +
	"Answer using only the provided context. If the context does not contain enough " +
	"information to answer, say that you cannot find the answer in the document. " +
	"Format the answer as well-structured markdown, using lists and examples where helpful."

// DocumentService owns the document lifecycle (ingest, list, delete) and
// retrieval-augmented answering. Cache and publisher are optional and may be
// nil; their failures never fail a request.
type DocumentService struct {
	store       store.DocumentStore
	embedder    ai.Embedder
	generator   ai.Generator
	answerCache *cache.AnswerCache
	publisher   *events.Publisher
	logger      *zap.Logger

	chunkSize      int
	chunkOverlap   int
	embedBatchSize int
	defaultTopK    int
}

type Options struct {
	ChunkSize      int
	ChunkOverlap   int
	EmbedBatchSize int
	DefaultTopK    int
	AnswerCache    *cache.AnswerCache
	Publisher      *events.Publisher
}

func NewDocumentService(
	docStore store.DocumentStore,
	embedder ai.Embedder,
	generator ai.Generator,
	logger *zap.Logger,
	opts Options,
) *DocumentService {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = 0
	}
	if opts.EmbedBatchSize <= 0 {
		opts.EmbedBatchSize = 10
	}
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		store:          docStore,
		embedder:       embedder,
		generator:      generator,
		answerCache:    opts.AnswerCache,
		publisher:      opts.Publisher,
		logger:         logger,
		chunkSize:      opts.ChunkSize,
		chunkOverlap:   opts.ChunkOverlap,
		embedBatchSize: opts.EmbedBatchSize,
		defaultTopK:    opts.DefaultTopK,
	}
}

// IngestInput carries an upload's extracted pages into ingestion.
type IngestInput struct {
	Filename string
	Pages    []pdfextract.Page
}

type IngestResult struct {
	Document model.Document `json:"document"`
}

// Ingest splits the extracted text, embeds every chunk, builds the vector
// index, and registers the document. The document becomes visible only after
// the whole chunk set is embedded; any failure registers nothing.
func (s *DocumentService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	filename := strings.TrimSpace(input.Filename)
	if filename == "" {
		return nil, fmt.Errorf("%w: missing filename", ErrInvalidInput)
	}

	chunks := s.chunkPages(input.Pages)
	if len(chunks) == 0 {
		return nil, ErrNoContent
	}

	ix, err := index.Build(ctx, chunks, s.embedder, s.embedBatchSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	doc := model.Document{
		ID:         uuid.NewString(),
		Filename:   filename,
		ChunkCount: len(chunks),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Put(ctx, store.Entry{Document: doc, Index: ix}); err != nil {
		return nil, fmt.Errorf("register document failed: %w", err)
	}

	s.logger.Info("document ingested",
		zap.String("document_id", doc.ID),
		zap.String("filename", doc.Filename),
		zap.Int("chunks", doc.ChunkCount))
	s.publish(ctx, events.DocumentEvent{
		Type:       events.TypeDocumentIngested,
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Chunks:     doc.ChunkCount,
		OccurredAt: doc.CreatedAt,
	})

	return &IngestResult{Document: doc}, nil
}

// chunkPages joins page texts (blank-line separated) into one body and
// splits it, attributing each chunk to the page containing its start.
func (s *DocumentService) chunkPages(pages []pdfextract.Page) []model.Chunk {
	type pageStart struct {
		number int
		start  int // rune offset of the page's text in the joined body
	}

	var body strings.Builder
	var starts []pageStart
	offset := 0
	for _, p := range pages {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		if body.Len() > 0 {
			body.WriteString("\n\n")
			offset += 2
		}
		starts = append(starts, pageStart{number: p.Number, start: offset})
		body.WriteString(text)
		offset += len([]rune(text))
	}

	pieces := splitter.New(s.chunkSize, s.chunkOverlap).Split(body.String())
	chunks := make([]model.Chunk, 0, len(pieces))
	for _, piece := range pieces {
		text := strings.TrimSpace(piece.Text)
		if text == "" {
			continue
		}
		page := 0
		j := sort.Search(len(starts), func(k int) bool { return starts[k].start > piece.Start })
		if j > 0 {
			page = starts[j-1].number
		}
		chunks = append(chunks, model.Chunk{
			Index:  len(chunks),
			Text:   text,
			Page:   page,
			Offset: piece.Start,
		})
	}
	return chunks
}

// AskInput is a question against one document.
type AskInput struct {
	DocumentID string
	Question   string
	TopK       int
}

// Source is one retrieved chunk that fed the prompt.
type Source struct {
	Text  string  `json:"text"`
	Page  int     `json:"page"`
	Index int     `json:"index"`
	Score float32 `json:"score"`
}

// DocumentInfo is the summary metadata returned with an answer.
type DocumentInfo struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
}

type AskResult struct {
	Answer       string       `json:"answer"`
	Sources      []Source     `json:"sources"`
	DocumentInfo DocumentInfo `json:"documentInfo"`
}

// Ask retrieves the topK most similar chunks and asks the generator for an
// answer grounded in them. The question is validated before any external
// call is made.
func (s *DocumentService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	topK := input.TopK
	if topK <= 0 {
		topK = s.defaultTopK
	}

	entry, err := s.store.Get(ctx, input.DocumentID)
	if err != nil {
		return nil, err
	}

	if s.answerCache != nil {
		var cached AskResult
		hit, err := s.answerCache.Get(ctx, input.DocumentID, question, topK, &cached)
		if err != nil {
			s.logger.Warn("answer cache read failed", zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	hits := entry.Index.Search(queryVec, topK)
	contexts := make([]string, len(hits))
	sources := make([]Source, len(hits))
	for i, hit := range hits {
		contexts[i] = hit.Chunk.Text
		sources[i] = Source{
			Text:  hit.Chunk.Text,
			Page:  hit.Chunk.Page,
			Index: hit.Chunk.Index,
			Score: hit.Score,
		}
	}

	userContent := "Context:\n\n" + strings.Join(contexts, "\n\n") + "\n\nQuestion: " + question
	answer, err := s.generator.Complete(ctx, []ai.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userContent},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	result := &AskResult{
		Answer:  strings.TrimSpace(answer),
		Sources: sources,
		DocumentInfo: DocumentInfo{
			ID:       entry.Document.ID,
			Filename: entry.Document.Filename,
			Chunks:   entry.Document.ChunkCount,
		},
	}

	if s.answerCache != nil {
		if err := s.answerCache.Set(ctx, input.DocumentID, question, topK, result); err != nil {
			s.logger.Warn("answer cache write failed", zap.Error(err))
		}
	}
	return result, nil
}

// List returns metadata for every registered document.
func (s *DocumentService) List(ctx context.Context) ([]model.Document, error) {
	return s.store.List(ctx)
}

// Delete unregisters a document. Queries already holding the index keep
// their reference and finish normally.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	entry, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("document deleted", zap.String("document_id", id))
	s.publish(ctx, events.DocumentEvent{
		Type:       events.TypeDocumentDeleted,
		DocumentID: id,
		Filename:   entry.Document.Filename,
		Chunks:     entry.Document.ChunkCount,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

func (s *DocumentService) publish(ctx context.Context, evt events.DocumentEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("publish document event failed",
			zap.String("type", evt.Type),
			zap.String("document_id", evt.DocumentID),
			zap.Error(err))
	}
}

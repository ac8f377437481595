package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/ai"
	"pdfchat/internal/pkg/pdfextract"
	"pdfchat/internal/store"
)

type fakeEmbedder struct {
	batchCalls int
	queryCalls int
	failBatch  bool
	failQuery  bool
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	if f.failBatch {
		return nil, errors.New("embedding provider down")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = vectorFor(t)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.queryCalls++
	if f.failQuery {
		return nil, errors.New("embedding provider down")
	}
	return vectorFor(text), nil
}

// vectorFor gives texts mentioning "gopher" one direction and everything
// else another, so similarity ranking is predictable.
func vectorFor(text string) []float32 {
	if strings.Contains(strings.ToLower(text), "gopher") {
		return []float32{1, 0}
	}
	return []float32{0, 1}
}

type fakeGenerator struct {
	calls      int
	lastSystem string
	lastUser   string
	fail       bool
}

func (f *fakeGenerator) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	f.calls++
	if f.fail {
		return "", errors.New("generator down")
	}
	for _, m := range messages {
		switch m.Role {
		case "system":
			f.lastSystem = m.Content
		case "user":
			f.lastUser = m.Content
		}
	}
	return "  generated answer  ", nil
}

func newTestService(emb *fakeEmbedder, gen *fakeGenerator) *DocumentService {
	return NewDocumentService(store.NewMemory(), emb, gen, nil, Options{
		ChunkSize:    30,
		ChunkOverlap: 0,
		DefaultTopK:  3,
	})
}

func pagesWith(texts ...string) []pdfextract.Page {
	pages := make([]pdfextract.Page, len(texts))
	for i, t := range texts {
		pages[i] = pdfextract.Page{Number: i + 1, Text: t}
	}
	return pages
}

func TestIngestRegistersDocument(t *testing.T) {
	svc := newTestService(&fakeEmbedder{}, &fakeGenerator{})

	res, err := svc.Ingest(context.Background(), IngestInput{
		Filename: "report.pdf",
		Pages:    pagesWith("gophers dig tunnels", "taxes are due in april"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Document.ID)
	assert.Equal(t, "report.pdf", res.Document.Filename)
	assert.Equal(t, 2, res.Document.ChunkCount)

	docs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, res.Document.ID, docs[0].ID)
	assert.Equal(t, 2, docs[0].ChunkCount)
}

func TestIngestLongTextProducesMultipleChunks(t *testing.T) {
	svc := newTestService(&fakeEmbedder{}, &fakeGenerator{})

	text := strings.Repeat("gophers are burrowing rodents native to north america. ", 15)
	res, err := svc.Ingest(context.Background(), IngestInput{
		Filename: "gophers.pdf",
		Pages:    pagesWith(text, text, text),
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Document.ChunkCount, 3)
}

func TestIngestEmptyDocument(t *testing.T) {
	svc := newTestService(&fakeEmbedder{}, &fakeGenerator{})

	_, err := svc.Ingest(context.Background(), IngestInput{Filename: "empty.pdf", Pages: nil})
	assert.ErrorIs(t, err, ErrNoContent)

	_, err = svc.Ingest(context.Background(), IngestInput{
		Filename: "blank.pdf",
		Pages:    pagesWith("   \n  "),
	})
	assert.ErrorIs(t, err, ErrNoContent)

	docs, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs, "failed ingestion must register nothing")
}

func TestIngestAbortsOnEmbeddingFailure(t *testing.T) {
	svc := newTestService(&fakeEmbedder{failBatch: true}, &fakeGenerator{})

	_, err := svc.Ingest(context.Background(), IngestInput{
		Filename: "report.pdf",
		Pages:    pagesWith("some text"),
	})
	assert.ErrorIs(t, err, ErrEmbeddingFailed)

	docs, listErr := svc.List(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, docs)
}

func TestIngestAssignsPageNumbers(t *testing.T) {
	emb := &fakeEmbedder{}
	svc := newTestService(emb, &fakeGenerator{})

	res, err := svc.Ingest(context.Background(), IngestInput{
		Filename: "two-pages.pdf",
		Pages:    pagesWith("first page text", "second page text"),
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.Document.ChunkCount)

	ask, err := svc.Ask(context.Background(), AskInput{
		DocumentID: res.Document.ID,
		Question:   "what is on the pages?",
		TopK:       2,
	})
	require.NoError(t, err)
	require.Len(t, ask.Sources, 2)
	pages := []int{ask.Sources[0].Page, ask.Sources[1].Page}
	assert.ElementsMatch(t, []int{1, 2}, pages)
}

func TestAskAnswersWithSources(t *testing.T) {
	emb := &fakeEmbedder{}
	gen := &fakeGenerator{}
	svc := newTestService(emb, gen)

	res, err := svc.Ingest(context.Background(), IngestInput{
		Filename: "report.pdf",
		Pages:    pagesWith("gophers dig tunnels", "taxes are due in april"),
	})
	require.NoError(t, err)

	ask, err := svc.Ask(context.Background(), AskInput{
		DocumentID: res.Document.ID,
		Question:   "tell me about gophers",
		TopK:       1,
	})
	require.NoError(t, err)
	assert.Equal(t, "generated answer", ask.Answer)
	require.Len(t, ask.Sources, 1)
	assert.Equal(t, "gophers dig tunnels", ask.Sources[0].Text)
	assert.Equal(t, "report.pdf", ask.DocumentInfo.Filename)
	assert.Equal(t, 2, ask.DocumentInfo.Chunks)

	// prompt carries the retrieved context, the question, and the
	// insufficient-context instruction
	assert.Contains(t, gen.lastUser, "gophers dig tunnels")
	assert.Contains(t, gen.lastUser, "tell me about gophers")
	assert.Contains(t, gen.lastSystem, "cannot find the answer")
}

func TestAskTopKLargerThanChunkCount(t *testing.T) {
	svc := newTestService(&fakeEmbedder{}, &fakeGenerator{})

	res, err := svc.Ingest(context.Background(), IngestInput{
		Filename: "small.pdf",
		Pages:    pagesWith("gophers dig tunnels", "taxes are due"),
	})
	require.NoError(t, err)

	ask, err := svc.Ask(context.Background(), AskInput{
		DocumentID: res.Document.ID,
		Question:   "anything?",
		TopK:       10,
	})
	require.NoError(t, err)
	assert.Len(t, ask.Sources, 2)
}

func TestAskEmptyQuestionMakesNoExternalCalls(t *testing.T) {
	emb := &fakeEmbedder{}
	gen := &fakeGenerator{}
	svc := newTestService(emb, gen)

	res, err := svc.Ingest(context.Background(), IngestInput{
		Filename: "report.pdf",
		Pages:    pagesWith("some content"),
	})
	require.NoError(t, err)
	callsAfterIngest := emb.batchCalls

	_, err = svc.Ask(context.Background(), AskInput{DocumentID: res.Document.ID, Question: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, callsAfterIngest, emb.batchCalls)
	assert.Zero(t, emb.queryCalls)
	assert.Zero(t, gen.calls)
}

func TestAskUnknownDocument(t *testing.T) {
	svc := newTestService(&fakeEmbedder{}, &fakeGenerator{})
	_, err := svc.Ask(context.Background(), AskInput{DocumentID: "missing", Question: "hi?"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAskGenerationFailure(t *testing.T) {
	svc := newTestService(&fakeEmbedder{}, &fakeGenerator{fail: true})

	res, err := svc.Ingest(context.Background(), IngestInput{
		Filename: "report.pdf",
		Pages:    pagesWith("some content"),
	})
	require.NoError(t, err)

	_, err = svc.Ask(context.Background(), AskInput{DocumentID: res.Document.ID, Question: "hi?"})
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestDeleteTwice(t *testing.T) {
	svc := newTestService(&fakeEmbedder{}, &fakeGenerator{})

	res, err := svc.Ingest(context.Background(), IngestInput{
		Filename: "report.pdf",
		Pages:    pagesWith("some content"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), res.Document.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), res.Document.ID), store.ErrNotFound)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/ai"
	"pdfchat/internal/app"
	"pdfchat/internal/pkg/pdfextract"
	"pdfchat/internal/store"
)

type fakeEmbedder struct{}

func (fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

type fakeGenerator struct{}

func (fakeGenerator) Complete(context.Context, []ai.ChatMessage) (string, error) {
	return "the answer", nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *app.DocumentService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := app.NewDocumentService(store.NewMemory(), fakeEmbedder{}, fakeGenerator{}, nil, app.Options{})
	documentHandler := NewDocumentHandler(svc, 1024)
	queryHandler := NewQueryHandler(svc)

	router := gin.New()
	router.POST("/upload-pdf", documentHandler.Upload)
	router.POST("/query/:documentId", queryHandler.Ask)
	router.GET("/documents", documentHandler.List)
	router.DELETE("/documents/:documentId", documentHandler.Delete)
	return router, svc
}

func ingestFixture(t *testing.T, svc *app.DocumentService) string {
	t.Helper()
	res, err := svc.Ingest(context.Background(), app.IngestInput{
		Filename: "fixture.pdf",
		Pages:    []pdfextract.Page{{Number: 1, Text: "gophers dig tunnels all day"}},
	})
	require.NoError(t, err)
	return res.Document.ID
}

func multipartPDF(t *testing.T, field, filename, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestUploadMissingFile(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "missing pdf")
}

func TestUploadRejectsNonPDFMimetype(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartPDF(t, "pdf", "notes.txt", "text/plain", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "only PDF")
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	router, _ := newTestRouter(t) // 1 KiB cap

	body, contentType := multipartPDF(t, "pdf", "big.pdf", "application/pdf", bytes.Repeat([]byte("a"), 4096))
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, errorBody(t, rec), "file too large")
}

func TestUploadExtractionFailure(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartPDF(t, "pdf", "broken.pdf", "application/pdf", []byte("not really a pdf"))
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, errorBody(t, rec), "extract")
}

func TestQueryReturnsAnswerAndSources(t *testing.T) {
	router, svc := newTestRouter(t)
	id := ingestFixture(t, svc)

	payload := strings.NewReader(`{"question":"what do gophers do?","topK":3}`)
	req := httptest.NewRequest(http.MethodPost, "/query/"+id, payload)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Answer       string `json:"answer"`
		Sources      []any  `json:"sources"`
		DocumentInfo struct {
			Filename string `json:"filename"`
			Chunks   int    `json:"chunks"`
		} `json:"documentInfo"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "the answer", body.Answer)
	assert.Len(t, body.Sources, 1, "topK beyond chunk count returns what exists")
	assert.Equal(t, "fixture.pdf", body.DocumentInfo.Filename)
	assert.Equal(t, 1, body.DocumentInfo.Chunks)
}

func TestQueryMissingQuestion(t *testing.T) {
	router, svc := newTestRouter(t)
	id := ingestFixture(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/query/"+id, strings.NewReader(`{"question":""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryUnknownDocument(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/query/unknown-id", strings.NewReader(`{"question":"hi?"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQueryMalformedJSON(t *testing.T) {
	router, svc := newTestRouter(t)
	id := ingestFixture(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/query/"+id, strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListDocuments(t *testing.T) {
	router, svc := newTestRouter(t)
	id := ingestFixture(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Documents []struct {
			ID     string `json:"id"`
			Chunks int    `json:"chunks"`
		} `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Documents, 1)
	assert.Equal(t, id, body.Documents[0].ID)
	assert.Equal(t, 1, body.Documents[0].Chunks)
}

func TestDeleteDocumentTwice(t *testing.T) {
	router, svc := newTestRouter(t)
	id := ingestFixture(t, svc)

	req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pdfchat/internal/app"
	"pdfchat/internal/pkg/pdfextract"
	"pdfchat/internal/store"
	"pdfchat/internal/transport/http/response"
)

const pdfMimeType = "application/pdf"

type DocumentHandler struct {
	service        *app.DocumentService
	maxUploadBytes int64
}

func NewDocumentHandler(service *app.DocumentService, maxUploadBytes int64) *DocumentHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &DocumentHandler{service: service, maxUploadBytes: maxUploadBytes}
}

type uploadResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"documentId"`
	Filename   string `json:"filename"`
	Chunks     int    `json:"chunks"`
}

// Upload accepts a multipart form with a "pdf" file field, extracts its
// text, and ingests it. The upload only ever touches a scratch file that is
// removed before the response is written.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("pdf")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "missing pdf file field")
		return
	}
	if file.Size > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	if file.Header.Get("Content-Type") != pdfMimeType {
		response.Error(c, http.StatusBadRequest, "only PDF files are accepted")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to read upload")
		return
	}
	defer f.Close()

	pages, err := pdfextract.ExtractPagesFromReader(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to extract text from PDF: "+err.Error())
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), app.IngestInput{
		Filename: file.Filename,
		Pages:    pages,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoContent):
			response.Error(c, http.StatusInternalServerError, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	response.OK(c, uploadResponse{
		Success:    true,
		DocumentID: result.Document.ID,
		Filename:   result.Document.Filename,
		Chunks:     result.Document.ChunkCount,
	})
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "list documents failed")
		return
	}
	response.OK(c, gin.H{"documents": docs})
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id := c.Param("documentId")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "document not found")
		} else {
			response.Error(c, http.StatusInternalServerError, "delete document failed")
		}
		return
	}
	response.OK(c, gin.H{"success": true})
}

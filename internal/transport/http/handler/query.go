package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pdfchat/internal/app"
	"pdfchat/internal/store"
	"pdfchat/internal/transport/http/response"
)

type QueryHandler struct {
	service *app.DocumentService
}

func NewQueryHandler(service *app.DocumentService) *QueryHandler {
	return &QueryHandler{service: service}
}

type queryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"topK"`
}

func (h *QueryHandler) Ask(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.service.Ask(c.Request.Context(), app.AskInput{
		DocumentID: c.Param("documentId"),
		Question:   req.Question,
		TopK:       req.TopK,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			response.Error(c, http.StatusNotFound, "document not found")
		default:
			response.Error(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	response.OK(c, result)
}

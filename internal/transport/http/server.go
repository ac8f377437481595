package http

import (
	"github.com/gin-gonic/gin"

	"pdfchat/internal/ai"
	appsvc "pdfchat/internal/app"
	"pdfchat/internal/bootstrap"
	"pdfchat/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = app.Config.MaxUploadBytes()

	llmClient := ai.NewOpenAICompatibleClient(ai.Config{
		BaseURL:          app.Config.LLM.BaseURL,
		APIKey:           app.Config.LLM.APIKey,
		ChatModel:        app.Config.LLM.Model,
		EmbeddingModel:   app.Config.LLM.EmbeddingModel,
		QueryTextType:    app.Config.LLM.QueryTextType,
		DocumentTextType: app.Config.LLM.DocumentTextType,
	})
	documentService := appsvc.NewDocumentService(app.Store, llmClient, llmClient, app.Logger, appsvc.Options{
		ChunkSize:      app.Config.Ingest.ChunkSize,
		ChunkOverlap:   app.Config.Ingest.ChunkOverlap,
		EmbedBatchSize: app.Config.Ingest.EmbedBatchSize,
		DefaultTopK:    app.Config.Ingest.DefaultTopK,
		AnswerCache:    app.AnswerCache,
		Publisher:      app.Publisher,
	})

	healthHandler := handler.NewHealthHandler(app)
	documentHandler := handler.NewDocumentHandler(documentService, app.Config.MaxUploadBytes())
	queryHandler := handler.NewQueryHandler(documentService)

	router.GET("/healthz", healthHandler.Check)
	router.POST("/upload-pdf", documentHandler.Upload)
	router.POST("/query/:documentId", queryHandler.Ask)
	router.GET("/documents", documentHandler.List)
	router.DELETE("/documents/:documentId", documentHandler.Delete)

	return router
}

package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"ai-workspace/internal/ai"
	appsvc "ai-workspace/internal/app"
	"ai-workspace/internal/bootstrap"
	"ai-workspace/internal/cache"
	"ai-workspace/internal/connector/googledocs"
	slackconn "ai-workspace/internal/connector/slack"
	"ai-workspace/internal/platform/rabbitmq"
	"ai-workspace/internal/repository"
	"ai-workspace/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	embedder := appsvc.NewAIEmbedder(app.AIClient, ai.EmbeddingConfig{
		BaseURL:   app.Config.LLM.BaseURL,
		APIKey:    app.Config.LLM.APIKey,
		Model:     app.Config.LLM.EmbeddingModel,
		Dimension: app.Config.LLM.EmbeddingDimension,
	})
	answerer := appsvc.NewAIAnswerModel(app.AIClient, ai.ChatConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.Model,
	})

	queryService := appsvc.NewQueryService(app.VectorStore, embedder, answerer)
	deleteService := appsvc.NewDeleteService(app.VectorStore, app.Config.Ingest.UploadDir)
	documentService := appsvc.NewDocumentService(app.Config.Ingest.UploadDir)
	fileSearch := appsvc.NewEmailFileSearch(app.Config.Ingest.EmailsDir)

	messageRepo := repository.NewMessageRepository(app.MySQL)
	activityRepo := repository.NewActivityRepository(app.MySQL)
	publisher := rabbitmq.NewMessagePublisher(app.MQConn, app.Config.RabbitMQ.MessagePersistQueue)
	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		5*time.Second,
	)
	chatService := appsvc.NewChatService(messageRepo, publisher, historyCache)
	activityService := appsvc.NewActivityService(activityRepo)

	slackConnector := slackconn.NewConnector(app.Ingest, app.SlackTokens, app.Config.Ingest.UploadDir)
	docsImporter := googledocs.NewImporter(app.Ingest, app.GoogleOAuth, app.GoogleTokens, app.Config.Ingest.UploadDir)

	documentsHandler := handler.NewDocumentsHandler(app.Ingest, documentService, deleteService, app.Config.Ingest.UploadDir)
	searchHandler := handler.NewSearchHandler(queryService, fileSearch)
	emailsHandler := handler.NewEmailsHandler(app)
	slackHandler := handler.NewSlackHandler(app, slackConnector)
	docsHandler := handler.NewGoogleDocsHandler(docsImporter, queryService)
	chatHandler := handler.NewChatHandler(chatService)
	activityHandler := handler.NewActivityHandler(activityService)

	router.POST("/upload", documentsHandler.Upload)

	api := router.Group("/api")

	api.GET("/search", searchHandler.Search)
	api.GET("/search-similar", searchHandler.SearchSimilar)
	api.GET("/search/emails", searchHandler.SearchEmails)
	api.GET("/search/emails/fast", searchHandler.SearchEmailsFast)

	api.GET("/documents", documentsHandler.List)
	api.DELETE("/documents", documentsHandler.Delete)

	emails := api.Group("/emails")
	emails.GET("/auth/url", emailsHandler.AuthURL)
	emails.GET("/auth/callback", emailsHandler.AuthCallback)
	emails.GET("/accounts", emailsHandler.Accounts)
	emails.POST("/accounts/:email/disconnect", emailsHandler.Disconnect)
	emails.GET("/status", emailsHandler.Status)

	slack := api.Group("/slack")
	slack.GET("/connect", slackHandler.Connect)
	slack.GET("/oauth/callback", slackHandler.OAuthCallback)
	slack.POST("/events", slackHandler.Events)
	slack.GET("/status", slackHandler.Status)

	docs := api.Group("/google-docs")
	docs.POST("/import", docsHandler.Import)
	docs.GET("/list", docsHandler.List)

	chat := api.Group("/chat")
	chat.POST("/messages", chatHandler.SaveMessage)
	chat.GET("/messages", chatHandler.ListMessages)
	chat.GET("/messages/:session", chatHandler.SessionHistory)

	api.POST("/activity", activityHandler.Record)
	api.GET("/activity", activityHandler.Recent)

	return router
}

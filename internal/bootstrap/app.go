package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"ai-workspace/internal/ai"
	"ai-workspace/internal/app"
	"ai-workspace/internal/config"
	"ai-workspace/internal/connector"
	gmailconn "ai-workspace/internal/connector/gmail"
	slackconn "ai-workspace/internal/connector/slack"
	"ai-workspace/internal/model"
	mysqlClient "ai-workspace/internal/platform/mysql"
	rabbitmqClient "ai-workspace/internal/platform/rabbitmq"
	redisClient "ai-workspace/internal/platform/redis"
	"ai-workspace/internal/repository"
	"ai-workspace/internal/vectorstore"
	"ai-workspace/internal/vectorstore/qdrant"
	"ai-workspace/internal/worker"
)

type App struct {
	Config        *config.Config
	MySQL         *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	MessageWorker *worker.MessagePersistWorker

	VectorStore vectorstore.Store
	AIClient    *ai.Client
	Ingest      *app.IngestService

	GoogleOAuth  *oauth2.Config
	GoogleTokens *gmailconn.TokenStore
	SlackTokens  *slackconn.TokenStore
	Connectors   *connector.Manager

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.ChatMessage{}, &model.Activity{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	store := qdrant.New(qdrant.Config{
		URL:        cfg.Vector.URL,
		APIKey:     cfg.Vector.APIKey,
		Collection: cfg.Vector.Collection,
	})
	if err := store.EnsureCollection(ctx, cfg.LLM.EmbeddingDimension); err != nil {
		return nil, fmt.Errorf("ensure vector collection failed: %w", err)
	}

	aiClient := ai.NewClient()
	embedder := app.NewAIEmbedder(aiClient, ai.EmbeddingConfig{
		BaseURL:   cfg.LLM.BaseURL,
		APIKey:    cfg.LLM.APIKey,
		Model:     cfg.LLM.EmbeddingModel,
		Dimension: cfg.LLM.EmbeddingDimension,
	})
	ingestService := app.NewIngestService(store, embedder)

	messageRepo := repository.NewMessageRepository(mysqlDB)
	messageWorker := worker.NewMessagePersistWorker(mqConn, messageRepo, cfg.RabbitMQ.MessagePersistQueue)
	if err := messageWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start message worker failed: %w", err)
	}

	googleTokens, err := gmailconn.NewTokenStore(cfg.Google.TokensDir)
	if err != nil {
		return nil, err
	}
	slackTokens, err := slackconn.NewTokenStore(cfg.Google.TokensDir)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:        cfg,
		MySQL:         mysqlDB,
		Redis:         redisCli,
		MQConn:        mqConn,
		MessageWorker: messageWorker,
		VectorStore:   store,
		AIClient:      aiClient,
		Ingest:        ingestService,
		GoogleOAuth:   gmailconn.OAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURI),
		GoogleTokens:  googleTokens,
		SlackTokens:   slackTokens,
		Connectors:    connector.NewManager(),
		StartedAt:     time.Now(),
	}

	a.resumeConnectors(ctx)
	return a, nil
}

// resumeConnectors restarts pollers for every account whose credential
// survived the last shutdown. Failures are logged, not fatal; a revoked
// token just leaves the account disconnected.
func (a *App) resumeConnectors(ctx context.Context) {
	accounts, err := a.GoogleTokens.Accounts()
	if err != nil {
		log.Printf("list stored accounts failed: %v", err)
		return
	}
	for _, account := range accounts {
		runner := a.NewGmailRunner(account)
		if err := a.Connectors.Add(ctx, runner); err != nil {
			log.Printf("resume gmail connector %s failed: %v", account, err)
		}
	}
}

func (a *App) NewGmailRunner(account string) *gmailconn.Runner {
	return gmailconn.NewRunner(account, gmailconn.Config{
		PollInterval: time.Duration(a.Config.Ingest.PollIntervalSeconds) * time.Second,
		MaxResults:   int64(a.Config.Ingest.MaxResults),
		EmailsDir:    a.Config.Ingest.EmailsDir,
		ProcessedDir: a.Config.Ingest.ProcessedDir,
	}, a.GoogleOAuth, a.GoogleTokens, a.Ingest)
}

func (a *App) Close() error {
	var closeErr error
	if a.Connectors != nil {
		a.Connectors.StopAll()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MessageWorker != nil {
		a.MessageWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}

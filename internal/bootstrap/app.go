package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pdfchat/internal/cache"
	"pdfchat/internal/config"
	"pdfchat/internal/events"
	"pdfchat/internal/model"
	mysqlClient "pdfchat/internal/platform/mysql"
	rabbitmqClient "pdfchat/internal/platform/rabbitmq"
	redisClient "pdfchat/internal/platform/redis"
	"pdfchat/internal/repository"
	"pdfchat/internal/store"
	"pdfchat/internal/worker"
)

// App wires configuration, the logger, the selected document store, and the
// optional platform clients together. MySQL, Redis, and MQConn stay nil when
// the matching feature is disabled.
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Store       store.DocumentStore
	MySQL       *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	AnswerCache *cache.AnswerCache
	Publisher   *events.Publisher
	AuditWorker *worker.AuditWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger, err := newLogger(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("build logger failed: %w", err)
	}

	app := &App{
		Config:    cfg,
		Logger:    logger,
		StartedAt: time.Now(),
	}

	switch cfg.Store.Backend {
	case config.StoreBackendMySQL:
		db, err := mysqlClient.New(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(&model.DocumentRecord{}, &model.ChunkRecord{}, &model.AuditRecord{}); err != nil {
			return nil, fmt.Errorf("auto migrate tables failed: %w", err)
		}
		app.MySQL = db
		app.Store = store.NewMySQL(db)
	default:
		app.Store = store.NewMemory()
	}

	if cfg.Cache.Enabled {
		redisCli, err := redisClient.New(ctx, cfg.Cache)
		if err != nil {
			return nil, err
		}
		app.Redis = redisCli
		app.AnswerCache = cache.NewAnswerCache(redisCli, time.Duration(cfg.Cache.AnswerTTLSeconds)*time.Second)
	}

	if cfg.Events.Enabled {
		mqConn, err := rabbitmqClient.New(cfg.Events.URL)
		if err != nil {
			return nil, err
		}
		app.MQConn = mqConn
		app.Publisher = events.NewPublisher(mqConn, cfg.Events.Queue)

		if cfg.Events.AuditTrail {
			if app.MySQL == nil {
				logger.Warn("events.audit_trail requires the mysql store backend, skipping audit worker")
			} else {
				auditRepo := repository.NewAuditRepository(app.MySQL)
				app.AuditWorker = worker.NewAuditWorker(mqConn, auditRepo, cfg.Events.Queue, logger)
				if err := app.AuditWorker.Start(ctx); err != nil {
					return nil, fmt.Errorf("start audit worker failed: %w", err)
				}
			}
		}
	}

	logger.Info("application bootstrapped",
		zap.String("store_backend", cfg.Store.Backend),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Bool("events", cfg.Events.Enabled))
	return app, nil
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (a *App) Close() error {
	var closeErr error
	if a.AuditWorker != nil {
		a.AuditWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
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
	_ = a.Logger.Sync()
	return closeErr
}

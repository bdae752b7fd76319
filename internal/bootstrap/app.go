package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"application-tracker/internal/applications"
	"application-tracker/internal/notify"
	"application-tracker/internal/queue"
	"application-tracker/internal/services/health"
	"application-tracker/internal/shared/config"
	"application-tracker/internal/shared/server"
	"application-tracker/internal/shared/server/middleware"
	"application-tracker/internal/shared/storage/db"
	"application-tracker/internal/shared/storage/object"
	gcsstore "application-tracker/internal/shared/storage/object/gcs"
	localstore "application-tracker/internal/shared/storage/object/local"
	s3store "application-tracker/internal/shared/storage/object/s3"
	"application-tracker/internal/tokens"
	"application-tracker/internal/uploads"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config       config.Config
	Router       *gin.Engine
	DB           *sql.DB
	Store        object.ObjectStore
	Repo         applications.Repo
	Sink         *uploads.Sink
	Notifier     notify.Notifier
	Dispatcher   *notify.Dispatcher
	Applications *applications.Service
	Status       *applications.StatusService
	Health       *health.Service
	Redis        *redis.Client
	closers      []io.Closer
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	app := &App{Config: cfg, Health: health.NewService()}

	repo, err := app.buildRepo(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Repo = repo

	store, err := app.buildStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store
	app.Sink = uploads.NewSink(store, cfg.MaxUploadBytes, cfg.StrictPDF)
	cfg.MaxUploadBytes = app.Sink.MaxBytes()
	app.Config = cfg

	notifier, err := buildNotifier(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Notifier = notifier
	app.Dispatcher = notify.NewDispatcher(notifier, cfg.NotifyTimeout)

	limiter, err := app.buildLimiter()
	if err != nil {
		app.Close()
		return nil, err
	}

	if cfg.PublicBaseURL == "" && cfg.NotificationsEnabled() {
		log.Printf("bootstrap: PUBLIC_BASE_URL unset; tracking links in emails use the request host")
	}
	app.Applications = &applications.Service{
		Repo:     repo,
		Sink:     app.Sink,
		Tokens:   tokens.RandomIssuer{},
		Notifier: app.Dispatcher,
		BaseURL:  cfg.PublicBaseURL,
	}
	app.Status = &applications.StatusService{
		Repo: repo,
		Auth: applications.NewSecretAuthorizer(cfg.AdminKey),
	}
	if strings.TrimSpace(cfg.AdminKey) == "" {
		log.Printf("bootstrap: ADMIN_KEY empty; status updates are disabled")
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:       cfg,
		Applications: applications.NewHandler(app.Applications, app.Status),
		Uploads:      uploads.NewHandler(app.Sink),
		Health:       app.Health,
		Limiter:      limiter,
	})

	return app, nil
}

// Close releases connections opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) buildRepo(ctx context.Context) (applications.Repo, error) {
	switch a.Config.StoreBackend {
	case "postgres":
		if strings.TrimSpace(a.Config.DatabaseURL) == "" {
			return nil, fmt.Errorf("STORE_BACKEND=postgres requires DATABASE_URL")
		}
		sqlDB, err := connectDB(ctx, a.Config.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if !db.IsLambdaRuntime() {
			a.closers = append(a.closers, sqlDB)
		}
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		a.DB = sqlDB
		a.Health.Register("store", sqlDB.PingContext)
		return &applications.PGRepo{DB: sqlDB}, nil
	case "memory":
		log.Printf("bootstrap: STORE_BACKEND=memory; applications are not persisted")
		return applications.NewMemoryRepo(), nil
	default:
		doc, err := applications.OpenFileDocument(ctx, a.Config.DataFile)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", a.Config.DataFile, err)
		}
		repo := applications.NewDocumentRepo(doc)
		a.Health.Register("store", func(ctx context.Context) error {
			_, err := repo.Load(ctx)
			return err
		})
		return repo, nil
	}
}

func connectDB(ctx context.Context, databaseURL string) (*sql.DB, error) {
	opts := db.OptionsFromEnv(db.DefaultOptions())
	if db.IsLambdaRuntime() {
		return db.GetSingleton(ctx, databaseURL, opts)
	}
	return db.Connect(ctx, databaseURL, opts)
}

func (a *App) buildStore(ctx context.Context) (object.ObjectStore, error) {
	cfg := a.Config
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "gcs":
		if strings.TrimSpace(cfg.GCSBucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=gcs requires GCS_BUCKET")
		}
		store, err := gcsstore.New(ctx, cfg.GCSBucket, cfg.S3Prefix)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		return store, nil
	default:
		return localstore.New(cfg.UploadDir), nil
	}
}

// buildNotifier prefers the queue, then direct email, then nothing.
func buildNotifier(ctx context.Context, cfg config.Config) (notify.Notifier, error) {
	if strings.TrimSpace(cfg.NotifyQueueURL) != "" {
		client, err := queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.NotifyQueueURL)
		if err != nil {
			return nil, err
		}
		return notify.NewQueue(client), nil
	}
	return DeliveryNotifier(cfg), nil
}

// DeliveryNotifier returns the notifier that actually sends mail, or Noop
// when email credentials are missing.
func DeliveryNotifier(cfg config.Config) notify.Notifier {
	if !cfg.NotificationsEnabled() {
		log.Printf("bootstrap: SendGrid credentials missing; notifications disabled")
		return notify.Noop{}
	}
	return notify.NewSendGrid(cfg.SendGridAPIKey, cfg.SenderEmail, cfg.AdminEmail)
}

func (a *App) buildLimiter() (middleware.Limiter, error) {
	if !a.Config.RateLimitEnabled || strings.TrimSpace(a.Config.RedisURL) == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(a.Config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	a.Redis = client
	a.closers = append(a.closers, client)
	a.Health.Register("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	return middleware.NewRedisLimiter(client), nil
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-backend/internal/config"
	"shop-backend/internal/database"
	"shop-backend/internal/event"
	"shop-backend/internal/handler"
	"shop-backend/internal/mailer"
	"shop-backend/internal/middleware"
	"shop-backend/internal/oauth"
	"shop-backend/internal/repository"
	"shop-backend/internal/repository/memory"
	"shop-backend/internal/router"
	"shop-backend/internal/service"
	"shop-backend/internal/storage"
	"shop-backend/internal/token"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func(ctx context.Context)
}

type stores struct {
	users    service.UserStore
	sessions service.SessionStore
	comments service.CommentStore
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(context.Background(), cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	repos, err := a.openStores(ctx, cfg)
	if err != nil {
		a.cleanup(ctx)
		return nil, err
	}

	auditStore, err := a.openAudit(ctx, cfg)
	if err != nil {
		a.cleanup(ctx)
		return nil, err
	}
	auditService := service.NewAuditService(auditStore)

	avatars, uploads, err := openAvatarStore(ctx, cfg)
	if err != nil {
		a.cleanup(ctx)
		return nil, err
	}

	issuer, err := token.NewIssuer(cfg.TokenSecret, cfg.TokenMarker, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if err != nil {
		a.cleanup(ctx)
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	mail, err := newMailer(cfg)
	if err != nil {
		a.cleanup(ctx)
		return nil, err
	}

	authService := service.NewAuthService(repos.users, repos.sessions, issuer, mail, auditService, cfg.BcryptCost)
	if cfg.AdminEmail != "" {
		if err := authService.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			a.cleanup(ctx)
			return nil, fmt.Errorf("failed to seed admin: %w", err)
		}
	}

	var authHandler *handler.AuthHandler
	if cfg.GoogleEnabled() {
		google := oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
		authHandler = handler.NewAuthHandler(authService, google, cfg.FrontendURL)
	} else {
		slog.Warn("google sign-in disabled, GOOGLE_* not configured")
		authHandler = handler.NewAuthHandler(authService, nil, cfg.FrontendURL)
	}

	userService := service.NewUserService(repos.users, avatars, auditService)
	commentService := service.NewCommentService(repos.comments, auditService, event.NewBus())

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(authService), router.Handlers{
		Auth:    authHandler,
		User:    handler.NewUserHandler(userService, cfg.MaxUploadSize),
		Comment: handler.NewCommentHandler(commentService),
		Audit:   handler.NewAuditHandler(auditService),
		Docs:    handler.NewDocsHandler(cfg.OpenAPIPath),
		Uploads: uploads,
	})

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return a, nil
}

func (a *App) openStores(ctx context.Context, cfg *config.Config) (stores, error) {
	if cfg.MongoURL == "" {
		slog.Warn("MONGO_URL not set, using in-memory stores; data is lost on restart")
		return stores{
			users:    memory.NewUserRepository(),
			sessions: memory.NewSessionRepository(),
			comments: memory.NewCommentRepository(),
		}, nil
	}

	slog.Info("connecting to MongoDB", "database", cfg.MongoDatabase)
	mongoDB, err := database.NewMongo(ctx, cfg.MongoURL, cfg.MongoDatabase)
	if err != nil {
		return stores{}, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	a.cleanupFuncs = append(a.cleanupFuncs, func(ctx context.Context) {
		if err := mongoDB.Close(ctx); err != nil {
			slog.Error("mongo disconnect failed", "error", err)
		}
	})

	if err := mongoDB.EnsureIndexes(ctx); err != nil {
		return stores{}, fmt.Errorf("failed to ensure mongo indexes: %w", err)
	}

	return stores{
		users:    repository.NewUserRepository(mongoDB.Database),
		sessions: repository.NewSessionRepository(mongoDB.Database),
		comments: repository.NewCommentRepository(mongoDB.Database),
	}, nil
}

func (a *App) openAudit(ctx context.Context, cfg *config.Config) (service.AuditStore, error) {
	if cfg.AuditDatabaseURL == "" {
		slog.Warn("AUDIT_DATABASE_URL not set, audit entries go to the log only")
		return nil, nil
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.AuditDatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}
	a.cleanupFuncs = append(a.cleanupFuncs, func(context.Context) { db.Close() })

	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure audit schema: %w", err)
	}

	return repository.NewAuditRepository(db.Pool), nil
}

func openAvatarStore(ctx context.Context, cfg *config.Config) (service.AvatarStore, http.Handler, error) {
	if cfg.AvatarStorage == config.AvatarStorageS3 {
		store, err := storage.NewS3(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3PublicRead)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize s3 storage: %w", err)
		}
		return store, nil, nil
	}

	store, err := storage.NewLocal(cfg.UploadRoot, cfg.UploadBaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize upload storage: %w", err)
	}
	slog.Info("serving avatars from disk", "root", store.RootAbs())
	return store, store.Handler(), nil
}

func newMailer(cfg *config.Config) (service.Mailer, error) {
	if cfg.BrevoAPIKey == "" {
		slog.Warn("BREVO_API_KEY not set, verification codes are logged instead of mailed")
		return mailer.LogMailer{}, nil
	}

	verifyBase := cfg.VerifyBaseURL
	if verifyBase == "" {
		verifyBase = "http://localhost:" + cfg.ServerPort + "/users/admin/verify"
	}

	brevo, err := mailer.NewBrevo(mailer.BrevoConfig{
		APIKey:        cfg.BrevoAPIKey,
		FromEmail:     cfg.MailSenderEmail,
		FromName:      cfg.MailSenderName,
		VerifyBaseURL: verifyBase,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}
	return brevo, nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cleanup(ctx)
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.cleanup(ctx)
	slog.Info("server stopped")
	return nil
}

func (a *App) cleanup(ctx context.Context) {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i](ctx)
	}
	a.cleanupFuncs = nil
}

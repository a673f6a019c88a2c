package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appbilling "github.com/appforge/backend/internal/application/billing"
	"github.com/appforge/backend/internal/application/chat"
	"github.com/appforge/backend/internal/application/customization"
	"github.com/appforge/backend/internal/application/generate"
	identityapp "github.com/appforge/backend/internal/application/identity"
	sandboxapp "github.com/appforge/backend/internal/application/sandbox"
	"github.com/appforge/backend/internal/application/share"
	"github.com/appforge/backend/internal/application/shortlink"
	"github.com/appforge/backend/internal/domain/billing"
	"github.com/appforge/backend/internal/infrastructure/auth"
	infrabilling "github.com/appforge/backend/internal/infrastructure/billing"
	"github.com/appforge/backend/internal/infrastructure/cache"
	"github.com/appforge/backend/internal/infrastructure/config"
	"github.com/appforge/backend/internal/infrastructure/llm"
	"github.com/appforge/backend/internal/infrastructure/logger"
	"github.com/appforge/backend/internal/infrastructure/migration"
	"github.com/appforge/backend/internal/infrastructure/persistence"
	"github.com/appforge/backend/internal/infrastructure/ratelimit"
	"github.com/appforge/backend/internal/infrastructure/realtime"
	"github.com/appforge/backend/internal/infrastructure/sandbox"
	"github.com/appforge/backend/internal/infrastructure/storage"
	"github.com/appforge/backend/internal/infrastructure/telemetry"
	"github.com/appforge/backend/internal/interfaces/http/handler"
	"github.com/appforge/backend/internal/interfaces/http/middleware"
	"github.com/appforge/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			AppForge Backend API
//	@version		1.0
//	@description	Backend for the AppForge site builder: generation, sandboxes, sharing, billing and collaboration.

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.ForEnvironment(cfg.App.Env, cfg.Log.Level)
	if cfg.Log.Format != "" {
		logCfg.Format = cfg.Log.Format
	}
	if cfg.Log.Output != "" {
		logCfg.Output = cfg.Log.Output
	}
	logCfg.Service = cfg.App.Name
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	logs, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, version, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = logs.Bridge(log, logger.ParseLevel(cfg.Log.Level))
	defer func() {
		// the bridged logger cannot report its own shutdown
		if err := logs.Shutdown(context.Background()); err != nil {
			_, _ = os.Stderr.WriteString("log export shutdown failed: " + err.Error() + "\n")
		}
	}()

	log.Info("Starting AppForge backend",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version))

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, version, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracer.EnableSpanProfiles()
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Warn("Profiler stop failed", zap.Error(err))
		}
	}()
	metrics := telemetry.NewMetrics()

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(logger.NewGormLogger(log, cfg.Log.Level)))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := migrateSchema(db, cfg.Database, log); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	if err := telemetry.RegisterDBMetrics(db.DB, metrics, cfg.Database.Driver, log); err != nil {
		log.Warn("Database metrics unavailable", zap.Error(err))
	}
	if tracer.IsEnabled() {
		if err := telemetry.RegisterDBTracing(db.DB, cfg.Database.Driver, log); err != nil {
			log.Warn("Database tracing unavailable", zap.Error(err))
		}
	}

	kv, err := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).Create(ctx)
	if err != nil {
		log.Fatal("Failed to initialize key/value store", zap.Error(err))
	}
	defer func() { _ = kv.Close() }()

	objects, err := storage.New(&cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	hub := realtime.NewHub(cfg.Collab,
		realtime.WithLogger(log),
		realtime.WithObserver(metrics.CollabSize))

	handlers, authn := buildHandlers(cfg, log, db, kv, objects, hub, metrics)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(cfg.Telemetry.ServiceName, tracer.IsEnabled()),
		middleware.SpanEnricher(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.SecureWithConfig(middleware.SecurityConfigFor(cfg.App)),
		middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)),
		middleware.HTTPMetrics(metrics),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	opts := router.Options{Authenticator: authn, Swagger: cfg.Swagger, Logger: log}
	if cfg.Telemetry.MetricsEnabled {
		opts.Metrics = metrics.Handler()
	}
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(cfg.RateLimit, kv.Client, log)
		opts.ModelLimit = middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: limiter, Scope: "model", OnReject: metrics.RateLimited, Logger: log,
		})
		opts.LinkLimit = middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: limiter, Scope: "links", OnReject: metrics.RateLimited, Logger: log,
		})
	}

	handlers.System = handler.NewSystemHandler(handler.SystemHandlerConfig{
		Name:    cfg.App.Name,
		Version: version,
		Env:     cfg.App.Env,
		Checks:  healthChecks(db, kv),
	})
	router.Mount(engine, handlers, opts)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// hijacked websocket connections are not tracked by Shutdown
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

// buildHandlers creates the application services and their HTTP handlers.
// The system handler is filled in by the caller.
func buildHandlers(
	cfg *config.Config,
	log *zap.Logger,
	db *persistence.Database,
	kv *cache.Backend,
	objects storage.ObjectStore,
	hub *realtime.Hub,
	metrics *telemetry.Metrics,
) (router.Handlers, middleware.Authenticator) {
	models := llm.NewClient(cfg.LLM, llm.WithLogger(log), llm.WithObserver(metrics.ObserveLLM))

	links := shortlink.NewService(shortlink.ServiceConfig{
		KV:         kv.KV,
		KeyPrefix:  cfg.ShortLink.KeyPrefix,
		BaseURL:    cfg.App.BaseURL,
		DefaultTTL: cfg.ShortLink.DefaultTTL,
		MaxTTL:     cfg.ShortLink.MaxTTL,
		Logger:     log,
	})

	accounts := persistence.NewGormAccountRepository(db.DB)
	subscriptions := persistence.NewGormSubscriptionRepository(db.DB)

	authService := identityapp.NewAuthService(identityapp.AuthServiceConfig{
		Providers: auth.NewOAuthProviders(cfg.OAuth),
		Accounts:  accounts,
		Tokens:    auth.NewJWTService(cfg.JWT),
		Blacklist: auth.NewKVTokenBlacklist(kv.KV, ""),
		Logger:    log,
	})

	stripeCfg := infrabilling.NewStripeConfig(cfg.App, cfg.Stripe)
	catalog := billing.NewCatalog(stripeCfg.Prices)
	billingCfg := appbilling.ServiceConfig{
		Catalog:       catalog,
		Accounts:      accounts,
		Subscriptions: subscriptions,
		Logger:        log,
	}
	if cfg.Stripe.Enabled {
		adapter, err := infrabilling.NewStripeAdapter(stripeCfg, nil, log)
		if err != nil {
			log.Fatal("Failed to initialize Stripe", zap.Error(err))
		}
		billingCfg.Gateway = adapter
	} else {
		log.Info("Stripe disabled, paid plans cannot be purchased")
	}
	webhooks := appbilling.NewStripeWebhookService(appbilling.StripeWebhookServiceConfig{
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Catalog:       catalog,
		Accounts:      accounts,
		Subscriptions: subscriptions,
		Idempotency:   cache.NewKVIdempotencyStore(kv.KV, ""),
		Logger:        log,
	})

	sandboxes := sandboxapp.NewService(sandboxapp.ServiceConfig{
		Provider: sandbox.NewClient(cfg.Sandbox, sandbox.WithLogger(log)),
		OnDeploy: metrics.SandboxDeploy,
		Logger:   log,
	})
	sharing := share.NewService(share.ServiceConfig{Store: objects, Shortener: links, Logger: log})

	return router.Handlers{
		Catalog:       handler.NewCatalogHandler(catalog.Tiers),
		Chat:          handler.NewChatHandler(chat.NewService(chat.ServiceConfig{Model: models, Logger: log})),
		Generate:      handler.NewGenerateHandler(generate.NewService(generate.ServiceConfig{Model: models, Logger: log})),
		Customization: handler.NewCustomizationHandler(customization.NewService(customization.ServiceConfig{Logger: log})),
		Link:          handler.NewLinkHandler(links),
		Fragment:      handler.NewFragmentHandler(sandboxes, sharing),
		Auth:          handler.NewAuthHandler(authService, cfg.Cookie, cfg.OAuth.SuccessRedirect),
		Billing: handler.NewBillingHandler(
			appbilling.NewService(billingCfg), webhooks, metrics.WebhookEvent),
		Collab: handler.NewCollabHandler(hub, cfg.HTTP.CORSAllowOrigins),
	}, authService
}

// migrateSchema runs the embedded SQL migrations on postgres and AutoMigrate on sqlite
func migrateSchema(db *persistence.Database, cfg config.DatabaseConfig, log *zap.Logger) error {
	if db.Driver() != "postgres" {
		return db.AutoMigrate()
	}
	m, err := migration.NewFromURL(cfg.DSN(), log)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up()
}

func healthChecks(db *persistence.Database, kv *cache.Backend) map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{"database": db.Ping}
	if kv.Client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return kv.Client.Ping(ctx).Err()
		}
	}
	return checks
}

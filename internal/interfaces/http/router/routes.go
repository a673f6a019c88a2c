package router

import (
	"net/http"

	_ "github.com/appforge/backend/docs"
	"github.com/appforge/backend/internal/infrastructure/config"
	"github.com/appforge/backend/internal/interfaces/http/handler"
	"github.com/appforge/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// webhookBodyLimit caps Stripe event payloads
const webhookBodyLimit = 64 << 10

// Handlers are the endpoint handlers to mount. Billing and Collab may be nil.
type Handlers struct {
	System        *handler.SystemHandler
	Catalog       *handler.CatalogHandler
	Chat          *handler.ChatHandler
	Generate      *handler.GenerateHandler
	Customization *handler.CustomizationHandler
	Link          *handler.LinkHandler
	Fragment      *handler.FragmentHandler
	Auth          *handler.AuthHandler
	Billing       *handler.BillingHandler
	Collab        *handler.CollabHandler
}

// Options carries the middleware shared between routes
type Options struct {
	Authenticator middleware.Authenticator
	// ModelLimit guards the routes that call a language model or sandbox; nil disables it
	ModelLimit gin.HandlerFunc
	// LinkLimit guards short link creation; nil disables it
	LinkLimit gin.HandlerFunc
	// Metrics is served at /metrics when set
	Metrics http.Handler
	// Swagger guards the API docs at /swagger; the zero value answers 404
	Swagger config.SwaggerConfig
	Logger  *zap.Logger
}

// Mount registers every route of the service on engine
func Mount(engine *gin.Engine, h Handlers, opts Options) *Router {
	optional := middleware.OptionalJWTAuth(opts.Authenticator)
	required := middleware.JWTAuth(opts.Authenticator, opts.Logger)
	modelLimit := orPass(opts.ModelLimit)
	linkLimit := orPass(opts.LinkLimit)

	engine.GET("/health", h.System.Health)
	engine.GET("/ping", h.System.Ping)
	if opts.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(opts.Metrics))
	}
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(opts.Swagger, required),
		ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.GET("/s/:code", h.Link.Redirect)
	if h.Collab != nil {
		engine.GET("/ws/collab/:room", optional, h.Collab.Join)
	}

	r := NewRouter(engine)

	r.Register(NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo).
		GET("/ping", h.System.Ping))

	r.Register(NewDomainGroup("catalog", "").
		GET("/templates", h.Catalog.ListTemplates).
		GET("/templates/:id", h.Catalog.GetTemplate).
		GET("/models", h.Catalog.ListModels).
		GET("/theme", h.Catalog.GetTheme).
		GET("/theme/:scheme", h.Catalog.GetThemeScheme).
		GET("/pricing", h.Catalog.ListPricing).
		GET("/upsells", h.Catalog.ListUpsells))

	// the limiter keys on the account, so the session is attached first
	r.Register(NewDomainGroup("generation", "").
		Use(optional).
		POST("/chat", modelLimit, h.Chat.Chat).
		POST("/generate", modelLimit, h.Generate.Generate).
		POST("/refactor", h.Generate.Refactor).
		POST("/sandbox", modelLimit, h.Fragment.Deploy).
		POST("/fragments/share", linkLimit, h.Fragment.Share).
		GET("/fragments/:id", h.Fragment.GetShared).
		POST("/links", linkLimit, h.Link.Create))

	r.Register(NewDomainGroup("customization", "/customizations").
		POST("/suggest", h.Customization.Suggest).
		GET("/:website_id", h.Customization.Get).
		POST("/:website_id/apply", h.Customization.Apply))

	r.Register(NewDomainGroup("auth", "/auth").
		GET("/:provider/login", h.Auth.Login).
		GET("/:provider/callback", h.Auth.Callback).
		POST("/refresh", h.Auth.Refresh).
		POST("/logout", h.Auth.Logout).
		GET("/me", required, h.Auth.Me))

	if h.Billing != nil {
		r.Register(NewDomainGroup("billing", "/billing").
			Use(required).
			POST("/checkout", h.Billing.Checkout).
			POST("/portal", h.Billing.Portal).
			GET("/subscription", h.Billing.Subscription))
	}
	if h.Billing != nil && h.Billing.WebhooksEnabled() {
		r.Register(NewDomainGroup("webhooks", "/webhooks").
			POST("/stripe", middleware.BodyLimit(webhookBodyLimit), h.Billing.StripeWebhook))
	}

	r.Setup()
	if opts.Logger != nil {
		opts.Logger.Info("Routes mounted",
			zap.String("base_path", r.BasePath()),
			zap.Any("groups", r.Groups()))
	}
	return r
}

func orPass(mw gin.HandlerFunc) gin.HandlerFunc {
	if mw != nil {
		return mw
	}
	return func(c *gin.Context) { c.Next() }
}

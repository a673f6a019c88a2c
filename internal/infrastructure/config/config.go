package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Cookie    CookieConfig
	Log       LogConfig
	HTTP      HTTPConfig
	RateLimit RateLimitConfig
	LLM       LLMConfig
	Stripe    StripeConfig
	Sandbox   SandboxConfig
	Storage   StorageConfig
	ShortLink ShortLinkConfig
	OAuth     OAuthConfig
	Collab    CollabConfig
	Telemetry TelemetryConfig
	Swagger   SwaggerConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	BaseURL string // Public base URL used to build short links and redirects
}

// IsProduction reports whether the app runs in production
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string // sqlite file path
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TLS      bool
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	RefreshSecret          string
}

// CookieConfig holds session cookie settings
type CookieConfig struct {
	Domain   string
	Path     string
	Secure   bool
	SameSite string // strict, lax or none
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// RateLimitConfig holds sliding-window limiter settings for the model-backed endpoints
type RateLimitConfig struct {
	Enabled   bool
	Requests  int
	Window    time.Duration
	KeyPrefix string
}

// LLMConfig holds language-model provider settings
type LLMConfig struct {
	DefaultModel     string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	DeepSeekAPIKey   string
	DeepSeekBaseURL  string
	MaxTokens        int
	Temperature      float32
	RequestTimeout   time.Duration
}

// StripeConfig holds Stripe settings
type StripeConfig struct {
	Enabled          bool
	SecretKey        string
	PublishableKey   string
	WebhookSecret    string
	ProMonthlyPrice  string
	ProYearlyPrice   string
	TeamMonthlyPrice string
	TeamYearlyPrice  string
	SuccessURL       string
	CancelURL        string
	PortalReturnURL  string
}

// SandboxConfig holds the sandbox-preview provider settings
type SandboxConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration // sandbox lifetime requested from the provider
	RequestTimeout time.Duration // per HTTP call
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Enabled       bool
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	UsePathStyle  bool
	PublicBaseURL string
}

// ShortLinkConfig holds short URL settings
type ShortLinkConfig struct {
	DefaultTTL time.Duration
	MaxTTL     time.Duration
	KeyPrefix  string
}

// OAuthConfig holds OAuth sign-in provider settings
type OAuthConfig struct {
	GitHubClientID     string
	GitHubClientSecret string
	GoogleClientID     string
	GoogleClientSecret string
	RedirectBaseURL    string // callback base, e.g. https://app.example.com/api/v1/auth
	SuccessRedirect    string
}

// CollabConfig holds realtime collaboration settings
type CollabConfig struct {
	MaxRoomMembers   int
	MaxMessageBytes  int64
	MessagesPerSec   float64
	MessageBurst     int
	SendBufferSize   int
	PingInterval     time.Duration
	WriteWaitTimeout time.Duration
}

// SwaggerConfig holds API documentation endpoint settings
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool     // require a valid session to read the docs
	AllowedIPs  []string // IP or CIDR allowlist, empty allows all
}

// TelemetryConfig holds tracing and metrics configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsEnabled    bool
	ProfilingEnabled  bool
	ProfilerAddress   string // Pyroscope server, e.g. http://pyroscope:4040
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with APPFORGE_ prefix (e.g., APPFORGE_STRIPE_SECRET_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return fromViper(v)
}

// fromViper builds, defaults and validates a Config from a prepared viper instance
func fromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("APPFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			BaseURL: v.GetString("app.base_url"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			Path:            v.GetString("database.path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TLS:      v.GetBool("redis.tls"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
		},
		Cookie: CookieConfig{
			Domain:   v.GetString("cookie.domain"),
			Path:     v.GetString("cookie.path"),
			Secure:   v.GetBool("cookie.secure"),
			SameSite: v.GetString("cookie.same_site"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		RateLimit: RateLimitConfig{
			Enabled:   v.GetBool("ratelimit.enabled"),
			Requests:  v.GetInt("ratelimit.requests"),
			Window:    v.GetDuration("ratelimit.window"),
			KeyPrefix: v.GetString("ratelimit.key_prefix"),
		},
		LLM: LLMConfig{
			DefaultModel:     v.GetString("llm.default_model"),
			OpenAIAPIKey:     v.GetString("llm.openai_api_key"),
			OpenAIBaseURL:    v.GetString("llm.openai_base_url"),
			AnthropicAPIKey:  v.GetString("llm.anthropic_api_key"),
			AnthropicBaseURL: v.GetString("llm.anthropic_base_url"),
			DeepSeekAPIKey:   v.GetString("llm.deepseek_api_key"),
			DeepSeekBaseURL:  v.GetString("llm.deepseek_base_url"),
			MaxTokens:        v.GetInt("llm.max_tokens"),
			Temperature:      float32(v.GetFloat64("llm.temperature")),
			RequestTimeout:   v.GetDuration("llm.request_timeout"),
		},
		Stripe: StripeConfig{
			Enabled:          v.GetBool("stripe.enabled"),
			SecretKey:        v.GetString("stripe.secret_key"),
			PublishableKey:   v.GetString("stripe.publishable_key"),
			WebhookSecret:    v.GetString("stripe.webhook_secret"),
			ProMonthlyPrice:  v.GetString("stripe.pro_monthly_price"),
			ProYearlyPrice:   v.GetString("stripe.pro_yearly_price"),
			TeamMonthlyPrice: v.GetString("stripe.team_monthly_price"),
			TeamYearlyPrice:  v.GetString("stripe.team_yearly_price"),
			SuccessURL:       v.GetString("stripe.success_url"),
			CancelURL:        v.GetString("stripe.cancel_url"),
			PortalReturnURL:  v.GetString("stripe.portal_return_url"),
		},
		Sandbox: SandboxConfig{
			BaseURL:        v.GetString("sandbox.base_url"),
			APIKey:         v.GetString("sandbox.api_key"),
			Timeout:        v.GetDuration("sandbox.timeout"),
			RequestTimeout: v.GetDuration("sandbox.request_timeout"),
		},
		Storage: StorageConfig{
			Enabled:       v.GetBool("storage.enabled"),
			Endpoint:      v.GetString("storage.endpoint"),
			Region:        v.GetString("storage.region"),
			Bucket:        v.GetString("storage.bucket"),
			AccessKey:     v.GetString("storage.access_key"),
			SecretKey:     v.GetString("storage.secret_key"),
			UseSSL:        v.GetBool("storage.use_ssl"),
			UsePathStyle:  v.GetBool("storage.use_path_style"),
			PublicBaseURL: v.GetString("storage.public_base_url"),
		},
		ShortLink: ShortLinkConfig{
			DefaultTTL: v.GetDuration("shortlink.default_ttl"),
			MaxTTL:     v.GetDuration("shortlink.max_ttl"),
			KeyPrefix:  v.GetString("shortlink.key_prefix"),
		},
		OAuth: OAuthConfig{
			GitHubClientID:     v.GetString("oauth.github_client_id"),
			GitHubClientSecret: v.GetString("oauth.github_client_secret"),
			GoogleClientID:     v.GetString("oauth.google_client_id"),
			GoogleClientSecret: v.GetString("oauth.google_client_secret"),
			RedirectBaseURL:    v.GetString("oauth.redirect_base_url"),
			SuccessRedirect:    v.GetString("oauth.success_redirect"),
		},
		Collab: CollabConfig{
			MaxRoomMembers:   v.GetInt("collab.max_room_members"),
			MaxMessageBytes:  v.GetInt64("collab.max_message_bytes"),
			MessagesPerSec:   v.GetFloat64("collab.messages_per_sec"),
			MessageBurst:     v.GetInt("collab.message_burst"),
			SendBufferSize:   v.GetInt("collab.send_buffer_size"),
			PingInterval:     v.GetDuration("collab.ping_interval"),
			WriteWaitTimeout: v.GetDuration("collab.write_wait_timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			ProfilerAddress:   v.GetString("telemetry.profiler_address"),
		},
		Swagger: SwaggerConfig{
			Enabled:     v.GetBool("swagger.enabled"),
			RequireAuth: v.GetBool("swagger.require_auth"),
			AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "appforge"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:" + cfg.App.Port
	}
	cfg.App.BaseURL = strings.TrimRight(cfg.App.BaseURL, "/")

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "appforge"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "appforge.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 15 * time.Minute
	}
	if cfg.JWT.RefreshTokenExpiration == 0 {
		cfg.JWT.RefreshTokenExpiration = 30 * 24 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "appforge"
	}

	if cfg.Cookie.Path == "" {
		cfg.Cookie.Path = "/"
	}
	if cfg.Cookie.SameSite == "" {
		cfg.Cookie.SameSite = "lax"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// Chat and generation responses stream for a while
		cfg.HTTP.WriteTimeout = 5 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}

	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 10
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.RateLimit.KeyPrefix == "" {
		cfg.RateLimit.KeyPrefix = "ratelimit"
	}

	if cfg.LLM.DefaultModel == "" {
		cfg.LLM.DefaultModel = "claude-3-5-sonnet-latest"
	}
	if cfg.LLM.OpenAIBaseURL == "" {
		cfg.LLM.OpenAIBaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.AnthropicBaseURL == "" {
		cfg.LLM.AnthropicBaseURL = "https://api.anthropic.com/v1"
	}
	if cfg.LLM.DeepSeekBaseURL == "" {
		cfg.LLM.DeepSeekBaseURL = "https://api.deepseek.com/v1"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 4096
	}
	if cfg.LLM.RequestTimeout == 0 {
		cfg.LLM.RequestTimeout = 2 * time.Minute
	}

	if cfg.Stripe.SuccessURL == "" {
		cfg.Stripe.SuccessURL = cfg.App.BaseURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}"
	}
	if cfg.Stripe.CancelURL == "" {
		cfg.Stripe.CancelURL = cfg.App.BaseURL + "/pricing"
	}
	if cfg.Stripe.PortalReturnURL == "" {
		cfg.Stripe.PortalReturnURL = cfg.App.BaseURL + "/dashboard"
	}

	if cfg.Sandbox.Timeout == 0 {
		cfg.Sandbox.Timeout = 10 * time.Minute
	}
	if cfg.Sandbox.RequestTimeout == 0 {
		cfg.Sandbox.RequestTimeout = 60 * time.Second
	}

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "fragments"
	}

	if cfg.ShortLink.DefaultTTL == 0 {
		cfg.ShortLink.DefaultTTL = 90 * 24 * time.Hour
	}
	if cfg.ShortLink.MaxTTL == 0 {
		cfg.ShortLink.MaxTTL = 365 * 24 * time.Hour
	}
	if cfg.ShortLink.KeyPrefix == "" {
		cfg.ShortLink.KeyPrefix = "shortlink:"
	}

	if cfg.OAuth.RedirectBaseURL == "" {
		cfg.OAuth.RedirectBaseURL = cfg.App.BaseURL + "/api/v1/auth"
	}
	if cfg.OAuth.SuccessRedirect == "" {
		cfg.OAuth.SuccessRedirect = "/dashboard"
	}

	if cfg.Collab.MaxRoomMembers == 0 {
		cfg.Collab.MaxRoomMembers = 20
	}
	if cfg.Collab.MaxMessageBytes == 0 {
		cfg.Collab.MaxMessageBytes = 64 << 10
	}
	if cfg.Collab.MessagesPerSec == 0 {
		cfg.Collab.MessagesPerSec = 20
	}
	if cfg.Collab.MessageBurst == 0 {
		cfg.Collab.MessageBurst = 40
	}
	if cfg.Collab.SendBufferSize == 0 {
		cfg.Collab.SendBufferSize = 64
	}
	if cfg.Collab.PingInterval == 0 {
		cfg.Collab.PingInterval = 30 * time.Second
	}
	if cfg.Collab.WriteWaitTimeout == 0 {
		cfg.Collab.WriteWaitTimeout = 10 * time.Second
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("ratelimit.requests cannot be negative")
	}
	if c.RateLimit.Window < time.Millisecond {
		return fmt.Errorf("ratelimit.window must be at least 1ms, got %s", c.RateLimit.Window)
	}
	if c.ShortLink.DefaultTTL > c.ShortLink.MaxTTL {
		return fmt.Errorf("shortlink.default_ttl (%s) cannot exceed shortlink.max_ttl (%s)",
			c.ShortLink.DefaultTTL, c.ShortLink.MaxTTL)
	}
	if c.Stripe.Enabled && c.Stripe.SecretKey == "" {
		return fmt.Errorf("stripe.secret_key is required when stripe is enabled")
	}

	if c.App.IsProduction() {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if !c.Cookie.Secure {
			return fmt.Errorf("cookie.secure must be true in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Stripe.Enabled && c.Stripe.WebhookSecret == "" {
			return fmt.Errorf("stripe.webhook_secret is required in production")
		}
		if c.Swagger.Enabled && !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0 {
			return fmt.Errorf("swagger endpoint must be disabled, require authentication, or have IP restriction in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.Enabled && c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilerAddress == "" {
		return fmt.Errorf("telemetry.profiler_address is required when profiling is enabled")
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := fromViper(viper.New())
		require.NoError(t, err)

		assert.Equal(t, "appforge", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "http://localhost:8080", cfg.App.BaseURL)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 6379, cfg.Redis.Port)
		assert.Equal(t, 10, cfg.RateLimit.Requests)
		assert.Equal(t, time.Minute, cfg.RateLimit.Window)
		assert.Equal(t, 90*24*time.Hour, cfg.ShortLink.DefaultTTL)
		assert.Equal(t, 20, cfg.Collab.MaxRoomMembers)
		assert.Equal(t, "https://api.anthropic.com/v1", cfg.LLM.AnthropicBaseURL)
		assert.Equal(t, "http://localhost:8080/pricing", cfg.Stripe.CancelURL)
		assert.Equal(t, "http://localhost:8080/api/v1/auth", cfg.OAuth.RedirectBaseURL)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		t.Setenv("APPFORGE_APP_PORT", "9090")
		t.Setenv("APPFORGE_APP_BASE_URL", "https://forge.example.com/")
		t.Setenv("APPFORGE_RATELIMIT_REQUESTS", "25")
		t.Setenv("APPFORGE_RATELIMIT_WINDOW", "30s")
		t.Setenv("APPFORGE_LLM_DEFAULT_MODEL", "gpt-4o")

		cfg, err := fromViper(viper.New())
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, "https://forge.example.com", cfg.App.BaseURL)
		assert.Equal(t, 25, cfg.RateLimit.Requests)
		assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
		assert.Equal(t, "gpt-4o", cfg.LLM.DefaultModel)
		assert.Equal(t, "https://forge.example.com/pricing", cfg.Stripe.CancelURL)
	})

	t.Run("rejects short jwt secret in production", func(t *testing.T) {
		t.Setenv("APPFORGE_APP_ENV", "production")
		t.Setenv("APPFORGE_JWT_SECRET", "short")
		t.Setenv("APPFORGE_COOKIE_SECURE", "true")

		_, err := fromViper(viper.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("rejects stripe without secret key", func(t *testing.T) {
		t.Setenv("APPFORGE_STRIPE_ENABLED", "true")

		_, err := fromViper(viper.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stripe.secret_key")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "unknown database driver",
			mutate:  func(c *Config) { c.Database.Driver = "mysql" },
			wantErr: "database.driver",
		},
		{
			name:    "idle conns exceed open conns",
			mutate:  func(c *Config) { c.Database.MaxIdleConns = 100 },
			wantErr: "max_idle_conns",
		},
		{
			name:    "sub-millisecond rate limit window",
			mutate:  func(c *Config) { c.RateLimit.Window = 500 * time.Microsecond },
			wantErr: "ratelimit.window",
		},
		{
			name:    "negative rate limit window",
			mutate:  func(c *Config) { c.RateLimit.Window = -time.Second },
			wantErr: "ratelimit.window",
		},
		{
			name:    "short link default ttl above max",
			mutate:  func(c *Config) { c.ShortLink.DefaultTTL = 2 * c.ShortLink.MaxTTL },
			wantErr: "shortlink.default_ttl",
		},
		{
			name: "wildcard cors in production",
			mutate: func(c *Config) {
				c.App.Env = "production"
				c.JWT.Secret = "0123456789abcdef0123456789abcdef"
				c.Cookie.Secure = true
				c.HTTP.CORSAllowOrigins = []string{"*"}
			},
			wantErr: "cors_allow_origins",
		},
		{
			name: "production stripe without webhook secret",
			mutate: func(c *Config) {
				c.App.Env = "production"
				c.JWT.Secret = "0123456789abcdef0123456789abcdef"
				c.Cookie.Secure = true
				c.Stripe.Enabled = true
				c.Stripe.SecretKey = "sk_live_x"
			},
			wantErr: "webhook_secret",
		},
		{
			name: "profiling without a server",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.ProfilingEnabled = true
			},
			wantErr: "telemetry.profiler_address",
		},
		{
			name: "open swagger in production",
			mutate: func(c *Config) {
				c.App.Env = "production"
				c.JWT.Secret = "0123456789abcdef0123456789abcdef"
				c.Cookie.Secure = true
				c.Swagger.Enabled = true
			},
			wantErr: "swagger",
		},
		{
			name: "ip restricted swagger in production",
			mutate: func(c *Config) {
				c.App.Env = "production"
				c.JWT.Secret = "0123456789abcdef0123456789abcdef"
				c.Cookie.Secure = true
				c.Swagger.Enabled = true
				c.Swagger.AllowedIPs = []string{"10.0.0.0/8"}
			},
		},
		{
			name:    "sampling ratio out of range",
			mutate:  func(c *Config) { c.Telemetry.SamplingRatio = 1.5 },
			wantErr: "sampling_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("postgres escapes credentials", func(t *testing.T) {
		d := DatabaseConfig{
			Driver:   "postgres",
			Host:     "db",
			Port:     5432,
			User:     "forge",
			Password: "p@ss/word",
			DBName:   "appforge",
			SSLMode:  "require",
		}
		assert.Equal(t, "postgres://forge:p%40ss%2Fword@db:5432/appforge?sslmode=require", d.DSN())
	})

	t.Run("sqlite returns the file path", func(t *testing.T) {
		d := DatabaseConfig{Driver: "sqlite", Path: "/tmp/forge.db"}
		assert.Equal(t, "/tmp/forge.db", d.DSN())
	})
}

package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string        `mapstructure:"PORT"`
	Env           string        `mapstructure:"ENV"`
	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32         `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins   []string      `mapstructure:"CORS_ORIGINS"`
	AuthIssuer    string        `mapstructure:"AUTH_ISSUER"`
	AuthAudience  string        `mapstructure:"AUTH_AUDIENCE"`
	AuthJWKSURL   string        `mapstructure:"AUTH_JWKS_URL"`
	ShareTokenTTL time.Duration `mapstructure:"SHARE_TOKEN_TTL"`
	ShareQRSize   int           `mapstructure:"SHARE_QR_SIZE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("SHARE_TOKEN_TTL", "168h")
	v.SetDefault("SHARE_QR_SIZE", 256)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_AUDIENCE")
	v.BindEnv("AUTH_JWKS_URL")
	v.BindEnv("SHARE_TOKEN_TTL")
	v.BindEnv("SHARE_QR_SIZE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active; all requests get admin access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: Set ENV=production and configure AUTH_ISSUER for production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// mode AUTH_ISSUER must be set so that real JWT authentication is enforced.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthIssuer == "" {
		return fmt.Errorf(
			"AUTH_ISSUER must be set when ENV is not \"development\" (current ENV=%q). "+
				"Refusing to start without authentication configuration", c.Env)
	}
	if c.ShareTokenTTL <= 0 {
		return fmt.Errorf("SHARE_TOKEN_TTL must be positive, got %s", c.ShareTokenTTL)
	}
	if c.ShareQRSize <= 0 {
		return fmt.Errorf("SHARE_QR_SIZE must be positive, got %d", c.ShareQRSize)
	}
	return nil
}

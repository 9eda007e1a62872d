package main

import (
	"os"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config is loadable from environment variables (STOREFRONT_ prefix),
// flags, or a YAML config file.
type Config struct {
	Addr        string `default:"0.0.0.0:8082" usage:"catalog server listen address"`
	UpstreamURL string `default:"https://fakestoreapi.com" usage:"remote catalog API base URL" flag:"upstream-url"`
	JWTSecret   string `usage:"HS256 secret guarding product write routes; empty leaves them open" flag:"jwt-secret"`

	Wishlist WishlistConfig
	Metrics  MetricsConfig
	CORS     CORSConfig
}

// WishlistConfig selects where the wishlist survives restarts.
type WishlistConfig struct {
	Backend     string `default:"memory" usage:"wishlist persistence backend: memory, postgres or redis"`
	DatabaseURL string `usage:"PostgreSQL URL for the postgres backend" flag:"database-url"`
	RedisAddr   string `default:"localhost:6379" usage:"redis address for the redis backend" flag:"redis-addr"`
}

type MetricsConfig struct {
	Enabled bool   `default:"false" usage:"expose /metrics"`
	Token   string `usage:"bearer token for /metrics"`
}

type CORSConfig struct {
	Origins []string `default:"*" usage:"allowed CORS origins"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	switch cfg.Wishlist.Backend {
	case "memory", "redis":
	case "postgres":
		if cfg.Wishlist.DatabaseURL == "" {
			return nil, errors.New("postgres wishlist backend needs STOREFRONT_WISHLIST_DATABASE_URL or DATABASE_URL")
		}
	default:
		return nil, errors.Errorf("unknown wishlist backend %q", cfg.Wishlist.Backend)
	}

	return &cfg, nil
}

// applyPlatformDefaults maps standard platform env names (PORT,
// DATABASE_URL) onto the prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Wishlist.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.Wishlist.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8082" {
		c.Addr = "0.0.0.0:" + port
	}
}

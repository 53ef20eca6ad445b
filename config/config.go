package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Server struct {
		Host string `env:"SERVER_HOST" envDefault:"127.0.0.1"`
		Port string `env:"SERVER_PORT" envDefault:"8080"`

		// Origins allowed to call the API from the app's dev server
		AllowedOrigins []string `env:"SERVER_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:8081,http://localhost:19006"`

		ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	}

	Catalog struct {
		// Number of listings generated on every load
		Size int `env:"CATALOG_SIZE" envDefault:"20"`

		FeaturedCount int `env:"CATALOG_FEATURED_COUNT" envDefault:"5"`

		LoadDelay   time.Duration `env:"CATALOG_LOAD_DELAY" envDefault:"1s"`
		SearchDelay time.Duration `env:"CATALOG_SEARCH_DELAY" envDefault:"500ms"`

		// Zero disables the periodic refresh
		RefreshInterval time.Duration `env:"CATALOG_REFRESH_INTERVAL" envDefault:"0s"`
	}

	Payment struct {
		// Local mobile-number prefix accepted by the mobile-money check
		MobilePrefix string `env:"PAYMENT_MOBILE_PREFIX" envDefault:"07"`

		ServiceFeeRate float64 `env:"PAYMENT_SERVICE_FEE_RATE" envDefault:"0.05"`

		ProcessingDelay time.Duration `env:"PAYMENT_PROCESSING_DELAY" envDefault:"3s"`
	}

	Chat struct {
		TypingDelay  time.Duration `env:"CHAT_TYPING_DELAY" envDefault:"1500ms"`
		TypingJitter time.Duration `env:"CHAT_TYPING_JITTER" envDefault:"1s"`

		// Maximum number of replies waiting behind the one being typed
		QueueSize int `env:"CHAT_QUEUE_SIZE" envDefault:"16"`
	}

	Auth struct {
		Delay     time.Duration `env:"AUTH_DELAY" envDefault:"1500ms"`
		JWTSecret string        `env:"AUTH_JWT_SECRET" envDefault:"nestlink-dev-secret"`
		TokenTTL  time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"24h"`
		Issuer    string        `env:"AUTH_ISSUER" envDefault:"nestlink"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL" envDefault:"info"`
	}
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Address returns the listen address of the presentation API.
func (c *Config) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}

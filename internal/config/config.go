package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Tally"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
		LogJSON  bool   `envconfig:"LOG_JSON" default:"true"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"tally"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Telegram struct {
		Token       string        `envconfig:"TELEGRAM_BOT_TOKEN"`
		PollTimeout int           `envconfig:"TELEGRAM_POLL_TIMEOUT" default:"30"`
		SendRate    time.Duration `envconfig:"TELEGRAM_SEND_INTERVAL" default:"40ms"`
		SendBurst   int           `envconfig:"TELEGRAM_SEND_BURST" default:"20"`
		Debug       bool          `envconfig:"TELEGRAM_DEBUG" default:"false"`
	}

	Gemini struct {
		APIKey  string        `envconfig:"GEMINI_API_KEY"`
		Model   string        `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
		Timeout time.Duration `envconfig:"CLASSIFIER_TIMEOUT" default:"20s"`
		// The breaker opens after BreakerFailures consecutive errors.
		BreakerFailures uint32        `envconfig:"CLASSIFIER_BREAKER_FAILURES" default:"5"`
		BreakerCooldown time.Duration `envconfig:"CLASSIFIER_BREAKER_COOLDOWN" default:"30s"`
	}

	Sheets struct {
		CredentialsFile string        `envconfig:"SHEETS_CREDENTIALS_FILE" default:"service-account-key.json"`
		ParentFolderID  string        `envconfig:"SHEETS_PARENT_FOLDER_ID"`
		ShareRole       string        `envconfig:"SHEETS_SHARE_ROLE" default:"writer"`
		TimeZone        string        `envconfig:"SHEETS_TIME_ZONE" default:"Asia/Kolkata"`
		Locale          string        `envconfig:"SHEETS_LOCALE" default:"en_GB"`
		Timeout         time.Duration `envconfig:"SHEETS_TIMEOUT" default:"30s"`
	}

	Kafka struct {
		Brokers []string `envconfig:"KAFKA_BROKERS"`
	}

	Auth struct {
		JWTSecret      string        `envconfig:"JWT_SECRET"`
		TokenTTL       time.Duration `envconfig:"JWT_TOKEN_TTL" default:"15m"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	API struct {
		RequestInterval time.Duration `envconfig:"API_REQUEST_INTERVAL" default:"100ms"`
		Burst           int           `envconfig:"API_BURST" default:"30"`
	}

	Identity struct {
		CacheTTL time.Duration `envconfig:"IDENTITY_CACHE_TTL" default:"10m"`
	}

	Dialog struct {
		PageSize int    `envconfig:"LEDGER_PAGE_SIZE" default:"5"`
		Currency string `envconfig:"LEDGER_CURRENCY" default:"₹"`
	}

	Purge struct {
		Interval time.Duration `envconfig:"PURGE_INTERVAL" default:"10m"`
		Grace    time.Duration `envconfig:"PURGE_GRACE" default:"15m"`
	}
}

// MinJWTSecretLength is the shortest HS256 key the API accepts.
const MinJWTSecretLength = 32

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Validate reports settings the bot cannot start without.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}

	if c.Dialog.PageSize <= 0 {
		return fmt.Errorf("LEDGER_PAGE_SIZE must be positive, got %d", c.Dialog.PageSize)
	}

	if len(c.Auth.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", MinJWTSecretLength)
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

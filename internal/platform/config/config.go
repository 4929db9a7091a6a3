package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const Production = "production"

type WebhookConfig struct {
	LoginURL          string        `env:"WEBHOOK_LOGIN_URL" envDefault:"https://webhooks.example.invalid/login"`
	LeavePrecheckURL  string        `env:"WEBHOOK_LEAVE_PRECHECK_URL" envDefault:"https://webhooks.example.invalid/leave/precheck"`
	LeaveCommitURL    string        `env:"WEBHOOK_LEAVE_COMMIT_URL" envDefault:"https://webhooks.example.invalid/leave/commit"`
	LeaveQueryURL     string        `env:"WEBHOOK_LEAVE_QUERY_URL" envDefault:"https://webhooks.example.invalid/leave/query"`
	LeaveCancelURL    string        `env:"WEBHOOK_LEAVE_CANCEL_URL" envDefault:"https://webhooks.example.invalid/leave/cancel"`
	ContractSubmitURL string        `env:"WEBHOOK_CONTRACT_SUBMIT_URL" envDefault:"https://webhooks.example.invalid/contract/submit"`
	ContractQueryURL  string        `env:"WEBHOOK_CONTRACT_QUERY_URL" envDefault:"https://webhooks.example.invalid/contract/query"`
	Timeout           time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"15s"`
}

func (w WebhookConfig) endpoints() map[string]string {
	return map[string]string{
		"WEBHOOK_LOGIN_URL":           w.LoginURL,
		"WEBHOOK_LEAVE_PRECHECK_URL":  w.LeavePrecheckURL,
		"WEBHOOK_LEAVE_COMMIT_URL":    w.LeaveCommitURL,
		"WEBHOOK_LEAVE_QUERY_URL":     w.LeaveQueryURL,
		"WEBHOOK_LEAVE_CANCEL_URL":    w.LeaveCancelURL,
		"WEBHOOK_CONTRACT_SUBMIT_URL": w.ContractSubmitURL,
		"WEBHOOK_CONTRACT_QUERY_URL":  w.ContractQueryURL,
	}
}

type Config struct {
	Addr               string        `env:"APP_ADDR" envDefault:":8080"`
	Environment        string        `env:"APP_ENV" envDefault:"development"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	FrontendDir        string        `env:"FRONTEND_DIR" envDefault:"frontend/dist"`
	PDFFontPath        string        `env:"PDF_FONT_PATH"`
	SessionSecret      string        `env:"SESSION_SECRET"`
	DataEncryptionKey  string        `env:"DATA_ENCRYPTION_KEY"`
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	RunMigrations      bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
	JournalSQLitePath  string        `env:"JOURNAL_SQLITE_PATH" envDefault:"portal-journal.db"`
	JournalRetention   time.Duration `env:"JOURNAL_RETENTION" envDefault:"2160h"`
	WorkspaceIdleTTL   time.Duration `env:"WORKSPACE_IDLE_TTL" envDefault:"2h"`
	SweepInterval      time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`
	MaxBodyBytes       int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	MetricsEnabled     bool          `env:"METRICS_ENABLED" envDefault:"true"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	Webhooks           WebhookConfig
}

// Load reads .env files when present and binds the environment onto Config.
func Load() (Config, error) {
	if err := loadEnvFiles(".env", ".env.local"); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func loadEnvFiles(files ...string) error {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func (c Config) IsProduction() bool {
	return c.Environment == Production
}

func (c Config) Validate() error {
	if c.IsProduction() {
		if strings.TrimSpace(c.SessionSecret) == "" {
			return fmt.Errorf("SESSION_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production")
		}
	}
	for key, raw := range c.Webhooks.endpoints() {
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL", key)
		}
	}
	if c.Webhooks.Timeout <= 0 {
		return fmt.Errorf("WEBHOOK_TIMEOUT must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

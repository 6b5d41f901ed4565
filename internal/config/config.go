package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const DateLayout = "2006-01-02"

type Config struct {
	Server   ServerConfig   `mapstructure:",squash"`
	Dataset  DatasetConfig  `mapstructure:",squash"`
	Logger   LoggerConfig   `mapstructure:",squash"`
	Security SecurityConfig `mapstructure:",squash"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"server_host"`
	Port            int           `mapstructure:"server_port"`
	ReadTimeout     time.Duration `mapstructure:"server_read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"server_write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"server_idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"server_shutdown_timeout"`
}

// DatasetConfig controls the synthetic sales log generated at startup.
type DatasetConfig struct {
	CSVFile      string        `mapstructure:"dataset_csv_file"`
	Rows         int           `mapstructure:"dataset_rows"`
	Seed         uint64        `mapstructure:"dataset_seed"`
	StartDate    string        `mapstructure:"dataset_start_date"`
	EndDate      string        `mapstructure:"dataset_end_date"`
	MaxAttempts  int           `mapstructure:"dataset_max_attempts"`
	BuildTimeout time.Duration `mapstructure:"dataset_build_timeout"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"log_level"`
	Format string `mapstructure:"log_format"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `mapstructure:"security_rate_limit_enabled"`
	RateLimitRPS    int      `mapstructure:"security_rate_limit_rps"`
	RateLimitBurst  int      `mapstructure:"security_rate_limit_burst"`
	AllowedOrigins  []string `mapstructure:"security_allowed_origins"`
	TrustedProxies  []string `mapstructure:"security_trusted_proxies"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "localhost")
	v.SetDefault("SERVER_PORT", 8050)
	v.SetDefault("SERVER_READ_TIMEOUT", 10*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER_IDLE_TIMEOUT", 60*time.Second)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second)

	v.SetDefault("DATASET_CSV_FILE", "weblog.csv")
	v.SetDefault("DATASET_ROWS", 100000)
	v.SetDefault("DATASET_SEED", 42)
	v.SetDefault("DATASET_START_DATE", "2022-05-01")
	v.SetDefault("DATASET_END_DATE", "2025-03-31")
	v.SetDefault("DATASET_MAX_ATTEMPTS", 0) // 0 derives the cap from the row count
	v.SetDefault("DATASET_BUILD_TIMEOUT", 2*time.Minute)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SECURITY_RATE_LIMIT_ENABLED", true)
	v.SetDefault("SECURITY_RATE_LIMIT_RPS", 100)
	v.SetDefault("SECURITY_RATE_LIMIT_BURST", 20)
	v.SetDefault("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8050"})
	v.SetDefault("SECURITY_TRUSTED_PROXIES", []string{"127.0.0.1"})
}

// Load reads defaults, an optional .env file and the process environment,
// in increasing order of precedence.
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{}
	err := v.Unmarshal(cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Dataset.CSVFile == "" {
		return fmt.Errorf("dataset CSV file path cannot be empty")
	}

	if c.Dataset.Rows <= 0 {
		return fmt.Errorf("dataset rows must be positive, got %d", c.Dataset.Rows)
	}

	if c.Dataset.MaxAttempts < 0 {
		return fmt.Errorf("dataset max attempts cannot be negative")
	}

	start, end, err := c.Dataset.Window()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("dataset end date %s is before start date %s", c.Dataset.EndDate, c.Dataset.StartDate)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

// Window parses the configured dataset date range.
func (d DatasetConfig) Window() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, d.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid dataset start date %q: %w", d.StartDate, err)
	}
	end, err := time.Parse(DateLayout, d.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid dataset end date %q: %w", d.EndDate, err)
	}
	return start, end, nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

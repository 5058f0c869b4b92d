package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "config/config.yaml"

type ServerConfig struct {
	Port           string   `yaml:"port"`
	PublicBaseURL  string   `yaml:"public_base_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// TrustProxy takes the client IP from X-Real-IP / X-Forwarded-For.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool `yaml:"trust_proxy"`
}

type DuffelConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
	Version string `yaml:"version"`
	// TimeoutStr is parsed into Timeout.
	TimeoutStr string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
}

type FlightsConfig struct {
	PriceMarkup    float64 `yaml:"price_markup"`
	DurationSource string  `yaml:"duration_source"`
	DefaultLimit   int     `yaml:"default_limit"`
	MaxLimit       int     `yaml:"max_limit"`
}

type AdminConfig struct {
	Token         string        `yaml:"token"`
	SessionTTLStr string        `yaml:"session_ttl"`
	SessionTTL    time.Duration `yaml:"-"`
}

type StorageConfig struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CacheConfig struct {
	Driver string `yaml:"driver"`
}

// EventsConfig controls the application event stream. Driver "redis"
// publishes status changes to a Redis stream consumed by background workers.
type EventsConfig struct {
	Driver  string `yaml:"driver"`
	Stream  string `yaml:"stream"`
	Workers int    `yaml:"workers"`
}

type JobsConfig struct {
	StatsIntervalStr string        `yaml:"stats_interval"`
	StatsInterval    time.Duration `yaml:"-"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type Config struct {
	AppEnv    string          `yaml:"app_env"`
	Server    ServerConfig    `yaml:"server"`
	Duffel    DuffelConfig    `yaml:"duffel"`
	Flights   FlightsConfig   `yaml:"flights"`
	Admin     AdminConfig     `yaml:"admin"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Events    EventsConfig    `yaml:"events"`
	Jobs      JobsConfig      `yaml:"jobs"`
}

// Load reads the optional YAML file at path (CONFIG_PATH or config/config.yaml
// when empty), applies environment overrides and fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	explicit := path != ""
	if !explicit {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
	}
	if path == "" {
		path = defaultConfigPath
	}

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// no file, environment only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := parseDurations(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.AppEnv, "APP_ENV")
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.PublicBaseURL, "PUBLIC_BASE_URL")
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}
	setBool(&cfg.Server.TrustProxy, "TRUST_PROXY")

	setString(&cfg.Duffel.BaseURL, "DUFFEL_BASE_URL")
	setString(&cfg.Duffel.Token, "DUFFEL_API_TOKEN")
	setString(&cfg.Duffel.Version, "DUFFEL_VERSION")
	setString(&cfg.Duffel.TimeoutStr, "DUFFEL_TIMEOUT")

	setFloat(&cfg.Flights.PriceMarkup, "FLIGHT_PRICE_MARKUP")
	setString(&cfg.Flights.DurationSource, "FLIGHT_DURATION_SOURCE")

	setString(&cfg.Admin.Token, "ADMIN_TOKEN")
	setString(&cfg.Admin.SessionTTLStr, "ADMIN_SESSION_TTL")

	setString(&cfg.Storage.Driver, "STORAGE_DRIVER")
	setString(&cfg.Storage.SQLitePath, "SQLITE_PATH")

	setString(&cfg.Database.Host, "PG_HOST")
	setString(&cfg.Database.Port, "PG_PORT")
	setString(&cfg.Database.User, "PG_USER")
	setString(&cfg.Database.Password, "PG_PASSWORD")
	setString(&cfg.Database.DBName, "PG_DB")

	setString(&cfg.Redis.Host, "REDIS_HOST")
	setString(&cfg.Redis.Port, "REDIS_PORT")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	setString(&cfg.Cache.Driver, "CACHE_DRIVER")

	setString(&cfg.Events.Driver, "EVENTS_DRIVER")
	setString(&cfg.Events.Stream, "EVENTS_STREAM")
	setString(&cfg.Jobs.StatsIntervalStr, "STATS_JOB_INTERVAL")

	setFloat(&cfg.RateLimit.RPS, "RATE_LIMIT_RPS")
	if v, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST")); err == nil {
		cfg.RateLimit.Burst = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	cfg.Server.Port = strings.TrimPrefix(cfg.Server.Port, ":")
	if cfg.Server.PublicBaseURL == "" {
		cfg.Server.PublicBaseURL = "http://localhost:" + cfg.Server.Port
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"https://*", "http://localhost:*"}
	}
	if cfg.Duffel.BaseURL == "" {
		cfg.Duffel.BaseURL = "https://api.duffel.com"
	}
	if cfg.Duffel.Version == "" {
		cfg.Duffel.Version = "v2"
	}
	if cfg.Flights.PriceMarkup <= 0 {
		cfg.Flights.PriceMarkup = 1.0
	}
	if cfg.Flights.DurationSource == "" {
		cfg.Flights.DurationSource = "slice"
	}
	if cfg.Flights.DefaultLimit <= 0 {
		cfg.Flights.DefaultLimit = 20
	}
	if cfg.Flights.MaxLimit <= 0 {
		cfg.Flights.MaxLimit = 50
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "none"
	}
	cfg.Storage.Driver = strings.ToLower(cfg.Storage.Driver)
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "bookingcart.db"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == "" {
		cfg.Redis.Port = "6379"
	}
	if cfg.Cache.Driver == "" {
		cfg.Cache.Driver = "memory"
	}
	cfg.Cache.Driver = strings.ToLower(cfg.Cache.Driver)
	if cfg.RateLimit.RPS <= 0 {
		cfg.RateLimit.RPS = 2
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 10
	}
	if cfg.Events.Driver == "" {
		cfg.Events.Driver = "none"
	}
	cfg.Events.Driver = strings.ToLower(cfg.Events.Driver)
	if cfg.Events.Stream == "" {
		cfg.Events.Stream = "visa_application_events"
	}
	if cfg.Events.Workers <= 0 {
		cfg.Events.Workers = 2
	}
}

func parseDurations(cfg *Config) error {
	cfg.Duffel.Timeout = 20 * time.Second
	if cfg.Duffel.TimeoutStr != "" {
		d, err := time.ParseDuration(cfg.Duffel.TimeoutStr)
		if err != nil {
			return fmt.Errorf("failed to parse duffel timeout: %w", err)
		}
		cfg.Duffel.Timeout = d
	}

	cfg.Admin.SessionTTL = 12 * time.Hour
	if cfg.Admin.SessionTTLStr != "" {
		d, err := time.ParseDuration(cfg.Admin.SessionTTLStr)
		if err != nil {
			return fmt.Errorf("failed to parse admin session ttl: %w", err)
		}
		cfg.Admin.SessionTTL = d
	}

	cfg.Jobs.StatsInterval = 5 * time.Minute
	if cfg.Jobs.StatsIntervalStr != "" {
		d, err := time.ParseDuration(cfg.Jobs.StatsIntervalStr)
		if err != nil {
			return fmt.Errorf("failed to parse stats job interval: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("stats job interval must be positive, got %s", d)
		}
		cfg.Jobs.StatsInterval = d
	}
	return nil
}

// PostgresDSN builds the lib/pq connection string.
func (c DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.User, c.Password, c.Host, c.Port, c.DBName)
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func setString(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func setFloat(target *float64, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*target = f
	}
}

func setBool(target *bool, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if b, err := strconv.ParseBool(v); err == nil {
		*target = b
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

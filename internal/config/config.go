package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"shareit/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App            AppConfig            `yaml:"app"`
	Database       DatabaseConfig       `yaml:"database"`
	Redis          RedisConfig          `yaml:"redis"`
	API            APIConfig            `yaml:"api"`
	ActorRateLimit ActorRateLimitConfig `yaml:"actor_rate_limit"`
	Monitoring     MonitoringConfig     `yaml:"monitoring"`
	Logging        LoggingConfig        `yaml:"logging"`
	Exports        ExportConfig         `yaml:"exports"`
}

type APIConfig struct {
	HTTP        APIHTTPConfig      `yaml:"http"`
	Auth        APIAuthConfig      `yaml:"auth"`
	RateLimit   APIRateLimitConfig `yaml:"rate_limit"`
	ActorHeader string             `yaml:"actor_header"`
}

type APIHTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// ActorRateLimitConfig limits requests per acting user id within a fixed window.
type ActorRateLimitConfig struct {
	Enabled       bool `yaml:"enabled"`
	Limit         int  `yaml:"limit"`
	WindowSeconds int  `yaml:"window_seconds"`
}

func (c ActorRateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

type ExportConfig struct {
	SheetName string `yaml:"sheet_name"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// Загружаем .env файл если существует
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Redis.Enabled && c.Redis.Address == "" {
		return errors.New("redis address is required when redis is enabled")
	}

	if c.ActorRateLimit.Enabled && (c.ActorRateLimit.Limit <= 0 || c.ActorRateLimit.WindowSeconds <= 0) {
		return errors.New("actor rate limit requires positive limit and window")
	}

	if c.API.Auth.Enabled {
		return ValidateAPIKeys(c.API.Auth.APIKeys)
	}
	return nil
}

func ValidateAPIKeys(keys []APIClientKey) error {
	if len(keys) == 0 {
		return errors.New("auth is enabled but no api keys are configured")
	}

	seen := make(map[string]bool)
	for _, k := range keys {
		if k.Key == "" {
			return fmt.Errorf("api key '%s' is empty", k.Name)
		}
		if seen[k.Key] {
			return fmt.Errorf("duplicate api key found for client '%s'", k.Name)
		}
		seen[k.Key] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "shareit"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.HTTP.ReadTimeoutSec == 0 {
		c.API.HTTP.ReadTimeoutSec = 10
	}
	if c.API.HTTP.WriteTimeoutSec == 0 {
		c.API.HTTP.WriteTimeoutSec = 15
	}
	if c.API.ActorHeader == "" {
		c.API.ActorHeader = "X-Sharer-User-Id"
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.ActorRateLimit.Limit == 0 {
		c.ActorRateLimit.Limit = models.DefaultRateLimitRequests
	}
	if c.ActorRateLimit.WindowSeconds == 0 {
		c.ActorRateLimit.WindowSeconds = models.DefaultRateLimitWindow
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Exports.SheetName == "" {
		c.Exports.SheetName = models.DefaultExportSheetName
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/richard-senior/apex/pkg/predict"
	"gopkg.in/yaml.v3"
)

// AppConfig is the application-level configuration shared by all binaries
type AppConfig struct {
	LogLevel  string                `yaml:"log_level"`
	LogOutput string                `yaml:"log_output"` // c, f or b
	LogFile   string                `yaml:"log_file"`
	HTTP      HTTPConfig            `yaml:"http"`
	Store     StoreConfig           `yaml:"store"`
	ESPN      ESPNConfig            `yaml:"espn"`
	Redis     RedisConfig           `yaml:"redis"`
	Engine    *predict.EngineConfig `yaml:"engine"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type StoreConfig struct {
	// DBPath is the SQLite file. ":memory:" keeps history for the process lifetime only.
	DBPath string `yaml:"db_path"`
}

type ESPNConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
	NewsLimit int           `yaml:"news_limit"`
}

type RedisConfig struct {
	// Addr empty means the in-process cache is used
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DefaultAppConfig returns the configuration used when no file is supplied
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		LogLevel:  "info",
		LogOutput: "c",
		HTTP: HTTPConfig{
			Port:           8086,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:19006"},
			RequestTimeout: 30 * time.Second,
		},
		Store: StoreConfig{DBPath: "apex.db"},
		ESPN: ESPNConfig{
			BaseURL:   "https://site.api.espn.com/apis/site/v2/sports",
			Timeout:   15 * time.Second,
			CacheTTL:  10 * time.Minute,
			NewsLimit: 5,
		},
		Engine: predict.DefaultEngineConfig(),
	}
}

// Load reads the YAML file at path (optional) over the defaults and then applies
// APEX_* environment overrides
func Load(path string) (*AppConfig, error) {
	cfg := DefaultAppConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.Engine == nil {
		cfg.Engine = predict.DefaultEngineConfig()
	}
	if err := predict.ValidateConfig(cfg.Engine); err != nil {
		return nil, fmt.Errorf("invalid engine section: %w", err)
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return nil, fmt.Errorf("http port out of range: %d", cfg.HTTP.Port)
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by APEX_CONFIG, if any
func LoadFromEnv() (*AppConfig, error) {
	return Load(os.Getenv("APEX_CONFIG"))
}

func applyEnv(cfg *AppConfig) {
	cfg.LogLevel = getEnv("APEX_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("APEX_LOG_FILE", cfg.LogFile)
	cfg.Store.DBPath = getEnv("APEX_DB_PATH", cfg.Store.DBPath)
	cfg.Redis.Addr = getEnv("APEX_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("APEX_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("APEX_REDIS_DB", cfg.Redis.DB)
	cfg.HTTP.Port = getEnvInt("APEX_HTTP_PORT", cfg.HTTP.Port)
	cfg.ESPN.BaseURL = getEnv("APEX_ESPN_BASE_URL", cfg.ESPN.BaseURL)
	cfg.ESPN.CacheTTL = getEnvDuration("APEX_CACHE_TTL", cfg.ESPN.CacheTTL)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/richard-senior/apex/internal/config"
	"github.com/richard-senior/apex/internal/logger"
	"github.com/richard-senior/apex/pkg/espn"
	"github.com/richard-senior/apex/pkg/predict"
	"github.com/richard-senior/apex/pkg/store"
	"github.com/richard-senior/apex/pkg/tools"
	"github.com/richard-senior/apex/pkg/transport"
)

// App holds the services built from an AppConfig
type App struct {
	Config  *config.AppConfig
	Toolbox *tools.Toolbox

	redis *espn.RedisCache
}

// ConfigureLogging applies the logging section. A non-zero output overrides the configured one.
func ConfigureLogging(cfg *config.AppConfig, output rune) error {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetShowDateTime(true)
	logger.SetLevel(level)
	if cfg.LogFile != "" {
		logger.SetLogFile(cfg.LogFile)
	}
	if output == 0 && cfg.LogOutput != "" {
		output = rune(cfg.LogOutput[0])
	}
	if output == 0 {
		output = 'c'
	}
	return logger.SetLogOutput(output)
}

// New builds the engine, history store and ESPN client described by cfg.
// An unreachable Redis falls back to the in-process cache.
func New(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	engine, err := predict.NewEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg}

	var st *store.Store
	if cfg.Store.DBPath != "" {
		if st, err = store.Open(cfg.Store.DBPath); err != nil {
			return nil, fmt.Errorf("failed to open prediction store: %w", err)
		}
		logger.Info("Prediction history at", st.Path())
	}

	var cache espn.Cache = espn.NewMemoryCache()
	if cfg.Redis.Addr != "" {
		rc, err := espn.DialRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("Redis unavailable, using in-process cache", cfg.Redis.Addr, err)
		} else {
			logger.Info("Caching ESPN responses in Redis at", cfg.Redis.Addr)
			cache = rc
			a.redis = rc
		}
	}

	client := espn.NewClient(cfg.ESPN.BaseURL, cache)
	if cfg.ESPN.CacheTTL > 0 {
		client.TTL = cfg.ESPN.CacheTTL
	}
	if cfg.ESPN.NewsLimit > 0 {
		client.NewsLimit = cfg.ESPN.NewsLimit
	}
	if cfg.ESPN.Timeout > 0 {
		hc := *transport.GetCustomHTTPClient()
		hc.Timeout = cfg.ESPN.Timeout
		client.HTTP = &hc
	}

	tb, err := tools.NewToolbox(engine, st, client)
	if err != nil {
		a.closeStore(st)
		return nil, err
	}
	if cfg.HTTP.RequestTimeout > 0 {
		tb.Timeout = cfg.HTTP.RequestTimeout
	}
	a.Toolbox = tb
	return a, nil
}

func (a *App) closeStore(st *store.Store) {
	if st == nil {
		return
	}
	if err := st.Close(); err != nil {
		logger.Warn("Failed to close prediction store", err)
	}
}

// Close releases the store and Redis connections
func (a *App) Close() {
	if a.Toolbox != nil {
		a.closeStore(a.Toolbox.Store)
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warn("Failed to close Redis client", err)
		}
	}
}

// dialTimeout bounds start-up work such as the Redis ping
const dialTimeout = 5 * time.Second

// Load reads configuration from path (or APEX_CONFIG when empty) and builds the App
func Load(path string) (*App, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	return New(ctx, cfg)
}

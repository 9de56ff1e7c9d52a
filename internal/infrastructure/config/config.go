package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"garage-dashboard/internal/infrastructure/hub"
	"garage-dashboard/internal/infrastructure/logger"
)

// Default values for the server configuration.
const (
	DefaultAddr            = ":5000"
	DefaultWSPath          = "/ws"
	DefaultShutdownTimeout = 5 * time.Second
	DefaultSweepInterval   = 30 * time.Second
	DefaultCacheTTL        = 30 * time.Second
	DefaultSQLiteDSN       = "file:garage.db?_pragma=busy_timeout(5000)"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Hub    HubConfig    `yaml:"hub"`
	Store  StoreConfig  `yaml:"store"`
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	WSPath      string        `yaml:"ws_path"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// WriteTimeout bounds a whole response, so it ends SSE streams too.
	// Zero disables it.
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// CORSOrigins lists allowed origins; empty allows any.
	CORSOrigins []string `yaml:"cors_origins"`
}

// HubConfig tunes subscriber connections. PingPeriod must be shorter than
// PongWait or healthy clients get dropped.
type HubConfig struct {
	SendBuffer    int           `yaml:"send_buffer"`
	WriteWait     time.Duration `yaml:"write_wait"`
	PongWait      time.Duration `yaml:"pong_wait"`
	PingPeriod    time.Duration `yaml:"ping_period"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

func (h HubConfig) WebSocket() hub.WebSocketConfig {
	return hub.WebSocketConfig{
		SendBuffer: h.SendBuffer,
		WriteWait:  h.WriteWait,
		PongWait:   h.PongWait,
		PingPeriod: h.PingPeriod,
	}
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Seed   bool   `yaml:"seed"`
}

type CacheConfig struct {
	Driver   string        `yaml:"driver"`
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	FilePath   string `yaml:"file_path"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// Logger converts the section into the logger package's config.
func (l LogConfig) Logger() *logger.Config {
	cfg := logger.NewDefaultConfig()
	cfg.Level = logger.ParseLevel(l.Level)
	cfg.Format = l.Format
	cfg.Output = l.Output
	cfg.FilePath = l.FilePath
	cfg.MaxSize = l.MaxSize
	cfg.MaxBackups = l.MaxBackups
	cfg.MaxAge = l.MaxAge
	cfg.Compress = l.Compress
	return cfg
}

// Load reads the file at path (if any), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse yaml: %w", err)
			}
		}
	}

	applyEnv(cfg, os.Getenv)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	ws := hub.DefaultWebSocketConfig()
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			WSPath:          DefaultWSPath,
			ReadTimeout:     15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Hub: HubConfig{
			SendBuffer:    ws.SendBuffer,
			WriteWait:     ws.WriteWait,
			PongWait:      ws.PongWait,
			PingPeriod:    ws.PingPeriod,
			SweepInterval: DefaultSweepInterval,
		},
		Store: StoreConfig{
			Driver: "memory",
			Seed:   true,
		},
		Cache: CacheConfig{
			Driver: "memory",
			TTL:    DefaultCacheTTL,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			Output:     "stdout",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
	}
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if port := getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	if addr := getenv("GARAGE_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if driver := getenv("GARAGE_STORE_DRIVER"); driver != "" {
		cfg.Store.Driver = driver
	}
	if dsn := getenv("GARAGE_STORE_DSN"); dsn != "" {
		cfg.Store.DSN = dsn
	}
	if url := getenv("GARAGE_REDIS_URL"); url != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.RedisURL = url
	}
	if level := getenv("GARAGE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if !strings.HasPrefix(cfg.Server.WSPath, "/") {
		return fmt.Errorf("server.ws_path %q must start with /", cfg.Server.WSPath)
	}
	if cfg.Hub.SendBuffer <= 0 {
		return fmt.Errorf("hub.send_buffer must be positive")
	}
	if cfg.Hub.PingPeriod >= cfg.Hub.PongWait {
		return fmt.Errorf("hub.ping_period (%v) must be shorter than hub.pong_wait (%v)", cfg.Hub.PingPeriod, cfg.Hub.PongWait)
	}

	switch cfg.Store.Driver {
	case "memory":
	case "sqlite":
		if cfg.Store.DSN == "" {
			cfg.Store.DSN = DefaultSQLiteDSN
		}
	case "postgres":
		if cfg.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("store.driver %q unknown: want memory|sqlite|postgres", cfg.Store.Driver)
	}

	switch cfg.Cache.Driver {
	case "memory", "none", "":
	case "redis":
		if cfg.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required for redis")
		}
	default:
		return fmt.Errorf("cache.driver %q unknown: want memory|redis|none", cfg.Cache.Driver)
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	return nil
}

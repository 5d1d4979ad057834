package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"chat-realtime-api/internal/logger"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration of the server.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Log      logger.Config  `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path          string        `mapstructure:"path"`
	LogLevel      string        `mapstructure:"log_level"` // silent|error|warn|info
	SlowThreshold time.Duration `mapstructure:"slow_threshold"`
}

type JWTConfig struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	Audience string        `mapstructure:"audience"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ChatConfig holds the realtime and messaging knobs.
type ChatConfig struct {
	NodeID           int64         `mapstructure:"node_id"`
	MaxContentLength int           `mapstructure:"max_content_length"`
	SendBuffer       int           `mapstructure:"send_buffer"`
	IdentityCacheTTL time.Duration `mapstructure:"identity_cache_ttl"`
	PingInterval     time.Duration `mapstructure:"ping_interval"`
	PongWait         time.Duration `mapstructure:"pong_wait"`
	MaxFrameBytes    int64         `mapstructure:"max_frame_bytes"`
}

const envPrefix = "CHAT"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8008")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.path", "chat-realtime.db")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.slow_threshold", 200*time.Millisecond)

	v.SetDefault("jwt.secret", "development-insecure-secret-change-me")
	v.SetDefault("jwt.issuer", "chat-realtime-api")
	v.SetDefault("jwt.audience", "chat-realtime-clients")
	v.SetDefault("jwt.ttl", 24*time.Hour)

	v.SetDefault("chat.node_id", 1)
	v.SetDefault("chat.max_content_length", 4000)
	v.SetDefault("chat.send_buffer", 256)
	v.SetDefault("chat.identity_cache_ttl", time.Minute)
	v.SetDefault("chat.ping_interval", 30*time.Second)
	v.SetDefault("chat.pong_wait", 60*time.Second)
	v.SetDefault("chat.max_frame_bytes", 16*1024)

	v.SetDefault("log.service", "chat-realtime-api")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.stdout", true)
	v.SetDefault("log.file.path", "")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_backups", 3)
	v.SetDefault("log.file.max_age", 28)
	v.SetDefault("log.file.compress", true)
}

// Load reads configuration from defaults, an optional file and CHAT_* environment
// variables (CHAT_JWT_SECRET overrides jwt.secret, and so on).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path must not be empty"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret must not be empty"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("jwt.ttl must be positive"))
	}
	if c.Chat.NodeID < 0 || c.Chat.NodeID > 1023 {
		errs = append(errs, errors.New("chat.node_id must be within 0..1023"))
	}
	if c.Chat.MaxContentLength <= 0 {
		errs = append(errs, errors.New("chat.max_content_length must be positive"))
	}
	if c.Chat.SendBuffer <= 0 {
		errs = append(errs, errors.New("chat.send_buffer must be positive"))
	}
	if c.Chat.IdentityCacheTTL <= 0 {
		errs = append(errs, errors.New("chat.identity_cache_ttl must be positive"))
	}
	if c.Chat.MaxFrameBytes <= 0 {
		errs = append(errs, errors.New("chat.max_frame_bytes must be positive"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if c.Chat.PingInterval <= 0 || c.Chat.PongWait <= c.Chat.PingInterval {
		errs = append(errs, errors.New("chat.pong_wait must be greater than chat.ping_interval"))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		errs = append(errs, errors.New("log.encoding must be json or console"))
	}
	return errors.Join(errs...)
}

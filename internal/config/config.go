package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultRefreshInterval    = 60 * time.Second
	DefaultStalenessThreshold = 90 * time.Second
	DefaultFetchTimeout       = 10 * time.Second
	DefaultDisplayZone        = "JST"
	DefaultDisplayOffset      = 9 * time.Hour
	DefaultHTTPPort           = 5001
	DefaultBroadcastInterval  = 5 * time.Second
	DefaultQuietStartHour     = 7
	DefaultQuietEndHour       = 16
	DefaultMinuteMultiple     = 10
	DefaultSinkTable          = "occupancy_log"

	// DefaultUserAgent is sent to every feed; several of them reject
	// non-browser clients.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36"
)

// Source types understood by the adapter factory.
const (
	TypeOriental = "oriental"
	TypeJIS      = "jis"
	TypeXIX      = "xix"
	TypeAlfa     = "alfa"
	TypeYatakoi  = "yatakoi"
)

// Sink types.
const (
	SinkNone     = "none"
	SinkWebhook  = "webhook"
	SinkPostgres = "postgres"
)

// Config is the top-level configuration. Fields map 1:1 to the YAML keys.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	Monitor  MonitorConfig `yaml:"monitor"`
	Sink     SinkConfig    `yaml:"sink"`
	Server   ServerConfig  `yaml:"server"`
}

// MonitorConfig controls polling, caching and timestamps.
type MonitorConfig struct {
	// RefreshInterval is the period of the background refresh loop.
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	// StalenessThreshold is the cache age above which a read triggers a
	// synchronous refresh.
	StalenessThreshold time.Duration `yaml:"staleness_threshold"`

	// FetchTimeout bounds a single adapter fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// DisplayZone and DisplayOffset name the fixed zone snapshot times are
	// expressed in, independent of the host TZ.
	DisplayZone   string        `yaml:"display_zone"`
	DisplayOffset time.Duration `yaml:"display_utc_offset"`

	UserAgent string `yaml:"user_agent"`

	// Sources is the ordered list of feeds. Order determines record order
	// before ranking.
	Sources []Source `yaml:"sources"`
}

// Location returns the fixed display zone.
func (m MonitorConfig) Location() *time.Location {
	return time.FixedZone(m.DisplayZone, int(m.DisplayOffset/time.Second))
}

// Source describes one venue feed.
type Source struct {
	ID       string    `yaml:"id"`
	Type     string    `yaml:"type"`
	Endpoint string    `yaml:"endpoint"`
	TLS      TLSConfig `yaml:"tls"`
}

// TLSConfig holds per-source TLS dial options.
type TLSConfig struct {
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// SinkConfig selects where per-cycle occupancy rows are logged and when.
type SinkConfig struct {
	// Type is one of: none | webhook | postgres.
	Type string `yaml:"type"`

	// WebhookType is one of: http | slack. Used when Type == "webhook".
	WebhookType string `yaml:"webhook_type"`

	// URLEnv is the name of the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`

	// DSNEnv is the name of the environment variable holding the Postgres DSN.
	DSNEnv string `yaml:"dsn_env"`
	Table  string `yaml:"table"`

	// Rows are not logged during [QuietStartHour, QuietEndHour] display time,
	// nor at minutes that are not a multiple of MinuteMultiple.
	QuietStartHour int `yaml:"quiet_start_hour"`
	QuietEndHour   int `yaml:"quiet_end_hour"`
	MinuteMultiple int `yaml:"minute_multiple"`
}

// URL returns the webhook URL resolved from the environment.
func (s SinkConfig) URL() string {
	if s.URLEnv == "" {
		return ""
	}
	return os.Getenv(s.URLEnv)
}

// DSN returns the Postgres connection string resolved from the environment.
func (s SinkConfig) DSN() string {
	if s.DSNEnv == "" {
		return ""
	}
	return os.Getenv(s.DSNEnv)
}

// ServerConfig holds HTTP surface settings.
type ServerConfig struct {
	HTTPPort int `yaml:"http_port"`

	// BroadcastInterval controls how often websocket clients receive the
	// cached status.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
}

// DefaultSources returns the built-in feed list.
func DefaultSources() []Source {
	return []Source{
		{ID: "oriental", Type: TypeOriental, Endpoint: "https://oriental-lounge.com/"},
		{ID: "jis", Type: TypeJIS, Endpoint: "https://jis.bar/"},
		{ID: "xix", Type: TypeXIX, Endpoint: "https://aiseki-okayama.conohawing.com/aiseki/parts/get_cs_info.php"},
		{ID: "alfa", Type: TypeAlfa, Endpoint: "https://aiseki-hiroshima.com/wp/display.php"},
		{ID: "yatakoi", Type: TypeYatakoi, Endpoint: "https://asobibar-823d1.firebaseio.com/shops/chayamachi.json"},
	}
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := defaults()
	cfg.Monitor.Sources = DefaultSources()
	return cfg
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults; an absent sources list
// falls back to DefaultSources.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if cfg.Monitor.Sources == nil {
		cfg.Monitor.Sources = DefaultSources()
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		LogLevel: "info",
		Monitor: MonitorConfig{
			RefreshInterval:    DefaultRefreshInterval,
			StalenessThreshold: DefaultStalenessThreshold,
			FetchTimeout:       DefaultFetchTimeout,
			DisplayZone:        DefaultDisplayZone,
			DisplayOffset:      DefaultDisplayOffset,
			UserAgent:          DefaultUserAgent,
		},
		Sink: SinkConfig{
			Type:           SinkNone,
			WebhookType:    "http",
			Table:          DefaultSinkTable,
			QuietStartHour: DefaultQuietStartHour,
			QuietEndHour:   DefaultQuietEndHour,
			MinuteMultiple: DefaultMinuteMultiple,
		},
		Server: ServerConfig{
			HTTPPort:          DefaultHTTPPort,
			BroadcastInterval: DefaultBroadcastInterval,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	m := cfg.Monitor
	if m.RefreshInterval <= 0 {
		return fmt.Errorf("monitor.refresh_interval must be positive")
	}
	if m.StalenessThreshold <= 0 {
		return fmt.Errorf("monitor.staleness_threshold must be positive")
	}
	if m.FetchTimeout <= 0 {
		return fmt.Errorf("monitor.fetch_timeout must be positive")
	}
	if m.DisplayOffset < -14*time.Hour || m.DisplayOffset > 14*time.Hour {
		return fmt.Errorf("monitor.display_utc_offset %v out of range", m.DisplayOffset)
	}

	seen := make(map[string]bool, len(m.Sources))
	for i, src := range m.Sources {
		if src.ID == "" {
			return fmt.Errorf("sources[%d]: id is required", i)
		}
		if seen[src.ID] {
			return fmt.Errorf("sources[%d]: duplicate id %q", i, src.ID)
		}
		seen[src.ID] = true
		if src.Endpoint == "" {
			return fmt.Errorf("sources[%d] %q: endpoint is required", i, src.ID)
		}
		switch src.Type {
		case TypeOriental, TypeJIS, TypeXIX, TypeAlfa, TypeYatakoi:
		default:
			return fmt.Errorf("sources[%d] %q: unknown type %q", i, src.ID, src.Type)
		}
	}

	s := cfg.Sink
	switch s.Type {
	case SinkNone, "":
	case SinkWebhook:
		switch s.WebhookType {
		case "http", "slack":
		default:
			return fmt.Errorf("sink.webhook_type: unknown type %q", s.WebhookType)
		}
		if s.URLEnv == "" {
			return fmt.Errorf("sink.url_env is required for webhook sink")
		}
	case SinkPostgres:
		if s.DSNEnv == "" {
			return fmt.Errorf("sink.dsn_env is required for postgres sink")
		}
		if s.Table == "" {
			return fmt.Errorf("sink.table is required for postgres sink")
		}
	default:
		return fmt.Errorf("sink.type: unknown type %q", s.Type)
	}
	if s.QuietStartHour < 0 || s.QuietStartHour > 23 || s.QuietEndHour < 0 || s.QuietEndHour > 23 {
		return fmt.Errorf("sink quiet hours must be within 0-23")
	}
	if s.MinuteMultiple <= 0 || s.MinuteMultiple > 60 {
		return fmt.Errorf("sink.minute_multiple must be within 1-60")
	}

	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d out of range", cfg.Server.HTTPPort)
	}
	if cfg.Server.BroadcastInterval <= 0 {
		return fmt.Errorf("server.broadcast_interval must be positive")
	}
	return nil
}

// ParseLevel maps a log_level string to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level: unknown level %q", s)
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LEARNFUL_REMOTE_DSN.
const EnvPrefix = "LEARNFUL"

// Config holds all configuration for the application.
type Config struct {
	DataDir string        `mapstructure:"data_dir"`
	Local   LocalConfig   `mapstructure:"local"`
	Remote  RemoteConfig  `mapstructure:"remote"`
	Session SessionConfig `mapstructure:"session"`
	Logger  LoggerConfig  `mapstructure:"logger"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Timer   TimerConfig   `mapstructure:"timer"`
}

// LocalConfig locates the on-device fallback store.
type LocalConfig struct {
	Path string `mapstructure:"path"`
}

// RemoteConfig holds the authoritative store connection. An empty DSN means
// the deployment has no remote store and every gateway uses the local path.
type RemoteConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

// Configured reports whether remote credentials are present.
func (c RemoteConfig) Configured() bool {
	return strings.TrimSpace(c.DSN) != ""
}

// SessionConfig holds the signed session token used to decide whether a
// remote session is available.
type SessionConfig struct {
	TokenFile string        `mapstructure:"token_file"`
	Secret    string        `mapstructure:"secret"`
	Issuer    string        `mapstructure:"issuer"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// LoggerConfig holds logging configuration. File enables rotation.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// TracingConfig enables OTLP span export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Insecure    bool   `mapstructure:"insecure"`
}

type TimerConfig struct {
	DefaultEfficiency int `mapstructure:"default_efficiency"`
}

// DefaultDataDir returns ~/.learnful, or ./.learnful when no home exists.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".learnful"
	}
	return filepath.Join(home, ".learnful")
}

// DefaultConfig returns a Config with sensible defaults rooted at dataDir.
// Remote is unconfigured by default.
func DefaultConfig(dataDir string) Config {
	return Config{
		DataDir: dataDir,
		Local:   LocalConfig{Path: filepath.Join(dataDir, "learnful.db")},
		Remote: RemoteConfig{
			Driver:          "postgres",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 30 * time.Second,
			ConnectTimeout:  5 * time.Second,
			ReadTimeout:     3 * time.Second,
			WriteTimeout:    10 * time.Second,
		},
		Session: SessionConfig{
			TokenFile: filepath.Join(dataDir, "session.jwt"),
			Issuer:    "learnful",
			TTL:       30 * 24 * time.Hour,
		},
		Logger: LoggerConfig{
			Level:      "warn",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Tracing: TracingConfig{ServiceName: "learnful"},
		Timer:   TimerConfig{DefaultEfficiency: 100},
	}
}

// Load reads configuration from defaults, an optional config.yaml in the data
// directory, a .env file and LEARNFUL_* environment variables, in increasing
// order of precedence.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	dataDir := DefaultDataDir()
	if d := os.Getenv(EnvPrefix + "_DATA_DIR"); d != "" {
		dataDir = d
	}
	setDefaults(v, DefaultConfig(dataDir))
	bindEnvVars(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dataDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("data_dir", d.DataDir)

	v.SetDefault("local.path", d.Local.Path)

	v.SetDefault("remote.driver", d.Remote.Driver)
	v.SetDefault("remote.dsn", d.Remote.DSN)
	v.SetDefault("remote.max_open_conns", d.Remote.MaxOpenConns)
	v.SetDefault("remote.max_idle_conns", d.Remote.MaxIdleConns)
	v.SetDefault("remote.conn_max_lifetime", d.Remote.ConnMaxLifetime)
	v.SetDefault("remote.conn_max_idle_time", d.Remote.ConnMaxIdleTime)
	v.SetDefault("remote.connect_timeout", d.Remote.ConnectTimeout)
	v.SetDefault("remote.read_timeout", d.Remote.ReadTimeout)
	v.SetDefault("remote.write_timeout", d.Remote.WriteTimeout)

	v.SetDefault("session.token_file", d.Session.TokenFile)
	v.SetDefault("session.secret", d.Session.Secret)
	v.SetDefault("session.issuer", d.Session.Issuer)
	v.SetDefault("session.ttl", d.Session.TTL)

	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("logger.format", d.Logger.Format)
	v.SetDefault("logger.file", d.Logger.File)
	v.SetDefault("logger.max_size_mb", d.Logger.MaxSizeMB)
	v.SetDefault("logger.max_backups", d.Logger.MaxBackups)
	v.SetDefault("logger.max_age_days", d.Logger.MaxAgeDays)

	v.SetDefault("metrics.textfile", d.Metrics.Textfile)

	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("tracing.insecure", d.Tracing.Insecure)

	v.SetDefault("timer.default_efficiency", d.Timer.DefaultEfficiency)
}

// bindEnvVars maps the short, conventional names alongside the prefixed ones.
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("remote.dsn", EnvPrefix+"_REMOTE_DSN", "DATABASE_URL")
	_ = v.BindEnv("session.secret", EnvPrefix+"_SESSION_SECRET", "JWT_SECRET")
	_ = v.BindEnv("logger.level", EnvPrefix+"_LOGGER_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("tracing.endpoint", EnvPrefix+"_TRACING_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func validateConfig(cfg *Config) error {
	if cfg.Local.Path == "" {
		return fmt.Errorf("local store path is required")
	}
	switch cfg.Remote.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported remote driver %q", cfg.Remote.Driver)
	}
	if cfg.Remote.Configured() && cfg.Session.Secret == "" {
		return fmt.Errorf("session secret is required when a remote store is configured")
	}
	if cfg.Remote.ReadTimeout <= 0 || cfg.Remote.WriteTimeout <= 0 {
		return fmt.Errorf("remote timeouts must be positive")
	}
	switch cfg.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log format %q", cfg.Logger.Format)
	}
	if e := cfg.Timer.DefaultEfficiency; e < 0 || e > 100 {
		return fmt.Errorf("timer default efficiency must be between 0 and 100")
	}
	return nil
}

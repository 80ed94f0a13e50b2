package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jsuarez-dev/MarkdownLSP/internal/dictionary"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// AppDir is the directory under the projects dir holding the log file and
// the optional mdlsp.yaml.
const AppDir = "MarkdownLSP"

// Transport modes.
const (
	TransportStdio     = "stdio"
	TransportWebSocket = "websocket"
)

// Config represents the MarkdownLSP configuration
type Config struct {
	ProjectsDir string           `mapstructure:"projects_dir"`
	Log         LogConfig        `mapstructure:"log"`
	Dictionary  DictionaryConfig `mapstructure:"dictionary"`
	Transport   TransportConfig  `mapstructure:"transport"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// DictionaryConfig represents dictionary backend configuration
type DictionaryConfig struct {
	Backend string      `mapstructure:"backend"`
	Path    string      `mapstructure:"path"`
	Watch   bool        `mapstructure:"watch"`
	SQL     SQLConfig   `mapstructure:"sql"`
	Redis   RedisConfig `mapstructure:"redis"`
}

// SQLConfig represents the SQL dictionary connection
type SQLConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// RedisConfig represents the Redis dictionary connection
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	Key  string `mapstructure:"key"`
}

// TransportConfig selects how the server talks to its client
type TransportConfig struct {
	Mode string `mapstructure:"mode"`
	Addr string `mapstructure:"addr"`
}

// StartupError reports a configuration problem that prevents the server
// from starting.
type StartupError struct {
	Setting string
	Err     error
}

// Error implements the error interface.
func (e *StartupError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %v", e.Setting, e.Err)
}

// Unwrap returns the underlying error.
func (e *StartupError) Unwrap() error {
	return e.Err
}

// ErrProjectsDirUnset is wrapped by the StartupError returned when
// PROJECTS_DIR is not set.
var ErrProjectsDirUnset = errors.New("PROJECTS_DIR environment variable is not set")

// Load loads the configuration from defaults, the environment and an
// optional mdlsp.yaml found in $PROJECTS_DIR/MarkdownLSP or the current
// directory.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("projects_dir", "")
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.file", "")
	v.SetDefault("dictionary.backend", dictionary.BackendBuiltin)
	v.SetDefault("dictionary.path", "")
	v.SetDefault("dictionary.watch", false)
	v.SetDefault("dictionary.sql.driver", dictionary.DriverSQLite)
	v.SetDefault("dictionary.sql.dsn", "")
	v.SetDefault("dictionary.redis.addr", "localhost:6379")
	v.SetDefault("dictionary.redis.key", dictionary.DefaultRedisKey)
	v.SetDefault("transport.mode", TransportStdio)
	v.SetDefault("transport.addr", "127.0.0.1:7998")

	// Enable environment variable support: MDLSP_LOG_LEVEL, etc.
	v.SetEnvPrefix("MDLSP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("projects_dir", "PROJECTS_DIR"); err != nil {
		return nil, fmt.Errorf("failed to bind PROJECTS_DIR: %w", err)
	}

	// Set config name and paths
	v.SetConfigName("mdlsp")
	v.SetConfigType("yaml")
	if dir := v.GetString("projects_dir"); dir != "" {
		v.AddConfigPath(filepath.Join(dir, AppDir))
	}
	v.AddConfigPath(".")

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// RequireProjectsDir fails when PROJECTS_DIR is unset.
func (c *Config) RequireProjectsDir() error {
	if c.ProjectsDir == "" {
		return &StartupError{Setting: "projects_dir", Err: ErrProjectsDirUnset}
	}
	return nil
}

// LogFile returns the configured log file, defaulting to
// $PROJECTS_DIR/MarkdownLSP/log.txt.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.ProjectsDir, AppDir, "log.txt")
}

// DictionaryOptions converts the dictionary section for dictionary.Open.
func (c *Config) DictionaryOptions() dictionary.Options {
	return dictionary.Options{
		Backend:   c.Dictionary.Backend,
		Path:      c.Dictionary.Path,
		Watch:     c.Dictionary.Watch,
		SQLDriver: c.Dictionary.SQL.Driver,
		SQLDSN:    c.Dictionary.SQL.DSN,
		RedisAddr: c.Dictionary.Redis.Addr,
		RedisKey:  c.Dictionary.Redis.Key,
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return &StartupError{Setting: "log.level", Err: err}
	}

	switch cfg.Dictionary.Backend {
	case dictionary.BackendBuiltin, dictionary.BackendFile, dictionary.BackendSQL, dictionary.BackendRedis:
	default:
		return &StartupError{
			Setting: "dictionary.backend",
			Err:     fmt.Errorf("must be one of builtin, file, sql or redis, got: %s", cfg.Dictionary.Backend),
		}
	}

	switch cfg.Dictionary.SQL.Driver {
	case dictionary.DriverSQLite, dictionary.DriverPostgres:
	default:
		return &StartupError{
			Setting: "dictionary.sql.driver",
			Err:     fmt.Errorf("must be sqlite3 or postgres, got: %s", cfg.Dictionary.SQL.Driver),
		}
	}

	switch cfg.Transport.Mode {
	case TransportStdio:
	case TransportWebSocket:
		if cfg.Transport.Addr == "" {
			return &StartupError{Setting: "transport.addr", Err: errors.New("required for websocket transport")}
		}
	default:
		return &StartupError{
			Setting: "transport.mode",
			Err:     fmt.Errorf("must be stdio or websocket, got: %s", cfg.Transport.Mode),
		}
	}

	return nil
}

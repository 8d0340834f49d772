package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment identifies one deployment target of the platform.
type Environment string

const (
	EnvDev        Environment = "DEV"
	EnvStg        Environment = "STG"
	EnvUat        Environment = "UAT"
	EnvIndiaProd  Environment = "INDIA_PROD"
	EnvCanadaProd Environment = "CANADA_PROD"
)

// AllEnvironments lists every known environment in canonical order.
// The order is also the merge precedence order for the metadata pass.
var AllEnvironments = []Environment{EnvDev, EnvStg, EnvUat, EnvIndiaProd, EnvCanadaProd}

// ParseEnvironment converts a string into a known Environment.
func ParseEnvironment(s string) (Environment, error) {
	env := Environment(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllEnvironments {
		if env == known {
			return env, nil
		}
	}
	return "", fmt.Errorf("unknown environment: %q", s)
}

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Server       ServerConfig
	Logger       LoggerConfig
	Environments map[Environment]EnvironmentConfig
	Metadata     MetadataConfig
	Dispatch     DispatchConfig
	Client       ClientConfig
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Debug       bool
	Version     string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// LoggerConfig holds logging settings
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
	OutputPath  string
}

// EnvironmentConfig holds the two base URLs of one deployment environment:
// the auth+tenant service and the metadata+country service.
type EnvironmentConfig struct {
	AuthBaseURL string
	MetaBaseURL string
}

// Configured reports whether both base URLs are set for this environment.
func (e EnvironmentConfig) Configured() bool {
	return e.AuthBaseURL != "" && e.MetaBaseURL != ""
}

// MetadataConfig controls the cross-environment metadata pass.
type MetadataConfig struct {
	// Environments is the ordered list queried on login. Order determines
	// which environment wins the identity fields during the merge.
	Environments []Environment
}

// DispatchConfig controls submission fan-out behaviour.
type DispatchConfig struct {
	// FailFast aborts the whole batch on the first environment error when
	// true; when false every environment runs and per-environment results
	// are returned.
	FailFast       bool
	RequestTimeout time.Duration
}

// ClientConfig holds outbound HTTP client settings.
type ClientConfig struct {
	// ReuseTokens allows a cached bearer token to be reused while its exp
	// claim is still in the future.
	ReuseTokens bool
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// Read from .env file (optional); env vars still apply without it
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Continue: env vars may still carry the full configuration
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	if err := bindConfig(v, cfg); err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadWithPath loads configuration from a specific path
func LoadWithPath(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	if err := bindConfig(v, cfg); err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("APP_NAME", "onboarding-console")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("APP_VERSION", "1.0.0")

	// Server defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "30s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	// Logger defaults
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEVELOPMENT", false)
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")

	// Environment base URLs are empty by default: an environment without
	// both URLs is treated as not configured.
	for _, env := range AllEnvironments {
		v.SetDefault(string(env)+"_AUTH_BASE_URL", "")
		v.SetDefault(string(env)+"_META_BASE_URL", "")
	}

	// DEV is excluded from the metadata pass: reference data there is too
	// unstable to contribute to the unified view.
	v.SetDefault("METADATA_ENVIRONMENTS", "STG,UAT,INDIA_PROD,CANADA_PROD")

	// Dispatch defaults
	v.SetDefault("DISPATCH_FAIL_FAST", true)
	v.SetDefault("DISPATCH_REQUEST_TIMEOUT", "30s")

	// Client defaults
	v.SetDefault("CLIENT_REUSE_TOKENS", false)
}

func bindConfig(v *viper.Viper, cfg *Config) error {
	// App
	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.Debug = v.GetBool("APP_DEBUG")
	cfg.App.Version = v.GetString("APP_VERSION")

	// Server
	cfg.Server.Host = v.GetString("SERVER_HOST")
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	cfg.Server.IdleTimeout = v.GetDuration("SERVER_IDLE_TIMEOUT")

	// Logger
	cfg.Logger.Level = v.GetString("LOG_LEVEL")
	cfg.Logger.Development = v.GetBool("LOG_DEVELOPMENT")
	cfg.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")

	// Environments
	cfg.Environments = make(map[Environment]EnvironmentConfig, len(AllEnvironments))
	for _, env := range AllEnvironments {
		cfg.Environments[env] = EnvironmentConfig{
			AuthBaseURL: strings.TrimRight(v.GetString(string(env)+"_AUTH_BASE_URL"), "/"),
			MetaBaseURL: strings.TrimRight(v.GetString(string(env)+"_META_BASE_URL"), "/"),
		}
	}

	// Metadata
	for _, part := range strings.Split(v.GetString("METADATA_ENVIRONMENTS"), ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		env, err := ParseEnvironment(part)
		if err != nil {
			return err
		}
		cfg.Metadata.Environments = append(cfg.Metadata.Environments, env)
	}

	// Dispatch
	cfg.Dispatch.FailFast = v.GetBool("DISPATCH_FAIL_FAST")
	cfg.Dispatch.RequestTimeout = v.GetDuration("DISPATCH_REQUEST_TIMEOUT")

	// Client
	cfg.Client.ReuseTokens = v.GetBool("CLIENT_REUSE_TOKENS")

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if len(c.Metadata.Environments) == 0 {
		return fmt.Errorf("at least one metadata environment is required")
	}

	seen := make(map[Environment]bool, len(c.Metadata.Environments))
	for _, env := range c.Metadata.Environments {
		if seen[env] {
			return fmt.Errorf("duplicate metadata environment: %s", env)
		}
		seen[env] = true
	}

	if c.Dispatch.RequestTimeout <= 0 {
		return fmt.Errorf("dispatch request timeout must be positive")
	}

	return nil
}

// EnvironmentFor returns the configuration for a single environment.
// The second return value is false when the environment is not configured.
func (c *Config) EnvironmentFor(env Environment) (EnvironmentConfig, bool) {
	ec, ok := c.Environments[env]
	if !ok || !ec.Configured() {
		return EnvironmentConfig{}, false
	}
	return ec, true
}

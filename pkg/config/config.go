package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment is the deployment mode
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
	EnvTest        Environment = "test"
)

// ConfigFileEnv names the YAML file to load when no path is given
const ConfigFileEnv = "SWITCHYARD_CONFIG_FILE"

// Config holds all application configuration
type Config struct {
	Environment Environment `yaml:"environment"`

	// Server configuration
	Server ServerConfig `yaml:"server"`

	Logging LoggingConfig `yaml:"logging"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`

	Plugins PluginsConfig `yaml:"plugins"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Metrics
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// OpenTelemetry
	OTelEnabled        bool    `yaml:"otel_enabled"`
	OTelEndpoint       string  `yaml:"otel_endpoint"`
	OTelServiceName    string  `yaml:"otel_service_name"`
	OTelServiceVersion string  `yaml:"otel_service_version"`
	OTelInsecure       bool    `yaml:"otel_insecure"`
	OTelSampleRatio    float64 `yaml:"otel_sample_ratio"`
}

// PluginsConfig holds per-integration settings
type PluginsConfig struct {
	Linear LinearConfig `yaml:"linear"`
	GitHub GitHubConfig `yaml:"github"`
}

// LinearConfig configures the Linear integration. A missing API key does not
// fail loading; the plugin reports it when first used.
type LinearConfig struct {
	Enabled bool          `yaml:"enabled"`
	APIKey  string        `yaml:"api_key"`
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// GitHubConfig configures the GitHub integration. Either Token or the three
// App fields authenticate it.
type GitHubConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Token          string        `yaml:"token"`
	AppID          int64         `yaml:"app_id"`
	InstallationID int64         `yaml:"installation_id"`
	PrivateKeyPath string        `yaml:"private_key_path"`
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Observability: ObservabilityConfig{
			MetricsEnabled:     true,
			OTelEnabled:        false,
			OTelEndpoint:       "localhost:4317",
			OTelServiceName:    "switchyard",
			OTelServiceVersion: "1.0.0",
			OTelInsecure:       true,
			OTelSampleRatio:    1.0,
		},
		Plugins: PluginsConfig{
			Linear: LinearConfig{
				Enabled: true,
				APIURL:  "https://api.linear.app/graphql",
				Timeout: 10 * time.Second,
			},
			GitHub: GitHubConfig{
				Enabled: false,
				Timeout: 10 * time.Second,
			},
		},
	}
}

// LoadConfig builds configuration from defaults, then the YAML file at path
// (or $SWITCHYARD_CONFIG_FILE when path is empty), then environment variables.
// Later sources override earlier ones.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path = ResolvePath(path); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ResolvePath returns path, or $SWITCHYARD_CONFIG_FILE when path is empty
func ResolvePath(path string) string {
	if path == "" {
		return os.Getenv(ConfigFileEnv)
	}
	return path
}

// loadFile overlays the YAML file onto c. Keys absent from the file keep
// their current values.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides c with any SWITCHYARD_* variables that are set
func (c *Config) applyEnv() {
	c.Environment = Environment(strings.ToLower(getEnv("SWITCHYARD_ENV", string(c.Environment))))

	c.Server.Host = getEnv("SWITCHYARD_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("SWITCHYARD_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvDuration("SWITCHYARD_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("SWITCHYARD_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("SWITCHYARD_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("SWITCHYARD_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.MaxBodyBytes = getEnvInt64("SWITCHYARD_MAX_BODY_BYTES", c.Server.MaxBodyBytes)

	c.Logging.Level = getEnv("SWITCHYARD_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("SWITCHYARD_LOG_FORMAT", c.Logging.Format)

	o := &c.Observability
	o.MetricsEnabled = getEnvBool("SWITCHYARD_METRICS_ENABLED", o.MetricsEnabled)
	o.OTelEnabled = getEnvBool("SWITCHYARD_OTEL_ENABLED", o.OTelEnabled)
	o.OTelEndpoint = getEnv("SWITCHYARD_OTEL_ENDPOINT", o.OTelEndpoint)
	o.OTelServiceName = getEnv("SWITCHYARD_OTEL_SERVICE_NAME", o.OTelServiceName)
	o.OTelServiceVersion = getEnv("SWITCHYARD_OTEL_SERVICE_VERSION", o.OTelServiceVersion)
	o.OTelInsecure = getEnvBool("SWITCHYARD_OTEL_INSECURE", o.OTelInsecure)
	o.OTelSampleRatio = getEnvFloat("SWITCHYARD_OTEL_SAMPLE_RATIO", o.OTelSampleRatio)

	l := &c.Plugins.Linear
	l.Enabled = getEnvBool("SWITCHYARD_LINEAR_ENABLED", l.Enabled)
	l.APIKey = getEnv("SWITCHYARD_LINEAR_API_KEY", l.APIKey)
	l.APIURL = getEnv("SWITCHYARD_LINEAR_API_URL", l.APIURL)
	l.Timeout = getEnvDuration("SWITCHYARD_LINEAR_TIMEOUT", l.Timeout)

	g := &c.Plugins.GitHub
	g.Enabled = getEnvBool("SWITCHYARD_GITHUB_ENABLED", g.Enabled)
	g.Token = getEnv("SWITCHYARD_GITHUB_TOKEN", g.Token)
	g.AppID = getEnvInt64("SWITCHYARD_GITHUB_APP_ID", g.AppID)
	g.InstallationID = getEnvInt64("SWITCHYARD_GITHUB_INSTALLATION_ID", g.InstallationID)
	g.PrivateKeyPath = getEnv("SWITCHYARD_GITHUB_PRIVATE_KEY_PATH", g.PrivateKeyPath)
	g.BaseURL = getEnv("SWITCHYARD_GITHUB_BASE_URL", g.BaseURL)
	g.Timeout = getEnvDuration("SWITCHYARD_GITHUB_TIMEOUT", g.Timeout)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	switch c.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("invalid environment: %q (must be development, production, or test)", c.Environment))
	}

	// Validate server config
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}
	if c.Server.MaxBodyBytes < 0 {
		errs = append(errs, errors.New("max body bytes must not be negative"))
	}

	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level: %w", err))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format: %q (must be text or json)", c.Logging.Format))
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			errs = append(errs, errors.New("OpenTelemetry endpoint is required when OTel is enabled"))
		}
		if c.Observability.OTelServiceName == "" {
			errs = append(errs, errors.New("OpenTelemetry service name is required when OTel is enabled"))
		}
		if r := c.Observability.OTelSampleRatio; r < 0 || r > 1 {
			errs = append(errs, fmt.Errorf("OpenTelemetry sample ratio must be within [0, 1], got %v", r))
		}
	}

	if c.Plugins.Linear.Enabled {
		if err := validateURL(c.Plugins.Linear.APIURL); err != nil {
			errs = append(errs, fmt.Errorf("linear api url: %w", err))
		}
	}

	if g := c.Plugins.GitHub; g.Enabled {
		if g.BaseURL != "" {
			if err := validateURL(g.BaseURL); err != nil {
				errs = append(errs, fmt.Errorf("github base url: %w", err))
			}
		}
		if g.AppID != 0 && (g.InstallationID == 0 || g.PrivateKeyPath == "") {
			errs = append(errs, errors.New("github app auth requires app id, installation id, and private key path"))
		}
	}

	return errors.Join(errs...)
}

// IsProduction reports whether 5xx details must be hidden from clients
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Address returns the listen address
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// LogFormat returns the configured format, defaulting to json in production
func (c *Config) LogFormat() string {
	if c.Logging.Format != "" {
		return strings.ToLower(c.Logging.Format)
	}
	if c.IsProduction() {
		return "json"
	}
	return "text"
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must be an http or https URL", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns a float environment variable or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

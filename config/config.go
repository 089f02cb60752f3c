package config

import (
	"log/slog"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	ResolveClient = "client"
	ResolveServer = "server"
)

var serviceIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type HealthCheckConfig struct {
	Interval string `mapstructure:"interval"`
	Timeout  string `mapstructure:"timeout"`
	Path     string `mapstructure:"path"`
}

type CircuitBreakerConfig struct {
	FailureThreshold int    `mapstructure:"failure_threshold"`
	ResetTimeout     string `mapstructure:"reset_timeout"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type StrategyConfig struct {
	Type string `mapstructure:"type"`
}

// DocsConfig controls the documentation viewer page and its initializer.
type DocsConfig struct {
	UIPath       string `mapstructure:"ui_path"`
	Title        string `mapstructure:"title"`
	ConfigPath   string `mapstructure:"config_path"`
	ConfigSource string `mapstructure:"config_source"`
	Resolve      string `mapstructure:"resolve"`
	ValidatorURL string `mapstructure:"validator_url"`
	AssetsURL    string `mapstructure:"assets_url"`
	FetchTimeout string `mapstructure:"fetch_timeout"`
}

type CacheConfig struct {
	Path string `mapstructure:"path"`
}

type InstanceConfig struct {
	URL    string `mapstructure:"url"`
	Weight int    `mapstructure:"weight"`
}

// ServiceConfig describes one documented upstream service. ID is the path
// segment the gateway exposes its docs under (/<id>/api-docs).
type ServiceConfig struct {
	ID        string           `mapstructure:"id"`
	Name      string           `mapstructure:"name"`
	DocsPath  string           `mapstructure:"docs_path"`
	Instances []InstanceConfig `mapstructure:"instances"`
}

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	HealthCheck    HealthCheckConfig    `mapstructure:"health_check"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	Strategy       StrategyConfig       `mapstructure:"strategy"`
	Docs           DocsConfig           `mapstructure:"docs"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Services       []ServiceConfig      `mapstructure:"services"`
}

// Load reads configuration from configFile, or from config.yaml in ./config
// or the working directory when configFile is empty. Environment variables
// override file values (docs.ui_path -> DOCS_UI_PATH).
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Warn("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	cfg.applyServiceDefaults()

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)
	v.SetDefault("health_check.interval", "10s")
	v.SetDefault("health_check.timeout", "5s")
	v.SetDefault("health_check.path", "/health")
	v.SetDefault("circuit_breaker.failure_threshold", 5)
	v.SetDefault("circuit_breaker.reset_timeout", "30s")
	v.SetDefault("rate_limit.requests_per_second", 0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("strategy.type", "round-robin")
	v.SetDefault("docs.ui_path", "/docs")
	v.SetDefault("docs.title", "Movie Booking System - API Documentation")
	v.SetDefault("docs.config_path", "/api-docs/swagger-config")
	v.SetDefault("docs.resolve", ResolveClient)
	v.SetDefault("docs.assets_url", "https://unpkg.com/swagger-ui-dist@5.17.14")
	v.SetDefault("docs.fetch_timeout", "5s")
}

func (c *Config) applyServiceDefaults() {
	for i := range c.Services {
		if c.Services[i].DocsPath == "" {
			c.Services[i].DocsPath = "/api-docs"
		}
		for j := range c.Services[i].Instances {
			if c.Services[i].Instances[j].Weight == 0 {
				c.Services[i].Instances[j].Weight = 1
			}
		}
	}
}

// Durations parsed from the string fields. Validate guarantees they parse.
func (c *Config) HealthCheckInterval() time.Duration {
	return mustDuration(c.HealthCheck.Interval)
}

func (c *Config) HealthCheckTimeout() time.Duration {
	return mustDuration(c.HealthCheck.Timeout)
}

func (c *Config) BreakerResetTimeout() time.Duration {
	return mustDuration(c.CircuitBreaker.ResetTimeout)
}

func (c *Config) DocsFetchTimeout() time.Duration {
	return mustDuration(c.Docs.FetchTimeout)
}

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
					validation.Field(&lc.MaxSizeMB, validation.Min(0)),
					validation.Field(&lc.MaxBackups, validation.Min(0)),
					validation.Field(&lc.MaxAgeDays, validation.Min(0)),
				)
			}),
		),
		validation.Field(&c.HealthCheck,
			validation.Required,
			validation.By(func(value interface{}) error {
				hc, ok := value.(HealthCheckConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a HealthCheckConfig")
				}
				return validation.ValidateStruct(&hc,
					validation.Field(&hc.Interval, validation.Required, validation.By(validateDuration)),
					validation.Field(&hc.Timeout, validation.Required, validation.By(validateDuration)),
					validation.Field(&hc.Path, validation.Required, validation.By(validateAbsPath)),
				)
			}),
		),
		validation.Field(&c.CircuitBreaker,
			validation.Required,
			validation.By(func(value interface{}) error {
				cb, ok := value.(CircuitBreakerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a CircuitBreakerConfig")
				}
				return validation.ValidateStruct(&cb,
					validation.Field(&cb.FailureThreshold, validation.Required, validation.Min(1)),
					validation.Field(&cb.ResetTimeout, validation.Required, validation.By(validateDuration)),
				)
			}),
		),
		validation.Field(&c.RateLimit,
			validation.By(func(value interface{}) error {
				rl, ok := value.(RateLimitConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a RateLimitConfig")
				}
				return validation.ValidateStruct(&rl,
					validation.Field(&rl.RequestsPerSecond, validation.Min(0.0)),
					validation.Field(&rl.Burst, validation.Min(0)),
				)
			}),
		),
		validation.Field(&c.Strategy,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(StrategyConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a StrategyConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Type,
						validation.Required,
						validation.In("round-robin", "least-conn", "least-response", "weighted-round-robin"),
					),
				)
			}),
		),
		validation.Field(&c.Docs,
			validation.Required,
			validation.By(func(value interface{}) error {
				dc, ok := value.(DocsConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a DocsConfig")
				}
				return validation.ValidateStruct(&dc,
					validation.Field(&dc.UIPath, validation.Required, validation.By(validateAbsPath)),
					validation.Field(&dc.Title, validation.Required),
					validation.Field(&dc.ConfigPath, validation.Required, validation.By(validateAbsPath)),
					validation.Field(&dc.Resolve, validation.Required, validation.In(ResolveClient, ResolveServer)),
					validation.Field(&dc.ConfigSource,
						validation.When(dc.Resolve == ResolveServer, validation.Required),
						validation.When(dc.ConfigSource != "", validation.By(validateServerURL)),
					),
					validation.Field(&dc.AssetsURL, validation.Required, validation.By(validateServerURL)),
					validation.Field(&dc.FetchTimeout, validation.Required, validation.By(validateDuration)),
				)
			}),
		),
		validation.Field(&c.Services,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.By(validateServiceConfig)),
			validation.By(validateUniqueServiceIDs),
		),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	if d <= 0 {
		return validation.NewError("validation_invalid_duration", "must be positive")
	}

	return nil
}

func validateAbsPath(value interface{}) error {
	p, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if !strings.HasPrefix(p, "/") {
		return validation.NewError("validation_invalid_path", "must start with /")
	}

	return nil
}

func validateServerURL(value interface{}) error {
	serverURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if serverURL == "" {
		return validation.NewError("validation_empty_url", "server URL cannot be empty")
	}

	parsedURL, err := url.Parse(serverURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}

func validateServiceConfig(value interface{}) error {
	svc, ok := value.(ServiceConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a ServiceConfig")
	}

	return validation.ValidateStruct(&svc,
		validation.Field(&svc.ID, validation.Required, validation.Match(serviceIDPattern)),
		validation.Field(&svc.Name, validation.Required),
		validation.Field(&svc.DocsPath, validation.Required, validation.By(validateAbsPath)),
		validation.Field(&svc.Instances,
			validation.Required,
			validation.Length(1, 0),
			validation.Each(validation.By(validateInstanceConfig)),
		),
	)
}

func validateInstanceConfig(value interface{}) error {
	inst, ok := value.(InstanceConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be an InstanceConfig")
	}

	if err := validateServerURL(inst.URL); err != nil {
		return err
	}

	if inst.Weight < 1 {
		return validation.NewError("validation_invalid_weight", "weight must be at least 1")
	}

	return nil
}

func validateUniqueServiceIDs(value interface{}) error {
	services, ok := value.([]ServiceConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a list of services")
	}

	seen := make(map[string]struct{}, len(services))
	for _, s := range services {
		if _, dup := seen[s.ID]; dup {
			return validation.NewError("validation_duplicate_service", "duplicate service id "+s.ID)
		}
		seen[s.ID] = struct{}{}
	}

	return nil
}

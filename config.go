package staffgate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment overrides applied after the file is parsed.
const (
	envUpstreamBaseURL = "STAFFGATE_UPSTREAM_BASE_URL"
	envServerPort      = "STAFFGATE_PORT"
)

type Config struct {
	ConfigVersion string         `json:"config_version" yaml:"config_version" toml:"config_version" validate:"required,oneof=v1"`
	Name          string         `json:"name" yaml:"name" toml:"name" default:"staffgate" validate:"required"`
	Version       string         `json:"version" yaml:"version" toml:"version" default:"dev"`
	Debug         bool           `json:"debug" yaml:"debug" toml:"debug"`
	Server        ServerConfig   `json:"server" yaml:"server" toml:"server"`
	Upstream      UpstreamConfig `json:"upstream" yaml:"upstream" toml:"upstream"`
	Tracing       TracingConfig  `json:"tracing" yaml:"tracing" toml:"tracing"`
}

type ServerConfig struct {
	Port     int           `json:"port" yaml:"port" toml:"port" default:"8080" validate:"min=1,max=65535"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" toml:"timeout" default:"60s"`
	BasePath string        `json:"base_path" yaml:"base_path" toml:"base_path" default:"/api/v1"`

	// RetryAfter is advised on 429 responses when the upstream gave no hint.
	RetryAfter time.Duration `json:"retry_after" yaml:"retry_after" toml:"retry_after" default:"10s"`

	Metrics     MetricsConfig     `json:"metrics" yaml:"metrics" toml:"metrics"`
	RateLimiter RateLimiterConfig `json:"rate_limiter" yaml:"rate_limiter" toml:"rate_limiter"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	Path    string `json:"path" yaml:"path" toml:"path" default:"/metrics"`
}

type RateLimiterConfig struct {
	Enabled bool          `json:"enabled" yaml:"enabled" toml:"enabled"`
	Limit   int           `json:"limit" yaml:"limit" toml:"limit" default:"60" validate:"min=1"`
	Window  time.Duration `json:"window" yaml:"window" toml:"window" default:"1m"`
}

type UpstreamConfig struct {
	BaseURL             string               `json:"base_url" yaml:"base_url" toml:"base_url" validate:"required,url"`
	ReadTimeout         time.Duration        `json:"read_timeout" yaml:"read_timeout" toml:"read_timeout" default:"10s"`
	MaxResponseBodySize int64                `json:"max_response_body_size" yaml:"max_response_body_size" toml:"max_response_body_size"`
	Retry               RetryConfig          `json:"retry" yaml:"retry" toml:"retry"`
	CircuitBreaker      CircuitBreakerConfig `json:"circuit_breaker" yaml:"circuit_breaker" toml:"circuit_breaker"`
}

type RetryConfig struct {
	MaxAttempts     int           `json:"max_attempts" yaml:"max_attempts" toml:"max_attempts" default:"3" validate:"min=1"`
	InitialInterval time.Duration `json:"initial_interval" yaml:"initial_interval" toml:"initial_interval" default:"2s"`
	Jitter          float64       `json:"jitter" yaml:"jitter" toml:"jitter" default:"0.5" validate:"min=0,max=1"`
	MaxInterval     time.Duration `json:"max_interval" yaml:"max_interval" toml:"max_interval" default:"30s"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `json:"enabled" yaml:"enabled" toml:"enabled"`
	MaxFailures  int           `json:"max_failures" yaml:"max_failures" toml:"max_failures" default:"5" validate:"min=1"`
	ResetTimeout time.Duration `json:"reset_timeout" yaml:"reset_timeout" toml:"reset_timeout" default:"30s"`
}

type TracingConfig struct {
	Enabled     bool    `json:"enabled" yaml:"enabled" toml:"enabled"`
	Endpoint    string  `json:"endpoint" yaml:"endpoint" toml:"endpoint" validate:"required_if=Enabled true"`
	Insecure    bool    `json:"insecure" yaml:"insecure" toml:"insecure"`
	SampleRatio float64 `json:"sample_ratio" yaml:"sample_ratio" toml:"sample_ratio" default:"1" validate:"min=0,max=1"`
}

// RetryPolicy converts the retry section into the policy used by the Retrier.
func (c UpstreamConfig) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     c.Retry.MaxAttempts,
		InitialInterval: c.Retry.InitialInterval,
		Jitter:          c.Retry.Jitter,
		MaxInterval:     c.Retry.MaxInterval,
	}
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read configuration file: %w", err)
	}

	var cfg Config

	switch filepath.Ext(path) {
	case ".json":
		if err = json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("cannot parse configuration file: %w", err)
		}
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("cannot parse configuration file: %w", err)
		}
	case ".toml":
		if err = toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("cannot parse configuration file: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unknown configuration file extension: %s", filepath.Ext(path))
	}

	if err = defaults.Set(&cfg); err != nil {
		return Config{}, fmt.Errorf("cannot apply configuration defaults: %w", err)
	}

	applyEnv(&cfg)

	tagKey := strings.TrimPrefix(filepath.Ext(path), ".")
	if tagKey == "yml" {
		tagKey = "yaml"
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get(tagKey)
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}

		return strings.ToLower(strings.Split(name, ",")[0])
	})

	if err = v.Struct(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", formatValidationError(err))
	}

	return cfg, nil
}

// applyEnv lets deployments override the settings that differ per environment.
func applyEnv(cfg *Config) {
	if v := os.Getenv(envUpstreamBaseURL); v != "" {
		cfg.Upstream.BaseURL = v
	}

	if v := os.Getenv(envServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

func formatValidationError(err error) error {
	var ves validator.ValidationErrors

	if ok := errors.As(err, &ves); !ok {
		return err
	}

	var messages []string

	for _, fe := range ves {
		path := strings.TrimPrefix(fe.Namespace(), "Config.")

		messages = append(messages, fmt.Sprintf(
			"%s: %s",
			path,
			humanMessage(fe),
		))
	}

	return errors.New(strings.Join(messages, "\n"))
}

func humanMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "field is required"

	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())

	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())

	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())

	case "url":
		return "must be a valid URL"

	default:
		return fmt.Sprintf("validation failed on '%s'", fe.Tag())
	}
}

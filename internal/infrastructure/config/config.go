package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/shopunion/client/internal/infrastructure/platform"
	"github.com/shopunion/client/internal/infrastructure/telemetry"
)

// EnvPrefix prefixes every environment override, e.g. SHOPUNION_TAOBAO_APP_KEY
const EnvPrefix = "SHOPUNION"

// Config holds all client configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
	Platforms platform.Config
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Version string
	Env     string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds outbound transport settings
type HTTPConfig struct {
	Timeout        time.Duration
	ConnectTimeout time.Duration
}

// TelemetryConfig holds OTLP export settings
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	Insecure          bool
	SamplingRatio     float64
	ExportInterval    time.Duration
}

// Exporter returns the OTLP settings tagged with the app name and version
func (c *Config) Exporter() telemetry.Config {
	return telemetry.Config{
		Enabled:           c.Telemetry.Enabled,
		CollectorEndpoint: c.Telemetry.CollectorEndpoint,
		Insecure:          c.Telemetry.Insecure,
		SamplingRatio:     c.Telemetry.SamplingRatio,
		ExportInterval:    c.Telemetry.ExportInterval,
		ServiceName:       c.App.Name,
		ServiceVersion:    c.App.Version,
	}
}

// Transport returns the platform transport settings
func (h HTTPConfig) Transport() platform.TransportConfig {
	return platform.TransportConfig{
		Timeout:        h.Timeout,
		ConnectTimeout: h.ConnectTimeout,
	}
}

// Load reads shopunion.toml from ., ./config or /etc/shopunion and applies
// SHOPUNION_* environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("shopunion")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/shopunion")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	return build(v)
}

// LoadFile reads configuration from an explicit file path.
// The format follows the file extension (toml, yaml, json).
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return build(v)
}

func build(v *viper.Viper) (*Config, error) {
	// Enable environment variable override
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("telemetry.collector_endpoint", "localhost:4317")
	v.SetDefault("telemetry.sampling_ratio", 1.0)

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Version: v.GetString("app.version"),
			Env:     v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			Timeout:        v.GetDuration("http.timeout"),
			ConnectTimeout: v.GetDuration("http.connect_timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			Insecure:          v.GetBool("telemetry.insecure"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
		},
		Platforms: platform.Config{
			Taobao: platform.TaobaoConfig{
				AppKey:    v.GetString("taobao.app_key"),
				AppSecret: v.GetString("taobao.app_secret"),
				PID:       v.GetString("taobao.pid"),
				AdzoneID:  v.GetString("taobao.adzone_id"),
				Session:   v.GetString("taobao.session"),
				Gateway:   v.GetString("taobao.gateway"),
			},
			Pinduoduo: platform.PinduoduoConfig{
				ClientID:     v.GetString("pinduoduo.client_id"),
				ClientSecret: v.GetString("pinduoduo.client_secret"),
				PID:          v.GetString("pinduoduo.pid"),
				AccessToken:  v.GetString("pinduoduo.access_token"),
				Gateway:      v.GetString("pinduoduo.gateway"),
			},
			JD: platform.JDConfig{
				AppKey:     v.GetString("jd.app_key"),
				AppSecret:  v.GetString("jd.app_secret"),
				UnionID:    v.GetString("jd.union_id"),
				PositionID: v.GetString("jd.position_id"),
				Gateway:    v.GetString("jd.gateway"),
			},
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "shopunion"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "dev"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = telemetry.DefaultExportInterval
	}
	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = platform.DefaultRequestTimeout
	}
	if cfg.HTTP.ConnectTimeout == 0 {
		cfg.HTTP.ConnectTimeout = platform.DefaultConnectTimeout
	}
	if cfg.Platforms.Taobao.Gateway == "" {
		cfg.Platforms.Taobao.Gateway = platform.TaobaoGateway
	}
	if cfg.Platforms.Pinduoduo.Gateway == "" {
		cfg.Platforms.Pinduoduo.Gateway = platform.PinduoduoGateway
	}
	if cfg.Platforms.JD.Gateway == "" {
		cfg.Platforms.JD.Gateway = platform.JDGateway
	}
}

func (c *Config) validate() error {
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout cannot be negative")
	}
	if c.HTTP.ConnectTimeout < 0 {
		return fmt.Errorf("http.connect_timeout cannot be negative")
	}
	if c.HTTP.ConnectTimeout > c.HTTP.Timeout {
		return fmt.Errorf("http.connect_timeout (%s) cannot exceed http.timeout (%s)",
			c.HTTP.ConnectTimeout, c.HTTP.Timeout)
	}

	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1, got %v", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.Enabled && c.Telemetry.CollectorEndpoint == "" {
		return fmt.Errorf("telemetry.collector_endpoint is required when telemetry is enabled")
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}

	// Credentials stay optional until a platform is used, but a configured
	// platform must be complete.
	if c.Platforms.HasTaobao() {
		if err := c.Platforms.Taobao.Validate(); err != nil {
			return err
		}
	}
	if c.Platforms.HasPinduoduo() {
		if err := c.Platforms.Pinduoduo.Validate(); err != nil {
			return err
		}
	}
	if c.Platforms.HasJD() {
		if err := c.Platforms.JD.Validate(); err != nil {
			return err
		}
	}

	return nil
}

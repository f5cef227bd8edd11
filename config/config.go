package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
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
	UnitMilliseconds = "milliseconds"
	UnitSeconds      = "seconds"
	UnitMinutes      = "minutes"
)

const envPrefix = "UPTIME"

var jsonPathPattern = regexp.MustCompile(`^\$[.\[]`)

type BreakerConfig struct {
	Threshold    int           `mapstructure:"threshold"`
	ResetTimeout time.Duration `mapstructure:"reset_timeout"`
}

type APIConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	ErrorField string        `mapstructure:"error_field"`
	Breaker    BreakerConfig `mapstructure:"breaker"`
}

type SessionConfig struct {
	Path string `mapstructure:"path"`
}

type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Schedule string        `mapstructure:"schedule"`
}

type NotifyConfig struct {
	Duration  time.Duration `mapstructure:"duration"`
	QueueSize int           `mapstructure:"queue_size"`
}

type CheckerConfig struct {
	PeriodUnit string `mapstructure:"period_unit"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

type Config struct {
	Environment string        `mapstructure:"environment"`
	API         APIConfig     `mapstructure:"api"`
	Session     SessionConfig `mapstructure:"session"`
	Poll        PollConfig    `mapstructure:"poll"`
	Notify      NotifyConfig  `mapstructure:"notify"`
	Checker     CheckerConfig `mapstructure:"checker"`
	Logging     LoggingConfig `mapstructure:"logging"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
}

// Load reads the configuration. An empty path searches for config.yaml in
// ./config and the working directory; a missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Debug("config file not found, using defaults and environment variables")
	} else {
		slog.Debug("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", EnvDev)
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.error_field", "$.error")
	v.SetDefault("api.breaker.threshold", 5)
	v.SetDefault("api.breaker.reset_timeout", "30s")
	v.SetDefault("session.path", defaultSessionPath())
	v.SetDefault("poll.interval", "10s")
	v.SetDefault("poll.schedule", "")
	v.SetDefault("notify.duration", "2s")
	v.SetDefault("notify.queue_size", 32)
	v.SetDefault("checker.period_unit", UnitSeconds)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("metrics.address", "")
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Environment,
			validation.Required,
			validation.In(EnvDev, EnvStaging, EnvProd),
		),
		validation.Field(&c.API,
			validation.By(func(value interface{}) error {
				ac, ok := value.(APIConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be an APIConfig")
				}
				return validation.ValidateStruct(&ac,
					validation.Field(&ac.BaseURL,
						validation.Required,
						validation.By(validateServerURL),
					),
					validation.Field(&ac.Timeout,
						validation.By(validatePositiveDuration),
					),
					validation.Field(&ac.ErrorField,
						validation.Match(jsonPathPattern).Error("must be a JSONPath starting with $."),
					),
					validation.Field(&ac.Breaker,
						validation.By(func(value interface{}) error {
							bc, ok := value.(BreakerConfig)
							if !ok {
								return validation.NewError("validation_invalid_type", "must be a BreakerConfig")
							}
							return validation.ValidateStruct(&bc,
								validation.Field(&bc.Threshold, validation.Required, validation.Min(1)),
								validation.Field(&bc.ResetTimeout, validation.By(validatePositiveDuration)),
							)
						}),
					),
				)
			}),
		),
		validation.Field(&c.Session,
			validation.By(func(value interface{}) error {
				sc, ok := value.(SessionConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a SessionConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Path, validation.Required),
				)
			}),
		),
		validation.Field(&c.Poll,
			validation.By(func(value interface{}) error {
				pc, ok := value.(PollConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a PollConfig")
				}
				if pc.Schedule != "" {
					return nil
				}
				return validation.ValidateStruct(&pc,
					validation.Field(&pc.Interval, validation.By(validatePositiveDuration)),
				)
			}),
		),
		validation.Field(&c.Notify,
			validation.By(func(value interface{}) error {
				nc, ok := value.(NotifyConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a NotifyConfig")
				}
				return validation.ValidateStruct(&nc,
					validation.Field(&nc.Duration, validation.By(validatePositiveDuration)),
					validation.Field(&nc.QueueSize, validation.Required, validation.Min(1)),
				)
			}),
		),
		validation.Field(&c.Checker,
			validation.By(func(value interface{}) error {
				cc, ok := value.(CheckerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a CheckerConfig")
				}
				return validation.ValidateStruct(&cc,
					validation.Field(&cc.PeriodUnit,
						validation.Required,
						validation.In(UnitMilliseconds, UnitSeconds, UnitMinutes),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
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
				)
			}),
		),
		validation.Field(&c.Metrics,
			validation.By(func(value interface{}) error {
				mc, ok := value.(MetricsConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a MetricsConfig")
				}
				if mc.Address == "" {
					return nil
				}
				return validateHostPort(mc.Address)
			}),
		),
	)
}

// Period converts a checker period as sent on the wire into a duration.
func (c CheckerConfig) Period(value float64) time.Duration {
	switch c.PeriodUnit {
	case UnitMilliseconds:
		return time.Duration(value * float64(time.Millisecond))
	case UnitMinutes:
		return time.Duration(value * float64(time.Minute))
	default:
		return time.Duration(value * float64(time.Second))
	}
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

func validatePositiveDuration(value interface{}) error {
	d, ok := value.(time.Duration)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a duration")
	}

	if d <= 0 {
		return validation.NewError("validation_invalid_duration", "must be a positive duration (e.g., 2s, 5m, 1h)")
	}

	return nil
}

func validateServerURL(value interface{}) error {
	serverURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
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

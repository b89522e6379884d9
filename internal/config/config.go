// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/marwyn/tradewind/internal/core"
)

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Data    DataConfig    `mapstructure:"data"`
	Trading TradingConfig `mapstructure:"trading"`
	Risk    RiskConfig    `mapstructure:"risk"`
	Session SessionConfig `mapstructure:"session"`
	Broker  BrokerConfig  `mapstructure:"broker"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

// DataConfig locates historical bar data for backtests.
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

type TradingConfig struct {
	Symbols  []string      `mapstructure:"symbols"`
	Strategy string        `mapstructure:"strategy"`
	Interval time.Duration `mapstructure:"interval"`
	Bars     int           `mapstructure:"bars"`
}

type RiskConfig struct {
	RiskPercent           float64 `mapstructure:"risk_percent"`
	MaxVolume             float64 `mapstructure:"max_volume"`
	DailyLossLimitPct     float64 `mapstructure:"daily_loss_limit_pct"`
	MaxTotalPositions     int     `mapstructure:"max_total_positions"`
	MaxPositionsPerSymbol int     `mapstructure:"max_positions_per_symbol"`
	TrailingStopPips      float64 `mapstructure:"trailing_stop_pips"`
	BreakevenPips         float64 `mapstructure:"breakeven_pips"`
}

// SessionConfig restricts when new positions may be opened. Times are
// "HH:MM" in the local timezone; a start after the end describes an
// overnight session.
type SessionConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Start   string `mapstructure:"start"`
	End     string `mapstructure:"end"`
}

type BrokerConfig struct {
	Provider string `mapstructure:"provider"`
}

type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"`
	S3      S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file with environment variable
// overrides. Values written as ${NAME} expand from the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, core.WrapError(core.ErrConfigMissing, err)
	}

	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err)
	}
	return cfg, nil
}

// Defaults returns a config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Data: DataConfig{
			Dir: "data",
		},
		Trading: TradingConfig{
			Symbols:  []string{"EURUSD"},
			Strategy: "sma_crossover",
			Interval: time.Minute,
			Bars:     200,
		},
		Risk: RiskConfig{
			RiskPercent:           1.0,
			MaxVolume:             0.1,
			DailyLossLimitPct:     5.0,
			MaxTotalPositions:     5,
			MaxPositionsPerSymbol: 1,
			TrailingStopPips:      20,
			BreakevenPips:         15,
		},
		Session: SessionConfig{
			Enabled: false,
			Start:   "07:00",
			End:     "17:00",
		},
		Broker: BrokerConfig{
			Provider: "mock",
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Type:    "localfs",
			Path:    "archive",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Trading.Symbols) == 0 {
		return core.WrapErrorf(core.ErrConfigInvalid, "no symbols configured")
	}
	if c.Trading.Strategy == "" {
		return core.WrapErrorf(core.ErrConfigInvalid, "strategy must be set")
	}
	if c.Trading.Bars < 51 {
		return core.WrapErrorf(core.ErrConfigInvalid, "bars must be at least 51, got %d", c.Trading.Bars)
	}
	if c.Trading.Interval <= 0 {
		return core.WrapErrorf(core.ErrConfigInvalid, "interval must be positive, got %v", c.Trading.Interval)
	}
	if c.Risk.RiskPercent <= 0 || c.Risk.RiskPercent > 100 {
		return core.WrapErrorf(core.ErrConfigInvalid, "risk_percent must be in (0, 100], got %v", c.Risk.RiskPercent)
	}
	if c.Risk.MaxVolume <= 0 {
		return core.WrapErrorf(core.ErrConfigInvalid, "max_volume must be positive, got %v", c.Risk.MaxVolume)
	}
	if c.Risk.MaxTotalPositions < 1 || c.Risk.MaxPositionsPerSymbol < 1 {
		return core.WrapErrorf(core.ErrConfigInvalid, "position limits must be at least 1")
	}
	for _, raw := range []string{c.Session.Start, c.Session.End} {
		if _, err := time.Parse("15:04", raw); err != nil {
			return core.WrapErrorf(core.ErrConfigInvalid, "invalid session time %q", raw)
		}
	}
	switch c.Archive.Type {
	case "localfs", "s3":
	default:
		return core.WrapErrorf(core.ErrConfigInvalid, "archive type must be localfs or s3, got %q", c.Archive.Type)
	}
	if c.Archive.Type == "s3" && c.Archive.Enabled && c.Archive.S3.Bucket == "" {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("s3 archive requires a bucket"))
	}
	return nil
}

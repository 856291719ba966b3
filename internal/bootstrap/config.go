package bootstrap

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when read from the environment.
const EnvPrefix = "TTT"

type Config struct {
	Addr              string        `mapstructure:"ADDR"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	LogDevelopment    bool          `mapstructure:"LOG_DEVELOPMENT"`
	HeartbeatInterval time.Duration `mapstructure:"HEARTBEAT_INTERVAL"`
	ShutdownTimeout   time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	DefaultMode       string        `mapstructure:"DEFAULT_MODE"`
}

var defaults = map[string]any{
	"ADDR":               ":8080",
	"LOG_LEVEL":          "info",
	"LOG_DEVELOPMENT":    false,
	"HEARTBEAT_INTERVAL": 15 * time.Second,
	"SHUTDOWN_TIMEOUT":   5 * time.Second,
	"DEFAULT_MODE":       "pvp",
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"addr":      "ADDR",
	"log-level": "LOG_LEVEL",
	"dev":       "LOG_DEVELOPMENT",
	"mode":      "DEFAULT_MODE",
}

// RegisterFlags adds the flags Setup knows how to bind.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("addr", ":8080", "listen address")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Bool("dev", false, "human-readable development logging")
	flags.String("mode", "pvp", "default mode for new games (pvp or ai)")
}

// Setup reads configuration from defaults, an optional file at cfgPath, the
// environment (TTT_*) and changed flags, in increasing priority. A missing
// file is not an error.
func Setup(cfgPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

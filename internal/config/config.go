// Package config loads the server runtime configuration.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// FileName is looked up (without extension) in the config directory.
const FileName = "robonav"

// EnvPrefix prefixes environment overrides, e.g. ROBONAV_ADDR or ROBONAV_OBSERVER_ENCODING.
const EnvPrefix = "ROBONAV"

type ObserverConfig struct {
	Encoding    string `mapstructure:"encoding"`
	EveryTicks  int    `mapstructure:"everyTicks"`
	AllowRemote bool   `mapstructure:"allowRemote"`
}

type Config struct {
	Addr         string         `mapstructure:"addr"`
	DataDir      string         `mapstructure:"dataDir"`
	TuningPath   string         `mapstructure:"tuningPath"`
	LogLevel     string         `mapstructure:"logLevel"`
	LogPretty    bool           `mapstructure:"logPretty"`
	IndexDB      string         `mapstructure:"indexDB"`
	TickLog      bool           `mapstructure:"tickLog"`
	TickLogEvery int            `mapstructure:"tickLogEvery"`
	Speed        float64        `mapstructure:"speed"`
	Bot          string         `mapstructure:"bot"`
	AutoStart    bool           `mapstructure:"autoStart"`
	Observer     ObserverConfig `mapstructure:"observer"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("dataDir", "./data")
	v.SetDefault("tuningPath", "")
	v.SetDefault("logLevel", "info")
	v.SetDefault("logPretty", false)
	v.SetDefault("indexDB", "")
	v.SetDefault("tickLog", false)
	v.SetDefault("tickLogEvery", 100)
	v.SetDefault("speed", 1.0)
	v.SetDefault("bot", "gatherer")
	v.SetDefault("autoStart", false)

	v.SetDefault("observer.encoding", "json")
	v.SetDefault("observer.everyTicks", 2)
	v.SetDefault("observer.allowRemote", false)
}

// Load reads defaults, then robonav.{yaml,json,...} from configDir if present, then
// ROBONAV_* environment variables. configDir may be empty.
func Load(configDir string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configDir != "" {
		v.SetConfigName(FileName)
		v.AddConfigPath(configDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: addr is empty")
	}
	if c.Speed <= 0 {
		return fmt.Errorf("config: speed must be positive, got %v", c.Speed)
	}
	switch c.Observer.Encoding {
	case "json", "msgpack":
	default:
		return fmt.Errorf("config: observer.encoding %q (want json or msgpack)", c.Observer.Encoding)
	}
	if c.Observer.EveryTicks < 1 {
		return fmt.Errorf("config: observer.everyTicks must be >= 1")
	}
	return nil
}

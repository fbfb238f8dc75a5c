package config

// Package config provides a reusable loader for the RADON engine's
// configuration files and environment variables. It is versioned so that
// applications can depend on a stable API contract.
//
// Version: v0.1.0

import (
	"fmt"

	"github.com/spf13/viper"

	"radon-engine/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config represents the unified runtime configuration for the RADON engine
// and the tooling built around it (cmd/radonc, cmd/radonsrv). It mirrors
// the structure of the YAML files under cmd/config.
type Config struct {
	Engine struct {
		// ActiveWips lists the feature flags (e.g. "wip0017", "wip0019")
		// gated operators and reducers are allowed to use.
		ActiveWips []string `mapstructure:"active_wips" json:"active_wips"`

		// MaxScriptCalls bounds the number of calls in a single script.
		MaxScriptCalls int `mapstructure:"max_script_calls" json:"max_script_calls"`

		// MaxRecursionDepth bounds nested map/filter subscript re-entry.
		MaxRecursionDepth int `mapstructure:"max_recursion_depth" json:"max_recursion_depth"`

		// MaxStringBytes bounds String/Bytes value size.
		MaxStringBytes int `mapstructure:"max_string_bytes" json:"max_string_bytes"`

		// AverageMeanReturnPolicy is "round_to_integer" or "preserve_float".
		// It must be set explicitly; a mismatch between the retrieve and
		// tally stages would silently change block validity (spec Open
		// Question, resolved at this boundary — see DESIGN.md).
		AverageMeanReturnPolicy string `mapstructure:"average_mean_return_policy" json:"average_mean_return_policy"`
	} `mapstructure:"engine" json:"engine"`

	Server struct {
		ListenAddr          string `mapstructure:"listen_addr" json:"listen_addr"`
		MaxConcurrentExecs  int    `mapstructure:"max_concurrent_execs" json:"max_concurrent_execs"`
		RateLimitPerSecond  int    `mapstructure:"rate_limit_per_second" json:"rate_limit_per_second"`
		RateLimitBurst      int    `mapstructure:"rate_limit_burst" json:"rate_limit_burst"`
	} `mapstructure:"server" json:"server"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and returned.
//
// The function uses the provided environment name to merge additional config
// files. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // picks up from .env

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the RADON_ENV environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("RADON_ENV", ""))
}

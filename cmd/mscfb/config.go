package main

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the CLI settings. Values come from flags, MSCFB_* environment
// variables and an optional mscfb.yaml, in that order of precedence.
type Config struct {
	Validation  string `mapstructure:"validation"`
	Verbose     bool   `mapstructure:"verbose"`
	MaxCatBytes int64  `mapstructure:"max_cat_bytes"`
	ChunkSize   int    `mapstructure:"chunk_size"`
}

// LoadConfig reads the configuration. A missing config file is not an error.
func LoadConfig(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("mscfb")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.mscfb")
	}

	v.SetDefault("validation", "strict")
	v.SetDefault("verbose", false)
	v.SetDefault("max_cat_bytes", 0)
	v.SetDefault("chunk_size", 32*1024)

	v.SetEnvPrefix("MSCFB")
	v.AutomaticEnv()

	if flags != nil {
		for _, name := range []string{"validation", "verbose"} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(name, f); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	switch config.Validation {
	case "strict", "permissive":
	default:
		return nil, fmt.Errorf("unknown validation mode %q", config.Validation)
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = 32 * 1024
	}

	return &config, nil
}

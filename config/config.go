// Copyright 2025 The Presto-Go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"
	"go.uber.org/atomic"
)

// Config contains planner configuration options.
type Config struct {
	Log         Log         `toml:"log" json:"log"`
	Performance Performance `toml:"performance" json:"performance"`
}

// Log is the log section of config.
type Log struct {
	// Log level.
	Level string `toml:"level" json:"level"`
	// Log format, one of json or text.
	Format string `toml:"format" json:"format"`
}

// Performance is the performance section of the config.
type Performance struct {
	// JoinReorderEnabled controls whether the cost-based join reordering
	// passes run at all. When false they are identity passes.
	JoinReorderEnabled bool `toml:"join-reorder-enabled" json:"join-reorder-enabled"`
}

var defaultConf = Config{
	Log: Log{
		Level:  "info",
		Format: "text",
	},
	Performance: Performance{
		JoinReorderEnabled: true,
	},
}

var globalConf = atomic.NewPointer(&defaultConf)

// NewConfig creates a new config instance with default values.
func NewConfig() *Config {
	conf := defaultConf
	return &conf
}

// GetGlobalConfig returns the global configuration. Other parts of the
// system read configuration through this function.
func GetGlobalConfig() *Config {
	return globalConf.Load()
}

// StoreGlobalConfig replaces the global configuration.
func StoreGlobalConfig(config *Config) {
	globalConf.Store(config)
}

// Load loads config options from a toml file.
func (c *Config) Load(confFile string) error {
	metaData, err := toml.DecodeFile(confFile, c)
	if err != nil {
		return errors.Trace(err)
	}
	if undecoded := metaData.Undecoded(); len(undecoded) > 0 {
		return errors.Errorf("config file %s contained unknown configuration options: %v", confFile, undecoded)
	}
	return errors.Trace(c.Valid())
}

// Valid checks whether the config is valid.
func (c *Config) Valid() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return errors.Errorf("invalid log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return errors.Errorf("invalid log format %q", c.Log.Format)
	}
	return nil
}

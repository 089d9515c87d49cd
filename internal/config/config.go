// Package config loads basetoolsd configuration.
//
// Sources are applied in order: defaults, an optional JSON file, then
// BASETOOLS_* environment variables. Command-line flags are applied by the
// binary on top.
//
// Example file:
//
//	{
//	  "listen": "0.0.0.0:7778",
//	  "log_level": "debug",
//	  "max_msg_bytes": 8388608,
//	  "codecs": ["base58btc", "base64url"]
//	}
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"

	"xdao.co/basetools/codec"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "BASETOOLS_"

type Config struct {
	Listen      string `json:"listen,omitempty" env:"LISTEN"`
	LogLevel    string `json:"log_level,omitempty" env:"LOG_LEVEL"`
	MaxMsgBytes int    `json:"max_msg_bytes,omitempty" env:"MAX_MSG_BYTES"`

	// Codecs lists the registered codecs to serve. Empty serves all.
	Codecs []string `json:"codecs,omitempty" env:"CODECS" envSeparator:","`
}

func Default() Config {
	return Config{
		Listen:   "127.0.0.1:7778",
		LogLevel: "info",
	}
}

// Load applies defaults, the file at path (if non-empty) and the environment,
// then validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = cfg.MergeFile(path); err != nil {
			return cfg, err
		}
	}
	cfg, err := cfg.FromEnv()
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// MergeFile overlays the JSON object in path onto c. Keys absent from the
// file keep their current values.
func (c Config) MergeFile(path string) (Config, error) {
	if path == "" {
		return c, errors.New("config: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// FromEnv overlays BASETOOLS_* environment variables onto c. Unset variables
// keep their current values.
func (c Config) FromEnv() (Config, error) {
	if err := env.ParseWithOptions(&c, env.Options{Prefix: EnvPrefix}); err != nil {
		return c, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Listen == "" {
		return errors.New("config: listen address is required")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: invalid log_level %q", c.LogLevel)
	}
	if c.MaxMsgBytes < 0 {
		return fmt.Errorf("config: invalid max_msg_bytes %d", c.MaxMsgBytes)
	}
	seen := make(map[string]struct{}, len(c.Codecs))
	for _, name := range c.Codecs {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("config: duplicate codec %q", name)
		}
		seen[name] = struct{}{}
		if _, err := codec.Lookup(name); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

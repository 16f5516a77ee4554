// Package config loads pool definitions from TOML. Validation happens
// eagerly at load so misconfiguration fails at startup, never at acquire
// time.
package config

import (
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	pkgerrors "github.com/pkg/errors"

	"github.com/micro/go-pool/errors"
	"github.com/micro/go-pool/pool"
)

// Duration wraps time.Duration so TOML values like "5s" parse.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// PoolConfig is one [pools.<name>] section.
type PoolConfig struct {
	MinSize          int      `toml:"min_size"`
	MaxSize          int      `toml:"max_size"`
	Timeout          Duration `toml:"timeout"`
	MaxLifetime      Duration `toml:"max_lifetime"`
	IdleTimeout      Duration `toml:"idle_timeout"`
	ValidateOnBorrow bool     `toml:"validate_on_borrow"`
	TestOnReturn     bool     `toml:"test_on_return"`
	FIFO             *bool    `toml:"fifo"`
}

// Config is a full configuration file.
type Config struct {
	Pools map[string]PoolConfig `toml:"pools"`
}

// Load reads and validates a TOML file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "config")
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads and validates TOML from r.
func Parse(r io.Reader) (*Config, error) {
	var c Config
	if _, err := toml.NewDecoder(r).Decode(&c); err != nil {
		return nil, pkgerrors.Wrap(err, "config")
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate applies the same rules the pool constructor enforces, so a bad
// file is rejected before any pool is built.
func (c *Config) Validate() error {
	for name, pc := range c.Pools {
		if pc.MaxSize <= 0 {
			return &errors.ConfigurationError{Option: "pools." + name + ".max_size", Detail: "must be greater than zero"}
		}
		if pc.MinSize < 0 {
			return &errors.ConfigurationError{Option: "pools." + name + ".min_size", Detail: "must not be negative"}
		}
		if pc.MinSize > pc.MaxSize {
			return &errors.ConfigurationError{Option: "pools." + name + ".min_size", Detail: "must not exceed max_size"}
		}
		if pc.Timeout < 0 {
			return &errors.ConfigurationError{Option: "pools." + name + ".timeout", Detail: "must not be negative"}
		}
		if pc.MaxLifetime < 0 {
			return &errors.ConfigurationError{Option: "pools." + name + ".max_lifetime", Detail: "must not be negative"}
		}
		if pc.IdleTimeout < 0 {
			return &errors.ConfigurationError{Option: "pools." + name + ".idle_timeout", Detail: "must not be negative"}
		}
	}
	return nil
}

// PoolOptions translates a named section into pool options. Unknown names
// fail with a ConfigurationError.
func (c *Config) PoolOptions(name string) ([]pool.Option, error) {
	pc, ok := c.Pools[name]
	if !ok {
		return nil, &errors.ConfigurationError{Option: "pools." + name, Detail: "no such section"}
	}

	opts := []pool.Option{
		pool.Name(name),
		pool.MinSize(pc.MinSize),
		pool.MaxSize(pc.MaxSize),
		pool.Timeout(time.Duration(pc.Timeout)),
		pool.MaxLifetime(time.Duration(pc.MaxLifetime)),
		pool.IdleTimeout(time.Duration(pc.IdleTimeout)),
		pool.ValidateOnBorrow(pc.ValidateOnBorrow),
		pool.TestOnReturn(pc.TestOnReturn),
	}

	if pc.FIFO != nil {
		opts = append(opts, pool.FIFO(*pc.FIFO))
	}

	return opts, nil
}

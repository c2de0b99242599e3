// Package config loads the armd daemon configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"anoma.net/arm/keys"
	"anoma.net/arm/logx"
	"anoma.net/arm/proving"
	"anoma.net/arm/storage/casconfig"
)

const (
	DefaultListen      = "127.0.0.1:7650"
	DefaultMaxMsgBytes = 16 << 20
	DefaultKeyName     = "prover"
	DefaultRole        = "attest"
)

// Config is the daemon configuration.
//
// Example:
//
//	listen: 127.0.0.1:7650
//	max_msg_bytes: 16777216
//	prover:
//	  scheme: dilithium3
//	  key_dir: /var/lib/arm/keys
//	  key_name: prover
//	  role: attest
//	verify_cache:
//	  ttl: 30m
//	  sweep_interval: 10m
//	log:
//	  file: /var/log/arm/armd.log
//	  max_size_mb: 100
//	  max_age_days: 30
//	  level: info
//	archive:
//	  serve: true
//	  backends:
//	    - {type: bolt, path: /var/lib/arm/tx.db}
type Config struct {
	Listen      string           `yaml:"listen"`
	MaxMsgBytes int              `yaml:"max_msg_bytes"`
	Prover      ProverConfig     `yaml:"prover"`
	VerifyCache CacheConfig      `yaml:"verify_cache"`
	Log         LogConfig        `yaml:"log"`
	Archive     casconfig.Config `yaml:"archive"`
}

// ProverConfig selects the attestation key in the local key store.
type ProverConfig struct {
	Scheme  string `yaml:"scheme"`
	KeyDir  string `yaml:"key_dir"`
	KeyName string `yaml:"key_name"`
	Role    string `yaml:"role"`
}

// CacheConfig tunes the verification cache. A zero TTL disables it.
type CacheConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Level      string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:      DefaultListen,
		MaxMsgBytes: DefaultMaxMsgBytes,
		Prover: ProverConfig{
			Scheme:  keys.SchemeEd25519,
			KeyName: DefaultKeyName,
			Role:    DefaultRole,
		},
		VerifyCache: CacheConfig{
			TTL:           proving.DefaultCacheTTL,
			SweepInterval: proving.DefaultSweepInterval,
		},
		Log: LogConfig{MaxSizeMB: 100, MaxAgeDays: 30, Level: "info"},
	}
}

// Load reads path over Default. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("config: empty config path")
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Listen == "" {
		return errors.New("config: listen address is required")
	}
	if c.MaxMsgBytes <= 0 {
		return fmt.Errorf("config: max_msg_bytes must be positive, got %d", c.MaxMsgBytes)
	}
	switch c.Prover.Scheme {
	case keys.SchemeEd25519, keys.SchemeDilithium3:
	default:
		return fmt.Errorf("config: unsupported prover scheme %q", c.Prover.Scheme)
	}
	if err := keys.CheckKeyName(c.Prover.KeyName); err != nil {
		return fmt.Errorf("config: prover.key_name: %w", err)
	}
	if c.Prover.Role != "" {
		if err := keys.CheckRole(c.Prover.Role); err != nil {
			return fmt.Errorf("config: prover.role: %w", err)
		}
	}
	if c.VerifyCache.TTL < 0 || c.VerifyCache.SweepInterval < 0 {
		return errors.New("config: verify_cache durations must not be negative")
	}
	if _, err := logx.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	if c.Archive.Enabled() {
		if err := c.Archive.Validate(); err != nil {
			return fmt.Errorf("config: archive: %w", err)
		}
	}
	return nil
}

// LogOptions converts the log section for logx.Setup.
func (c Config) LogOptions() logx.Options {
	l, _ := logx.ParseLevel(c.Log.Level)
	return logx.Options{
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxAgeDays: c.Log.MaxAgeDays,
		Level:      l,
		Color:      c.Log.File == "",
	}
}

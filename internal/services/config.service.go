package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvRequiredSpace  = "OPS_REQUIRED_SPACE"
	EnvProbeBind      = "OPS_PROBE_BIND"
	EnvProbeJWTSecret = "OPS_PROBE_JWT_SECRET"

	DefaultRequiredGB  = 34
	DefaultProbeBind   = "localhost:8080"
	DefaultCacheTTL    = 1 * time.Second
	DefaultTokenExpiry = 90 * 24 * time.Hour
)

// ErrInvalidRequiredSpace is returned when the threshold is not a non-negative integer
var ErrInvalidRequiredSpace = errors.New("invalid required space")

// Config holds the resolved settings for the gate and the probe server
type Config struct {
	Path        string        `mapstructure:"path"`
	RequiredGB  int           `mapstructure:"-"`
	Bind        string        `mapstructure:"bind"`
	JWTSecret   string        `mapstructure:"jwt_secret"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"path":         "path",
	"required":     "required",
	"bind":         "bind",
	"cache-ttl":    "cache_ttl",
	"token-expiry": "token_expiry",
}

// LoadConfig layers flags over environment over an optional config file over
// defaults. Flags missing from the set are skipped.
func LoadConfig(flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	v.AllowEmptyEnv(true)

	v.SetDefault("required", strconv.Itoa(DefaultRequiredGB))
	v.SetDefault("bind", DefaultProbeBind)
	v.SetDefault("cache_ttl", DefaultCacheTTL)
	v.SetDefault("token_expiry", DefaultTokenExpiry)

	for key, env := range map[string]string{
		"required":   EnvRequiredSpace,
		"bind":       EnvProbeBind,
		"jwt_secret": EnvProbeJWTSecret,
	} {
		if err := v.BindEnv(key, env); err != nil {
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

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	required, err := ParseRequiredGB(v.GetString("required"))
	if err != nil {
		return nil, err
	}
	cfg.RequiredGB = required

	if cfg.Path == "" {
		cfg.Path = ResolveDefaultPath()
	}
	return cfg, nil
}

// ParseRequiredGB parses a threshold in whole gigabytes. There is no fallback:
// a malformed value is an error.
func ParseRequiredGB(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrInvalidRequiredSpace, raw, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w %q: must not be negative", ErrInvalidRequiredSpace, raw)
	}
	return n, nil
}

package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

var (
	errInvalidPort         = errors.New("config: invalid PORT number")
	errFetchTimeout        = errors.New("config: FETCH_TIMEOUT must be between 1s and 2m")
	errAnalyzeTimeout      = errors.New("config: ANALYZE_TIMEOUT must not be shorter than FETCH_TIMEOUT")
	errBodyLimitOutOfRange = errors.New("config: MAX_BODY_BYTES must be 1KiB-256MiB")
)

// Defaults applied when a key is not set.
const (
	DefaultPort           = "8080"
	DefaultFetchTimeout   = 10 * time.Second
	DefaultAnalyzeTimeout = 120 * time.Second
	DefaultMaxBodyBytes   = int64(32 << 20)
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port                 string
	LogLevel             string
	FetchTimeout         time.Duration
	AnalyzeTimeout       time.Duration
	MaxBodyBytes         int64
	BlockPrivateNetworks bool
	BrowserEnabled       bool
	ChromePath           string
	FingerprintEnabled   bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := Config{
		Port:                 v.GetString("PORT"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		FetchTimeout:         v.GetDuration("FETCH_TIMEOUT"),
		AnalyzeTimeout:       v.GetDuration("ANALYZE_TIMEOUT"),
		MaxBodyBytes:         v.GetInt64("MAX_BODY_BYTES"),
		BlockPrivateNetworks: v.GetBool("BLOCK_PRIVATE_NETWORKS"),
		BrowserEnabled:       v.GetBool("BROWSER_ENABLED"),
		ChromePath:           v.GetString("CHROME_PATH"),
		FingerprintEnabled:   v.GetBool("FINGERPRINT_ENABLED"),
	}

	return cfg, cfg.validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("LOG_LEVEL", "ERROR")
	v.SetDefault("FETCH_TIMEOUT", DefaultFetchTimeout)
	v.SetDefault("ANALYZE_TIMEOUT", DefaultAnalyzeTimeout)
	v.SetDefault("MAX_BODY_BYTES", DefaultMaxBodyBytes)
	v.SetDefault("BLOCK_PRIVATE_NETWORKS", true)
	v.SetDefault("BROWSER_ENABLED", true)
	v.SetDefault("CHROME_PATH", "")
	v.SetDefault("FINGERPRINT_ENABLED", false)
}

func (c Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}

	if c.FetchTimeout < time.Second || c.FetchTimeout > 2*time.Minute {
		return fmt.Errorf("%w: got %s", errFetchTimeout, c.FetchTimeout)
	}

	if c.AnalyzeTimeout < c.FetchTimeout {
		return fmt.Errorf("%w: got %s", errAnalyzeTimeout, c.AnalyzeTimeout)
	}

	if c.MaxBodyBytes < 1<<10 || c.MaxBodyBytes > 256<<20 {
		return fmt.Errorf("%w: got %d", errBodyLimitOutOfRange, c.MaxBodyBytes)
	}

	return nil
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultPath         = "memmapctl.toml"
	DefaultName         = "memmap"
	DefaultAddr         = ":9300"
	DefaultMaxBodyBytes = 1 << 20
)

// ServiceConfig configures the elaboration HTTP service.
type ServiceConfig struct {
	Name                   string   `toml:"name"                     env:"MEMMAP_NAME"`
	Addr                   string   `toml:"addr"                     env:"MEMMAP_ADDR"`
	CorsOrigins            []string `toml:"cors_origins"             env:"MEMMAP_CORS_ORIGINS"   envSeparator:","`
	MaxBodyBytes           int64    `toml:"max_body_bytes"           env:"MEMMAP_MAX_BODY_BYTES"`
	DefaultFormat          string   `toml:"default_format"           env:"MEMMAP_DEFAULT_FORMAT"`
	ShutdownTimeoutSeconds int      `toml:"shutdown_timeout_seconds" env:"MEMMAP_SHUTDOWN_TIMEOUT_SECONDS"`
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:                   DefaultName,
		Addr:                   DefaultAddr,
		MaxBodyBytes:           DefaultMaxBodyBytes,
		DefaultFormat:          "json",
		ShutdownTimeoutSeconds: 5,
	}
}

// LoadServiceConfig reads path over the defaults and applies environment
// overrides. An empty path skips the file.
func LoadServiceConfig(path string) (ServiceConfig, error) {
	cfg := DefaultServiceConfig()
	if strings.TrimSpace(path) != "" {
		if err := loadToml(path, &cfg); err != nil {
			return ServiceConfig{}, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return ServiceConfig{}, fmt.Errorf("config env parse failed: %w", err)
	}
	applyDefaults(&cfg)
	if err := ValidateServiceConfig(cfg); err != nil {
		return ServiceConfig{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *ServiceConfig) {
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = "json"
	}
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func (c ServiceConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func ValidateServiceConfig(cfg ServiceConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("service config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("service config missing addr")
	}
	if cfg.MaxBodyBytes < 0 {
		return fmt.Errorf("service config max_body_bytes must not be negative")
	}
	if cfg.ShutdownTimeoutSeconds < 0 {
		return fmt.Errorf("service config shutdown_timeout_seconds must not be negative")
	}
	switch strings.ToLower(cfg.DefaultFormat) {
	case "json", "toml":
	default:
		return fmt.Errorf("service config default_format must be json or toml, got %q", cfg.DefaultFormat)
	}
	for i, origin := range cfg.CorsOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("cors_origins[%d] is empty", i)
		}
	}
	return nil
}

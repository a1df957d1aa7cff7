package config

import "fmt"

// CatalogConfig is the Access-Catalog service's configuration.
type CatalogConfig struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	CacheTTL CacheTTLConfig `mapstructure:"cache_ttl"`
	LogLevel string         `mapstructure:"log_level"`
}

// LoadCatalogConfig loads AC's configuration from ACCESSCATALOG_* env vars
// (or a config.yaml in the working directory), applying defaults.
func LoadCatalogConfig() (*CatalogConfig, error) {
	v := newViper()
	v.SetEnvPrefix("ACCESSCATALOG")
	setSharedDefaults(v, "")

	var cfg CatalogConfig
	if err := readAndUnmarshal(v, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config error: %w", err)
	}
	return &cfg, nil
}

func (c *CatalogConfig) validate() error {
	return validateShared(c.Server, &c.Database, &c.Redis)
}

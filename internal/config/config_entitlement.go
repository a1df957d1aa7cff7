package config

import "fmt"

// EntitlementConfig is the User-Entitlement service's configuration.
type EntitlementConfig struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Broker   BrokerConfig   `mapstructure:"broker"`
	CacheTTL CacheTTLConfig `mapstructure:"cache_ttl"`
	// RepublishIntervalSeconds controls the periodic scan for pending
	// requests whose validation job failed to publish.
	RepublishIntervalSeconds int    `mapstructure:"republish_interval_seconds"`
	LogLevel                 string `mapstructure:"log_level"`
}

// LoadEntitlementConfig loads UE's configuration from USERENTITLEMENT_* env vars.
func LoadEntitlementConfig() (*EntitlementConfig, error) {
	v := newViper()
	v.SetEnvPrefix("USERENTITLEMENT")
	setSharedDefaults(v, "")
	v.SetDefault("republish_interval_seconds", 60)

	var cfg EntitlementConfig
	if err := readAndUnmarshal(v, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config error: %w", err)
	}
	return &cfg, nil
}

func (c *EntitlementConfig) validate() error {
	if err := validateShared(c.Server, &c.Database, &c.Redis); err != nil {
		return err
	}
	if c.RepublishIntervalSeconds <= 0 {
		return fmt.Errorf("republish_interval_seconds must be positive")
	}
	return nil
}

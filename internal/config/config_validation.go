package config

import "fmt"

// ValidationConfig is the Validation worker's configuration.
type ValidationConfig struct {
	Redis       RedisConfig      `mapstructure:"redis"`
	Broker      BrokerConfig     `mapstructure:"broker"`
	CacheTTL    CacheTTLConfig   `mapstructure:"cache_ttl"`
	Catalog     DownstreamConfig `mapstructure:"catalog"`
	Entitlement DownstreamConfig `mapstructure:"entitlement"`
	LogLevel    string           `mapstructure:"log_level"`
}

// LoadValidationConfig loads V's configuration from VALIDATION_* env vars.
func LoadValidationConfig() (*ValidationConfig, error) {
	v := newViper()
	v.SetEnvPrefix("VALIDATION")
	setSharedDefaults(v, "")
	v.SetDefault("catalog.base_url", "http://localhost:8081")
	v.SetDefault("catalog.timeout_seconds", defaultTimeoutSeconds)
	v.SetDefault("entitlement.base_url", "http://localhost:8082")
	v.SetDefault("entitlement.timeout_seconds", defaultTimeoutSeconds)

	var cfg ValidationConfig
	if err := readAndUnmarshal(v, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config error: %w", err)
	}
	return &cfg, nil
}

func (c *ValidationConfig) validate() error {
	if err := validateShared(ServerConfig{Port: 1}, nil, &c.Redis); err != nil {
		return err
	}
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url is required")
	}
	if c.Entitlement.BaseURL == "" {
		return fmt.Errorf("entitlement.base_url is required")
	}
	return nil
}

package config

import "fmt"

// GatewayConfig is the facade service's configuration.
type GatewayConfig struct {
	Server      ServerConfig     `mapstructure:"server"`
	Catalog     DownstreamConfig `mapstructure:"catalog"`
	Entitlement DownstreamConfig `mapstructure:"entitlement"`
	LogLevel    string           `mapstructure:"log_level"`
}

// LoadGatewayConfig loads GW's configuration from GATEWAY_* env vars.
func LoadGatewayConfig() (*GatewayConfig, error) {
	v := newViper()
	v.SetEnvPrefix("GATEWAY")
	setSharedDefaults(v, "")
	v.SetDefault("catalog.base_url", "http://localhost:8081")
	v.SetDefault("catalog.timeout_seconds", defaultTimeoutSeconds)
	v.SetDefault("entitlement.base_url", "http://localhost:8082")
	v.SetDefault("entitlement.timeout_seconds", defaultTimeoutSeconds)

	var cfg GatewayConfig
	if err := readAndUnmarshal(v, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config error: %w", err)
	}
	return &cfg, nil
}

func (c *GatewayConfig) validate() error {
	if err := validateShared(c.Server, nil, nil); err != nil {
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

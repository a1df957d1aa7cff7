// Package config provides configuration loading, defaults, and validation
// for the four access-entitlement services (Access-Catalog, User-Entitlement,
// Validation, Gateway). Each service has its own top-level Config struct
// composed from the shared sub-structs below, bound to env vars (and an
// optional config file) via viper/mapstructure.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig is the HTTP listener configuration shared by every service.
type ServerConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	Mode              string `mapstructure:"mode"` // debug/release
	ReadHeaderTimeout int    `mapstructure:"read_header_timeout"`
	IdleTimeout       int    `mapstructure:"idle_timeout"`
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig is the Postgres connection configuration for AC and UE.
type DatabaseConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	URL                    string `mapstructure:"url"` // overrides the fields above when set
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
	ConnMaxIdleTimeMinutes int    `mapstructure:"conn_max_idle_time_minutes"`
}

func (d *DatabaseConfig) DSN() string {
	if strings.TrimSpace(d.URL) != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// RedisConfig is the cache connection configuration shared by all services.
type RedisConfig struct {
	Host                string `mapstructure:"host"`
	Port                int    `mapstructure:"port"`
	Password            string `mapstructure:"password"`
	DB                  int    `mapstructure:"db"`
	DialTimeoutSeconds  int    `mapstructure:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
	PoolSize            int    `mapstructure:"pool_size"`
	MinIdleConns        int    `mapstructure:"min_idle_conns"`
}

func (r *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// BrokerConfig is the AMQP connection configuration for UE (publisher +
// result consumer) and V (job consumer + result publisher).
type BrokerConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	VHost             string `mapstructure:"vhost"`
	URL               string `mapstructure:"url"` // overrides the fields above when set
	ValidationQueue   string `mapstructure:"validation_queue"`
	ResultQueue       string `mapstructure:"result_queue"`
	Prefetch          int    `mapstructure:"prefetch"`
	ReconnectDelaySec int    `mapstructure:"reconnect_delay_seconds"`
}

func (b *BrokerConfig) URI() string {
	if strings.TrimSpace(b.URL) != "" {
		return b.URL
	}
	vhost := b.VHost
	if vhost == "/" {
		vhost = ""
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%d/%s", b.User, b.Password, b.Host, b.Port, vhost)
}

// CacheTTLConfig holds the per-key-shape cache TTLs. All default
// to 10 minutes for every service; each service reads only the ones it uses.
type CacheTTLConfig struct {
	ConflictsMatrixSeconds int `mapstructure:"conflicts_matrix_seconds"`
	GroupAccessesSeconds   int `mapstructure:"group_accesses_seconds"`
	AccessGroupsSeconds    int `mapstructure:"access_groups_seconds"`
	ActiveGroupsSeconds    int `mapstructure:"active_groups_seconds"`
}

func (c *CacheTTLConfig) ConflictsMatrix() time.Duration {
	return time.Duration(c.ConflictsMatrixSeconds) * time.Second
}

func (c *CacheTTLConfig) GroupAccesses() time.Duration {
	return time.Duration(c.GroupAccessesSeconds) * time.Second
}

func (c *CacheTTLConfig) AccessGroups() time.Duration {
	return time.Duration(c.AccessGroupsSeconds) * time.Second
}

func (c *CacheTTLConfig) ActiveGroups() time.Duration {
	return time.Duration(c.ActiveGroupsSeconds) * time.Second
}

// DownstreamConfig describes one HTTP dependency (V→UE, V→AC, GW→UE, GW→AC).
type DownstreamConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (d *DownstreamConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

const defaultTimeoutSeconds = 30

func setSharedDefaults(v *viper.Viper, prefix string) {
	p := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}

	v.SetDefault(p("server.host"), "0.0.0.0")
	v.SetDefault(p("server.port"), 8080)
	v.SetDefault(p("server.mode"), "debug")
	v.SetDefault(p("server.read_header_timeout"), 30)
	v.SetDefault(p("server.idle_timeout"), 120)

	v.SetDefault(p("database.host"), "localhost")
	v.SetDefault(p("database.port"), 5432)
	v.SetDefault(p("database.user"), "postgres")
	v.SetDefault(p("database.password"), "postgres")
	v.SetDefault(p("database.sslmode"), "disable")
	v.SetDefault(p("database.max_open_conns"), 25)
	v.SetDefault(p("database.max_idle_conns"), 5)
	v.SetDefault(p("database.conn_max_lifetime_minutes"), 30)
	v.SetDefault(p("database.conn_max_idle_time_minutes"), 5)

	v.SetDefault(p("redis.host"), "localhost")
	v.SetDefault(p("redis.port"), 6379)
	v.SetDefault(p("redis.password"), "")
	v.SetDefault(p("redis.db"), 0)
	v.SetDefault(p("redis.dial_timeout_seconds"), 5)
	v.SetDefault(p("redis.read_timeout_seconds"), 3)
	v.SetDefault(p("redis.write_timeout_seconds"), 3)
	v.SetDefault(p("redis.pool_size"), 64)
	v.SetDefault(p("redis.min_idle_conns"), 5)

	v.SetDefault(p("broker.host"), "localhost")
	v.SetDefault(p("broker.port"), 5672)
	v.SetDefault(p("broker.user"), "guest")
	v.SetDefault(p("broker.password"), "guest")
	v.SetDefault(p("broker.vhost"), "/")
	v.SetDefault(p("broker.validation_queue"), "validation_queue")
	v.SetDefault(p("broker.result_queue"), "result_queue")
	v.SetDefault(p("broker.prefetch"), 1)
	v.SetDefault(p("broker.reconnect_delay_seconds"), 5)

	v.SetDefault(p("cache_ttl.conflicts_matrix_seconds"), 600)
	v.SetDefault(p("cache_ttl.group_accesses_seconds"), 600)
	v.SetDefault(p("cache_ttl.access_groups_seconds"), 600)
	v.SetDefault(p("cache_ttl.active_groups_seconds"), 600)

	v.SetDefault(p("log_level"), "info")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/accessentitlement")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func readAndUnmarshal(v *viper.Viper, out interface{}) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config error: %w", err)
		}
	}
	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("unmarshal config error: %w", err)
	}
	return nil
}

func validateShared(server ServerConfig, db *DatabaseConfig, redis *RedisConfig) error {
	if server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}
	if db != nil {
		if db.MaxOpenConns <= 0 {
			return fmt.Errorf("database.max_open_conns must be positive")
		}
		if db.MaxIdleConns < 0 || db.MaxIdleConns > db.MaxOpenConns {
			return fmt.Errorf("database.max_idle_conns must be between 0 and max_open_conns")
		}
	}
	if redis != nil {
		if redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be positive")
		}
		if redis.MinIdleConns < 0 || redis.MinIdleConns > redis.PoolSize {
			return fmt.Errorf("redis.min_idle_conns must be between 0 and pool_size")
		}
	}
	return nil
}

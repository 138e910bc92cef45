package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Upstream      UpstreamConfig      `mapstructure:"upstream"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Cache         CacheConfig         `mapstructure:"cache"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	CORS          CORSConfig          `mapstructure:"cors"`
	Audit         AuditConfig         `mapstructure:"audit"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	Channel      string        `mapstructure:"channel"`
}

// UpstreamConfig points at the travel REST API.
type UpstreamConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	Token           string        `mapstructure:"token"`
	Timeout         time.Duration `mapstructure:"timeout"`
	BreakerFailures int           `mapstructure:"breaker_failures"`
	BreakerCoolDown time.Duration `mapstructure:"breaker_cool_down"`
}

type NotificationsConfig struct {
	Policy        string        `mapstructure:"policy"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
}

type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type AuditConfig struct {
	RetentionDays   int           `mapstructure:"retention_days"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// envOverrides lists the settings deployments commonly inject through the
// environment, e.g. CONSOLE_DB_PASSWORD.
type envOverrides struct {
	Port          int    `envconfig:"PORT"`
	LogLevel      string `envconfig:"LOG_LEVEL"`
	DBHost        string `envconfig:"DB_HOST"`
	DBPort        int    `envconfig:"DB_PORT"`
	DBUser        string `envconfig:"DB_USER"`
	DBPassword    string `envconfig:"DB_PASSWORD"`
	DBName        string `envconfig:"DB_NAME"`
	JWTSecret     string `envconfig:"JWT_SECRET"`
	RedisURL      string `envconfig:"REDIS_URL"`
	UpstreamURL   string `envconfig:"UPSTREAM_URL"`
	UpstreamToken string `envconfig:"UPSTREAM_TOKEN"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeoutSeconds", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("jwt.expiry_hours", 12)
	v.SetDefault("redis.channel", "console.notifications")
	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("upstream.breaker_failures", 5)
	v.SetDefault("upstream.breaker_cool_down", 30*time.Second)
	v.SetDefault("notifications.policy", "optimistic")
	v.SetDefault("notifications.retry_attempts", 1)
	v.SetDefault("notifications.retry_delay", 200*time.Millisecond)
	v.SetDefault("notifications.idle_ttl", 30*time.Minute)
	v.SetDefault("cache.ttl", 2*time.Minute)
	v.SetDefault("cache.cleanup_interval", 10*time.Minute)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 50)
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("audit.retention_days", 90)
	v.SetDefault("audit.cleanup_interval", 24*time.Hour)
}

// LoadConfig reads config.yml from the usual locations, then applies .env and
// CONSOLE_* environment overrides.
func LoadConfig(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config", "/app/config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	setDefaults(v)

	v.SetEnvPrefix("console")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("console", &env); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	env.apply(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (e envOverrides) apply(c *Config) {
	if e.Port != 0 {
		c.Server.Port = e.Port
	}
	if e.LogLevel != "" {
		c.Log.Level = e.LogLevel
	}
	if e.DBHost != "" {
		c.Database.Host = e.DBHost
	}
	if e.DBPort != 0 {
		c.Database.Port = e.DBPort
	}
	if e.DBUser != "" {
		c.Database.User = e.DBUser
	}
	if e.DBPassword != "" {
		c.Database.Password = e.DBPassword
	}
	if e.DBName != "" {
		c.Database.Name = e.DBName
	}
	if e.JWTSecret != "" {
		c.JWT.Secret = e.JWTSecret
	}
	if e.RedisURL != "" {
		c.Redis.URL = e.RedisURL
	}
	if e.UpstreamURL != "" {
		c.Upstream.BaseURL = e.UpstreamURL
	}
	if e.UpstreamToken != "" {
		c.Upstream.Token = e.UpstreamToken
	}
}

// Validate rejects configurations the console cannot start with.
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	switch c.Notifications.Policy {
	case "optimistic", "revert":
	default:
		return fmt.Errorf("notifications.policy must be optimistic or revert, got %q", c.Notifications.Policy)
	}
	return nil
}

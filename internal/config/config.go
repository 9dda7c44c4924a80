// Package config loads the application settings from the environment (and an
// optional .env / config file) into a typed struct.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DatabaseConfig  `mapstructure:"db"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Cookie    CookieConfig    `mapstructure:"cookie"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Admin     AdminConfig     `mapstructure:"admin"`
	TQA       TQAConfig       `mapstructure:"tqa"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  string        `mapstructure:"allowed_origins"`
}

// Origins splits the comma separated allow list.
func (s ServerConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

type DatabaseConfig struct {
	Driver         string `mapstructure:"driver"`
	Host           string `mapstructure:"host"`
	Port           uint   `mapstructure:"port"`
	Name           string `mapstructure:"name"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	SecretID       string `mapstructure:"secret_id"`
	SSLModeDisable bool   `mapstructure:"ssl_mode_disable"`
	Path           string `mapstructure:"path"`
	AutoMigrate    bool   `mapstructure:"auto_migrate"`
	MaxOpenConns   int    `mapstructure:"max_open_conns"`
	MaxIdleConns   int    `mapstructure:"max_idle_conns"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type CookieConfig struct {
	Secure bool `mapstructure:"secure"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// AdminConfig holds where back-office alerts are delivered.
type AdminConfig struct {
	Email      string `mapstructure:"email"`
	WebhookURL string `mapstructure:"webhook_url"`
}

type TQAConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	AuthToken      string        `mapstructure:"auth_token"`
	OrganizationID int           `mapstructure:"organization_id"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type RateLimitConfig struct {
	Attempts      int           `mapstructure:"attempts"`
	Window        time.Duration `mapstructure:"window"`
	Block         time.Duration `mapstructure:"block"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	MaxEntries    int           `mapstructure:"max_entries"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	// itinerary generation can hold a request open for almost ten minutes
	v.SetDefault("server.write_timeout", 10*time.Minute)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.allowed_origins", "http://localhost:3000")

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "tourism")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.secret_id", "")
	v.SetDefault("db.ssl_mode_disable", false)
	v.SetDefault("db.path", "tourism.db")
	v.SetDefault("db.auto_migrate", false)
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 5)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", 7*24*time.Hour)
	v.SetDefault("cookie.secure", false)

	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "no-reply@localhost")

	v.SetDefault("admin.email", "")
	v.SetDefault("admin.webhook_url", "")

	v.SetDefault("tqa.api_url", "https://travelquoteai.com")
	v.SetDefault("tqa.auth_token", "")
	v.SetDefault("tqa.organization_id", 5)
	v.SetDefault("tqa.timeout", 570*time.Second)

	v.SetDefault("ratelimit.attempts", 3)
	v.SetDefault("ratelimit.window", time.Hour)
	v.SetDefault("ratelimit.block", 30*time.Minute)
	v.SetDefault("ratelimit.sweep_interval", 10*time.Minute)
	v.SetDefault("ratelimit.max_entries", 10000)

	v.SetDefault("redis.url", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads .env (if present), the optional file named by CONFIG_FILE and
// the process environment. Keys map to env names by upper-casing and
// replacing dots, so db.secret_id is DB_SECRET_ID.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.RateLimit.Attempts <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("rate limit attempts and window must be positive")
	}
	return nil
}

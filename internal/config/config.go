package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Server struct {
	Port string
}

type DB struct {
	Driver      string
	URL         string
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

type JWT struct {
	Secret string
	TTL    string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Config struct {
	Server Server
	DB     DB
	JWT    JWT
	Redis  Redis
	Cache  struct {
		TTL time.Duration
	}
	Auth struct {
		CallbackSecret string
	}
	Log struct {
		Level  string
		Pretty bool
	}
}

// Load reads an optional .env file, an optional YAML file at path and the
// environment, in increasing order of precedence. Environment keys are the
// upper-cased config keys with dots replaced by underscores (DB_URL, JWT_SECRET).
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "4000")
	v.SetDefault("db.driver", "pgx")
	v.SetDefault("db.url", "")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 25)
	v.SetDefault("db.max_lifetime", "300s")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("auth.callback_secret", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Server: Server{Port: v.GetString("server.port")},
		DB: DB{
			Driver:      v.GetString("db.driver"),
			URL:         v.GetString("db.url"),
			MaxOpen:     v.GetInt("db.max_open"),
			MaxIdle:     v.GetInt("db.max_idle"),
			MaxLifetime: v.GetDuration("db.max_lifetime"),
		},
		JWT: JWT{
			Secret: v.GetString("jwt.secret"),
			TTL:    v.GetString("jwt.ttl"),
		},
		Redis: Redis{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
	}
	cfg.Cache.TTL = v.GetDuration("cache.ttl")
	cfg.Auth.CallbackSecret = v.GetString("auth.callback_secret")
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.Pretty = v.GetBool("log.pretty")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DB.URL == "" {
		return errors.New("config: db.url (DB_URL) is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret (JWT_SECRET) is required")
	}
	switch c.DB.Driver {
	case "pgx", "sqlite3":
	default:
		return fmt.Errorf("config: unsupported db.driver %q", c.DB.Driver)
	}
	return nil
}

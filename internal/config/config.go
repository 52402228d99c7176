package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Log         LogConfig
	Persistence PersistenceConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

type JWTConfig struct {
	AccessSecret    string
	AccessExpiresIn time.Duration
}

type LogConfig struct {
	Mode  string
	Level string
}

type PersistenceConfig struct {
	Workers      int
	QueueSize    int
	MaxRetries   int
	RetryBackoff time.Duration
	Timeout      time.Duration
}

const configFileEnv = "CONFIG_FILE"

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads an optional YAML file named by CONFIG_FILE, then environment
// variables on top. Keys are the lowercased env names, e.g. http_port.
func Load() (Config, error) {
	k := koanf.New(".")

	if path := strings.TrimSpace(os.Getenv(configFileEnv)); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(k.String(key))
		if v == "" {
			missing = append(missing, strings.ToUpper(key))
		}
		return v
	}
	opt := func(key, def string) string {
		v := strings.TrimSpace(k.String(key))
		if v == "" {
			return def
		}
		return v
	}
	dur := func(key string, def time.Duration) time.Duration {
		if !k.Exists(key) {
			return def
		}
		d := k.Duration(key)
		if d <= 0 {
			return def
		}
		return d
	}
	num := func(key string, def int) int {
		if !k.Exists(key) {
			return def
		}
		n := k.Int(key)
		if n <= 0 {
			return def
		}
		return n
	}

	cfg.App = AppConfig{
		AppName:     req("app_name"),
		Environment: req("app_env"),
		HTTPPort:    req("http_port"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:                opt("db_host", ""),
		DBPort:                opt("db_port", "5432"),
		DBName:                opt("db_name", ""),
		DBUser:                opt("db_user", ""),
		DBPassword:            k.String("db_password"),
		DBSSLMode:             opt("db_ssl_mode", "disable"),
		ConnectTimeout:        dur("db_connect_timeout", 5*time.Second),
		PoolMaxConns:          int32(num("db_pool_max_conns", 10)),
		PoolMinConns:          int32(num("db_pool_min_conns", 1)),
		PoolMaxConnLifetime:   dur("db_pool_max_conn_lifetime", time.Hour),
		PoolMaxConnIdleTime:   dur("db_pool_max_conn_idle_time", 30*time.Minute),
		PoolHealthCheckPeriod: dur("db_pool_health_check_period", time.Minute),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("redis_host", "localhost"),
		Port:     opt("redis_port", "6379"),
		Password: k.String("redis_password"),
		DB:       k.Int("redis_db"),
		TTL:      dur("redis_ttl", 10*time.Minute),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:    req("jwt_access_secret"),
		AccessExpiresIn: dur("jwt_access_expires_in", 15*time.Minute),
	}

	cfg.Log = LogConfig{
		Mode:  opt("log_mode", cfg.App.Environment),
		Level: opt("log_level", "info"),
	}

	cfg.Persistence = PersistenceConfig{
		Workers:      num("persist_workers", 4),
		QueueSize:    num("persist_queue_size", 1024),
		MaxRetries:   num("persist_max_retries", 3),
		RetryBackoff: dur("persist_retry_backoff", 200*time.Millisecond),
		Timeout:      dur("persist_timeout", 5*time.Second),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

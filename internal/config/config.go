package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/locvowork/xlsxsplit/pkg/sheetsplit"
)

var DefaultEnvConfig *envConfig

type envConfig struct {
	// server config
	APP_PORT        string
	MAX_UPLOAD_SIZE int64
	// split config
	SPLIT_WORKERS     int
	FALLBACK_NAME     string
	COLLISION_POLICY  string
	PRESENTATION_FILE string
	PROFILES_FILE     string
	JOB_RETENTION     time.Duration
	// database config, history is disabled when DB_HOST is empty
	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int
	DB_MAX_OPEN_CONNS    int
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
}

// LoadEnvConfig reads .env, when present, and the process environment.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	DefaultEnvConfig = &envConfig{
		APP_PORT:             getEnvString("APP_PORT", "8080"),
		MAX_UPLOAD_SIZE:      getEnvInt64("MAX_UPLOAD_SIZE", sheetsplit.DefaultMaxInputSize),
		SPLIT_WORKERS:        getEnvInt("SPLIT_WORKERS", sheetsplit.DefaultWorkers),
		FALLBACK_NAME:        getEnvString("FALLBACK_NAME", sheetsplit.DefaultFallbackName),
		COLLISION_POLICY:     getEnvString("COLLISION_POLICY", string(sheetsplit.CollisionSuffix)),
		PRESENTATION_FILE:    getEnvString("PRESENTATION_FILE", ""),
		PROFILES_FILE:        getEnvString("PROFILES_FILE", ""),
		JOB_RETENTION:        getEnvDuration("JOB_RETENTION", 0),
		DB_HOST:              getEnvString("DB_HOST", ""),
		DB_PORT:              getEnvInt("DB_PORT", 5432),
		DB_USER:              getEnvString("DB_USER", "postgres"),
		DB_PASSWORD:          getEnvString("DB_PASSWORD", "postgres"),
		DB_NAME:              getEnvString("DB_NAME", "postgres"),
		DB_SSL_MODE:          getEnvString("DB_SSL_MODE", "disable"),
		DB_CONN_MAX_LIFETIME: getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DB_MAX_IDLE_CONNS:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DB_MAX_OPEN_CONNS:    getEnvInt("DB_MAX_OPEN_CONNS", 100),
		LOG_FILE_PATH:        getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:            getEnvString("LOG_LEVEL", "info"),
	}
	return nil
}

// HistoryEnabled reports whether split jobs are recorded in PostgreSQL.
func (c *envConfig) HistoryEnabled() bool {
	return c.DB_HOST != ""
}

// SplitOptions translates the split settings into engine options.
func (c *envConfig) SplitOptions() []sheetsplit.Option {
	return []sheetsplit.Option{
		sheetsplit.WithMaxInputSize(c.MAX_UPLOAD_SIZE),
		sheetsplit.WithWorkers(c.SPLIT_WORKERS),
		sheetsplit.WithFallbackName(c.FALLBACK_NAME),
		sheetsplit.WithCollisionPolicy(sheetsplit.CollisionPolicy(strings.ToLower(c.COLLISION_POLICY))),
	}
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}

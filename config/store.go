package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StoreBackend represents the durable store backend for todo data.
type StoreBackend string

const (
	// StoreBackendFile keeps one file per key under a local directory.
	StoreBackendFile StoreBackend = "file"
	// StoreBackendRedis persists values in Redis.
	StoreBackendRedis StoreBackend = "redis"
	// StoreBackendPostgres persists values in a Postgres key/value table.
	StoreBackendPostgres StoreBackend = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreBackend.
func (b *StoreBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "file", "redis", "postgres":
		*b = StoreBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid StoreBackend: %q (valid options: file, redis, postgres)", v)
	}
}

// FileStoreConfig contains file-backed store configuration.
type FileStoreConfig struct {
	// Dir is the directory holding key files. Empty falls back to a
	// per-user default under the OS config directory.
	Dir string `env:"DIR"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"todosync"`
	Password string `env:"PASSWORD" envDefault:"todosync"`
	Name     string `env:"NAME"     envDefault:"todosync"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the table is created during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// DSN builds a Postgres connection string from the configuration.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// StoreConfig groups all durable store configuration.
type StoreConfig struct {
	// Backend determines where todo data is persisted.
	Backend StoreBackend `env:"STORE_BACKEND" envDefault:"file"`

	File     FileStoreConfig `envPrefix:"STORE_FILE_"`
	Redis    RedisConfig     `envPrefix:"STORE_REDIS_"`
	Postgres DBConfig        `envPrefix:"STORE_DB_"`
}

// Sanitize fills in the file store directory when it was left empty.
func (c *StoreConfig) Sanitize() {
	if c.File.Dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = "."
		}
		c.File.Dir = filepath.Join(base, "todo-sync")
	}
}

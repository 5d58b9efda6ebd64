package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	mysqldrv "github.com/go-sql-driver/mysql"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 8080
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBName     = "eventstime"
	defaultRedisURL   = "redis://localhost:6379/0"
	defaultAccessTTL  = 300 * time.Second
	defaultRefreshTTL = 30 * 24 * time.Hour
)

// Environment variables that override file values; secrets should come from
// here rather than from config.yml.
const (
	EnvAccessSecret  = "EVENTSTIME_JWT_ACCESS_SECRET"
	EnvRefreshSecret = "EVENTSTIME_JWT_REFRESH_SECRET"
	EnvDBPassword    = "EVENTSTIME_DB_PASSWORD"
	EnvS3AccessKey   = "EVENTSTIME_S3_ACCESS_KEY_ID"
	EnvS3SecretKey   = "EVENTSTIME_S3_SECRET_ACCESS_KEY"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int            `yaml:"port"`
	Env            string         `yaml:"env"` // "development" | "production"
	AllowedOrigins []string       `yaml:"allowed_origins"`
	RedisURL       string         `yaml:"redis_url"`
	Database       DatabaseConfig `yaml:"database"`
	JWT            JWTConfig      `yaml:"jwt"`
	S3             S3Options      `yaml:"s3"`
}

// DatabaseConfig describes the MySQL connection.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn"` // full DSN wins over the discrete fields
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// JWTConfig carries the two independent signing keys and expiry policies.
type JWTConfig struct {
	AccessSecret     string `yaml:"access_secret"`
	RefreshSecret    string `yaml:"refresh_secret"`
	AccessTTLSeconds int    `yaml:"access_token_expiration_seconds"`
	RefreshTTLDays   int    `yaml:"refresh_token_expiration_days"`
}

// S3Options configures the object storage for product images.
type S3Options struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// Load reads the YAML config file, applies defaults and environment
// overrides. A missing file yields the defaults.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if cfg.JWT.AccessSecret == "" || cfg.JWT.RefreshSecret == "" {
		return nil, fmt.Errorf("jwt secrets are required (set %s and %s)", EnvAccessSecret, EnvRefreshSecret)
	}
	if cfg.JWT.AccessSecret == cfg.JWT.RefreshSecret {
		return nil, fmt.Errorf("access and refresh tokens must not share a signing key")
	}
	return cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if strings.TrimSpace(c.Env) == "" {
		c.Env = defaultEnv
	}
	if strings.TrimSpace(c.RedisURL) == "" {
		c.RedisURL = defaultRedisURL
	}
	if c.JWT.AccessTTLSeconds <= 0 {
		c.JWT.AccessTTLSeconds = int(defaultAccessTTL.Seconds())
	}
	if c.JWT.RefreshTTLDays <= 0 {
		c.JWT.RefreshTTLDays = int(defaultRefreshTTL.Hours() / 24)
	}
}

func (c *AppConfig) applyEnvOverrides() {
	if v := os.Getenv(EnvAccessSecret); v != "" {
		c.JWT.AccessSecret = v
	}
	if v := os.Getenv(EnvRefreshSecret); v != "" {
		c.JWT.RefreshSecret = v
	}
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(EnvS3AccessKey); v != "" {
		c.S3.AccessKeyID = v
	}
	if v := os.Getenv(EnvS3SecretKey); v != "" {
		c.S3.SecretAccessKey = v
	}
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }

// AccessTTL returns the access-token lifetime.
func (c *AppConfig) AccessTTL() time.Duration {
	return time.Duration(c.JWT.AccessTTLSeconds) * time.Second
}

// RefreshTTL returns the refresh-token lifetime.
func (c *AppConfig) RefreshTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTTLDays) * 24 * time.Hour
}

// DSNValue builds the MySQL DSN from the discrete fields unless a full DSN
// is configured.
func (c *DatabaseConfig) DSNValue() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}

	mc := mysqldrv.NewConfig()
	mc.Net = "tcp"
	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultDBHost
	}
	port := c.Port
	if port == 0 {
		port = defaultDBPort
	}
	mc.Addr = fmt.Sprintf("%s:%d", host, port)
	mc.User = strings.TrimSpace(c.User)
	if mc.User == "" {
		mc.User = defaultDBUser
	}
	mc.Passwd = c.Password
	mc.DBName = strings.TrimSpace(c.Name)
	if mc.DBName == "" {
		mc.DBName = defaultDBName
	}
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort         = 3080
	defaultEnv          = "development"
	defaultDBHost       = "127.0.0.1"
	defaultDBPort       = 3306
	defaultDBUser       = "root"
	defaultDBPassword   = "password"
	defaultDBName       = "draftflow"
	defaultDBCharset    = "utf8mb4"
	defaultRedisURL     = "redis://localhost:6379/0"
	defaultPollInterval = 5 * time.Second
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int            `yaml:"port"`
	Env            string         `yaml:"env"` // "development" | "production"
	DSN            string         `yaml:"dsn"`
	Database       DatabaseConfig `yaml:"database"`
	RedisURL       string         `yaml:"redis_url"`
	JWTSecret      string         `yaml:"jwt_secret"`
	JWTIssuer      string         `yaml:"jwt_issuer"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
	WriteService   WriteService   `yaml:"write_service"`
	CoverStorage   S3Options      `yaml:"cover_storage"`
}

// DatabaseConfig builds a MySQL DSN when `dsn` is not given directly.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

// WriteService configures the external generation service.
type WriteService struct {
	URL                 string `yaml:"url"`
	Token               string `yaml:"token"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
}

// PollInterval returns the reconciler interval, defaulting to 5s.
func (w WriteService) PollInterval() time.Duration {
	if w.PollIntervalSeconds <= 0 {
		return defaultPollInterval
	}
	return time.Duration(w.PollIntervalSeconds) * time.Second
}

// S3Options configures the S3-compatible bucket for cover images.
type S3Options struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	CustomDomain    string `yaml:"custom_domain"`
	PathStyleAccess bool   `yaml:"path_style_access"`
}

// Enabled reports whether cover uploads are configured.
func (o S3Options) Enabled() bool {
	return o.Bucket != "" && o.AccessKeyID != "" && o.SecretAccessKey != ""
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env != "production" }

// Load reads the YAML config file, applies environment overrides and defaults.
// A missing file is not an error; defaults plus environment apply.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to env + defaults
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	normalize(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("DF_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("DF_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("DF_DSN"); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv("DF_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("DF_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("DF_WRITE_SERVICE_URL"); v != "" {
		cfg.WriteService.URL = v
	}
	if v := os.Getenv("DF_WRITE_SERVICE_TOKEN"); v != "" {
		cfg.WriteService.Token = v
	}
}

func normalize(cfg *AppConfig) {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		cfg.Port = defaultPort
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = defaultRedisURL
	}
	if cfg.DSN == "" {
		cfg.DSN = buildDSN(cfg.Database)
	}
	cfg.WriteService.URL = strings.TrimRight(strings.TrimSpace(cfg.WriteService.URL), "/")

	origins := cfg.AllowedOrigins[:0]
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.AllowedOrigins = origins
}

func buildDSN(db DatabaseConfig) string {
	host := db.Host
	if host == "" {
		host = defaultDBHost
	}
	port := db.Port
	if port <= 0 {
		port = defaultDBPort
	}
	user := db.User
	if user == "" {
		user = defaultDBUser
	}
	password := db.Password
	if password == "" {
		password = defaultDBPassword
	}
	name := db.Name
	if name == "" {
		name = defaultDBName
	}
	charset := db.Charset
	if charset == "" {
		charset = defaultDBCharset
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		user, password, host, port, name, charset)
}

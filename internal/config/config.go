package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	// DefaultBearerToken 仅用于本地开发，生产环境必须通过环境变量覆盖。
	DefaultBearerToken = "default-token"

	defaultPort             = "8080"
	defaultGinMode          = "release"
	defaultDatabasePath     = "cms_pages.db"
	defaultDBHost           = "localhost"
	defaultDBName           = "cms_pages"
	defaultDBUser           = "postgres"
	defaultMaxConnections   = 20
	defaultIdleTimeoutMS    = 30000
	defaultConnectTimeoutMS = 2000
)

var dsnPasswordPattern = regexp.MustCompile(`:[^:@/]+@`)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr      string         `yaml:"listen_addr" env:"LISTEN_ADDR"`
	Port            string         `yaml:"port" env:"PORT"`
	GinMode         string         `yaml:"gin_mode" env:"GIN_MODE"`
	BearerToken     string         `yaml:"bearer_token" env:"API_BEARER_TOKEN"`
	AllowedOrigins  []string       `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	SanitizeContent bool           `yaml:"sanitize_content" env:"SANITIZE_CONTENT"`
	Database        DatabaseConfig `yaml:"database"`
}

// DatabaseConfig describes how to reach the pages table.
type DatabaseConfig struct {
	Driver           string `yaml:"driver" env:"DB_DRIVER"`
	URL              string `yaml:"url" env:"DATABASE_URL"`
	Path             string `yaml:"path" env:"DATABASE_PATH"`
	Host             string `yaml:"host" env:"DB_HOST"`
	Port             int    `yaml:"port" env:"DB_PORT"`
	Name             string `yaml:"name" env:"DB_NAME"`
	User             string `yaml:"user" env:"DB_USER"`
	Password         string `yaml:"password" env:"DB_PASSWORD"`
	MaxConnections   int    `yaml:"max_connections" env:"DB_MAX_CONNECTIONS"`
	IdleTimeoutMS    int    `yaml:"idle_timeout_ms" env:"DB_IDLE_TIMEOUT"`
	ConnectTimeoutMS int    `yaml:"connect_timeout_ms" env:"DB_CONNECTION_TIMEOUT"`
}

// fallbackEnv lists secondary variable names that are honoured when the
// primary one is unset.
var fallbackEnv = []struct {
	name  string
	apply func(cfg *AppConfig, value string) error
}{
	{"BEARER_TOKEN", func(cfg *AppConfig, v string) error { cfg.BearerToken = v; return nil }},
	{"PGHOST", func(cfg *AppConfig, v string) error { cfg.Database.Host = v; return nil }},
	{"PGPORT", func(cfg *AppConfig, v string) error {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PGPORT: %w", err)
		}
		cfg.Database.Port = port
		return nil
	}},
	{"PGDATABASE", func(cfg *AppConfig, v string) error { cfg.Database.Name = v; return nil }},
	{"PGUSER", func(cfg *AppConfig, v string) error { cfg.Database.User = v; return nil }},
	{"PGPASSWORD", func(cfg *AppConfig, v string) error { cfg.Database.Password = v; return nil }},
}

// Default returns the configuration used when nothing is provided.
func Default() AppConfig {
	return AppConfig{
		Port:        defaultPort,
		GinMode:     defaultGinMode,
		BearerToken: DefaultBearerToken,
		Database: DatabaseConfig{
			Driver:           DriverSQLite,
			Path:             defaultDatabasePath,
			Host:             defaultDBHost,
			Name:             defaultDBName,
			User:             defaultDBUser,
			MaxConnections:   defaultMaxConnections,
			IdleTimeoutMS:    defaultIdleTimeoutMS,
			ConnectTimeoutMS: defaultConnectTimeoutMS,
		},
	}
}

// Load 依次合并默认值、可选的 YAML 配置文件与环境变量，后者优先级最高。
// path 为空时跳过配置文件。
func Load(path string) (AppConfig, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return AppConfig{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	for _, fb := range fallbackEnv {
		value := strings.TrimSpace(os.Getenv(fb.name))
		if value == "" {
			continue
		}
		if err := fb.apply(&cfg, value); err != nil {
			return AppConfig{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c *AppConfig) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = defaultPort
	}
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}
	c.GinMode = strings.TrimSpace(c.GinMode)
	if c.GinMode == "" {
		c.GinMode = defaultGinMode
	}
	c.BearerToken = strings.TrimSpace(c.BearerToken)
	if c.BearerToken == "" {
		c.BearerToken = DefaultBearerToken
	}

	origins := make([]string, 0, len(c.AllowedOrigins))
	for _, origin := range c.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.AllowedOrigins = origins

	d := &c.Database
	d.Driver = strings.ToLower(strings.TrimSpace(d.Driver))
	switch d.Driver {
	case "", "sqlite3":
		d.Driver = DriverSQLite
	case "postgresql", "pg":
		d.Driver = DriverPostgres
	}
	if strings.TrimSpace(d.Path) == "" {
		d.Path = defaultDatabasePath
	}
	if d.Port == 0 {
		switch d.Driver {
		case DriverMySQL:
			d.Port = 3306
		case DriverPostgres:
			d.Port = 5432
		}
	}
	if d.MaxConnections <= 0 {
		d.MaxConnections = defaultMaxConnections
	}
	if d.IdleTimeoutMS <= 0 {
		d.IdleTimeoutMS = defaultIdleTimeoutMS
	}
	if d.ConnectTimeoutMS <= 0 {
		d.ConnectTimeoutMS = defaultConnectTimeoutMS
	}
}

// Validate reports configuration values the server cannot start with.
func (c AppConfig) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver != DriverSQLite && c.Database.URL == "" && c.Database.Host == "" {
		return errors.New("database host is required")
	}
	for _, origin := range c.AllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid allowed origin %q", origin)
		}
	}
	return nil
}

// AllowsAnyOrigin reports whether CORS should accept every origin.
func (c AppConfig) AllowsAnyOrigin() bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// UsesDefaultToken reports whether the API is still protected by the
// development token.
func (c AppConfig) UsesDefaultToken() bool {
	return c.BearerToken == DefaultBearerToken
}

// IsDebug reports whether gin runs in debug mode.
func (c AppConfig) IsDebug() bool {
	return c.GinMode == "debug"
}

// IdleTimeout returns the pool idle timeout.
func (d DatabaseConfig) IdleTimeout() time.Duration {
	return time.Duration(d.IdleTimeoutMS) * time.Millisecond
}

// ConnectTimeout returns the dial timeout for network drivers.
func (d DatabaseConfig) ConnectTimeout() time.Duration {
	return time.Duration(d.ConnectTimeoutMS) * time.Millisecond
}

// DSN builds the driver specific connection string. DATABASE_URL wins over
// the individual host/port/user settings.
func (d DatabaseConfig) DSN() string {
	if raw := strings.TrimSpace(d.URL); raw != "" {
		return raw
	}

	switch d.Driver {
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = d.User
		mc.Passwd = d.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
		mc.DBName = d.Name
		mc.ParseTime = true
		mc.Timeout = d.ConnectTimeout()
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mc.FormatDSN()
	case DriverPostgres:
		seconds := int((d.ConnectTimeout() + time.Second - 1) / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		query := url.Values{}
		query.Set("sslmode", "disable")
		query.Set("connect_timeout", strconv.Itoa(seconds))
		u := url.URL{
			Scheme:   "postgresql",
			User:     url.UserPassword(d.User, d.Password),
			Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
			Path:     "/" + d.Name,
			RawQuery: query.Encode(),
		}
		return u.String()
	default:
		return d.Path
	}
}

// MaskedDSN hides the password portion of DSN for logging.
func (d DatabaseConfig) MaskedDSN() string {
	return dsnPasswordPattern.ReplaceAllString(d.DSN(), ":****@")
}

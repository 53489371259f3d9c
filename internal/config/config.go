package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-ini/ini"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultConfigFile is where the deployed dashboard keeps its INI file.
const DefaultConfigFile = "/var/www/server_web/web_config.ini"

// Config holds application configuration. It is built once at startup and
// never mutated afterwards.
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	Login    LoginConfig
	Reports  ReportsConfig
	LogLevel string
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// LoginConfig describes the external login service that issues auth_token cookies.
type LoginConfig struct {
	Secret string
	URL    string
}

type ReportsConfig struct {
	PageSize int
}

// Addr returns the host:port the HTTP server binds to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// Load reads configuration from the INI file named by WEB_CONFIG (or
// DefaultConfigFile), an optional .env file and the environment. Environment
// variables win over the INI file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("WEB_CONFIG")
	if path == "" {
		path = DefaultConfigFile
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit INI path. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	sections, err := readINI(path)
	if err != nil {
		return nil, err
	}
	if err := v.MergeConfigMap(sections); err != nil {
		return nil, fmt.Errorf("merge config %s: %w", path, err)
	}

	bind(v, "database.location", "MONGODB_HOST")
	bind(v, "database.port", "MONGODB_PORT")
	bind(v, "database.collection", "MONGODB_DATABASE")
	bind(v, "database.uri", "MONGODB_URI")
	bind(v, "database.timeout", "MONGODB_TIMEOUT")
	bind(v, "login.key", "JWT_SECRET")
	bind(v, "login.url_node", "LOGIN_URL")
	bind(v, "server.host", "SERVER_HOST", "FLASK_RUN_HOST")
	bind(v, "server.port", "SERVER_PORT", "FLASK_RUN_PORT")
	bind(v, "redis.host", "REDIS_HOST")
	bind(v, "redis.port", "REDIS_PORT")
	bind(v, "redis.password", "REDIS_PASSWORD")
	bind(v, "reports.page_size", "PAGE_SIZE")
	bind(v, "log.level", "LOG_LEVEL")

	v.SetDefault("database.location", "localhost")
	v.SetDefault("database.port", "27017")
	v.SetDefault("database.collection", "DockShield")
	v.SetDefault("database.timeout", 10)
	v.SetDefault("login.url_node", "http://localhost:3000/login.html")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "5000")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("reports.page_size", 100)
	v.SetDefault("log.level", "info")

	uri := v.GetString("database.uri")
	if uri == "" {
		uri = fmt.Sprintf("mongodb://%s:%s/", v.GetString("database.location"), v.GetString("database.port"))
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("server.port"),
			Host:         v.GetString("server.host"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      uri,
			Database: v.GetString("database.collection"),
			Timeout:  time.Duration(v.GetInt("database.timeout")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
		},
		Login: LoginConfig{
			Secret: v.GetString("login.key"),
			URL:    v.GetString("login.url_node"),
		},
		Reports: ReportsConfig{
			PageSize: v.GetInt("reports.page_size"),
		},
		LogLevel: v.GetString("log.level"),
	}

	if cfg.Login.Secret == "" {
		return nil, errors.New("login secret is required: set [LOGIN] key or JWT_SECRET")
	}
	if cfg.Login.URL == "" {
		return nil, errors.New("login url is required: set [LOGIN] url_node or LOGIN_URL")
	}
	return cfg, nil
}

// readINI flattens an INI file into section -> key -> value.
func readINI(path string) (map[string]any, error) {
	out := map[string]any{}
	if path == "" {
		return out, nil
	}
	f, err := ini.LoadSources(ini.LoadOptions{Loose: true}, path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		keys := map[string]any{}
		for _, k := range sec.Keys() {
			keys[strings.ToLower(k.Name())] = k.String()
		}
		out[strings.ToLower(sec.Name())] = keys
	}
	return out, nil
}

func bind(v *viper.Viper, key string, env ...string) {
	_ = v.BindEnv(append([]string{key}, env...)...)
}

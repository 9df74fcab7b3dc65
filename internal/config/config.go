package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Port           string        `yaml:"port" validate:"required"`
	DBPath         string        `yaml:"db_path" validate:"required"`
	JWTSecret      string        `yaml:"jwt_secret"`
	AuthEnabled    bool          `yaml:"auth_enabled"`
	RateLimit      int           `yaml:"rate_limit" validate:"gte=0"`
	RateWindow     time.Duration `yaml:"rate_window" validate:"gte=0"`
	UserCacheSize  int           `yaml:"user_cache_size" validate:"gte=1"`
	QueryCacheSize int           `yaml:"query_cache_size" validate:"gte=1"`
	ConfigFile     string        `yaml:"-"`

	Defaults Defaults `yaml:"defaults"`
}

// Defaults are applied to subjects without a stored profile and to requests
// that do not override them
type Defaults struct {
	Weekend    []int  `yaml:"weekend" validate:"dive,min=1,max=7"` // ISO weekdays
	NightStart string `yaml:"night_start" validate:"datetime=15:04"`
	NightEnd   string `yaml:"night_end" validate:"datetime=15:04"`
	GroupBy    string `yaml:"groupby" validate:"omitempty,oneof=none day week month year"`
	Summary    string `yaml:"summary" validate:"omitempty,oneof=default extended none"`
}

var validate = validator.New()

// Load 加载配置: defaults, then the optional YAML file, then env overrides
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.AuthEnabled && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required when auth is enabled")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Port:           ":8080",
		DBPath:         "./data/cdr/cdr.db",
		RateLimit:      100,
		RateWindow:     time.Minute,
		UserCacheSize:  128,
		QueryCacheSize: 512,
		Defaults: Defaults{
			Weekend:    []int{6, 7},
			NightStart: "19:00",
			NightEnd:   "07:00",
			GroupBy:    "week",
			Summary:    "default",
		},
	}
}

// LoadFile overlays the YAML file at path onto cfg
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		if !strings.Contains(v, ":") {
			v = ":" + v
		}
		c.Port = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}

	var err error
	if c.AuthEnabled, err = envBool("AUTH_ENABLED", c.AuthEnabled); err != nil {
		return err
	}
	if c.RateLimit, err = envInt("RATE_LIMIT", c.RateLimit); err != nil {
		return err
	}
	if c.UserCacheSize, err = envInt("USER_CACHE_SIZE", c.UserCacheSize); err != nil {
		return err
	}
	if c.QueryCacheSize, err = envInt("QUERY_CACHE_SIZE", c.QueryCacheSize); err != nil {
		return err
	}
	if v := os.Getenv("RATE_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_WINDOW %q: %w", v, err)
		}
		c.RateWindow = d
	}
	return nil
}

func envInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}

func envBool(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return v, nil
}

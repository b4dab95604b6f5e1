package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	defaultAddress         = ":4001"
	defaultBackendURL      = "http://localhost:8080/api"
	defaultBackendTimeout  = 10
	defaultDriver          = "sqlite"
	defaultDatabaseURL     = "file:fakhiu.db?_pragma=busy_timeout(5000)"
	defaultSnapshotTTL     = 300
	defaultSessionIdle     = 30
	defaultSubmitPerMinute = 6
	defaultSubmitBurst     = 3
)

type Config struct {
	Server struct {
		Address            string   `yaml:"address"`
		AllowedOrigins     []string `yaml:"allowed_origins"`
		SessionIdleMinutes int      `yaml:"session_idle_minutes"`
	} `yaml:"server"`
	Backend struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"backend"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr               string `yaml:"addr"`
		Password           string `yaml:"password"`
		DB                 int    `yaml:"db"`
		SnapshotTTLSeconds int    `yaml:"snapshot_ttl_seconds"`
	} `yaml:"redis"`
	Storage struct {
		Bucket   string `yaml:"bucket"`
		Region   string `yaml:"region"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"storage"`
	Firebase struct {
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"firebase"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Limits struct {
		SubmitPerMinute int `yaml:"submit_per_minute"`
		SubmitBurst     int `yaml:"submit_burst"`
	} `yaml:"limits"`
	Log struct {
		Debug bool `yaml:"debug"`
	} `yaml:"log"`
}

// SnapshotTTL is how long a shared cached snapshot stays valid.
func (c Config) SnapshotTTL() time.Duration {
	return time.Duration(c.Redis.SnapshotTTLSeconds) * time.Second
}

func (c Config) SessionIdle() time.Duration {
	return time.Duration(c.Server.SessionIdleMinutes) * time.Minute
}

func (c Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// LoadConfig reads the optional YAML file at path, then applies
// environment overrides and defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshal config data: %w", err)
		}
	}

	applyDefaults(&cfg)
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	setString(&cfg.Server.Address, defaultAddress)
	setString(&cfg.Backend.BaseURL, defaultBackendURL)
	setString(&cfg.Database.Driver, defaultDriver)
	setString(&cfg.Database.URL, defaultDatabaseURL)
	setInt(&cfg.Backend.TimeoutSeconds, defaultBackendTimeout)
	setInt(&cfg.Redis.SnapshotTTLSeconds, defaultSnapshotTTL)
	setInt(&cfg.Server.SessionIdleMinutes, defaultSessionIdle)
	setInt(&cfg.Limits.SubmitPerMinute, defaultSubmitPerMinute)
	setInt(&cfg.Limits.SubmitBurst, defaultSubmitBurst)
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		cfg.Server.Address = ":" + strings.TrimPrefix(v, ":")
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("API_BASE"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		cfg.Storage.Region = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("FIREBASE_CREDENTIALS"); v != "" {
		cfg.Firebase.CredentialsFile = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("LOG_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse LOG_DEBUG: %w", err)
		}
		cfg.Log.Debug = debug
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"REDIS_DB", &cfg.Redis.DB},
		{"SNAPSHOT_TTL_SECONDS", &cfg.Redis.SnapshotTTLSeconds},
		{"BACKEND_TIMEOUT_SECONDS", &cfg.Backend.TimeoutSeconds},
		{"SESSION_IDLE_MINUTES", &cfg.Server.SessionIdleMinutes},
		{"SUBMIT_RATE_PER_MINUTE", &cfg.Limits.SubmitPerMinute},
		{"SUBMIT_BURST", &cfg.Limits.SubmitBurst},
	}
	for _, it := range ints {
		v, err := readIntEnv(it.name)
		if err != nil {
			return fmt.Errorf("parse %s: %w", it.name, err)
		}
		if v != nil {
			*it.dst = *v
		}
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "pgx", "sqlite":
	default:
		return fmt.Errorf("database driver %q is not supported", c.Database.Driver)
	}
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return errors.New("backend base url is required")
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return errors.New("BACKEND_TIMEOUT_SECONDS must be positive")
	}
	if c.Redis.SnapshotTTLSeconds <= 0 {
		return errors.New("SNAPSHOT_TTL_SECONDS must be positive")
	}
	if c.Server.SessionIdleMinutes <= 0 {
		return errors.New("SESSION_IDLE_MINUTES must be positive")
	}
	if c.Limits.SubmitPerMinute <= 0 {
		return errors.New("SUBMIT_RATE_PER_MINUTE must be positive")
	}
	if c.Limits.SubmitBurst <= 0 {
		return errors.New("SUBMIT_BURST must be positive")
	}
	return nil
}

func readIntEnv(name string) (*int, error) {
	val := os.Getenv(name)
	if val == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(val)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func setString(dst *string, def string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = def
	}
}

func setInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Package config loads the YAML configuration shared by the server and the
// terminal dashboard. Environment variables prefixed EDU_ override the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"edu-dashboard-api/internal/cache"
	"edu-dashboard-api/internal/logging"
	"edu-dashboard-api/internal/query"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       logging.Config  `yaml:"log"`
	Query     QueryConfig     `yaml:"query"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	Audience string        `yaml:"audience"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// QueryConfig holds the defaults applied to every widget query.
type QueryConfig struct {
	StaleTime       time.Duration `yaml:"stale_time"`
	CacheTime       time.Duration `yaml:"cache_time"`
	Retry           string        `yaml:"retry"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	RefetchInterval time.Duration `yaml:"refetch_interval"`
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	CommitPolicy    string        `yaml:"commit_policy"`
}

type DashboardConfig struct {
	APIURL   string `yaml:"api_url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{Path: "edu-dashboard.db"},
		Auth: AuthConfig{
			Secret:   "development-insecure-secret-change-me",
			Issuer:   "edu-dashboard-api",
			Audience: "edu-dashboard-clients",
			TokenTTL: 24 * time.Hour,
		},
		Log: logging.Config{Level: "info", Format: "console"},
		Query: QueryConfig{
			StaleTime:       query.DefaultStaleTime,
			CacheTime:       query.DefaultCacheTime,
			Retry:           query.Retry(query.DefaultRetryCount).String(),
			RetryDelay:      query.DefaultRetryDelay,
			RefetchInterval: 30 * time.Second,
			SweepInterval:   cache.DefaultSweepInterval,
			CommitPolicy:    cache.CommitLatestIssued.String(),
		},
		Dashboard: DashboardConfig{APIURL: "http://localhost:8080"},
	}
}

// Load reads path over the defaults, applies EDU_* overrides and validates
// the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
		}
		*dst = d
		return nil
	}

	str("EDU_SERVER_ADDR", &c.Server.Addr)
	str("EDU_DATABASE_PATH", &c.Database.Path)
	str("EDU_JWT_SECRET", &c.Auth.Secret)
	str("EDU_JWT_ISSUER", &c.Auth.Issuer)
	str("EDU_JWT_AUDIENCE", &c.Auth.Audience)
	str("EDU_LOG_LEVEL", &c.Log.Level)
	str("EDU_LOG_FORMAT", &c.Log.Format)
	str("EDU_LOG_FILE", &c.Log.File)
	str("EDU_QUERY_RETRY", &c.Query.Retry)
	str("EDU_QUERY_COMMIT_POLICY", &c.Query.CommitPolicy)
	str("EDU_DASHBOARD_API_URL", &c.Dashboard.APIURL)
	str("EDU_DASHBOARD_USERNAME", &c.Dashboard.Username)
	str("EDU_DASHBOARD_PASSWORD", &c.Dashboard.Password)

	for key, dst := range map[string]*time.Duration{
		"EDU_QUERY_STALE_TIME":       &c.Query.StaleTime,
		"EDU_QUERY_CACHE_TIME":       &c.Query.CacheTime,
		"EDU_QUERY_RETRY_DELAY":      &c.Query.RetryDelay,
		"EDU_QUERY_REFETCH_INTERVAL": &c.Query.RefetchInterval,
		"EDU_QUERY_SWEEP_INTERVAL":   &c.Query.SweepInterval,
	} {
		if err := dur(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is empty"))
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		errs = append(errs, errors.New("auth.secret is empty"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Query.StaleTime < 0 || c.Query.CacheTime < 0 || c.Query.RetryDelay < 0 || c.Query.RefetchInterval < 0 {
		errs = append(errs, errors.New("query durations must not be negative"))
	}
	if c.Query.SweepInterval <= 0 {
		errs = append(errs, errors.New("query.sweep_interval must be positive"))
	}
	if _, err := query.ParseRetry(c.Query.Retry); err != nil {
		errs = append(errs, err)
	}
	if _, err := cache.ParseCommitPolicy(c.Query.CommitPolicy); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Options converts the query section into consumer defaults. The config
// is assumed valid.
func (q QueryConfig) Options() []query.Option {
	retry, _ := query.ParseRetry(q.Retry)
	return []query.Option{
		query.WithStaleTime(q.StaleTime),
		query.WithCacheTime(q.CacheTime),
		query.WithRetry(retry),
		query.WithRetryDelay(q.RetryDelay),
	}
}

// Policy returns the parsed commit policy, falling back to latest-issued.
func (q QueryConfig) Policy() cache.CommitPolicy {
	p, err := cache.ParseCommitPolicy(q.CommitPolicy)
	if err != nil {
		return cache.CommitLatestIssued
	}
	return p
}

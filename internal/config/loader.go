package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Load when a field is left empty.
const (
	DefaultTokenKey      = "oidcIdToken"
	DefaultBrowser       = "chromium"
	DefaultWidth         = 1280
	DefaultHeight        = 720
	DefaultCommand       = 15 * time.Second
	DefaultNetwork       = 30 * time.Second
	DefaultRestoreSettle = 500 * time.Millisecond
	DefaultReady         = 2 * time.Minute
	DefaultFixturePrefix = "catalogcheck"
	DefaultServiceType   = "Mysql"
	DefaultArtifactsDir  = "artifacts"
	DefaultMetricsJob    = "catalogcheck"
	DefaultLockTTL       = 15 * time.Minute
)

// Load reads a catalogcheck.yaml file and returns a Config with environment
// references resolved, defaults applied and the result validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes. See Load.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return finish(&cfg)
}

// Default returns a Config for a local catalog with the stock admin account.
// Environment overrides still apply.
func Default() (*Config, error) {
	return finish(&Config{
		BaseURL: "http://localhost:8585",
		Auth: AuthConfig{
			Username: "admin@open-metadata.org",
			Password: "admin",
		},
	})
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)
	resolveEnvVars(cfg)
	setDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets CI inject the target and credentials without
// editing the file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CATALOGCHECK_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("CATALOGCHECK_USERNAME"); v != "" {
		cfg.Auth.Username = v
	}
	if v := os.Getenv("CATALOGCHECK_PASSWORD"); v != "" {
		cfg.Auth.Password = v
	}
}

func resolveEnvVars(cfg *Config) {
	cfg.BaseURL = ResolveEnvVar(cfg.BaseURL)
	cfg.Auth.Username = ResolveEnvVar(cfg.Auth.Username)
	cfg.Auth.Password = ResolveEnvVar(cfg.Auth.Password)
	cfg.Artifacts.Bucket = ResolveEnvVar(cfg.Artifacts.Bucket)
	cfg.Artifacts.AccountURL = ResolveEnvVar(cfg.Artifacts.AccountURL)
	cfg.Metrics.PushgatewayURL = ResolveEnvVar(cfg.Metrics.PushgatewayURL)
	cfg.History.DatabaseURL = ResolveEnvVar(cfg.History.DatabaseURL)
	cfg.Lock.RedisURL = ResolveEnvVar(cfg.Lock.RedisURL)
	cfg.Secrets.VaultURL = ResolveEnvVar(cfg.Secrets.VaultURL)
	cfg.Notify.SlackWebhookURL = ResolveEnvVar(cfg.Notify.SlackWebhookURL)
	cfg.Notify.WebhookURL = ResolveEnvVar(cfg.Notify.WebhookURL)
	for k, v := range cfg.Notify.WebhookHeaders {
		cfg.Notify.WebhookHeaders[k] = ResolveEnvVar(v)
	}
	cfg.Secrets.RoleID = ResolveEnvVar(cfg.Secrets.RoleID)
	cfg.Secrets.SecretID = ResolveEnvVar(cfg.Secrets.SecretID)
}

func setDefaults(cfg *Config) {
	if cfg.Auth.TokenKey == "" {
		cfg.Auth.TokenKey = DefaultTokenKey
	}
	if cfg.Browser.Name == "" {
		cfg.Browser.Name = DefaultBrowser
	}
	if cfg.Browser.Width == 0 {
		cfg.Browser.Width = DefaultWidth
	}
	if cfg.Browser.Height == 0 {
		cfg.Browser.Height = DefaultHeight
	}
	if cfg.Timeouts.Command == 0 {
		cfg.Timeouts.Command = DefaultCommand
	}
	if cfg.Timeouts.Network == 0 {
		cfg.Timeouts.Network = DefaultNetwork
	}
	if cfg.Timeouts.RestoreSettle == 0 {
		cfg.Timeouts.RestoreSettle = DefaultRestoreSettle
	}
	if cfg.Timeouts.Ready == 0 {
		cfg.Timeouts.Ready = DefaultReady
	}
	if cfg.Fixture.Prefix == "" {
		cfg.Fixture.Prefix = DefaultFixturePrefix
	}
	if cfg.Fixture.ServiceType == "" {
		cfg.Fixture.ServiceType = DefaultServiceType
	}
	if cfg.Artifacts.Backend == "" {
		cfg.Artifacts.Backend = "local"
	}
	if cfg.Artifacts.Dir == "" {
		cfg.Artifacts.Dir = DefaultArtifactsDir
	}
	if cfg.Metrics.Job == "" {
		cfg.Metrics.Job = DefaultMetricsJob
	}
	if cfg.Lock.TTL == 0 {
		cfg.Lock.TTL = DefaultLockTTL
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

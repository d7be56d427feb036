package config

import "time"

// Config represents the top-level catalogcheck.yaml structure.
type Config struct {
	// BaseURL is the catalog web application root, e.g. http://localhost:8585.
	BaseURL string `yaml:"base_url" validate:"required,url"`

	Auth      AuthConfig      `yaml:"auth"`
	Browser   BrowserConfig   `yaml:"browser"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
	Fixture   FixtureConfig   `yaml:"fixture"`
	Suite     SuiteConfig     `yaml:"suite"`
	Checks    ChecksConfig    `yaml:"checks"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	History   HistoryConfig   `yaml:"history"`
	Lock      LockConfig      `yaml:"lock"`
	Secrets   SecretsConfig   `yaml:"secrets"`
	Notify    NotifyConfig    `yaml:"notify"`
	Log       LogConfig       `yaml:"log"`

	// Overflow captures any unknown top-level YAML fields.
	Overflow map[string]any `yaml:",inline"`
}

// AuthConfig holds the credentials used for UI login.
type AuthConfig struct {
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password" validate:"required"`

	// TokenKey is the local storage key holding the session token after login.
	TokenKey string `yaml:"token_key"`
}

// BrowserConfig selects and tunes the browser driven by playwright.
type BrowserConfig struct {
	Name     string        `yaml:"name" validate:"omitempty,oneof=chromium firefox webkit"`
	Headless *bool         `yaml:"headless,omitempty"`
	SlowMo   time.Duration `yaml:"slow_mo,omitempty"`
	Width    int           `yaml:"width,omitempty" validate:"gte=0"`
	Height   int           `yaml:"height,omitempty" validate:"gte=0"`
}

// IsHeadless reports whether the browser runs without a window. Defaults to true.
func (b BrowserConfig) IsHeadless() bool {
	return b.Headless == nil || *b.Headless
}

// TimeoutConfig bounds the implicit waits of the runner.
type TimeoutConfig struct {
	// Command bounds every DOM action and assertion.
	Command time.Duration `yaml:"command,omitempty"`
	// Network bounds waits on intercepted request aliases.
	Network time.Duration `yaml:"network,omitempty"`
	// RestoreSettle is the fixed pause after confirming a restore.
	RestoreSettle time.Duration `yaml:"restore_settle,omitempty"`
	// Ready bounds how long to wait for the catalog server before a run.
	Ready time.Duration `yaml:"ready,omitempty"`
}

// FixtureConfig controls naming of the entities created for a run.
type FixtureConfig struct {
	Prefix      string `yaml:"prefix" validate:"omitempty,alphanum"`
	ServiceType string `yaml:"service_type"`
	// ID pins the fixture suffix; random per run when empty.
	ID string `yaml:"id,omitempty"`
}

// SuiteConfig selects scenarios and failure policy.
type SuiteConfig struct {
	FailFast  bool     `yaml:"fail_fast"`
	Scenarios []string `yaml:"scenarios,omitempty"`
}

// ChecksConfig enables extra verification beyond the UI assertions.
type ChecksConfig struct {
	// APIState cross-checks soft delete and restore through the REST API.
	APIState bool `yaml:"api_state"`
}

// ArtifactsConfig configures where failure screenshots are written.
type ArtifactsConfig struct {
	ScreenshotsOnFailure *bool  `yaml:"screenshots_on_failure,omitempty"`
	Backend              string `yaml:"backend" validate:"omitempty,oneof=local s3 azblob"`
	Dir                  string `yaml:"dir,omitempty"`
	Bucket               string `yaml:"bucket,omitempty" validate:"required_if=Backend s3"`
	Region               string `yaml:"region,omitempty"`
	AccountURL           string `yaml:"account_url,omitempty" validate:"required_if=Backend azblob"`
	Container            string `yaml:"container,omitempty" validate:"required_if=Backend azblob"`
	Prefix               string `yaml:"prefix,omitempty"`
}

// Screenshots reports whether failure screenshots are captured. Defaults to true.
func (a ArtifactsConfig) Screenshots() bool {
	return a.ScreenshotsOnFailure == nil || *a.ScreenshotsOnFailure
}

// MetricsConfig configures Prometheus export.
type MetricsConfig struct {
	// PushgatewayURL receives run metrics after every `run`.
	PushgatewayURL string `yaml:"pushgateway_url,omitempty" validate:"omitempty,url"`
	Job            string `yaml:"job,omitempty"`
	// ListenAddr serves /metrics in monitor mode.
	ListenAddr string `yaml:"listen_addr,omitempty"`
}

// HistoryConfig configures the run history database.
type HistoryConfig struct {
	DatabaseURL string `yaml:"database_url,omitempty"`
}

// LockConfig configures the cross-runner fixture lock.
type LockConfig struct {
	RedisURL string        `yaml:"redis_url,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"`
}

// SecretsConfig selects the secret manager that resolves secret://
// references in credentials and connection URLs.
type SecretsConfig struct {
	Provider string        `yaml:"provider,omitempty" validate:"omitempty,oneof=aws_secrets_manager hashicorp_vault azure_key_vault"`
	Region   string        `yaml:"region,omitempty"`
	VaultURL string        `yaml:"vault_url,omitempty" validate:"required_if=Provider azure_key_vault"`
	Mount    string        `yaml:"mount,omitempty"`
	RoleID   string        `yaml:"role_id,omitempty"`
	SecretID string        `yaml:"secret_id,omitempty"`
	CacheTTL time.Duration `yaml:"cache_ttl,omitempty"`
}

// NotifyConfig configures run notifications.
type NotifyConfig struct {
	SlackWebhookURL string            `yaml:"slack_webhook_url,omitempty" validate:"omitempty,url"`
	WebhookURL      string            `yaml:"webhook_url,omitempty" validate:"omitempty,url"`
	WebhookHeaders  map[string]string `yaml:"webhook_headers,omitempty"`
	// Always sends on every run; by default only failures and recoveries.
	Always bool `yaml:"always,omitempty"`
	// Cooldown suppresses repeated failure alerts for the same suite.
	Cooldown time.Duration `yaml:"cooldown,omitempty"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format,omitempty" validate:"omitempty,oneof=text json logfmt"`
}

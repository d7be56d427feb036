// Package secretmanager resolves secret:// references in the config from an
// external secret store, so CI never has catalog or database credentials in
// the config file.
package secretmanager

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/praxisllmlab/catalogcheck/internal/config"
)

// RefPrefix marks a config value that names a secret.
const RefPrefix = "secret://"

// DefaultCacheTTL is used when secrets.cache_ttl is unset.
const DefaultCacheTTL = 10 * time.Minute

// SecretManager resolves credential references from external vaults.
type SecretManager interface {
	Name() string
	Get(ctx context.Context, path string) (string, error)
	Health(ctx context.Context) error
}

// Factory creates a SecretManager from the secrets config section.
type Factory func(ctx context.Context, cfg config.SecretsConfig) (SecretManager, error)

var (
	factoryMu sync.RWMutex
	factories = make(map[string]Factory)
)

// Register adds a secret manager factory.
func Register(name string, f Factory) {
	factoryMu.Lock()
	factories[name] = f
	factoryMu.Unlock()
}

// New creates the SecretManager named by cfg.Provider, wrapped in a cache.
func New(ctx context.Context, cfg config.SecretsConfig) (SecretManager, error) {
	factoryMu.RLock()
	f, ok := factories[cfg.Provider]
	factoryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown secret manager: %s", cfg.Provider)
	}
	sm, err := f(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewCachedSecretManager(sm, cfg.CacheTTL), nil
}

// Names returns all registered secret manager names, sorted.
func Names() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRef reports whether value is a secret:// reference.
func IsRef(value string) bool {
	return strings.HasPrefix(value, RefPrefix)
}

// Resolve returns value unchanged unless it is a secret:// reference, in
// which case the named secret is fetched from sm.
func Resolve(ctx context.Context, sm SecretManager, value string) (string, error) {
	if !IsRef(value) {
		return value, nil
	}
	path := strings.TrimPrefix(value, RefPrefix)
	if sm == nil {
		return "", fmt.Errorf("%s: secrets.provider is not configured", value)
	}
	return sm.Get(ctx, path)
}

// ResolveConfig replaces secret:// references in the credential and
// connection fields of cfg. Without references it never contacts a store.
func ResolveConfig(ctx context.Context, cfg *config.Config) error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"auth.username", &cfg.Auth.Username},
		{"auth.password", &cfg.Auth.Password},
		{"history.database_url", &cfg.History.DatabaseURL},
		{"lock.redis_url", &cfg.Lock.RedisURL},
		{"metrics.pushgateway_url", &cfg.Metrics.PushgatewayURL},
		{"notify.slack_webhook_url", &cfg.Notify.SlackWebhookURL},
		{"notify.webhook_url", &cfg.Notify.WebhookURL},
	}

	var sm SecretManager
	for _, f := range fields {
		if !IsRef(*f.ptr) {
			continue
		}
		if sm == nil && cfg.Secrets.Provider != "" {
			var err error
			if sm, err = New(ctx, cfg.Secrets); err != nil {
				return fmt.Errorf("secret manager %s: %w", cfg.Secrets.Provider, err)
			}
		}
		v, err := Resolve(ctx, sm, *f.ptr)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", f.name, err)
		}
		*f.ptr = v
	}
	return nil
}

// cachedEntry holds a cached secret value with expiration.
type cachedEntry struct {
	value     string
	expiresAt time.Time
}

// CachedSecretManager wraps a SecretManager with an in-memory cache. Monitor
// mode resolves the same references on every cycle.
type CachedSecretManager struct {
	inner SecretManager
	ttl   time.Duration
	mu    sync.RWMutex
	cache map[string]cachedEntry
}

// NewCachedSecretManager wraps sm with a TTL cache. A non-positive ttl uses
// DefaultCacheTTL.
func NewCachedSecretManager(sm SecretManager, ttl time.Duration) *CachedSecretManager {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedSecretManager{
		inner: sm,
		ttl:   ttl,
		cache: make(map[string]cachedEntry),
	}
}

func (c *CachedSecretManager) Name() string { return c.inner.Name() }

func (c *CachedSecretManager) Get(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("secret path cannot be empty")
	}

	c.mu.RLock()
	entry, ok := c.cache[path]
	c.mu.RUnlock()

	if ok && time.Now().Before(entry.expiresAt) {
		return entry.value, nil
	}

	val, err := c.inner.Get(ctx, path)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.cache[path] = cachedEntry{
		value:     val,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()

	return val, nil
}

func (c *CachedSecretManager) Health(ctx context.Context) error {
	return c.inner.Health(ctx)
}

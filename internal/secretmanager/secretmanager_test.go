package secretmanager

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisllmlab/catalogcheck/internal/config"
)

type mockSM struct {
	name  string
	vals  map[string]string
	err   error
	calls int
}

func (m *mockSM) Name() string { return m.name }
func (m *mockSM) Get(_ context.Context, path string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.vals[path]
	if !ok {
		return "", fmt.Errorf("not found: %s", path)
	}
	return v, nil
}
func (m *mockSM) Health(_ context.Context) error { return m.err }

func registerMock(t *testing.T, name string, m *mockSM) {
	t.Helper()
	Register(name, func(context.Context, config.SecretsConfig) (SecretManager, error) { return m, nil })
}

func TestNewUnknown(t *testing.T) {
	_, err := New(context.Background(), config.SecretsConfig{Provider: "nonexistent"})
	assert.EqualError(t, err, "unknown secret manager: nonexistent")
}

func TestNewWrapsInCache(t *testing.T) {
	registerMock(t, "test_mock", &mockSM{name: "test_mock"})
	sm, err := New(context.Background(), config.SecretsConfig{Provider: "test_mock"})
	require.NoError(t, err)
	assert.Equal(t, "test_mock", sm.Name())
	assert.IsType(t, &CachedSecretManager{}, sm)
}

func TestNames(t *testing.T) {
	names := Names()
	assert.Contains(t, names, "aws_secrets_manager")
	assert.Contains(t, names, "hashicorp_vault")
	assert.Contains(t, names, "azure_key_vault")
	assert.IsIncreasing(t, names)
}

func TestResolve(t *testing.T) {
	m := &mockSM{name: "m", vals: map[string]string{"catalog/admin": "s3cret"}}
	ctx := context.Background()

	v, err := Resolve(ctx, m, "plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", v)
	assert.Zero(t, m.calls)

	v, err = Resolve(ctx, m, "secret://catalog/admin")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)

	_, err = Resolve(ctx, nil, "secret://catalog/admin")
	assert.ErrorContains(t, err, "secrets.provider is not configured")
}

func TestResolveConfig(t *testing.T) {
	m := &mockSM{name: "cfg_mock", vals: map[string]string{
		"catalog/password": "admin",
		"history/dsn":      "postgres://u:p@db/catalogcheck",
	}}
	registerMock(t, "cfg_mock", m)

	cfg := &config.Config{
		Auth:    config.AuthConfig{Username: "admin@open-metadata.org", Password: "secret://catalog/password"},
		History: config.HistoryConfig{DatabaseURL: "secret://history/dsn"},
		Secrets: config.SecretsConfig{Provider: "cfg_mock"},
	}
	require.NoError(t, ResolveConfig(context.Background(), cfg))
	assert.Equal(t, "admin@open-metadata.org", cfg.Auth.Username)
	assert.Equal(t, "admin", cfg.Auth.Password)
	assert.Equal(t, "postgres://u:p@db/catalogcheck", cfg.History.DatabaseURL)
}

func TestResolveConfig_NoRefsNoProvider(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{Username: "u", Password: "p"}}
	require.NoError(t, ResolveConfig(context.Background(), cfg))
}

func TestResolveConfig_MissingSecret(t *testing.T) {
	registerMock(t, "cfg_missing", &mockSM{name: "cfg_missing"})
	cfg := &config.Config{
		Auth:    config.AuthConfig{Password: "secret://nope"},
		Secrets: config.SecretsConfig{Provider: "cfg_missing"},
	}
	err := ResolveConfig(context.Background(), cfg)
	assert.ErrorContains(t, err, "resolve auth.password")
}

func TestCachedSecretManager(t *testing.T) {
	m := &mockSM{name: "m", vals: map[string]string{"k": "v"}}
	c := NewCachedSecretManager(m, time.Minute)

	for range 3 {
		v, err := c.Get(context.Background(), "k")
		require.NoError(t, err)
		assert.Equal(t, "v", v)
	}
	assert.Equal(t, 1, m.calls)
}

func TestCachedSecretManagerExpiry(t *testing.T) {
	m := &mockSM{name: "m", vals: map[string]string{"k": "v"}}
	c := NewCachedSecretManager(m, 10*time.Millisecond)

	_, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 2, m.calls)
}

func TestCachedSecretManagerErrors(t *testing.T) {
	m := &mockSM{name: "m", err: errors.New("denied")}
	c := NewCachedSecretManager(m, 0)
	assert.Equal(t, DefaultCacheTTL, c.ttl)

	_, err := c.Get(context.Background(), "")
	assert.EqualError(t, err, "secret path cannot be empty")
	_, err = c.Get(context.Background(), "k")
	assert.EqualError(t, err, "denied")
	assert.EqualError(t, c.Health(context.Background()), "denied")
}

type fakeSecretsManager struct {
	value  *string
	binary []byte
	err    error
	gotID  string
}

func (f *fakeSecretsManager) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.gotID = *in.SecretId
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: f.value, SecretBinary: f.binary}, nil
}

func (f *fakeSecretsManager) ListSecrets(context.Context, *secretsmanager.ListSecretsInput, ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error) {
	return &secretsmanager.ListSecretsOutput{}, f.err
}

func TestAWSSecretManager(t *testing.T) {
	s := "admin"
	fake := &fakeSecretsManager{value: &s}
	a := &AWSSecretManager{client: fake}
	assert.Equal(t, "aws_secrets_manager", a.Name())

	v, err := a.Get(context.Background(), "catalogcheck/password")
	require.NoError(t, err)
	assert.Equal(t, "admin", v)
	assert.Equal(t, "catalogcheck/password", fake.gotID)
	require.NoError(t, a.Health(context.Background()))

	a.client = &fakeSecretsManager{binary: []byte("hi")}
	v, err = a.Get(context.Background(), "bin")
	require.NoError(t, err)
	assert.Equal(t, "aGk=", v)

	a.client = &fakeSecretsManager{}
	_, err = a.Get(context.Background(), "empty")
	assert.ErrorContains(t, err, "empty secret")
}

func TestVaultPickValue(t *testing.T) {
	name, key := splitKey("catalogcheck/catalog#password")
	assert.Equal(t, "catalogcheck/catalog", name)
	assert.Equal(t, "password", key)

	name, key = splitKey("catalogcheck/catalog")
	assert.Equal(t, "catalogcheck/catalog", name)
	assert.Empty(t, key)

	data := map[string]any{"username": "admin", "password": "p"}
	v, err := pickValue("c", "password", data)
	require.NoError(t, err)
	assert.Equal(t, "p", v)

	_, err = pickValue("c", "", data)
	assert.ErrorContains(t, err, "ambiguous secret with 2 keys")
	_, err = pickValue("c", "token", data)
	assert.ErrorContains(t, err, `no key "token"`)

	v, err = pickValue("c", "", map[string]any{"value": 42, "other": 1})
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	v, err = pickValue("c", "", map[string]any{"only": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

package secretmanager

import (
	"context"
	"fmt"
	"os"
	"strings"

	vaultapi "github.com/hashicorp/vault/api"
	"github.com/hashicorp/vault/api/auth/approle"

	"github.com/praxisllmlab/catalogcheck/internal/config"
)

// HashiCorpVault reads secrets from a KV v2 mount. The path selects the
// secret; a path of the form "name#key" selects one key of it.
type HashiCorpVault struct {
	client *vaultapi.Client
	mount  string
}

func init() {
	Register("hashicorp_vault", newHashiCorpVault)
}

func newHashiCorpVault(ctx context.Context, cfg config.SecretsConfig) (SecretManager, error) {
	vaultCfg := vaultapi.DefaultConfig()
	if cfg.VaultURL != "" {
		vaultCfg.Address = cfg.VaultURL
	}

	client, err := vaultapi.NewClient(vaultCfg)
	if err != nil {
		return nil, fmt.Errorf("vault client: %w", err)
	}

	// VAULT_TOKEN wins over approle.
	if token := os.Getenv("VAULT_TOKEN"); token != "" {
		client.SetToken(token)
	} else if cfg.RoleID != "" {
		auth, err := approle.NewAppRoleAuth(cfg.RoleID, &approle.SecretID{FromString: cfg.SecretID})
		if err != nil {
			return nil, fmt.Errorf("vault approle: %w", err)
		}
		if _, err := client.Auth().Login(ctx, auth); err != nil {
			return nil, fmt.Errorf("vault login: %w", err)
		}
	}

	mount := "secret"
	if cfg.Mount != "" {
		mount = cfg.Mount
	}
	return &HashiCorpVault{client: client, mount: mount}, nil
}

func (h *HashiCorpVault) Name() string { return "hashicorp_vault" }

func (h *HashiCorpVault) Get(ctx context.Context, path string) (string, error) {
	name, key := splitKey(path)
	secret, err := h.client.KVv2(h.mount).Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("vault get %q: %w", name, err)
	}
	return pickValue(name, key, secret.Data)
}

func (h *HashiCorpVault) Health(ctx context.Context) error {
	health, err := h.client.Sys().HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("vault health: %w", err)
	}
	if !health.Initialized {
		return fmt.Errorf("vault not initialized")
	}
	if health.Sealed {
		return fmt.Errorf("vault is sealed")
	}
	return nil
}

func splitKey(path string) (name, key string) {
	if i := strings.LastIndex(path, "#"); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}

// pickValue returns data[key], else the "value" key, else the only key.
func pickValue(name, key string, data map[string]any) (string, error) {
	if key != "" {
		v, ok := data[key]
		if !ok {
			return "", fmt.Errorf("vault %q: no key %q", name, key)
		}
		return fmt.Sprint(v), nil
	}
	if v, ok := data["value"]; ok {
		return fmt.Sprint(v), nil
	}
	if len(data) == 1 {
		for _, v := range data {
			return fmt.Sprint(v), nil
		}
	}
	return "", fmt.Errorf("vault %q: ambiguous secret with %d keys, expected 'value' key", name, len(data))
}

// Package artifact stores files produced by a run, such as failure
// screenshots and reports, on local disk, S3 or Azure Blob Storage.
package artifact

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/praxisllmlab/catalogcheck/internal/config"
)

// Store persists one artifact and returns where it can be found.
type Store interface {
	Name() string
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg config.ArtifactsConfig) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocal(cfg.Dir), nil
	case "s3":
		return NewS3(ctx, cfg.Bucket, cfg.Prefix, cfg.Region)
	case "azblob":
		return NewAzureBlob(cfg.AccountURL, cfg.Container, cfg.Prefix)
	}
	return nil, fmt.Errorf("artifact: unknown backend %q", cfg.Backend)
}

// Key builds <run>/<scenario slug>/<name> for an artifact.
func Key(runID, scenario, name string) string {
	return runID + "/" + Slug(scenario) + "/" + name
}

// Slug lowercases s and collapses every run of non alphanumerics into "-".
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func join(prefix, key string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

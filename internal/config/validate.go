package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/praxisllmlab/catalogcheck/internal/logging"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and logs warnings for unrecognized keys.
// Unknown keys never fail loading.
func Validate(cfg *Config) error {
	for _, w := range Warnings(cfg) {
		logging.Component("config").Warn(w)
	}

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Warnings lists unrecognized top-level config fields, sorted.
func Warnings(cfg *Config) []string {
	if len(cfg.Overflow) == 0 {
		return nil
	}
	keys := make([]string, 0, len(cfg.Overflow))
	for k := range cfg.Overflow {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("unrecognized config field %q, ignored", k))
	}
	return out
}

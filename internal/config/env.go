package config

import (
	"os"
	"strings"
)

const envPrefix = "os.environ/"

// ResolveEnvVar resolves a value that may reference an environment variable
// using the "os.environ/VAR_NAME" syntax. Unset variables resolve to "".
func ResolveEnvVar(value string) string {
	envKey, ok := strings.CutPrefix(value, envPrefix)
	if !ok {
		return value
	}
	v, _ := os.LookupEnv(envKey)
	return v
}

// IsEnvRef reports whether value uses the os.environ/ syntax.
func IsEnvRef(value string) bool {
	return strings.HasPrefix(value, envPrefix)
}

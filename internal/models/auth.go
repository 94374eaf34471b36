package models

import (
	"fmt"
	"os"
	"strings"
)

// DefaultAPIKeyEnv is the environment variable read when no key is configured.
const DefaultAPIKeyEnv = "OPENCODE_ZEN_API_KEY"

// Auth describes where the gateway API key comes from.
type Auth struct {
	APIKey    string // literal key, or ${VAR} to read from the environment
	APIKeyEnv string // fallback environment variable
}

// ResolveAPIKey resolves the API key.
// Resolution order: direct api_key → api_key_env → OPENCODE_ZEN_API_KEY.
func ResolveAPIKey(auth Auth) (string, error) {
	if key := resolveValue(auth.APIKey); key != "" {
		return key, nil
	}

	envName := strings.TrimSpace(auth.APIKeyEnv)
	if envName == "" {
		envName = DefaultAPIKeyEnv
	}
	if key := strings.TrimSpace(os.Getenv(envName)); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%w: %s not set", ErrMissingCredentials, envName)
}

func resolveValue(v string) string {
	trimmed := strings.TrimSpace(v)
	if strings.HasPrefix(trimmed, "${") && strings.HasSuffix(trimmed, "}") {
		return strings.TrimSpace(os.Getenv(trimmed[2 : len(trimmed)-1]))
	}
	return trimmed
}

// Package secrets resolves upstream API keys from the environment at
// startup, the simplest provider shape for a single-process deployment:
// no vault/KMS round trip, just prefixed env vars.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// Secret carries a resolved value together with its key and the time it was
// resolved. String returns the raw value, so a Secret must not be logged.
type Secret struct {
	Key       string
	Value     []byte
	CreatedAt time.Time
}

// String returns the secret value as a string.
func (s *Secret) String() string {
	return string(s.Value)
}

// SecretNotFoundError reports a missing key, naming the requested key and
// the provider that was checked (not the prefixed env var name).
type SecretNotFoundError struct {
	Key      string
	Provider string
}

func (e *SecretNotFoundError) Error() string {
	return fmt.Sprintf("secret %q not found in provider %q", e.Key, e.Provider)
}

// EnvProvider resolves secrets from environment variables named
// "<PREFIX>_<KEY>" (upper-cased).
type EnvProvider struct {
	prefix string
}

// NewEnvProvider builds an EnvProvider that looks up keys under prefix.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix}
}

// GetSecret retrieves a secret from the environment, returning
// *SecretNotFoundError when the variable is unset or empty.
func (p *EnvProvider) GetSecret(ctx context.Context, key string) (*Secret, error) {
	envKey := p.buildEnvKey(key)
	value := os.Getenv(envKey)
	if value == "" {
		return nil, &SecretNotFoundError{Key: key, Provider: "environment"}
	}
	return &Secret{Key: key, Value: []byte(value), CreatedAt: time.Now()}, nil
}

func (p *EnvProvider) buildEnvKey(key string) string {
	if p.prefix == "" {
		return strings.ToUpper(key)
	}
	return fmt.Sprintf("%s_%s", strings.ToUpper(p.prefix), strings.ToUpper(key))
}

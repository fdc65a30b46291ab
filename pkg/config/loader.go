package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/AltairaLabs/playht-go/credentials"
)

// EnvBaseURL overrides the API base URL.
const EnvBaseURL = "PLAYHT_BASE_URL"

// Load reads a ClientConfig manifest. A relative credentialFile is resolved
// against the manifest's directory.
func Load(filename string) (*Config, error) {
	//nolint:gosec // G304: the path is supplied by the operator
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var manifest ClientConfigManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if manifest.APIVersion != APIVersion {
		return nil, &ValidationError{Field: "apiVersion", Message: "must be " + APIVersion, Value: manifest.APIVersion}
	}
	if manifest.Kind != KindClient {
		return nil, &ValidationError{Field: "kind", Message: "must be " + KindClient, Value: manifest.Kind}
	}

	cfg := &manifest.Spec
	cfg.ConfigDir = filepath.Dir(filename)
	return cfg, nil
}

// FromEnv reads PLAYHT_SECRET_KEY, PLAYHT_USER_ID and PLAYHT_BASE_URL.
// Unset variables leave their fields empty.
func FromEnv() *Config {
	return &Config{
		BaseURL:   os.Getenv(EnvBaseURL),
		SecretKey: os.Getenv(credentials.EnvSecretKey),
		UserID:    os.Getenv(credentials.EnvUserID),
	}
}

// Merge returns a copy of c with every non-zero field of override applied.
// Nested blocks are replaced whole, not merged.
func (c *Config) Merge(override *Config) *Config {
	merged := *c
	if override == nil {
		return &merged
	}

	setString(&merged.BaseURL, override.BaseURL)
	setString(&merged.SecretKey, override.SecretKey)
	setString(&merged.UserID, override.UserID)
	setString(&merged.CredentialFile, override.CredentialFile)
	setString(&merged.UserAgent, override.UserAgent)
	setString(&merged.ConfigDir, override.ConfigDir)

	if override.Timeout != 0 {
		merged.Timeout = override.Timeout
	}
	if override.ChunkSize != 0 {
		merged.ChunkSize = override.ChunkSize
	}
	if override.MaxConcurrentRequests != 0 {
		merged.MaxConcurrentRequests = override.MaxConcurrentRequests
	}
	if override.RateLimit != nil {
		merged.RateLimit = override.RateLimit
	}
	if override.Logging != nil {
		merged.Logging = override.Logging
	}
	if override.Telemetry != nil {
		merged.Telemetry = override.Telemetry
	}
	if override.Metrics != nil {
		merged.Metrics = override.Metrics
	}
	return &merged
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

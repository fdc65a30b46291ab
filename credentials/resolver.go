package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	pkgerrors "github.com/AltairaLabs/playht-go/pkg/errors"
)

// Default environment variables holding the play.ht credentials.
const (
	EnvSecretKey = "PLAYHT_SECRET_KEY"
	EnvUserID    = "PLAYHT_USER_ID"
)

const resolveOperation = "ResolveCredentials"

// ResolverConfig holds the inputs for credential resolution.
type ResolverConfig struct {
	// SecretKey and UserID are explicit values. They win over every other source.
	SecretKey string
	UserID    string

	// CredentialFile is a YAML file with secret_key and user_id entries.
	CredentialFile string

	// SecretKeyEnv and UserIDEnv name custom environment variables.
	// Defaults are PLAYHT_SECRET_KEY and PLAYHT_USER_ID.
	SecretKeyEnv string
	UserIDEnv    string

	// ConfigDir is the base directory for relative credential file paths.
	ConfigDir string
}

// credentialFile is the on-disk shape of a credential file.
type credentialFile struct {
	SecretKey string `yaml:"secret_key"`
	UserID    string `yaml:"user_id"`
}

// Resolve resolves the key pair according to the chain:
// 1. explicit SecretKey / UserID
// 2. CredentialFile
// 3. SecretKeyEnv / UserIDEnv (or the PLAYHT_* defaults)
//
// Each half of the pair is resolved independently, so an explicit user id
// can be combined with a secret key from the environment. A missing half is
// a KindConfiguration error.
func Resolve(cfg ResolverConfig) (*KeyPairCredential, error) {
	secretKey, userID := cfg.SecretKey, cfg.UserID

	if cfg.CredentialFile != "" && (secretKey == "" || userID == "") {
		fromFile, err := readCredentialFile(cfg.CredentialFile, cfg.ConfigDir)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.KindConfiguration, resolveOperation,
				fmt.Errorf("failed to read credential file: %w", err))
		}
		if secretKey == "" {
			secretKey = fromFile.SecretKey
		}
		if userID == "" {
			userID = fromFile.UserID
		}
	}

	if secretKey == "" {
		secretKey = os.Getenv(envOrDefault(cfg.SecretKeyEnv, EnvSecretKey))
	}
	if userID == "" {
		userID = os.Getenv(envOrDefault(cfg.UserIDEnv, EnvUserID))
	}

	var missing []string
	if secretKey == "" {
		missing = append(missing, "secret key ("+envOrDefault(cfg.SecretKeyEnv, EnvSecretKey)+")")
	}
	if userID == "" {
		missing = append(missing, "user id ("+envOrDefault(cfg.UserIDEnv, EnvUserID)+")")
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.KindConfiguration, resolveOperation,
			fmt.Errorf("missing %s", strings.Join(missing, " and ")))
	}

	return NewKeyPairCredential(secretKey, userID), nil
}

func envOrDefault(name, def string) string {
	if name != "" {
		return name
	}
	return def
}

// readCredentialFile reads the key pair from a YAML file.
func readCredentialFile(path, configDir string) (*credentialFile, error) {
	if !filepath.IsAbs(path) && configDir != "" {
		path = filepath.Join(configDir, path)
	}

	//nolint:gosec // G304: File path is from trusted configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cf credentialFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	cf.SecretKey = strings.TrimSpace(cf.SecretKey)
	cf.UserID = strings.TrimSpace(cf.UserID)
	return &cf, nil
}

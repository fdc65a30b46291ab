package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/AltairaLabs/playht-go/credentials"
	pkgerrors "github.com/AltairaLabs/playht-go/pkg/errors"
)

const validateOperation = "ValidateConfig"

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
	Value   string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return "config validation error: " + e.Field + ": " + e.Message + " (got: " + e.Value + ")"
	}
	return "config validation error: " + e.Field + ": " + e.Message
}

// Validate checks the configuration and that a complete key pair can be
// resolved from it, the credential file, or the environment. Every failure
// is a KindConfiguration error; all field problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.BaseURL != "" {
		if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, &ValidationError{Field: "baseURL", Message: "must be an absolute URL", Value: c.BaseURL})
		}
	}
	if c.Timeout < 0 {
		errs = append(errs, &ValidationError{Field: "timeout", Message: "must not be negative", Value: c.Timeout.String()})
	}
	if c.ChunkSize < 0 {
		errs = append(errs, &ValidationError{Field: "chunkSize", Message: "must not be negative", Value: fmt.Sprint(c.ChunkSize)})
	}
	if c.MaxConcurrentRequests < 0 {
		errs = append(errs, &ValidationError{
			Field:   "maxConcurrentRequests",
			Message: "must not be negative",
			Value:   fmt.Sprint(c.MaxConcurrentRequests),
		})
	}
	if rl := c.RateLimit; rl != nil && (rl.RequestsPerSecond <= 0 || rl.Burst < 0) {
		errs = append(errs, &ValidationError{
			Field:   "rateLimit",
			Message: "requestsPerSecond must be positive and burst must not be negative",
			Value:   fmt.Sprintf("%g/%d", rl.RequestsPerSecond, rl.Burst),
		})
	}
	if t := c.Telemetry; t != nil && (t.SampleRatio < 0 || t.SampleRatio > 1) {
		errs = append(errs, &ValidationError{
			Field:   "telemetry.sampleRatio",
			Message: "must be between 0 and 1",
			Value:   fmt.Sprint(t.SampleRatio),
		})
	}
	if c.Logging != nil {
		if err := c.Logging.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := credentials.Resolve(c.ResolverConfig()); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return pkgerrors.New(pkgerrors.KindConfiguration, validateOperation, errors.Join(errs...))
	}
	return nil
}

// ResolverConfig returns the credential resolution inputs held by c.
func (c *Config) ResolverConfig() credentials.ResolverConfig {
	return credentials.ResolverConfig{
		SecretKey:      c.SecretKey,
		UserID:         c.UserID,
		CredentialFile: c.CredentialFile,
		ConfigDir:      c.ConfigDir,
	}
}

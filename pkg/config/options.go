package config

import (
	"path/filepath"

	"github.com/AltairaLabs/playht-go/api"
	"github.com/AltairaLabs/playht-go/pkg/httputil"
)

// ClientOptions converts c into api client options. Zero fields produce no
// option, so the client defaults apply. Options passed as extra are appended
// last and win.
func (c *Config) ClientOptions(extra ...api.Option) []api.Option {
	var opts []api.Option

	if c.BaseURL != "" {
		opts = append(opts, api.WithBaseURL(c.BaseURL))
	}
	if c.SecretKey != "" || c.UserID != "" {
		opts = append(opts, api.WithCredentials(c.SecretKey, c.UserID))
	}
	if c.CredentialFile != "" {
		opts = append(opts, api.WithCredentialFile(c.credentialPath()))
	}
	if c.UserAgent != "" {
		opts = append(opts, api.WithUserAgent(c.UserAgent))
	}
	if c.Timeout > 0 {
		opts = append(opts, api.WithHTTPClient(httputil.NewInstrumentedClient(c.Timeout, nil)))
	}
	if c.ChunkSize > 0 {
		opts = append(opts, api.WithChunkSize(c.ChunkSize))
	}
	if c.RateLimit != nil && c.RateLimit.RequestsPerSecond > 0 {
		opts = append(opts, api.WithRateLimit(c.RateLimit.RequestsPerSecond, c.RateLimit.Burst))
	}
	if c.MaxConcurrentRequests > 0 {
		opts = append(opts, api.WithMaxConcurrentRequests(c.MaxConcurrentRequests))
	}

	return append(opts, extra...)
}

func (c *Config) credentialPath() string {
	if filepath.IsAbs(c.CredentialFile) || c.ConfigDir == "" {
		return c.CredentialFile
	}
	return filepath.Join(c.ConfigDir, c.CredentialFile)
}

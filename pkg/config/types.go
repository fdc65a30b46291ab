// Package config loads play.ht client configuration from YAML manifests and
// the environment, and turns it into api client options.
package config

import "time"

// Manifest identifiers.
const (
	APIVersion = "playht.altairalabs.ai/v1alpha1"
	KindClient = "ClientConfig"
)

// ObjectMeta is a simplified K8s-style metadata block.
type ObjectMeta struct {
	Name        string            `yaml:"name,omitempty"`
	Labels      map[string]string `yaml:"labels,omitempty"`
	Annotations map[string]string `yaml:"annotations,omitempty"`
}

// ClientConfigManifest is the on-disk form of a client configuration.
//
//	apiVersion: playht.altairalabs.ai/v1alpha1
//	kind: ClientConfig
//	metadata:
//	  name: default
//	spec:
//	  credentialFile: playht-credentials.yaml
//	  rateLimit:
//	    requestsPerSecond: 2
//	    burst: 4
type ClientConfigManifest struct {
	APIVersion string     `yaml:"apiVersion"`
	Kind       string     `yaml:"kind"`
	Metadata   ObjectMeta `yaml:"metadata,omitempty"`
	Spec       Config     `yaml:"spec"`
}

// Config holds everything needed to build a client and its surroundings.
// Zero values mean "use the client default".
type Config struct {
	// BaseURL overrides https://api.play.ht/api/v2.
	BaseURL string `yaml:"baseURL,omitempty"`

	// SecretKey and UserID are the API key pair. Prefer CredentialFile or
	// the environment over committing them to a config file.
	SecretKey      string `yaml:"secretKey,omitempty"`
	UserID         string `yaml:"userID,omitempty"`
	CredentialFile string `yaml:"credentialFile,omitempty"`

	UserAgent string `yaml:"userAgent,omitempty"`

	// Timeout bounds each whole HTTP exchange, body included. Zero means none.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// ChunkSize is the read buffer size for streamed responses.
	ChunkSize int `yaml:"chunkSize,omitempty"`

	RateLimit             *RateLimitConfig `yaml:"rateLimit,omitempty"`
	MaxConcurrentRequests int              `yaml:"maxConcurrentRequests,omitempty"`

	Logging   *LoggingConfigSpec `yaml:"logging,omitempty"`
	Telemetry *TelemetryConfig   `yaml:"telemetry,omitempty"`
	Metrics   *MetricsConfig     `yaml:"metrics,omitempty"`

	// ConfigDir resolves a relative CredentialFile. Set by Load.
	ConfigDir string `yaml:"-"`
}

// RateLimitConfig paces outgoing requests on the client side.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst,omitempty"`
}

// TelemetryConfig enables OTLP/HTTP trace export.
type TelemetryConfig struct {
	// OTLPEndpoint is the collector traces URL, e.g. http://localhost:4318/v1/traces,
	// or a bare host:port reached over plain HTTP.
	OTLPEndpoint string `yaml:"otlpEndpoint,omitempty"`
	ServiceName  string `yaml:"serviceName,omitempty"`
	// SampleRatio is the fraction of traces kept, 0 meaning all.
	SampleRatio float64           `yaml:"sampleRatio,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`
}

// MetricsConfig enables the Prometheus exporter.
type MetricsConfig struct {
	ListenAddr string `yaml:"listenAddr,omitempty"`
}

// Command playht is a command-line client for the play.ht text-to-speech API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/AltairaLabs/playht-go/api"
	"github.com/AltairaLabs/playht-go/logger"
	"github.com/AltairaLabs/playht-go/metrics/prometheus"
	"github.com/AltairaLabs/playht-go/pkg/config"
	"github.com/AltairaLabs/playht-go/telemetry"
	"github.com/AltairaLabs/playht-go/version"
)

// Viper keys.
const (
	keyConfig       = "config"
	keyEnvFile      = "env_file"
	keyBaseURL      = "base_url"
	keySecretKey    = "secret_key"
	keyUserID       = "user_id"
	keyTimeout      = "timeout"
	keyOTLPEndpoint = "otlp_endpoint"
	keyServiceName  = "service_name"
	keyMetricsAddr  = "metrics_addr"
	keyVerbose      = "verbose"

	defaultServiceName = "playht-cli"
	shutdownTimeout    = 5 * time.Second
)

// app carries state shared by every subcommand for one invocation.
type app struct {
	v   *viper.Viper
	cfg *config.Config

	tracerProvider *sdktrace.TracerProvider
	observer       api.Observer
	exporter       *prometheus.Exporter
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:               "playht",
		Short:             "Command-line client for the play.ht text-to-speech API",
		Version:           version.GetVersion(),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
		Long: `playht lists and clones voices, submits text-to-speech jobs, follows their
progress and streams generated audio to a file or stdout.

Credentials come from --secret-key/--user-id, a config file, a .env file or
the PLAYHT_SECRET_KEY and PLAYHT_USER_ID environment variables.`,
	}
	root.SetVersionTemplate(version.GetVersionInfo() + "\n")

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "ClientConfig manifest (YAML)")
	flags.String("env-file", ".env", "Dotenv file loaded before reading the environment")
	flags.String("base-url", "", "API base URL (default "+api.DefaultBaseURL+")")
	flags.String("secret-key", "", "API secret key")
	flags.String("user-id", "", "API user id")
	flags.Duration("timeout", 0, "Timeout for each HTTP exchange, 0 for none")
	flags.String("otlp-endpoint", "", "Export traces to this OTLP/HTTP endpoint")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address while running")
	flags.BoolP("verbose", "v", false, "Enable debug logging of API calls")

	bindings := map[string]string{
		keyConfig:       "config",
		keyEnvFile:      "env-file",
		keyBaseURL:      "base-url",
		keySecretKey:    "secret-key",
		keyUserID:       "user-id",
		keyTimeout:      "timeout",
		keyOTLPEndpoint: "otlp-endpoint",
		keyMetricsAddr:  "metrics-addr",
		keyVerbose:      "verbose",
	}
	for key, flag := range bindings {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}
	a.v.SetEnvPrefix("PLAYHT")
	_ = a.v.BindEnv(keyConfig, "PLAYHT_CONFIG")
	_ = a.v.BindEnv(keyOTLPEndpoint, "PLAYHT_OTLP_ENDPOINT")
	_ = a.v.BindEnv(keyServiceName, "PLAYHT_SERVICE_NAME")
	_ = a.v.BindEnv(keyMetricsAddr, "PLAYHT_METRICS_ADDR")

	root.AddCommand(
		newVoicesCmd(a),
		newClonedVoicesCmd(a),
		newCloneCmd(a),
		newDeleteCloneCmd(a),
		newJobCmd(a),
		newStreamCmd(a),
		newStreamURLCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and starts the optional telemetry and metrics
// exporters. It runs before every subcommand.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := loadEnvFile(a.v.GetString(keyEnvFile)); err != nil {
		return err
	}

	cfg := &config.Config{}
	if path := a.v.GetString(keyConfig); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg = cfg.Merge(config.FromEnv()).Merge(&config.Config{
		BaseURL:   a.v.GetString(keyBaseURL),
		SecretKey: a.v.GetString(keySecretKey),
		UserID:    a.v.GetString(keyUserID),
		Timeout:   a.v.GetDuration(keyTimeout),
	})
	a.cfg = cfg

	if cfg.Logging != nil {
		if err := cfg.Logging.Validate(); err != nil {
			return err
		}
		cfg.Logging.Apply()
	}
	if a.v.GetBool(keyVerbose) {
		logger.SetVerbose(true)
	}
	logger.Debug("playht starting", version.GetBuildInfo()...)

	if err := a.startTelemetry(cmd.Context()); err != nil {
		return err
	}
	return a.startMetrics()
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func (a *app) startTelemetry(ctx context.Context) error {
	endpoint := a.v.GetString(keyOTLPEndpoint)
	serviceName := a.v.GetString(keyServiceName)
	var opts []telemetry.ProviderOption
	if t := a.cfg.Telemetry; t != nil {
		if endpoint == "" {
			endpoint = t.OTLPEndpoint
		}
		if serviceName == "" {
			serviceName = t.ServiceName
		}
		if t.SampleRatio > 0 {
			opts = append(opts, telemetry.WithSampleRatio(t.SampleRatio))
		}
		if len(t.Headers) > 0 {
			opts = append(opts, telemetry.WithHeaders(t.Headers))
		}
	}
	if endpoint == "" {
		return nil
	}
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	tp, err := telemetry.NewTracerProvider(ctx, endpoint, serviceName, opts...)
	if err != nil {
		return fmt.Errorf("failed to start tracing: %w", err)
	}
	telemetry.SetupPropagation()
	a.tracerProvider = tp
	logger.Debug("tracing enabled", "endpoint", endpoint, "service", serviceName)
	return nil
}

func (a *app) startMetrics() error {
	addr := a.v.GetString(keyMetricsAddr)
	if addr == "" && a.cfg.Metrics != nil {
		addr = a.cfg.Metrics.ListenAddr
	}
	if addr == "" {
		return nil
	}

	exp := prometheus.NewExporter(addr)
	if err := exp.Start(); err != nil {
		return fmt.Errorf("failed to start metrics exporter: %w", err)
	}
	a.exporter = exp
	a.observer = prometheus.NewObserver()
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	var errs []error
	if a.tracerProvider != nil {
		errs = append(errs, a.tracerProvider.Shutdown(ctx))
		a.tracerProvider = nil
	}
	if a.exporter != nil {
		errs = append(errs, a.exporter.Shutdown(ctx))
		a.exporter = nil
	}
	return errors.Join(errs...)
}

// client builds an API client from the resolved configuration.
func (a *app) client() (*api.Client, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	var extra []api.Option
	if a.tracerProvider != nil {
		extra = append(extra, api.WithTracerProvider(a.tracerProvider))
	}
	if a.observer != nil {
		extra = append(extra, api.WithObserver(a.observer))
	}
	return api.NewClient(a.cfg.ClientOptions(extra...)...)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Error already printed by cobra
		os.Exit(1)
	}
}

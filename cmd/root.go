package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/graphcal/internal/calendar"
	"github.com/teemow/graphcal/internal/config"
	"github.com/teemow/graphcal/internal/instrumentation"
	"github.com/teemow/graphcal/internal/logging"
)

// version will be set by main
var version = "dev"

// SetVersion sets the version reported by the CLI
func SetVersion(v string) {
	version = v
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configPath      string
	envFile         string
	tenantID        string
	clientID        string
	clientSecret    string
	userID          string
	graphURL        string
	tokenURL        string
	logLevel        string
	logFormat       string
	metricsTextfile string
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "graphcal",
		Short: "Manage Microsoft 365 calendar events through Microsoft Graph",
		Long: `graphcal creates, updates and deletes events in a Microsoft 365 user's
calendar. It authenticates as an Azure AD application using the OAuth 2.0
client credentials flow, so the application needs the Calendars.ReadWrite
application permission.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(`{{printf "graphcal version %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a TOML config file. Can also use GRAPHCAL_CONFIG env var.")
	flags.StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "Environment file loaded before reading GRAPH_* variables (ignored if missing)")
	flags.StringVar(&opts.tenantID, "tenant-id", "", "Azure AD tenant id. Can also use "+config.EnvTenantID+" env var.")
	flags.StringVar(&opts.clientID, "client-id", "", "Application (client) id. Can also use "+config.EnvClientID+" env var.")
	flags.StringVar(&opts.clientSecret, "client-secret", "", "Client secret. Prefer the "+config.EnvClientSecret+" env var.")
	flags.StringVar(&opts.userID, "user", "", "Id or user principal name of the calendar owner. Can also use "+config.EnvUserID+" env var.")
	flags.StringVar(&opts.graphURL, "graph-url", "", "Graph service root. Can also use "+config.EnvBaseURL+" env var.")
	flags.StringVar(&opts.tokenURL, "token-url", "", "Override the OAuth token endpoint. Can also use "+config.EnvTokenURL+" env var.")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error. Can also use "+config.EnvLogLevel+" env var.")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format: text or json. Can also use "+config.EnvLogFormat+" env var.")
	flags.StringVar(&opts.metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file on exit (node_exporter textfile format)")

	rootCmd.AddCommand(newCreateCmd(opts))
	rootCmd.AddCommand(newUpdateCmd(opts))
	rootCmd.AddCommand(newDeleteCmd(opts))
	rootCmd.AddCommand(newDemoCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute is the main entry point for the CLI application
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", describeError(err))
		cancel()
		os.Exit(1)
	}
}

// describeError turns calendar errors into messages for the terminal.
func describeError(err error) string {
	var notFound *calendar.NotFoundError
	var invalidState *calendar.InvalidStateError

	switch {
	case errors.As(err, &notFound):
		return fmt.Sprintf("the user or event does not exist (%d %s)", notFound.StatusCode, notFound.Reason)
	case errors.As(err, &invalidState):
		return "the calendar service returned an incomplete response: " + invalidState.Message
	case errors.Is(err, calendar.ErrInvalidInput):
		return "the event was rejected before sending: " + err.Error()
	default:
		return err.Error()
	}
}

// app carries what a command needs once configuration is resolved.
type app struct {
	cfg             *config.Config
	logger          *slog.Logger
	provider        *instrumentation.Provider
	audit           *instrumentation.AuditLogger
	metricsTextfile string
	out             io.Writer
}

// newApp resolves configuration and sets up logging and instrumentation.
// The caller must call close.
func newApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	configPath := opts.configPath
	if configPath == "" {
		configPath = os.Getenv("GRAPHCAL_CONFIG")
	}

	cfg, err := config.Load(configPath, opts.envFile)
	if err != nil {
		return nil, err
	}
	opts.applyTo(cmd, cfg)

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if opts.metricsTextfile != "" {
		instrConfig.Enabled = true
		instrConfig.MetricsExporter = instrumentation.ExporterPrometheus
	}
	if err := instrConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid instrumentation config: %w", err)
	}

	provider, err := instrumentation.NewProvider(cmd.Context(), instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	return &app{
		cfg:             cfg,
		logger:          logger,
		provider:        provider,
		audit:           instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging),
		metricsTextfile: opts.metricsTextfile,
		out:             cmd.OutOrStdout(),
	}, nil
}

// applyTo overrides cfg with every flag set on the command line.
func (o *globalOptions) applyTo(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	for name, pair := range map[string]struct{ from, to *string }{
		"tenant-id":     {&o.tenantID, &cfg.TenantID},
		"client-id":     {&o.clientID, &cfg.ClientID},
		"client-secret": {&o.clientSecret, &cfg.ClientSecret},
		"user":          {&o.userID, &cfg.UserID},
		"graph-url":     {&o.graphURL, &cfg.GraphBaseURL},
		"token-url":     {&o.tokenURL, &cfg.TokenURL},
		"log-level":     {&o.logLevel, &cfg.LogLevel},
		"log-format":    {&o.logFormat, &cfg.LogFormat},
	} {
		if flags.Changed(name) {
			*pair.to = *pair.from
		}
	}
}

// client returns a calendar client for the resolved configuration.
func (a *app) client() (*calendar.Client, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	creds := a.cfg.Credentials()
	a.logger.Debug("using graph application",
		slog.String("client_id", creds.ClientID),
		slog.String("client_secret", logging.SanitizeToken(creds.ClientSecret)),
		logging.UserHash(a.cfg.UserID))

	return calendar.NewClient(creds.TenantID, creds.ClientID, creds.ClientSecret,
		calendar.WithTokenURL(creds.TokenURL),
		calendar.WithGraphBaseURL(a.cfg.GraphBaseURL),
		calendar.WithLogger(a.logger),
		calendar.WithMetrics(a.provider.Metrics()),
		calendar.WithAuditLogger(a.audit),
	), nil
}

// close writes the metrics textfile, if requested, and flushes telemetry.
func (a *app) close(ctx context.Context) {
	if a.metricsTextfile != "" {
		if err := a.provider.WriteTextfile(a.metricsTextfile); err != nil {
			a.logger.Warn("failed to write metrics textfile", logging.Err(err))
		}
	}
	if err := a.provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
		a.logger.Warn("error during instrumentation shutdown", logging.Err(err))
	}
}

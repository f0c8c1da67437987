package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/abdul-hamid-achik/callsy/packages/core/config"
	"github.com/abdul-hamid-achik/callsy/packages/core/document"
	"github.com/abdul-hamid-achik/callsy/packages/core/env"
	"github.com/abdul-hamid-achik/callsy/packages/core/runner"
	"github.com/abdul-hamid-achik/callsy/packages/history"
	"github.com/abdul-hamid-achik/callsy/packages/http"
	"github.com/abdul-hamid-achik/callsy/packages/output"
	"github.com/abdul-hamid-achik/callsy/packages/persist"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type runOptions struct {
	requestFile    string
	outputFile     string
	bodyOutputFile string
	configFile     string
	envFile        string
	assumeYes      bool
	dryRun         bool
	timeout        string
	proxy          string
	insecure       bool
	userAgent      string
	noColor        bool
	verbose        bool
	historyDB      string
}

func registerFlags(cmd *cobra.Command, o *runOptions) {
	flags := cmd.Flags()
	flags.SetNormalizeFunc(hyphenAliases)

	// Files
	flags.StringVarP(&o.requestFile, "request_file", "r", getEnvString("CALLSY_REQUEST_FILE", document.DefaultRequestFile), "Request document to read (env: CALLSY_REQUEST_FILE)")
	flags.StringVarP(&o.outputFile, "output_file", "o", getEnvString("CALLSY_OUTPUT_FILE", output.DefaultOutputFile), "Output document to write (env: CALLSY_OUTPUT_FILE)")
	flags.StringVarP(&o.bodyOutputFile, "body_output_file", "b", getEnvString("CALLSY_BODY_OUTPUT_FILE", ""), "Also write the resolved request body to this file (env: CALLSY_BODY_OUTPUT_FILE)")
	flags.StringVar(&o.configFile, "config", getEnvString("CALLSY_CONFIG", ""), "Path to config file (env: CALLSY_CONFIG)")
	flags.StringVar(&o.envFile, "env-file", getEnvString("CALLSY_ENV_FILE", ""), "Load variables for ${VAR} expansion in config values from a .env file (env: CALLSY_ENV_FILE)")

	// Execution flags
	flags.BoolVarP(&o.assumeYes, "yes", "y", getEnvBool("CALLSY_YES", false), "Overwrite existing output files without asking (env: CALLSY_YES)")
	flags.BoolVar(&o.dryRun, "dry-run", false, "Validate and print the request without sending it")
	flags.StringVar(&o.historyDB, "history-db", getEnvString("CALLSY_HISTORY_DB", ""), "Record executed requests in this SQLite database (env: CALLSY_HISTORY_DB)")

	// Network flags
	flags.StringVar(&o.timeout, "timeout", getEnvString("CALLSY_TIMEOUT", ""), "Request timeout, e.g. 30s; no limit when empty (env: CALLSY_TIMEOUT)")
	flags.StringVar(&o.proxy, "proxy", getEnvString("CALLSY_PROXY", ""), "Proxy URL for the request (env: CALLSY_PROXY)")
	flags.BoolVarP(&o.insecure, "insecure", "k", getEnvBool("CALLSY_INSECURE", false), "Disable SSL certificate validation (env: CALLSY_INSECURE)")
	flags.StringVar(&o.userAgent, "user-agent", getEnvString("CALLSY_USER_AGENT", ""), "User-Agent sent when the document sets none (env: CALLSY_USER_AGENT)")

	// Output flags
	flags.BoolVar(&o.noColor, "no-color", getEnvBool("CALLSY_NO_COLOR", false), "Disable colored output (env: CALLSY_NO_COLOR)")
	flags.BoolVarP(&o.verbose, "verbose", "v", getEnvBool("CALLSY_VERBOSE", false), "Print the request, the response summary and debug logs")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

// resolveConfig layers flag values over the config file.
func resolveConfig(o *runOptions) (*config.Config, error) {
	fileCfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return nil, err
	}

	flagCfg := &config.Config{
		Timeout:   o.timeout,
		Proxy:     o.proxy,
		UserAgent: o.userAgent,
		HistoryDB: o.historyDB,
	}
	if o.insecure {
		flagCfg.ValidateSSL = config.BoolPtr(false)
	}
	if o.noColor {
		flagCfg.NoColor = config.BoolPtr(true)
	}
	if o.assumeYes {
		flagCfg.AssumeYes = config.BoolPtr(true)
	}

	var vars map[string]string
	if o.envFile != "" {
		vars, err = env.LoadDotEnv(o.envFile)
		if err != nil {
			return nil, err
		}
	}

	cfg := fileCfg.Merge(flagCfg).ExpandEnv(vars)
	if _, err := cfg.GetTimeout(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runCommand(cmd *cobra.Command, o *runOptions) error {
	cfg, err := resolveConfig(o)
	if err != nil {
		return &configError{err: err}
	}

	stdout := cmd.OutOrStdout()
	logger := newLogger(cmd.ErrOrStderr(), o.verbose)
	if !cfg.IsDefault() {
		logger.Debug("using configuration", "timeout", cfg.Timeout, "proxy", cfg.Proxy, "validate_ssl", cfg.GetValidateSSL(), "history_db", cfg.HistoryDB)
	}

	formatter := output.NewConsoleFormatter(
		output.WithWriter(stdout),
		output.WithVerbose(o.verbose),
		output.WithNoColor(cfg.GetNoColor() || !isTerminal(stdout)),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timeout, _ := cfg.GetTimeout()
	client := http.NewClient(
		http.WithTimeout(timeout),
		http.WithProxy(cfg.Proxy),
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithUserAgent(cfg.UserAgent),
		http.WithLogger(logger),
	)

	confirmer := persist.NewConfirmer(
		persist.NewReaderSource(cmd.InOrStdin()),
		persist.WithPromptWriter(stdout),
		persist.WithAssumeYes(cfg.GetAssumeYes()),
	)

	runnerOpts := []runner.Option{runner.WithLogger(logger)}
	if cfg.HistoryDB != "" && !o.dryRun {
		store, err := openHistory(ctx, cfg.HistoryDB)
		if err != nil {
			logger.Warn("history disabled", "error", err)
		} else {
			defer store.Close()
			runnerOpts = append(runnerOpts, runner.WithRecorder(store))
		}
	}

	result, err := runner.NewRunner(client, confirmer, runnerOpts...).Run(ctx, runner.Options{
		RequestFile:    o.requestFile,
		OutputFile:     o.outputFile,
		BodyOutputFile: o.bodyOutputFile,
		DryRun:         o.dryRun,
	})
	if err != nil {
		return err
	}

	if o.dryRun || o.verbose {
		formatter.FormatRequest(result.Request)
	}
	if o.verbose && result.Document != nil {
		formatter.FormatResponse(result.Document, result.Response.Duration, result.Written)
	}
	return nil
}

func openHistory(ctx context.Context, path string) (*history.Store, error) {
	path = strings.TrimPrefix(path, "sqlite://")
	return history.Open(ctx, path)
}

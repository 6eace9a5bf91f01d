// Package main provides the CLI entrypoint for lmsdash.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/lmsdash/internal/api"
	"github.com/verte-zerg/lmsdash/internal/config"
	"github.com/verte-zerg/lmsdash/internal/dashboard"
	"github.com/verte-zerg/lmsdash/internal/logging"
	"github.com/verte-zerg/lmsdash/internal/model"
	"github.com/verte-zerg/lmsdash/internal/stats"
	"github.com/verte-zerg/lmsdash/internal/ui"
	"github.com/verte-zerg/lmsdash/internal/views"
)

const (
	defaultURL             = "http://127.0.0.1:5000"
	defaultTimeout         = 10 * time.Second
	defaultRefreshInterval = 60 * time.Second
	defaultRawLimit        = dashboard.DefaultRawLimit
	defaultLogLevel        = "info"
)

var (
	backendURL           string
	timeout              time.Duration
	refreshInterval      time.Duration
	rawLimit             int
	dropStale            bool
	reloadRespectsFilter bool
	logLevel             string
	logFile              string
	metricsAddr          string

	snapshotCourse string
	snapshotWidth  int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lmsdash",
		Short:         "Terminal dashboard for LMS course analytics",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runDashboardCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&backendURL, "url", defaultURL, "analytics backend base URL")
	flags.DurationVar(&timeout, "timeout", defaultTimeout, "per-request timeout")
	flags.DurationVar(&refreshInterval, "refresh-interval", defaultRefreshInterval, "auto-reload interval")
	flags.IntVar(&rawLimit, "raw-limit", defaultRawLimit, "raw records shown")
	flags.BoolVar(&dropStale, "drop-stale", true, "discard results for a course that is no longer selected")
	flags.BoolVar(&reloadRespectsFilter, "reload-respects-filter", false, "auto-reload keeps the selected course instead of resetting to all")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (trace, debug, info, warn, error)")
	flags.StringVar(&logFile, "log-file", "", "log file for the TUI (default: $XDG_STATE_HOME/lmsdash/lmsdash.log)")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on host:port")

	rootCmd.AddCommand(newSnapshotCmd())
	rootCmd.AddCommand(newCoursesCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// resolveConfig merges the config file under the flags and validates it.
func resolveConfig(cmd *cobra.Command, path string) (model.Config, error) {
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "url", &backendURL, fileCfg.Backend.URL)
	applyDurationConfig(cmd, "timeout", &timeout, fileCfg.Backend.Timeout)
	applyDurationConfig(cmd, "refresh-interval", &refreshInterval, fileCfg.Dashboard.RefreshInterval)
	applyIntConfig(cmd, "raw-limit", &rawLimit, fileCfg.Dashboard.RawLimit)
	applyBoolConfig(cmd, "drop-stale", &dropStale, fileCfg.Dashboard.DropStale)
	applyBoolConfig(cmd, "reload-respects-filter", &reloadRespectsFilter, fileCfg.Dashboard.ReloadRespectsFilter)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	applyStringConfig(cmd, "metrics-addr", &metricsAddr, fileCfg.Metrics.Addr)

	cfg := model.Config{
		BaseURL:              strings.TrimSpace(backendURL),
		Timeout:              timeout,
		RefreshInterval:      refreshInterval,
		RawLimit:             rawLimit,
		DropStale:            dropStale,
		ReloadRespectsFilter: reloadRespectsFilter,
		LogLevel:             strings.ToLower(strings.TrimSpace(logLevel)),
		LogFile:              logFile,
		MetricsAddr:          strings.TrimSpace(metricsAddr),
	}
	if err := config.Validate(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func dashboardOptions(cfg model.Config) dashboard.Options {
	return dashboard.Options{
		RawLimit:             cfg.RawLimit,
		DropStale:            cfg.DropStale,
		ReloadRespectsFilter: cfg.ReloadRespectsFilter,
	}
}

func newClient(cfg model.Config, metrics *dashboard.Metrics) *api.Client {
	return api.New(cfg.BaseURL, cfg.Timeout, api.WithObserver(metrics.ObserveFetch))
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, config.DefaultConfigPath())
	if err != nil {
		return err
	}

	logPath := cfg.LogFile
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}
	f, err := logging.OpenFile(logPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Writer: f, Component: "tui"})
	logger.Info().Str("url", cfg.BaseURL).Dur("refresh_interval", cfg.RefreshInterval).Msg("starting dashboard")

	metrics := dashboard.NewMetrics()
	stop := serveMetrics(cfg.MetricsAddr, metrics, logger)
	defer stop()

	board := views.NewBoard()
	ctrl := dashboard.New(newClient(cfg, metrics), board, logger, metrics, dashboardOptions(cfg))
	program := tea.NewProgram(ui.NewModel(ctrl, board, cfg.RefreshInterval), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Load every view once and print it as text",
		Args:  cobra.NoArgs,
		RunE:  runSnapshotCmd,
	}
	cmd.Flags().StringVar(&snapshotCourse, "course", "", "apply a course filter after the full load")
	cmd.Flags().IntVar(&snapshotWidth, "width", 0, "output width (default: terminal width)")
	return cmd
}

func runSnapshotCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, config.DefaultConfigPath())
	if err != nil {
		return err
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: "console", Writer: cmd.ErrOrStderr(), Component: "snapshot"})
	metrics := dashboard.NewMetrics()
	stop := serveMetrics(cfg.MetricsAddr, metrics, logger)
	defer stop()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	board := views.NewBoard()
	ctrl := dashboard.New(newClient(cfg, metrics), board, logger, metrics, dashboardOptions(cfg))
	if err := dashboard.Run(ctx, ctrl, ctrl.LoadAll()); err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}
	if course := strings.TrimSpace(snapshotCourse); course != "" {
		if err := dashboard.Run(ctx, ctrl, ctrl.SetFilter(model.CourseKey(course))); err != nil {
			return fmt.Errorf("failed to apply filter: %w", err)
		}
	}
	if failed := ctrl.Failures(); failed > 0 {
		logger.Warn().Int("views", failed).Msg("some views failed to load")
	}

	width := snapshotWidth
	if width <= 0 {
		width = stats.TerminalWidth()
	}
	if err := board.WriteText(cmd.OutOrStdout(), width); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newCoursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List the courses known to the backend",
		Args:  cobra.NoArgs,
		RunE:  runCoursesCmd,
	}
}

func runCoursesCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, config.DefaultConfigPath())
	if err != nil {
		return err
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: "console", Writer: cmd.ErrOrStderr(), Component: "courses"})
	avgs, err := newClient(cfg, nil).AverageTimes(cmd.Context())
	if err != nil {
		if !api.IsShapeOnly(err) {
			return fmt.Errorf("failed to fetch courses: %w", err)
		}
		logger.Warn().Err(err).Msg("unexpected payload shape")
	}
	for _, course := range avgs.Courses() {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), course); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := writeDefaultConfig(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// writeDefaultConfig creates path from the template unless it exists.
func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// serveMetrics starts the Prometheus listener when addr is set and returns
// its shutdown func.
func serveMetrics(addr string, metrics *dashboard.Metrics, logger zerolog.Logger) func() {
	if addr == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics listener stopped")
		}
	}()
	logger.Info().Str("addr", addr).Msg("serving metrics")
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Duration
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# lmsdash configuration
# Uncomment a value to enable it. CLI flags override config values.

[backend]
# url = %q     # Analytics backend base URL
# timeout = %q                    # Per-request timeout

[dashboard]
# refresh-interval = %q          # Auto-reload interval
# raw-limit = %d                  # Raw records shown
# drop-stale = true               # Discard results for a course no longer selected
# reload-respects-filter = false  # Auto-reload keeps the selected course

[log]
# level = %q                    # trace, debug, info, warn, error
# file = "/path/to/lmsdash.log"   # TUI log file

[metrics]
# addr = "127.0.0.1:9464"         # Serve Prometheus metrics
`,
		defaultURL,
		defaultTimeout.String(),
		defaultRefreshInterval.String(),
		defaultRawLimit,
		defaultLogLevel,
	)
}

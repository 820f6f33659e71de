package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pulsemon/internal/config"
	"github.com/rileyhilliard/pulsemon/internal/errors"
	"github.com/rileyhilliard/pulsemon/internal/export"
	"github.com/rileyhilliard/pulsemon/internal/feed"
	"github.com/rileyhilliard/pulsemon/internal/logger"
	"github.com/rileyhilliard/pulsemon/internal/metrics"
	"github.com/rileyhilliard/pulsemon/internal/monitor"
	"github.com/rileyhilliard/pulsemon/internal/sample"
	"github.com/rileyhilliard/pulsemon/internal/session"
	"github.com/rileyhilliard/pulsemon/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// debugLogFile receives log output while the dashboard owns the terminal.
const debugLogFile = "pulsemon-debug.log"

// monitorFlags holds the flags shared by the root and monitor commands.
type monitorFlags struct {
	Host        string
	Port        int
	Threshold   int
	Headless    bool
	Export      bool
	MetricsAddr string
	FeedAddr    string
}

var (
	rootMonitorFlags monitorFlags
	monitorCmdFlags  monitorFlags
)

// flagBindings maps monitor flags onto config keys. A flag only wins over
// the config file when it was set explicitly.
var flagBindings = map[string]string{
	"host":         "listen.host",
	"port":         "listen.port",
	"threshold":    "detection.threshold",
	"export":       "export.on_exit",
	"metrics-addr": "metrics.addr",
	"feed-addr":    "feed.addr",
}

// monitorCmd listens for the sensor and shows the dashboard.
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Listen for the sensor and show the live dashboard",
	Long: `Listen on a TCP port, accept one pulse sensor and show its readings live.

The dashboard draws the recent trace against the configured threshold,
counts beats over the detection window and keeps every sample for export.
When stdout isn't a terminal, or with --headless, events are printed one
per line instead.

Keyboard shortcuts:
  q / Ctrl+C  Quit
  e           Export all samples now
  p / Space   Pause the graph
  ?           Show help

Examples:
  pulsemon monitor
  pulsemon monitor --host 0.0.0.0 --port 9999
  pulsemon monitor --headless --export
  pulsemon monitor --metrics-addr :9100 --feed-addr :8080`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(cmd, &monitorCmdFlags)
	},
}

func init() {
	addMonitorFlags(monitorCmd, &monitorCmdFlags)
	rootCmd.AddCommand(monitorCmd)
}

func addMonitorFlags(cmd *cobra.Command, f *monitorFlags) {
	defaults := config.DefaultConfig()

	cmd.Flags().StringVar(&f.Host, "host", defaults.Listen.Host, "address to listen on")
	cmd.Flags().IntVarP(&f.Port, "port", "p", defaults.Listen.Port, "TCP port the sensor connects to")
	cmd.Flags().IntVar(&f.Threshold, "threshold", defaults.Detection.Threshold, "reading at or above which a beat starts")
	cmd.Flags().BoolVar(&f.Headless, "headless", false, "print events instead of showing the dashboard")
	cmd.Flags().BoolVar(&f.Export, "export", false, "export all samples when the session ends")
	cmd.Flags().StringVar(&f.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g., :9100)")
	cmd.Flags().StringVar(&f.FeedAddr, "feed-addr", "", "serve the WebSocket feed on this address (e.g., :8080)")
}

// runMonitor resolves config for cmd and runs a session until the sensor
// leaves, the user quits or the process is interrupted.
func runMonitor(cmd *cobra.Command, f *monitorFlags) error {
	cfg, path, err := loadMonitorConfig(cmd)
	if err != nil {
		return err
	}
	if !noColor {
		ui.SetColorMode(cfg.Display.Color)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return monitorCommand(ctx, cfg, monitorOptions{
		ConfigPath: path,
		Headless:   f.Headless || !term.IsTerminal(int(os.Stdout.Fd())),
		Out:        cmd.OutOrStdout(),
	})
}

// loadMonitorConfig finds, reads and validates the config, with any
// explicitly set flags taking precedence.
func loadMonitorConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, err := config.Find(cfgFile)
	if err != nil {
		return nil, "", err
	}

	v := config.NewViper()
	for name, key := range flagBindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, "", errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Couldn't bind --%s", name),
				"This shouldn't happen - please report this bug")
		}
	}

	if err := config.Read(v, path); err != nil {
		return nil, "", err
	}
	cfg, err := config.Decode(v)
	if err != nil {
		return nil, "", err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// monitorOptions holds what the monitor needs besides the config.
type monitorOptions struct {
	ConfigPath string
	Headless   bool
	Out        io.Writer

	// PulseEvery overrides the headless summary interval.
	PulseEvery time.Duration
	// OnListen is called once the session is ready to accept the sensor.
	OnListen func(addr string)
}

// monitorCommand wires one session to its display, the optional metrics and
// feed servers, and export on exit.
func monitorCommand(ctx context.Context, cfg *config.Config, opts monitorOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	policy, err := session.ParseParsePolicy(cfg.Detection.ParsePolicy)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid detection.parse_policy",
			"Use skip or abort.")
	}
	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sessionOpts := []session.Option{session.WithLogger(logger.NewEnvLogger("[session]"))}
	var rec *metrics.Metrics
	if cfg.Metrics.Addr != "" {
		rec = metrics.New(metrics.DefaultNamespace)
		sessionOpts = append(sessionOpts, session.WithRecorder(rec))
	}

	threshold := cfg.Detection.Threshold
	sess := session.New(session.Config{
		Host:        cfg.Listen.Host,
		Port:        cfg.Listen.Port,
		Threshold:   &threshold,
		Window:      cfg.Detection.Window,
		ParsePolicy: policy,
	}, sessionOpts...)
	store := sess.Store()

	servers := newServerGroup(logger.NewEnvLogger("[http]"))
	defer servers.Shutdown()

	var sinks []session.Sink
	if rec != nil {
		rec.ObserveStore(store)
		if err := servers.Serve(cfg.Metrics.Addr, "/metrics", rec.Handler(), errors.ErrBind, "metrics"); err != nil {
			return err
		}
	}
	if cfg.Feed.Addr != "" {
		hub := feed.NewHub(store, cfg.Display.BufferSize, logger.NewEnvLogger("[feed]"))
		defer hub.Close()
		if err := servers.Serve(cfg.Feed.Addr, "/ws", hub, errors.ErrFeed, "feed"); err != nil {
			return err
		}
		sinks = append(sinks, hub)
	}
	if opts.OnListen != nil {
		sinks = append(sinks, listenHook(sess, opts.OnListen))
	}

	exportNow := func(now time.Time) (string, error) {
		return export.ToFile(cfg.Export.Dir, format, store.Snapshot(), now)
	}

	sessionErr := make(chan error, 1)
	go func() {
		sessionErr <- sess.Run(ctx)
	}()

	var displayErr error
	if opts.Headless {
		printer := newHeadlessPrinter(opts.Out, store, cfg.Display, opts.PulseEvery)
		printer.Header(cfg.Listen.Addr(), opts.ConfigPath)
		printer.Run(sess.Notifications(), sinks...)
	} else {
		displayErr = runDashboard(ctx, cfg, store, exportNow, sess.Notifications(), sinks)
	}

	cancel()
	err = <-sessionErr
	if stderrors.Is(err, context.Canceled) {
		err = nil
	}

	if cfg.Export.OnExit && store.Count() > 0 {
		path, exportErr := exportNow(time.Now())
		if exportErr != nil {
			return exportErr
		}
		fmt.Fprintf(opts.Out, "%s Saved %d samples to %s\n", ui.SymbolSuccess, store.Count(), path)
	}

	if displayErr != nil {
		return errors.WrapWithCode(displayErr, errors.ErrConfig,
			"The dashboard stopped unexpectedly",
			"Try --headless if your terminal can't host the dashboard.")
	}
	return err
}

// runDashboard shows the Bubble Tea dashboard until the user quits or ctx
// ends. Log output is kept off the terminal meanwhile.
func runDashboard(ctx context.Context, cfg *config.Config, store *sample.Store, exportNow func(time.Time) (string, error), notes <-chan session.Notification, sinks []session.Sink) error {
	if logger.DebugEnabled() {
		f, err := tea.LogToFile(debugLogFile, "pulsemon")
		if err == nil {
			defer f.Close()
		}
	} else {
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)
	}

	model := monitor.NewModel(store, monitor.Options{
		BufferSize: cfg.Display.BufferSize,
		Refresh:    cfg.Display.Refresh,
		MinValue:   cfg.Display.MinValue,
		MaxValue:   cfg.Display.MaxValue,
		ListenAddr: cfg.Listen.Addr(),
		Export:     exportNow,
	})
	return monitor.Run(ctx, model, notes, sinks...)
}

// listenHook reports the bound address once the session is listening.
func listenHook(sess *session.Session, fn func(addr string)) session.Sink {
	called := false
	return session.SinkFunc(func(n session.Notification) {
		if called || n.State != session.StateListening {
			return
		}
		if addr := sess.Addr(); addr != nil {
			called = true
			fn(addr.String())
		}
	})
}

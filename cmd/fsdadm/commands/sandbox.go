package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/newbpydev/fshook/pkg/fsd"
	"github.com/newbpydev/fshook/pkg/fsh"
	"github.com/newbpydev/fshook/pkg/fsh/monitoring"
	"github.com/newbpydev/fshook/pkg/fsh/observability"
	"github.com/newbpydev/fshook/pkg/vfs"

	"github.com/prometheus/client_golang/prometheus"
)

// mountSize is the synthetic byte region behind every sandbox mount.
const mountSize = 1 << 20

// sandbox is the in-process environment every subcommand runs against:
// the initialized framework, a host with the configured mounts, and an
// attached, enabled disturber with its control surface.
type sandbox struct {
	cfg     Config
	host    *vfs.Host
	dist    *fsd.Disturber
	control *fsd.Control
	logger  *slog.Logger

	cleanup []func()
}

// newSandbox wires the whole stack up according to the root flags.
func newSandbox(cmd *cobra.Command) (*sandbox, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	metricsAddr, _ := cmd.Flags().GetString("metrics")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	sb := &sandbox{cfg: cfg, logger: logger}

	if cfg.SentryDSN != "" {
		reporter, err := observability.NewSentryReporter(cfg.SentryDSN)
		if err != nil {
			return nil, err
		}
		observability.SetErrorReporter(reporter)
	} else {
		observability.SetErrorReporter(observability.NewConsoleReporter(verbose))
	}

	if cfg.MetricsAddr != "" {
		monitoring.SetGlobalMetrics(monitoring.NewPrometheusMetrics(prometheus.DefaultRegisterer))
		if err := monitoring.EnableEndpoint(cfg.MetricsAddr); err != nil {
			return nil, err
		}
		sb.cleanup = append(sb.cleanup, monitoring.StopEndpoint)
		logger.Info("metrics endpoint up", "addr", cfg.MetricsAddr)
	}

	fsh.Init()
	sb.host = vfs.NewHost(logger)
	sb.dist = fsd.New(logger)
	if err := sb.dist.Attach(); err != nil {
		return nil, err
	}
	sb.control = fsd.NewControl(sb.dist, sb.host)
	sb.control.Enable()

	for _, path := range cfg.Mounts {
		if _, err := sb.host.Mount(path, vfs.MemOps(mountSize)); err != nil {
			return nil, fmt.Errorf("seeding mounts: %w", err)
		}
	}

	return sb, nil
}

// close tears the sandbox down in reverse construction order.
func (sb *sandbox) close() {
	if err := sb.control.Disable(); err != nil {
		sb.logger.Error("disable failed", "error", err)
	}
	if err := sb.dist.Detach(); err != nil {
		sb.logger.Error("detach failed", "error", err)
	}
	for i := len(sb.cleanup) - 1; i >= 0; i-- {
		sb.cleanup[i]()
	}
}

// Command linekv-server serves an in-memory key-value store over a TCP
// line protocol.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/raniellyferreira/linekv"
	"github.com/raniellyferreira/linekv/internal/config"
	"github.com/raniellyferreira/linekv/internal/log"
	"github.com/raniellyferreira/linekv/internal/metrics"
)

// shutdownTimeout bounds how long the metrics endpoint may take to stop
const shutdownTimeout = 5 * time.Second

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// serverFlags holds the command line flags
type serverFlags struct {
	configPath string
	addr       string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	flags := &serverFlags{}

	cmd := &cobra.Command{
		Use:          "linekv-server",
		Short:        "In-memory key-value store speaking a plain-text line protocol",
		Version:      linekv.Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "Path to a YAML configuration file")
	cmd.Flags().StringVar(&flags.addr, "addr", config.DefaultAddr, "Address to bind")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")

	return cmd
}

// loadConfig reads the configuration and applies flags that were set
// explicitly on the command line
func loadConfig(cmd *cobra.Command, flags *serverFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr = flags.addr
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run serves until ctx is done or the metrics endpoint fails
func run(ctx context.Context, cfg *config.Config) error {
	zl, err := log.New(log.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Name:   "linekv",
	})
	if err != nil {
		return err
	}
	defer zl.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	kv, err := linekv.New(
		linekv.WithAddr(cfg.Addr),
		linekv.WithQueueSize(cfg.QueueSize),
		linekv.WithLogger(linekv.NewZapLogger(zl)),
		linekv.WithMetrics(metrics.New(reg)),
	)
	if err != nil {
		return err
	}
	if err := kv.Start(ctx); err != nil {
		return errors.WithMessage(err, "failed to start")
	}
	zl.Sugar().Infow("linekv server started", "addr", kv.Addr(), "version", linekv.Version)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		httpServer := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			zl.Sugar().Infow("Serving metrics", "addr", cfg.Metrics.Addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "metrics endpoint failed")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		zl.Info("Shutting down")
		return kv.Close()
	})

	return g.Wait()
}

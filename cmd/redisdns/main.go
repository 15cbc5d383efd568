package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	redisdns "github.com/lanefield/redisdns"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var buildVersion = "dev"

type options struct {
	configPath string
	logLevel   string
	version    bool
}

func main() {
	var opt options
	cmd := &cobra.Command{
		Use:   "redisdns [port]",
		Short: "In-memory key-value server with adaptive predictive caching",
		Long: `In-memory key-value server with adaptive predictive caching.

Speaks a Redis-compatible wire protocol subset over TCP and evicts keys
under capacity pressure using a per-key score blending recency, access
frequency, and remaining TTL.
`,
		Example: `  redisdns 6379
  redisdns --config redisdns.toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return start(opt, args)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&opt.configPath, "config", "c", "", "path to a TOML config file")
	cmd.Flags().StringVarP(&opt.logLevel, "log-level", "l", "", "log level; one of panic,fatal,error,warn,info,debug,trace")
	cmd.Flags().BoolVarP(&opt.version, "version", "v", false, "print version and exit")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func start(opt options, args []string) error {
	if opt.version {
		fmt.Println("Version:", buildVersion)
		return nil
	}

	cfg, err := loadConfig(opt.configPath)
	if err != nil {
		return wrapConfigErr(err)
	}

	if len(args) == 1 {
		port, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", args[0], err)
		}
		cfg.Port = port
	}

	level := cfg.LogLevel
	if opt.logLevel != "" {
		level = opt.logLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	redisdns.Log.SetLevel(lvl)

	ds := redisdns.NewDatastore(cfg.MaxCacheSize)
	srv := redisdns.NewServer(ds, redisdns.ServerOptions{
		Addr:             fmt.Sprintf(":%d", cfg.Port),
		SnapshotPath:     cfg.SnapshotPath,
		Workers:          cfg.Workers,
		SnapshotInterval: time.Duration(cfg.SnapshotInterval) * time.Second,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			redisdns.Log.WithError(err).Error("server exited")
			return err
		}
	case <-sig:
		redisdns.Log.Info("stopping")
		if err := srv.Stop(); err != nil {
			return err
		}
	}
	return nil
}

func wrapConfigErr(err error) error {
	return fmt.Errorf("loading config: %w", err)
}

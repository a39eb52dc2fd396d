package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nox-hq/parley/config"
	"github.com/nox-hq/parley/server"
	"golang.org/x/sync/errgroup"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	var (
		configPath string
		host       string
		port       int
		healthAddr string
	)
	fs.StringVar(&configPath, "config", config.DefaultPath, "path to config file")
	fs.StringVar(&host, "host", "", "listen host (overrides config)")
	fs.IntVar(&port, "port", 0, "listen port (overrides config)")
	fs.StringVar(&healthAddr, "health-addr", "", "address for the gRPC health service (overrides config)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, ok := loadConfig(configPath)
	if !ok {
		return 2
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if healthAddr != "" {
		cfg.Server.HealthAddr = healthAddr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	pipeline := newPipeline(cfg)
	httpSrv := server.NewHTTPServer(version, pipeline,
		server.WithModels(cfg.Models),
		server.WithRateLimit(cfg.Server.RequestsPerMinute),
		server.WithLegacyErrors(cfg.Server.LegacyErrors),
		server.WithTimeout(cfg.Backend().Timeout),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpSrv.ListenAndServe(gctx, cfg.Addr())
	})

	if cfg.Server.HealthAddr != "" {
		health := server.NewHealthServer(pipeline)
		g.Go(func() error {
			return health.ListenAndServe(cfg.Server.HealthAddr)
		})
		g.Go(func() error {
			<-gctx.Done()
			health.Stop()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	return 0
}

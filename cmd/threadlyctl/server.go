package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/config"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/db"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/ingest"
	applog "github.com/doodlesbykumbi/threadly-in-go/pkg/log"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/metrics"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/ratelimit"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/server"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/server/endpoints"
	gormstore "github.com/doodlesbykumbi/threadly-in-go/pkg/server/store/gorm"
)

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "5000"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 5000
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the webhook ingestion server",
	Long: `Run the webhook ingestion server.

To run the server requires the environment variable DATABASE_URL.

By default, database migrations are run on startup. Use --no-migrate to skip.
The server reloads its configuration on SIGHUP, and also whenever the config
file changes when --watch-config is set. Reloads apply the rate limit and the
trusted proxies; everything else needs a restart.`,
	Run: func(cmd *cobra.Command, args []string) {
		if db.URL() == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}

		if err := config.Reload(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}
		cfg := config.Get()

		logger, err := applog.Setup(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = logger.Sync() }()

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			logger.Info("running database migrations")
			if err := runMigrations(db.URL(), applog.Writer(applog.WithComponent("migrate"), zap.InfoLevel)); err != nil {
				logger.Fatal("migration failed", zap.Error(err))
			}
		}

		s, err := openStores(cfg)
		if err != nil {
			logger.Fatal("unable to connect to database", zap.Error(err))
		}
		defer s.Close()

		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		watch, _ := cmd.Flags().GetBool("watch-config")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runServer(ctx, s, logger, host, port, watch); err != nil {
			logger.Error("server failed", zap.Error(err))
			s.Close()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
	serverCmd.Flags().Bool("watch-config", false, "reload configuration when the config file changes")
}

// runServer wires the pipeline over s and serves until ctx is cancelled.
func runServer(ctx context.Context, s *stores, logger *zap.Logger, host, port string, watch bool) error {
	cfg := config.Get()
	limiter := ratelimit.New(s.accessLogs, cfg.RateLimitPolicy())
	m := metrics.New()

	pipeline := ingest.New(s.topics, s.messages, s.accessLogs, s.hasher, limiter,
		ingest.WithLogger(logger.Named("ingest")),
		ingest.WithObserver(m),
		ingest.WithTrustedProxies(func(peer string) bool {
			return config.Get().TrustsForwardedFor(peer)
		}),
	)

	apply := func(c *config.ThreadlyConfig) {
		limiter.SetPolicy(c.RateLimitPolicy())
		logger.Info("configuration reloaded",
			zap.Stringer("rate_limit", c.RateLimitPolicy()),
			zap.Strings("trusted_proxies", c.TrustedProxies),
		)
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				if err := config.Reload(); err != nil {
					logger.Warn("configuration reload rejected", zap.Error(err))
					continue
				}
				apply(config.Get())
			}
		}
	}()

	if watch {
		go func() {
			if err := config.Watch(ctx, logger.Named("config"), apply); err != nil {
				logger.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	srv := server.NewServer(pipeline, gormstore.NewHealthStore(s.db), m, config.Get, logger, host, port)
	endpoints.RegisterAll(srv)

	logger.Info("starting server",
		zap.String("addr", srv.Addr()),
		zap.Stringer("rate_limit", limiter.Policy()),
		zap.Int("key_hash_cost", s.hasher.Cost()),
	)
	return srv.Start(ctx)
}

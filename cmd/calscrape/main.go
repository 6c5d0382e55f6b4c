package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"calscrape/internal/config"
	"calscrape/internal/ics"
	appLog "calscrape/internal/log"
	"calscrape/internal/scrape"
	"calscrape/internal/store"
)

type flagConfig struct {
	configPath string
	cronSpec   string
	once       bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.Level(conf.LogLevel))
	defer appLog.Sync()

	// CLI -cron overrides the config schedule if provided.
	if flags.cronSpec != "" {
		conf.Cron = flags.cronSpec
	}

	appLog.Info("calscrape starting",
		"schema", conf.Database.Schema,
		"feed_count", len(conf.Feeds),
		"cron", conf.Cron,
		"once", flags.once,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once {
		if err := runOnce(ctx, conf); err != nil {
			appLog.Error("scrape failed", err)
			os.Exit(1)
		}
		return
	}

	// Daemon mode: the cron schedule drives repeated one-shot runs, one at
	// a time.
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err = c.AddFunc(conf.Cron, func() {
		if err := runOnce(ctx, conf); err != nil {
			appLog.Error("scheduled scrape failed", err)
		}
	})
	if err != nil {
		appLog.Error("invalid cron schedule", err, "cron", conf.Cron)
		os.Exit(1)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	appLog.Info("calscrape exiting")
}

// runOnce executes the full pipeline against a connection scoped to this
// invocation: acquired here, used for the whole batch, released on all
// paths.
func runOnce(ctx context.Context, conf *config.Config) error {
	poolConf, err := pgxpool.ParseConfig(conf.Database.DSN)
	if err != nil {
		return err
	}
	poolConf.ConnConfig.RuntimeParams["search_path"] = conf.Database.Schema

	pool, err := pgxpool.NewWithConfig(ctx, poolConf)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}

	runner := &scrape.Runner{
		Fetcher: ics.NewFetcher(),
		Store:   store.New(pool),
		Feeds:   conf.Feeds,
	}

	_, err = runner.Run(ctx)
	return err
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/calscrape/config.yaml", "Path to config file")
	flag.StringVar(&cfg.cronSpec, "cron", "", "Cron schedule (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one scrape cycle and exit")

	flag.Parse()

	return cfg
}

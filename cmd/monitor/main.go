package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"RSIMonitor/internal/collector"
	"RSIMonitor/internal/config"
	"RSIMonitor/internal/logger"
	"RSIMonitor/internal/metrics"
	"RSIMonitor/internal/monitor"
	"RSIMonitor/internal/notifier"
	"RSIMonitor/internal/strategy"

	"github.com/rs/zerolog"
)

func main() {
	os.Exit(run())
}

func run() int {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	cfgPath := flag.String("config", defaultPath, "path to the YAML config file")
	dryRun := flag.Bool("dry-run", false, "log alerts instead of sending them")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return 1
	}
	if err := cfg.Validate(*dryRun); err != nil {
		log.Error().Err(err).Msg("config validation")
		return 1
	}

	provider, err := newProvider(cfg)
	if err != nil {
		log.Error().Err(err).Msg("init data provider")
		return 1
	}
	n := newNotifier(cfg, *dryRun, log)
	log.Info().
		Str("provider", provider.Name()).
		Str("channel", n.Name()).
		Str("symbol", cfg.DataSource.Symbol).
		Bool("dry_run", *dryRun).
		Msg("rsi monitor starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	col := collector.NewCollector(provider, cfg.DataSource.Symbol, cfg.DataSource.Lookback, cfg.DataSource.Interval, log)
	m := monitor.New(col, cfg.RSI.Period, strategy.NewDecider(cfg.RSI.Threshold), n, cfg.Recipient(), log, os.Stdout)
	report := m.Run(ctx)

	if cfg.Metrics.PushgatewayURL != "" {
		rm := metrics.New()
		rm.Observe(report)
		pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := rm.Push(pctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, report.Symbol); err != nil {
			log.Warn().Err(err).Msg("metrics push failed")
		}
	}

	log.Info().Dur("duration", report.Duration).Msg("rsi monitor finished")
	return 0
}

func newProvider(cfg *config.Config) (collector.Provider, error) {
	ds := cfg.DataSource
	switch ds.Provider {
	case "yahoo":
		return collector.NewYahooProvider(cfg.Proxy), nil
	case "rest":
		return collector.NewRESTProvider(ds.BaseURL, ds.APIKey, cfg.Proxy), nil
	case "binance":
		return collector.NewBinanceProvider(ds.APIKey, ds.APISecret, cfg.Proxy), nil
	case "csv":
		return collector.NewCSVProvider(ds.File), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", ds.Provider)
	}
}

func newNotifier(cfg *config.Config, dryRun bool, log zerolog.Logger) notifier.Notifier {
	if dryRun {
		return notifier.NewLogNotifier(log)
	}
	switch cfg.Notifier.Channel {
	case "telegram":
		return notifier.NewTelegramNotifier(cfg.Notifier.Telegram.BotToken, cfg.Proxy)
	case "log":
		return notifier.NewLogNotifier(log)
	default:
		e := cfg.Notifier.Email
		return notifier.NewEmailNotifier(e.SMTPHost, e.SMTPPort, e.Username, cfg.SMTPPassword(), e.From)
	}
}

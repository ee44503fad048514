package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"DexSentinel/internal/collector"
	"DexSentinel/internal/config"
	"DexSentinel/internal/health"
	"DexSentinel/internal/logger"
	"DexSentinel/internal/model"
	"DexSentinel/internal/notifier"
	"DexSentinel/internal/recorder"
	"DexSentinel/internal/scanner"
	"DexSentinel/internal/scheduler"
	"DexSentinel/internal/strategy"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		once    bool
	)
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}

	cmd := &cobra.Command{
		Use:           "dexsentinel",
		Short:         "Scan new DEX pairs for momentum breakouts and alert on Telegram",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfgPath, once)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", defaultPath, "path to the YAML config file")
	cmd.Flags().BoolVar(&once, "once", false, "run a single scan cycle and exit")
	return cmd
}

func run(parent context.Context, cfgPath string, once bool) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log.Info("DexSentinel starting", zap.String("config", cfgPath), zap.Bool("once", once))

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Data source
	var (
		candidates collector.CandidateSource
		series     collector.SeriesSource
	)
	if cfg.DataSource.Mock {
		m := &collector.MockSource{Price: 1, Count: cfg.Scan.Lookback, PairList: []model.Pair{{
			Address:   "MOCKPAIR",
			Symbol:    "MOCK",
			CreatedAt: time.Now(),
			Snapshot: model.Snapshot{
				Liquidity: model.Some(50000.0),
				PriceUSD:  model.Some(1.0),
				MarketCap: model.Some(1e6),
			},
		}}}
		candidates, series = m, m
	} else {
		dex := collector.NewDexScreener(collector.DexScreenerOptions{
			BaseURL:  cfg.DataSource.BaseURL,
			Chain:    cfg.DataSource.Chain,
			Interval: cfg.DataSource.CandleInterval,
			ProxyURL: cfg.Proxy,
			Timeout:  cfg.DataSource.Timeout,
		})
		candidates, series = dex, dex
	}
	log.Info("data source", zap.String("name", candidates.Name()), zap.String("chain", cfg.DataSource.Chain))

	params := cfg.Params()
	engine := strategy.NewEngine(params, log.Named("strategy"))

	// Sinks
	var sinks []notifier.Sink
	tn, err := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log.Named("telegram"))
	if err != nil {
		log.Warn("telegram unavailable, alerts go to console only", zap.Error(err))
		tn = nil
	}
	if tn != nil {
		sinks = append(sinks, tn)
	}

	// Recorders
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mem := recorder.NewMemoryRecorder()
	rec := recorder.Multi(mem, recorder.NewMetricsRecorder(reg))
	defer rec.Close()

	driver := scanner.NewDriver(scanner.Options{
		PairsPerScan: cfg.Scan.PairsPerScan,
		Lookback:     cfg.Scan.Lookback,
		MinBars:      cfg.Scan.MinBars,
		Interval:     cfg.Scan.Interval,
		MaxBackoff:   cfg.Scan.MaxBackoff,
	}, scanner.Deps{
		Candidates: candidates,
		Series:     series,
		Evaluator:  engine,
		Console:    notifier.NewConsoleSink(os.Stdout),
		Sinks:      sinks,
		Recorder:   rec,
		Logger:     log.Named("scanner"),
	})

	if once {
		res := driver.RunOnce(ctx)
		if res.Status == model.CycleFailed {
			return fmt.Errorf("scan failed: %v", res.Reasons)
		}
		return nil
	}

	// Digest and chat commands
	var chat notifier.Sink
	if tn != nil {
		chat = tn
	}
	sched := scheduler.NewScheduler(ctx, mem, chat, params, engine.RuleNames(), log.Named("scheduler"))
	if cfg.Digest.Cron != "" {
		if err := sched.RegisterDigest(cfg.Digest.Cron); err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
	}

	if cfg.Health.Addr != "" {
		hs := health.NewServer(cfg.Health.Addr, mem, reg, log.Named("health"))
		hs.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := hs.Shutdown(shutdownCtx); err != nil {
				log.Warn("health server shutdown", zap.Error(err))
			}
		}()
	}

	log.Info("DexSentinel is running. Press Ctrl+C to stop.",
		zap.Duration("interval", cfg.Scan.Interval),
		zap.Int("pairs_per_scan", cfg.Scan.PairsPerScan))

	err = driver.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info("shutdown signal received, stopping")
		return nil
	}
	return err
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"CoinSentinel/internal/collector"
	"CoinSentinel/internal/config"
	"CoinSentinel/internal/logger"
	"CoinSentinel/internal/model"
	"CoinSentinel/internal/notifier"
	"CoinSentinel/internal/recorder"
	"CoinSentinel/internal/scheduler"
	"CoinSentinel/internal/screener"
)

func main() {
	once := flag.Bool("once", false, "run a single check, print the outcome and exit")
	flag.Parse()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatal().Err(err).Msg("init logger")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Msg("CoinSentinel starting...")

	// Init fetcher
	fetcher := collector.NewBinanceFetcher(collector.BinanceOptions{
		BaseURL:           cfg.Binance.BaseURL,
		Proxy:             cfg.Proxy,
		Timeout:           cfg.Binance.RequestTimeout,
		RequestsPerSecond: *cfg.Binance.RequestsPerSecond,
	})
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")

	sc := screener.NewScreener(fetcher, fetcher, cfg.ScreenerConfig())

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	if !tn.Configured() {
		log.Warn().Msg("telegram credentials missing, alerts will only be logged")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "none" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.NewScheduler(ctx, sc, notifier.WithRetry(tn, 3), rec, cfg.Screener.RunTimeout)

	if *once {
		res := sched.RunCheck(ctx)
		fmt.Println(res.Message)
		if res.Status == model.RunFailed {
			rec.Close()
			os.Exit(1)
		}
		return
	}

	if err := sched.Register(cfg.Schedule.CheckCron); err != nil {
		log.Fatal().Err(err).Msg("register cron task")
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn.Configured() {
		go func() {
			if err := tn.StartPolling(ctx, sched.HandleCommand); err != nil {
				log.Error().Err(err).Msg("telegram polling")
			}
		}()
		log.Info().Msg("telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing check now")
		go sched.RunCheck(ctx)
	}

	log.Info().Str("cron", cfg.Schedule.CheckCron).Msg("CoinSentinel is running. Press Ctrl+C to stop.")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping...")
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"StreakSentinel/internal/config"
	"StreakSentinel/internal/duolingo"
	"StreakSentinel/internal/keeper"
	"StreakSentinel/internal/notifier"
	"StreakSentinel/internal/recorder"
	"StreakSentinel/internal/scheduler"

	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagDryRun  bool
	flagStatus  bool
	flagNoEmail bool
	flagDaemon  bool
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	root := &cobra.Command{
		Use:           "streak-sentinel",
		Short:         "Keeps a Duolingo streak protected by buying streak freezes",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	root.Flags().StringVar(&flagConfig, "config", "configs/config.yaml", "path to config file")
	root.Flags().BoolVar(&flagDryRun, "dry-run", false, "compute and report the decision without purchasing")
	root.Flags().BoolVar(&flagStatus, "status", false, "show current streak status and exit")
	root.Flags().BoolVar(&flagNoEmail, "no-email", false, "disable notifications")
	root.Flags().BoolVar(&flagDaemon, "daemon", false, "keep running and execute the daily check on the configured cron")

	if err := root.Execute(); err != nil {
		log.Printf("[FATAL] %v", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	log.Println("[INFO] StreakSentinel starting...")

	cfgPath := flagConfig
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	// Init API client
	client := duolingo.NewClient(cfg.Duolingo.Username, cfg.Duolingo.Password, cfg.Timeout(), cfg.Proxy)
	client.MaxRetries = cfg.HTTP.MaxRetries
	client.RetryDelay = cfg.RetryDelay()

	// Init notifier
	var sink notifier.Notifier = notifier.NewNoopNotifier()
	if !flagNoEmail {
		var sinks []notifier.Notifier
		if cfg.EmailConfigured() {
			sinks = append(sinks, notifier.NewEmailNotifier(
				cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Recipient))
			log.Println("[INFO] email notifications enabled")
		}
		if cfg.TelegramConfigured() {
			sinks = append(sinks, notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy))
			log.Println("[INFO] telegram notifications enabled")
		}
		switch len(sinks) {
		case 0:
			log.Println("[INFO] no notification sink configured")
		case 1:
			sink = sinks[0]
		default:
			sink = notifier.NewMultiNotifier(sinks...)
		}
	} else {
		log.Println("[INFO] notifications disabled by flag")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init keeper
	k := keeper.New(client, sink, rec)
	k.SessionFile = cfg.Duolingo.SessionFile
	k.ItemName = cfg.Duolingo.ItemName
	k.PurchaseCost = cfg.Thresholds.PurchaseCost
	k.LowThreshold = cfg.Thresholds.LowBalance
	k.DryRun = flagDryRun

	if flagDryRun {
		log.Println("[INFO] DRY RUN MODE - no purchases will be made")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if flagStatus {
		report, err := k.Status(ctx)
		if err != nil {
			return err
		}
		fmt.Println("\n" + report)
		return nil
	}

	if flagDaemon {
		return runDaemon(ctx, cfg, k)
	}

	outcome := k.Run(ctx)
	fmt.Println("\n" + notifier.FormatSummary(outcome))
	if !outcome.Completed() {
		return outcome.Err
	}
	return nil
}

func runDaemon(ctx context.Context, cfg *config.Config, k *keeper.Keeper) error {
	sched := scheduler.NewScheduler(ctx, k)
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		return fmt.Errorf("register cron task: %w", err)
	}
	// The startup check runs to completion before the cron schedule is
	// armed so two runs never share the client or session file.
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing check now")
		k.Run(ctx)
	}

	sched.Start()
	defer sched.Stop()

	log.Println("[INFO] StreakSentinel is running. Press Ctrl+C to stop.")
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	log.Println("[INFO] shutdown signal received, stopping...")
	return nil
}

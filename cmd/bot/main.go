package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"WalletWatch/internal/bot"
	"WalletWatch/internal/config"
	"WalletWatch/internal/model"
	"WalletWatch/internal/notifier"
	"WalletWatch/internal/pricing"
	"WalletWatch/internal/scheduler"
	"WalletWatch/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] WalletWatch starting...")

	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded .env file")
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init profile store
	st, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open profile store: %v", err)
	}
	defer st.Close()

	// Init price resolver: Binance, CoinGecko fallback, file cache
	assets := model.DefaultAssets()
	resolver := pricing.NewResolver(
		pricing.NewBinanceSource(cfg.Sources.BinanceBaseURL, cfg.Proxy, assets),
		pricing.NewCoinGeckoSource(cfg.Sources.CoinGeckoBaseURL, cfg.Proxy, assets),
		pricing.NewFileCache(cfg.Cache.Path, time.Duration(cfg.Cache.TTLSeconds)*time.Second),
		pricing.DefaultRetryPolicy(),
		assets,
	)

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Proxy)

	// Init scheduler and command service. The manager calls back into the
	// bot's snapshot pipeline, so wire it through a late-bound closure.
	timeout := time.Duration(cfg.ResolveTimeoutSeconds) * time.Second
	var b *bot.Bot
	sched := scheduler.NewManager(func(ctx context.Context, userID int64) (*model.Snapshot, error) {
		return b.Snapshot(ctx, userID)
	}, tn, timeout)
	b = bot.New(st, resolver, sched, timeout)

	if err := b.RestoreSchedules(); err != nil {
		log.Printf("[WARN] restore schedules: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start Telegram polling
	go tn.StartPolling(ctx, b.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	log.Println("[INFO] WalletWatch is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] WalletWatch stopped")
}

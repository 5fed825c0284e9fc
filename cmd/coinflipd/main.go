package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/center2055/CoinflipXD/config"
	"github.com/center2055/CoinflipXD/internal/adapters/ledger"
	"github.com/center2055/CoinflipXD/internal/adapters/metrics"
	"github.com/center2055/CoinflipXD/internal/adapters/notify"
	"github.com/center2055/CoinflipXD/internal/adapters/stats"
	"github.com/center2055/CoinflipXD/internal/application/engine"
	"github.com/center2055/CoinflipXD/internal/domain"
	"github.com/center2055/CoinflipXD/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	demo := flag.Bool("demo", false, "run a scripted match against the in-memory ledger and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("coinflipd starting",
		"config", *configPath,
		"ledger_mode", cfg.Ledger.Mode,
		"public_ttl", cfg.PublicTTL(),
		"private_ttl", cfg.PrivateTTL(),
		"demo", *demo,
	)

	store, err := stats.New(cfg.Stats.DSN)
	if err != nil {
		slog.Error("failed to open stats store", "err", err, "dsn", cfg.Stats.DSN)
		os.Exit(1)
	}
	defer store.Close()

	console := notify.NewConsole()
	notifiers := notify.Fanout{console}

	var kafkaNotifier *notify.Kafka
	if cfg.Kafka.Enabled {
		kafkaNotifier = notify.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaNotifier.Close()
		notifiers = append(notifiers, kafkaNotifier)
	}

	var notifier ports.Notifier = notifiers
	if cfg.Metrics.Enabled {
		notifier = metrics.NewRecorder(notifiers, prometheus.DefaultRegisterer)
	}

	var bank ports.Ledger
	var memBank *ledger.Memory
	switch cfg.Ledger.Mode {
	case "wallet":
		bank = ledger.NewWalletClient(cfg.Ledger.WalletBaseURL)
	default:
		memBank = ledger.NewMemory()
		bank = memBank
	}

	engineCfg := engine.Config{
		Economy: domain.EconomySettings{
			MinBet:              cfg.Engine.MinBet,
			MaxBet:              cfg.Engine.MaxBet,
			MaxBalancePercent:   cfg.Engine.MaxBalancePercent,
			RequireWholeNumbers: cfg.Engine.RequireWholeNumbers,
		},
		Tax: domain.TaxSettings{
			Enabled:   cfg.Engine.TaxEnabled,
			Percent:   cfg.Engine.TaxPercent,
			Recipient: cfg.TaxRecipientID(),
		},
		OneActivePerParticipant: cfg.Engine.OneActivePerParticipant,
		PublicTTL:               cfg.PublicTTL(),
		PrivateTTL:              cfg.PrivateTTL(),
		SweepInterval:           cfg.SweepInterval(),
	}

	e := engine.New(engineCfg, bank, notifier, store, engine.WithReconciler(store))
	e.Start()

	if cfg.Metrics.Enabled {
		srv := metrics.StartServer(cfg.Metrics.Port, func(ctx context.Context) error { return nil })
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *demo {
		if memBank == nil {
			slog.Error("demo mode needs the memory ledger")
			os.Exit(1)
		}
		runDemo(ctx, e, memBank, console, store)
	} else {
		<-ctx.Done()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	e.Shutdown(shutdownCtx)
	store.Flush()

	slog.Info("coinflipd stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

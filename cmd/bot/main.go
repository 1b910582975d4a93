package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/dialog"
	"github.com/MrJamesThe3rd/tally/internal/entry"
	"github.com/MrJamesThe3rd/tally/internal/entry/gemini"
	"github.com/MrJamesThe3rd/tally/internal/events"
	"github.com/MrJamesThe3rd/tally/internal/events/kafka"
	"github.com/MrJamesThe3rd/tally/internal/export"
	tallyHttp "github.com/MrJamesThe3rd/tally/internal/http"
	"github.com/MrJamesThe3rd/tally/internal/http/auth"
	exportHandler "github.com/MrJamesThe3rd/tally/internal/http/export"
	ledgerHandler "github.com/MrJamesThe3rd/tally/internal/http/ledger"
	"github.com/MrJamesThe3rd/tally/internal/identity"
	identityStore "github.com/MrJamesThe3rd/tally/internal/identity/store"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/tally/internal/ledger/store"
	"github.com/MrJamesThe3rd/tally/internal/ledgersync"
	"github.com/MrJamesThe3rd/tally/internal/logging"
	"github.com/MrJamesThe3rd/tally/internal/sheet/google"
	"github.com/MrJamesThe3rd/tally/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	if err := run(); err != nil {
		slog.Error("bot stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.New(os.Stdout, cfg.App.LogLevel, cfg.App.LogJSON)

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	classifier, err := gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		return err
	}

	sheets, err := google.New(ctx, google.Config{
		CredentialsFile: cfg.Sheets.CredentialsFile,
		ParentFolderID:  cfg.Sheets.ParentFolderID,
		TimeZone:        cfg.Sheets.TimeZone,
		Locale:          cfg.Sheets.Locale,
		Timeout:         cfg.Sheets.Timeout,
	})
	if err != nil {
		return err
	}

	var publisher events.Publisher = events.Nop{}

	if len(cfg.Kafka.Brokers) > 0 {
		kp := kafka.NewPublisher(cfg.Kafka.Brokers)
		defer kp.Close()

		publisher = kp
	}

	bot, err := telegram.New(telegram.Config{
		Token:        cfg.Telegram.Token,
		PollTimeout:  cfg.Telegram.PollTimeout,
		SendInterval: cfg.Telegram.SendRate,
		SendBurst:    cfg.Telegram.SendBurst,
		Debug:        cfg.Telegram.Debug,
	})
	if err != nil {
		return err
	}

	var (
		ledgerService   = ledger.NewService(ledgerStore.New(db))
		identityService = identity.NewService(identityStore.New(db), cfg.Identity.CacheTTL)
		parser          = entry.NewParser(
			entry.NewBreakerClassifier(classifier, entry.BreakerSettings{
				Name:                "gemini",
				ConsecutiveFailures: cfg.Gemini.BreakerFailures,
				Cooldown:            cfg.Gemini.BreakerCooldown,
			}),
			cfg.Gemini.Timeout,
		)
		synchronizer = ledgersync.New(ledgerService, sheets,
			ledgersync.WithPublisher(publisher),
			ledgersync.WithShareRole(cfg.Sheets.ShareRole),
		)
		machine = dialog.New(bot, identityService, ledgerService, parser, synchronizer,
			dialog.WithPageSize(cfg.Dialog.PageSize),
			dialog.WithCurrency(cfg.Dialog.Currency),
			dialog.WithTokens(auth.NewIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)),
		)
	)

	router := tallyHttp.New(
		tallyHttp.Options{
			JWTSecret:      []byte(cfg.Auth.JWTSecret),
			AllowedOrigins: cfg.Auth.AllowedOrigins,
			Limiter:        rate.NewLimiter(rate.Every(cfg.API.RequestInterval), cfg.API.Burst),
		},
		identityService,
		ledgerHandler.NewHandler(ledgerService),
		exportHandler.NewHandler(export.NewService(ledgerService, sheets)),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	go func() {
		slog.Info("starting server", "port", server.Addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	go purgeIncomplete(ctx, ledgerService, cfg.Purge.Interval, cfg.Purge.Grace)

	slog.Info("bot started", "app", cfg.App.Name)

	runErr := bot.Run(ctx, machine)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown", "error", err)
	}

	return runErr
}

// purgeIncomplete periodically removes ledgers whose sheet was never attached.
func purgeIncomplete(ctx context.Context, svc *ledger.Service, every, grace time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.PurgeIncomplete(ctx, grace)
			if err != nil {
				slog.Error("purging incomplete ledgers", "error", err)
				continue
			}

			if n > 0 {
				slog.Info("purged incomplete ledgers", "count", n)
			}
		}
	}
}

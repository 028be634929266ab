package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/bebsa/ledger/internal/config"
	"github.com/bebsa/ledger/internal/events"
	eventskafka "github.com/bebsa/ledger/internal/events/kafka"
	"github.com/bebsa/ledger/internal/httpapi"
	"github.com/bebsa/ledger/internal/ledger"
	"github.com/bebsa/ledger/internal/service/account"
	"github.com/bebsa/ledger/internal/service/due"
	"github.com/bebsa/ledger/internal/service/entry"
	"github.com/bebsa/ledger/internal/service/reconcile"
	"github.com/bebsa/ledger/internal/service/user"
	"github.com/bebsa/ledger/internal/storage/memory"
	pgstore "github.com/bebsa/ledger/internal/storage/postgres"
)

// store is the union of repositories the services need; both backends
// implement it.
type store interface {
	reconcile.Store
	entry.Repo
	account.Repo
	due.Repo
	user.Repo
	httpapi.ReadyChecker
	Close()
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Logger (slog to stdout). Level via LOG_LEVEL; format via LOG_FORMAT
	// (json|text, default json).
	logger := buildLoggerFromEnv()
	slog.SetDefault(logger)

	// Amounts render as JSON numbers, matching what the UI expects.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "err", err)
		os.Exit(1)
	}

	var st store
	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		st = pg
		logger.Info("storage backend: postgres")
	} else {
		mem := memory.New()
		if cfg.DevMode {
			seedDev(mem, logger)
		}
		st = mem
		logger.Info("storage backend: memory")
	}
	defer st.Close()

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := eventskafka.NewPublisher(cfg.KafkaBrokers, "")
		defer kp.Close()
		pub = kp
		logger.Info("event publisher: kafka", "brokers", strings.Join(cfg.KafkaBrokers, ","))
	}

	engine := reconcile.New(st, pub, logger)
	srv := httpapi.New(logger, cfg,
		entry.New(engine, st, cfg),
		account.New(st, cfg),
		due.New(engine, st),
		user.New(st, cfg.JWTSecret),
		st,
	)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("bebsa ledger listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
}

// seedDev loads a couple of accounts and a due customer for local poking.
func seedDev(mem *memory.Store, l *slog.Logger) {
	now := time.Now().UTC()
	bkash := ledger.MobileAccount{
		ID: uuid.New(), Company: "Bkash Personal", MobileNumber: "01712345678",
		CreatedAt: now, UpdatedAt: now,
	}
	nagad := ledger.MobileAccount{
		ID: uuid.New(), Company: "Nagad Agent", MobileNumber: "01898765432",
		CreatedAt: now, UpdatedAt: now,
	}
	cust := ledger.DueCustomer{
		ID: uuid.New(), CustomerName: "Karim", MobileNumber: "01911111111",
		CreatedAt: now, UpdatedAt: now,
	}
	mem.SeedAccount(bkash)
	mem.SeedAccount(nagad)
	mem.SeedCustomer(cust)
	l.Info("DEV seed (memory)",
		"bkash_account_id", bkash.ID.String(),
		"nagad_account_id", nagad.ID.String(),
		"due_customer_id", cust.ID.String(),
	)
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLoggerFromEnv() *slog.Logger {
	level := parseLogLevel(os.Getenv("LOG_LEVEL"))
	format := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

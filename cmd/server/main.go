// Command server runs the sigil API: wallet-challenge authentication,
// the anchored document registry, and the one-time-code verification
// flows, composed from the stores and clients the environment configures.
//
// Every backend is optional. Without Postgres the stores are in-memory,
// without Redis the code store and revocation list are in-process,
// without Kafka audit events stay in a bounded memory sink, and without
// a ledger RPC endpoint plus content store the document routes are not
// mounted at all.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"sigil/internal/audit"
	authhandler "sigil/internal/auth/handler"
	authmetrics "sigil/internal/auth/metrics"
	authservice "sigil/internal/auth/service"
	"sigil/internal/auth/signature"
	"sigil/internal/auth/store/account"
	"sigil/internal/auth/store/revocation"
	"sigil/internal/content"
	"sigil/internal/email"
	httpapi "sigil/internal/http"
	"sigil/internal/ledger"
	"sigil/internal/otc"
	"sigil/internal/platform/config"
	"sigil/internal/platform/httpserver"
	"sigil/internal/platform/kafka"
	"sigil/internal/platform/logger"
	"sigil/internal/platform/metrics"
	"sigil/internal/platform/postgres"
	"sigil/internal/platform/redis"
	"sigil/internal/registry/access"
	reghandler "sigil/internal/registry/handler"
	regmetrics "sigil/internal/registry/metrics"
	regservice "sigil/internal/registry/service"
	"sigil/internal/registry/store/document"
	"sigil/internal/token"
	"sigil/internal/verification"
	verifhandler "sigil/internal/verification/handler"
	dErrors "sigil/pkg/domain-errors"
)

// accountStore is the union of the account interfaces the services
// consume, so startup can pick one concrete store and share it.
type accountStore interface {
	authservice.AccountStore
	verification.AccountStore
}

type documentStore interface {
	regservice.DocumentStore
	verification.DocumentStore
}

// contentUnavailable stands in for the content client when the document
// backends are not configured; the routes that could reach it are not
// mounted then.
type contentUnavailable struct{}

func (contentUnavailable) Fetch(context.Context, string) ([]byte, error) {
	return nil, dErrors.New(dErrors.CodeUnavailable, "content store not configured")
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Durable stores. An empty DSN selects the in-memory implementations,
	// which lose all state on restart.
	var (
		accounts  accountStore
		documents documentStore
		pool      *postgres.Pool
		sqlDB     *sql.DB
	)
	if cfg.Postgres.DSN != "" {
		var err error
		pool, err = postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		if err := postgres.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}

		sqlDB, err = postgres.OpenSQL(cfg.Postgres)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer sqlDB.Close()

		accounts = account.NewPostgres(pool)
		documents = document.NewPostgres(pool)
	} else {
		log.Warn("postgres not configured, state is in-memory")
		accounts = account.New()
		documents = document.New()
	}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var trl authservice.RevocationList
	switch {
	case rdb != nil:
		trl = revocation.NewRedisTRL(rdb.Client)
	case sqlDB != nil:
		trl = revocation.NewPostgresTRL(sqlDB)
	default:
		trl = revocation.NewInMemoryTRL()
	}

	var (
		codes    otc.Store
		memCodes *otc.MemoryStore
	)
	if rdb != nil {
		codes = otc.NewRedisStore(rdb.Client, cfg.OTC)
	} else {
		memCodes = otc.NewMemoryStore(cfg.OTC)
		codes = memCodes
	}

	// Audit events flow to Kafka when brokers are configured; otherwise
	// they land in a bounded in-memory sink for local runs.
	var sink audit.Sink
	producer, err := kafka.NewProducer(cfg.Kafka, log)
	if err != nil {
		return fmt.Errorf("connect kafka: %w", err)
	}
	if producer != nil {
		defer producer.Close()
		topicCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = producer.EnsureTopics(topicCtx, 1, cfg.Kafka.AuditTopic)
		cancel()
		if err != nil {
			return fmt.Errorf("ensure audit topic: %w", err)
		}
		sink = audit.NewKafkaSink(producer, cfg.Kafka.AuditTopic)
	} else {
		log.Warn("kafka not configured, audit events stay in memory")
		sink = audit.NewMemorySink(1024)
	}
	publisher := audit.NewPublisher(sink, audit.WithAsyncBuffer(256), audit.WithLogger(log))
	defer publisher.Close()

	authMetrics := authmetrics.New()
	authSvc := authservice.New(
		accounts,
		trl,
		token.NewIssuer(cfg.Auth),
		signature.NewEthereumRecoverer(),
		authservice.WithConfig(cfg.Auth),
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(publisher),
		authservice.WithMetrics(authMetrics),
	)

	var led *ledger.EthereumLedger
	if cfg.Ledger.RPCURL != "" && cfg.Ledger.ContractAddress != "" {
		led, err = ledger.Dial(ctx, cfg.Ledger, log)
		if err != nil {
			return fmt.Errorf("dial ledger: %w", err)
		}
	}
	var contentClient *content.Client
	if cfg.Content.BaseURL != "" {
		contentClient, err = content.NewClient(cfg.Content, log)
		if err != nil {
			return fmt.Errorf("configure content store: %w", err)
		}
	}

	var registryHandler *reghandler.Handler
	if led != nil && contentClient != nil {
		regMetrics := regmetrics.New()
		authorizer := access.New(led,
			access.WithLogger(log),
			access.WithAuditPublisher(publisher),
			access.WithMetrics(regMetrics),
		)
		regSvc := regservice.New(documents, led, contentClient, accounts, authorizer,
			regservice.WithLogger(log),
			regservice.WithAuditPublisher(publisher),
			regservice.WithMetrics(regMetrics),
		)
		registryHandler = reghandler.New(regSvc, log)
	} else {
		log.Warn("document routes disabled, ledger and content store must both be configured")
	}

	var sender email.Sender
	if cfg.SMTP.Host != "" {
		sender, err = email.NewSMTPSender(cfg.SMTP, log)
		if err != nil {
			return fmt.Errorf("configure smtp: %w", err)
		}
	} else {
		log.Warn("smtp not configured, verification mails are logged and dropped")
		sender = email.NewNopSender(log)
	}

	var fetcher verification.ContentFetcher = contentUnavailable{}
	if contentClient != nil {
		fetcher = contentClient
	}
	verifSvc := verification.New(accounts, documents, codes, sender, fetcher,
		verification.WithLogger(log),
		verification.WithAuditPublisher(publisher),
		verification.WithCodeTTL(cfg.OTC.TTL),
	)

	var ready []httpapi.ReadyCheck
	if pool != nil {
		ready = append(ready, httpapi.ReadyCheck{Name: "postgres", Check: pool.Health})
	}
	if rdb != nil {
		ready = append(ready, httpapi.ReadyCheck{Name: "redis", Check: rdb.Health})
	}

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Logger:         log,
		Metrics:        metrics.New(),
		RequestTimeout: cfg.Server.RequestTimeout,
		Authenticator:  authSvc,
		Auth:           authhandler.New(authSvc, log),
		Registry:       registryHandler,
		Verification:   verifhandler.New(verifSvc, log),
		ReadyChecks:    ready,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if memCodes != nil {
		sweeper := otc.NewSweeper(memCodes, cfg.OTC.SweepInterval, log)
		g.Go(func() error { return sweeper.Run(gctx) })
	}

	if pgTRL, ok := trl.(*revocation.PostgresTRL); ok {
		g.Go(func() error { return purgeRevokedTokens(gctx, pgTRL, log) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// purgeRevokedTokens drops expired revocation rows once an hour so the
// table does not grow without bound.
func purgeRevokedTokens(ctx context.Context, trl *revocation.PostgresTRL, log *slog.Logger) error {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed, err := trl.PurgeExpired(ctx)
			if err != nil {
				log.Warn("revocation purge failed", "error", err)
				continue
			}
			if removed > 0 {
				log.Info("purged expired revocations", "removed", removed)
			}
		}
	}
}

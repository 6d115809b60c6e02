package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	eventrepo "github.com/ovaphlow/pitchfork/service-glossary-go/internal/event/repo"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/lexicon"
	"github.com/ovaphlow/pitchfork/service-glossary-go/internal/router"
	userrepo "github.com/ovaphlow/pitchfork/service-glossary-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/credential"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-glossary-go/pkg/utilities"
)

type serverConfig struct {
	Addr            string        `env:"HTTP_ADDR"             envDefault:"0.0.0.0:8431"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

func main() {
	// best-effort: without a .env file the real environment is used
	_ = godotenv.Load()

	logCfg, err := utilities.ConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	lg, err := utilities.Init(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-glossary-go")

	var srvCfg serverConfig
	if err := env.Parse(&srvCfg); err != nil {
		sugar.Fatalf("parse server config: %v", err)
	}
	credCfg, err := credential.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("%v", err)
	}
	dbCfg, err := database.ConfigFromEnv()
	if err != nil {
		sugar.Fatalf("%v", err)
	}

	sqlDB, err := database.Connect(dbCfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()
	sqlxDB := sqlx.NewDb(sqlDB, "postgres")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if dbCfg.EnsureSchema {
		if err := ensureSchema(ctx, sqlxDB); err != nil {
			sugar.Fatalf("ensure schema: %v", err)
		}
		sugar.Info("schema ready")
	}

	handler := router.RegisterRoutes(router.Deps{
		Logger: sugar,
		TM:     database.NewTxManager(sqlxDB),
		Hasher: credential.NewBcryptHasher(credCfg.PasswordCost),
		Signer: credential.NewTokenSigner(credCfg),
		IDs:    utilities.NewIDGenerator(logCfg.SnowflakeNode),
	})
	srv := &http.Server{
		Addr:              srvCfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sugar.Infow("http server listening", "addr", srvCfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnw("http server shutdown failed", zap.Error(err))
	}
	sugar.Info("goodbye")
}

// ensureSchema creates users and events before the dictionary tables that
// reference them.
func ensureSchema(ctx context.Context, db *sqlx.DB) error {
	if err := userrepo.NewUserRepo(db).EnsureTable(ctx); err != nil {
		return err
	}
	if err := eventrepo.NewEventRepo(db).EnsureTable(ctx); err != nil {
		return err
	}
	return lexicon.EnsureSchema(ctx, db)
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/pingliu/service-rental-go/internal/auth"
	productrepo "github.com/pingliu/service-rental-go/internal/product/repo"
	"github.com/pingliu/service-rental-go/internal/router"
	"github.com/pingliu/service-rental-go/internal/upload"
	userrepo "github.com/pingliu/service-rental-go/internal/user/repo"
	"github.com/pingliu/service-rental-go/pkg/database"
	"github.com/pingliu/service-rental-go/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.InitLogger(utilities.LogConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-rental-go")

	// init db
	cfg := database.ConfigFromEnv()
	sqlDB, err := database.Connect(cfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	// wrap with sqlx for convenience in repos/services
	sqlxDB := sqlx.NewDb(sqlDB, "postgres")
	defer sqlxDB.Close()

	// make sure tables and unique indexes exist
	setupCtx, cancelSetup := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSetup()
	if err := userrepo.NewUserRepo(sqlxDB).EnsureTable(setupCtx); err != nil {
		sugar.Fatalf("ensure users table: %v", err)
	}
	if err := productrepo.NewProductRepo(sqlxDB).EnsureTable(setupCtx); err != nil {
		sugar.Fatalf("ensure products table: %v", err)
	}

	// token signing secret and lifetime are loaded once at startup
	tokens := auth.NewTokenService(auth.ConfigFromEnv())
	uploads := upload.NewStorage(upload.ConfigFromEnv())

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8431"
	}

	// mount http server
	handler := router.RegisterRoutes(sugar, sqlxDB, tokens, uploads)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	sugar.Infow("service is running", "addr", addr)

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}

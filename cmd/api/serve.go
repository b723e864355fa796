package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/AlexP3rez/biblioteca-api/internal/app"
	"github.com/AlexP3rez/biblioteca-api/internal/clock"
	"github.com/AlexP3rez/biblioteca-api/internal/storage/postgres"
	transporthttp "github.com/AlexP3rez/biblioteca-api/internal/transport/http"
	"github.com/AlexP3rez/biblioteca-api/migrations"
)

const (
	startupTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func serve() error {
	logger := log.Default()

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		return err
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		return err
	}

	clk := clock.NewSystem()

	bookRepo := postgres.NewBookRepository(pool)
	loanRepo := postgres.NewLoanRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	loanQueryRepo := postgres.NewLoanQueryRepository(pool)

	ledger := app.NewInventoryLedger(bookRepo)
	gate := app.NewEligibilityGate(userRepo, loanRepo, clk)
	loanSvc := app.NewLoanService(loanRepo, ledger, gate, clk,
		app.WithLoanPeriodDays(cfg.LoanPeriodDays),
		app.WithRenewalExtensionDays(cfg.RenewalExtensionDays),
		app.WithMaxRenewals(cfg.MaxRenewals),
	)
	loanQuerySvc := app.NewLoanQueryService(loanQueryRepo, clk)
	catalogSvc := app.NewCatalogService(bookRepo, ledger, clk)
	userSvc := app.NewUserService(userRepo, clk)

	// Health and the public catalog reads stay open; everything touching
	// loans or users requires the gateway-forwarded identity.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/loans", transporthttp.RequireIdentity(transporthttp.HandleLoans(loanSvc, loanQuerySvc)))
	mux.Handle("/loans/", transporthttp.RequireIdentity(transporthttp.HandleLoanActions(loanSvc, loanQuerySvc)))
	mux.Handle("/books", transporthttp.RequireIdentity(transporthttp.HandleBooks(catalogSvc)))
	mux.Handle("/books/", transporthttp.RequireIdentity(transporthttp.HandleBookByID(catalogSvc)))
	mux.Handle("/users", transporthttp.RequireIdentity(transporthttp.HandleUsers(userSvc)))
	mux.Handle("/users/", transporthttp.RequireIdentity(transporthttp.HandleUserByID(userSvc)))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(
		transporthttp.CORS(cfg.CORSOrigins, mux),
		logger,
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Printf("api listening on :%s", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		logger.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("server shutdown error: %v", err)
	}
	logger.Printf("server stopped")
	return nil
}

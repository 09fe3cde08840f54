package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kumbirai/my-kasi-bet/internal/app/account"
	"github.com/kumbirai/my-kasi-bet/internal/app/deposit"
	"github.com/kumbirai/my-kasi-bet/internal/app/match"
	"github.com/kumbirai/my-kasi-bet/internal/app/play"
	"github.com/kumbirai/my-kasi-bet/internal/app/withdrawal"
	"github.com/kumbirai/my-kasi-bet/internal/betting"
	"github.com/kumbirai/my-kasi-bet/internal/config"
	"github.com/kumbirai/my-kasi-bet/internal/game"
	"github.com/kumbirai/my-kasi-bet/internal/jobs"
	"github.com/kumbirai/my-kasi-bet/internal/ledger"
	"github.com/kumbirai/my-kasi-bet/internal/logging"
	"github.com/kumbirai/my-kasi-bet/internal/notify"
	"github.com/kumbirai/my-kasi-bet/internal/store"
	httptransport "github.com/kumbirai/my-kasi-bet/internal/transport/http"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Init(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "init logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.New(cfg.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	limits, err := betting.LimitsFromConfig(cfg.Limits)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid stake limits")
	}
	depositPolicy, err := deposit.PolicyFromConfig(cfg.Limits)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid deposit policy")
	}
	withdrawalPolicy, err := withdrawal.PolicyFromConfig(cfg.Limits)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid withdrawal policy")
	}

	notifier, err := notify.NewManager(cfg.Notify, notify.StoreLookup(st))
	if err != nil {
		log.Fatal().Err(err).Msg("notify init failed")
	}
	if err := notifier.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("notify start failed")
	}

	engine := betting.NewEngine(st, limits)
	depositSvc := deposit.NewService(st, depositPolicy, notifier)
	playSvc := play.NewService(st, engine, game.CryptoSource{})
	svc := httptransport.Services{
		Store:       st,
		Accounts:    account.NewService(st),
		Play:        playSvc,
		Matches:     match.NewService(st, engine, notifier),
		Deposits:    depositSvc,
		Withdrawals: withdrawal.NewService(st, withdrawalPolicy, notifier),
	}

	scheduler := jobs.NewScheduler(cfg.Jobs, ledger.New(st), st, depositSvc, playSvc)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("jobs start failed")
	}

	r := httptransport.NewRouter(cfg.Server, svc)
	httptransport.LogRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	scheduler.Stop(shutdownCtx)
}

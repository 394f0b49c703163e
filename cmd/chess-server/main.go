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

	"go.uber.org/zap"

	"github.com/sabca0328/chess-ai-game/internal/advisor"
	"github.com/sabca0328/chess-ai-game/internal/archive"
	appcfg "github.com/sabca0328/chess-ai-game/internal/config"
	"github.com/sabca0328/chess-ai-game/internal/httpapi"
	"github.com/sabca0328/chess-ai-game/internal/obslog"
	"github.com/sabca0328/chess-ai-game/internal/room"
	"github.com/sabca0328/chess-ai-game/internal/store"
)

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	var (
		snapshots *store.Store
		lobby     httpapi.LobbyLister
	)
	if cfg.RedisURL != "" {
		snapshots, err = store.New(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis init error: %v", err)
		}
		lobby = snapshots
	}

	var results *archive.Repository
	if cfg.DatabaseURL != "" {
		results, err = archive.NewRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres init error: %v", err)
		}
	}

	var (
		advise  room.Advisor
		suggest httpapi.Suggester
	)
	if cfg.AdvisorURL != "" {
		client := advisor.NewClient(cfg.AdvisorURL, cfg.AdvisorModel, advisor.WithTimeout(cfg.AdvisorTimeout))
		advise = client
		suggest = client
	}

	regOpts := room.RegistryOptions{
		Advisor:       advise,
		SweepInterval: cfg.SweepInterval,
		FinishedGrace: cfg.FinishedGrace,
		IdleTTL:       cfg.IdleTTL,
	}
	if snapshots != nil {
		regOpts.Store = snapshots
	}
	if results != nil {
		regOpts.Archive = results
	}
	reg := room.NewRegistry(regOpts)

	mux := http.NewServeMux()
	httpapi.New(reg, lobby, suggest, cfg.ClockSeconds).Register(mux)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		obslog.L().Info("server_listen", zap.String("addr", cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		obslog.L().Info("server_shutdown", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve error: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	reg.Close()
	if snapshots != nil {
		_ = snapshots.Close()
	}
	if results != nil {
		_ = results.Close()
	}
}

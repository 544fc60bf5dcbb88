package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Chatter/internal/adapters/http"
	wssignal "github.com/dkeye/Chatter/internal/adapters/signal"
	"github.com/dkeye/Chatter/internal/app"
	"github.com/dkeye/Chatter/internal/config"
	"github.com/dkeye/Chatter/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	db, err := store.Open(cfg.DataPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DataPath).Msg("failed to open store")
	}
	defer db.Close()

	users := store.NewUsers(db)
	rooms := store.NewRooms(db)
	messages := store.NewMessages(db)

	groups := wssignal.NewGroups()
	coord := &app.Coordinator{
		Presence:     app.NewPresence(users),
		Membership:   app.NewMembership(rooms),
		Pipeline:     app.NewPipeline(users, rooms, messages),
		Bindings:     app.NewBindings(),
		Groups:       groups,
		StoreTimeout: cfg.StoreTimeout,
	}

	ctl := wssignal.NewController(coord, groups, cfg.ReadLimit, cfg.PingPeriod)
	if cfg.SendLimit > 0 {
		ctl.Limiter = wssignal.NewSendRateLimiter(cfg.SendLimit, cfg.SendInterval)
	}

	r := router.SetupRouter(ctx, cfg, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Chatter server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"tictac-arena/internal/config"
	"tictac-arena/internal/invite"
	"tictac-arena/internal/janitor"
	"tictac-arena/internal/logging"
	"tictac-arena/internal/presence"
	"tictac-arena/internal/store"
	"tictac-arena/internal/ws"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	reg := presence.NewRegistry()
	st := store.New()
	inv := invite.NewCoordinator(reg, st, cfg.Server.MaxGamesPerUser, invite.FirstMover(cfg.Server.FirstMover))
	srv := ws.NewServer(reg, st, inv, cfg.Server)

	jan := janitor.New(srv, nil)
	jan.Run(context.Background(), cfg.Server.GameSweepInterval, cfg.Server.UserSweepInterval)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           newRouter(srv),
		ReadHeaderTimeout: 5 * time.Second,
		// No ReadTimeout: websocket connections stay open for hours.
		IdleTimeout: 120 * time.Second,
	}
	log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

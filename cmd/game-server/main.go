package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"limit-holdem/internal/config"
	"limit-holdem/internal/handrank"
	"limit-holdem/internal/ledger"
	"limit-holdem/internal/logging"
	"limit-holdem/internal/room"
	"limit-holdem/internal/store"
	httptransport "limit-holdem/internal/transport/http"
	"limit-holdem/internal/ws"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("server init failed")
	}
	httptransport.LogRoutes(a.router)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	a.close()
}

type app struct {
	router  http.Handler
	hub     *ws.Hub
	manager *room.Manager
	store   *store.Store
}

// newApp builds the server. Hand history is wired in only when a database
// is configured; the game itself runs entirely in memory.
func newApp(ctx context.Context, cfg config.AppConfig) (*app, error) {
	opts := room.Options{
		Rules:    cfg.Table.Rules(),
		Ranker:   handrank.New(),
		MaxRooms: cfg.Server.MaxRooms,
	}

	var st *store.Store
	var history httptransport.HandHistory
	if cfg.Server.PostgresDSN != "" {
		var err error
		st, err = store.New(cfg.Server.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := st.Ping(ctx); err != nil {
			st.Close()
			return nil, err
		}
		if err := st.EnsureSchema(ctx); err != nil {
			st.Close()
			return nil, err
		}
		opts.Recorder = ledger.New(st)
		history = st
		log.Info().Msg("hand history enabled")
	} else {
		log.Warn().Msg("POSTGRES_DSN not set; hand history disabled")
	}

	hub := ws.NewHub()
	opts.Sender = hub
	manager := room.NewManager(ctx, opts)
	wsServer := ws.NewServer(hub, manager, cfg.Server.DefaultRoom, cfg.Server.AllowedOrigins)

	log.Info().
		Int64("starting_chips", cfg.Table.StartingChips).
		Int64("small_blind", cfg.Table.SmallBlind).
		Int64("big_blind", cfg.Table.BigBlind).
		Int("max_players", cfg.Table.MaxPlayers).
		Int("max_rooms", cfg.Server.MaxRooms).
		Msg("table_rules")

	return &app{
		router:  httptransport.NewRouter(cfg.Server, manager, wsServer, history),
		hub:     hub,
		manager: manager,
		store:   st,
	}, nil
}

func (a *app) close() {
	a.hub.CloseAll()
	a.manager.Close()
	if a.store != nil {
		a.store.Close()
	}
}

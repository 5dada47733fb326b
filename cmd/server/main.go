package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"agentpoker/internal/collusion"
	"agentpoker/internal/config"
	"agentpoker/internal/game"
	"agentpoker/internal/httpapi"
	"agentpoker/internal/logging"
	"agentpoker/internal/store"
	"agentpoker/internal/tableactor"
)

func main() {
	app, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(app.Log)

	st, err := store.New(context.Background(), app.Server.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}
	if err := st.Migrate(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("apply schema failed")
	}

	coll := collusion.New(st, app.Server.CollusionMinHands, app.Server.CollusionFlagScore, app.Server.CollusionConfidenceN)
	tableCfg := game.TableConfig{
		MaxSeats:         app.Server.TableMaxSeats,
		MinSeats:         app.Server.TableMinSeats,
		MinBuyInBlinds:   game.DefaultTableConfig().MinBuyInBlinds,
		SitOutEvictAt:    app.Server.SitOutAutoEvictHand,
		ActionTimeout:    time.Duration(app.Server.ActionTimeoutMS) * time.Millisecond,
		ShowdownCooldown: time.Duration(app.Server.ShowdownCooldownMS) * time.Millisecond,
	}
	reg := tableactor.NewRegistry(st, coll, store.NewID, tableCfg, app.Server.HandArchiveRetention)
	if err := reg.LoadFromSnapshots(context.Background(), st); err != nil {
		log.Fatal().Err(err).Msg("restore table snapshots failed")
	}
	reg.StartSweep(context.Background())

	router := httpapi.NewRouter(st, reg, coll, app.Server)
	server := &http.Server{
		Addr:              app.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", app.Server.HTTPAddr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
	if err := reg.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("table snapshot flush failed")
	}
	st.Close()
}

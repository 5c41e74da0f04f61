package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"zkbattleship/internal/auth"
	"zkbattleship/internal/config"
	"zkbattleship/internal/events"
	"zkbattleship/internal/game"
	"zkbattleship/internal/hub"
	"zkbattleship/internal/metrics"
	"zkbattleship/internal/model"
	"zkbattleship/internal/server"
	"zkbattleship/internal/storage"
	"zkbattleship/internal/storage/badger"
	"zkbattleship/internal/storage/memory"
	"zkbattleship/internal/verifier"
)

const (
	shutdownTimeout = 10 * time.Second
	eventsPerGame   = 64
)

var flagConfig string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host games over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.New(), cmd.Flags(), flagConfig)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, log.Level(cfg.LogLevel), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&flagConfig, "config", "", "optional config file (yaml, json or toml)")
	// serve's keys-dir shadows the root flag so that viper sees it
	config.BindFlags(serveCmd.Flags())
}

func openStore(log zerolog.Logger, dir string) (storage.Store, error) {
	if dir == "" {
		log.Warn().Msg("no data dir configured, games are kept in memory only")
		return memory.New(), nil
	}
	db, err := badger.Open(dir, log)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func loadKeys(v *verifier.Verifier, cfg *config.Config) (game.Keys, error) {
	bk, err := verifier.LoadKeyFile(cfg.BoardVK)
	if err != nil {
		return game.Keys{}, err
	}
	hk, err := verifier.LoadKeyFile(cfg.HitVK)
	if err != nil {
		return game.Keys{}, err
	}
	return game.Keys{Board: v.Register(bk), Hit: v.Register(hk)}, nil
}

func serve(ctx context.Context, log zerolog.Logger, cfg *config.Config) (err error) {
	store, err := openStore(log, cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			err = multierror.Append(err, cerr)
		}
	}()

	v := verifier.New(log)
	keys, err := loadKeys(v, cfg)
	if err != nil {
		return err
	}

	var registry game.ScoreRegistry = hub.Offline{Log: log}
	if cfg.HubURL != "" {
		registry = hub.New(log, cfg.HubURL, cfg.HubTimeout)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	feed, err := events.NewFeed(cfg.EventGames, eventsPerGame)
	if err != nil {
		return err
	}

	engine := game.New(log, store, v, registry, auth.ContextAuthenticator{},
		game.Config{Self: model.Identity(cfg.SelfIdentity), Keys: keys},
		game.WithEvents(events.Multi{events.NewLog(log), feed}),
		game.WithMetrics(collector),
	)
	if cfg.Admin != "" {
		admin := model.Identity(cfg.Admin)
		err := engine.Initialize(auth.WithCaller(ctx, admin), admin)
		if err != nil && !errors.Is(err, game.ErrAlreadyInitialized) {
			return err
		}
	}

	api := &http.Server{
		Addr: cfg.Listen,
		Handler: server.New(log, engine,
			server.WithFeed(feed),
			server.WithObserver(collector),
			server.WithAllowedOrigins(cfg.AllowedOrigins),
		).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	servers := []*http.Server{api}
	if cfg.MetricsListen != "" {
		servers = append(servers, metrics.NewServer(log, cfg.MetricsListen, reg))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			log.Info().Str("address", srv.Addr).Msg("listening")
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs *multierror.Error
		for _, srv := range servers {
			if err := srv.Shutdown(sctx); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
		log.Info().Msg("servers stopped")
		return errs.ErrorOrNil()
	})
	return g.Wait()
}

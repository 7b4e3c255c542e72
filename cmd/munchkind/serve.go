package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lanfest/munchkin-lan/internal/config"
	"github.com/lanfest/munchkin-lan/internal/game"
	"github.com/lanfest/munchkin-lan/internal/host"
	"github.com/lanfest/munchkin-lan/internal/httpapi"
	"github.com/lanfest/munchkin-lan/internal/stats"
	"github.com/lanfest/munchkin-lan/internal/transport"
)

var hostName string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host a session",
	Long:  `Open a lobby, listen for clients on the configured TCP port and serve the local UI API over HTTP.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&hostName, "name", "Host", "host player display name")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var recorder host.Recorder
	var store *stats.Store
	if cfg.StatsDB != "" {
		store, err = stats.Open(cfg.StatsDB)
		if err != nil {
			return err
		}
		recorder = store
	}

	session := game.NewSession(game.NewPlayer(hostName))
	session = game.SetTimerConfig(session, false, cfg.TimerSeconds)

	h := host.New(ctx, session, host.Config{
		MaxPlayers: cfg.MaxPlayers,
		Logger:     log,
		Recorder:   recorder,
	})
	defer h.Stop()

	ln, err := transport.Listen(cfg.TCPPort, log)
	if err != nil {
		return err
	}
	log.Info("hosting session",
		zap.String("session", session.ID),
		zap.Int("port", cfg.TCPPort),
		zap.String("http", cfg.HTTPAddr))

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.SetupRoutes(h, store, log),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.Serve(ctx, ln)
	})
	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpiface "github.com/sawpanic/locatepricer/internal/interfaces/http"
	"github.com/sawpanic/locatepricer/internal/secrets"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	redactor := secrets.NewRedactor()
	log.Info().
		Str("dsn", redactor.RedactString(a.cfg.Database.DSN)).
		Str("redis_addr", a.cfg.Cache.RedisAddr).
		Int("port", a.cfg.HTTP.Port).
		Msg("starting locatepricer")

	handlers := httpiface.NewHandlers(a.facade, a.cache, a.dbMgr.Health(), version)
	metrics := httpiface.NewMetrics(prometheus.DefaultRegisterer)

	server, err := httpiface.NewServer(httpiface.ServerConfig{
		Host:           a.cfg.HTTP.Host,
		Port:           a.cfg.HTTP.Port,
		ReadTimeout:    a.cfg.HTTP.ReadTimeout,
		WriteTimeout:   a.cfg.HTTP.WriteTimeout,
		RequestTimeout: a.cfg.HTTP.RequestDeadline,
	}, handlers, metrics)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

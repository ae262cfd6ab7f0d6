package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/mailjohn/internal/config"
	"github.com/dropDatabas3/mailjohn/internal/http/server"
	"github.com/dropDatabas3/mailjohn/internal/observability/logger"
)

func main() {
	root := &cobra.Command{
		Use:          "mailjohn",
		Short:        "Relay SMTP con tokens de corta vida",
		SilenceUsage: true,
	}

	var configPath string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	serveCmd.Flags().StringVar(&configPath, "config", "", "ruta al config.yaml (opcional)")

	keygenCmd := &cobra.Command{
		Use:   "keygen",
		Short: "Genera una master key nueva (base64, 32 bytes)",
		RunE: func(cmd *cobra.Command, args []string) error {
			key := make([]byte, 32)
			if _, err := rand.Read(key); err != nil {
				return err
			}
			fmt.Println(base64.StdEncoding.EncodeToString(key))
			return nil
		},
	}

	root.AddCommand(serveCmd, keygenCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(configPath string) error {
	// .env es opcional: en producción las vars vienen del entorno
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config inválida: %w", err)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
	defer logger.Sync()
	log := logger.L().With(logger.Component("main"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := server.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("wiring: %w", err)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// el write timeout tiene que cubrir un request de envío completo
		// (repeat envíos SMTP secuenciales)
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("servidor: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown forzado", logger.Err(err))
		_ = srv.Close()
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amaumene/imagesearch/internal/api"
	"github.com/spf13/cobra"
)

func serveCMD() *cobra.Command {
	var port string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API over one search session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(commandContext(cmd), port)
		},
	}
	serve.Flags().StringVar(&port, "port", "", "listen port (default SERVER_PORT)")

	return serve
}

func runServe(parent context.Context, port string) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if port != "" {
		a.cfg.ServerPort = port
	}
	a.logger.Info("Starting imagesearch")

	// 6. Initialize HTTP server
	server := api.NewServer(a.cfg, a.session, a.metrics, a.logger)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 7. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	a.logger.Info("imagesearch is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		a.logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			a.logger.WithError(err).Error("Error during server shutdown")
		}
	}

	a.logger.Info("imagesearch stopped")
	return nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/catalog-flipbook/internal/app"
	"github.com/example/catalog-flipbook/internal/auth"
	"github.com/example/catalog-flipbook/internal/config"
	"github.com/example/catalog-flipbook/internal/logger"
)

func main() {
	hashPassword := flag.String("hash-password", "", "print a bcrypt hash for DEMO_PASSWORD_HASH and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env).Component("API")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting catalog service",
		"catalog_api", cfg.CatalogAPIURL,
		"store", cfg.StoreBackend,
		"demo_mode", cfg.DemoMode,
		"kafka", cfg.IsKafkaEnabled(),
	)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to assemble service", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close failed", "error", err)
		}
	}()

	res, err := a.Start(ctx)
	if err != nil {
		log.Error("initial catalog load failed", "error", err)
	} else {
		log.Info("initial catalog load", "count", len(res.Items), "origin", res.Origin, "skipped", res.Skipped)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server started", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown", "error", err)
	}
}

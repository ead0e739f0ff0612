// Command export runs the catalog pipeline once and writes the result to
// $EXPORT_DIR/catalogo-productos.json.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/example/catalog-flipbook/internal/app"
	"github.com/example/catalog-flipbook/internal/catalog"
	"github.com/example/catalog-flipbook/internal/config"
	"github.com/example/catalog-flipbook/internal/logger"
	"github.com/example/catalog-flipbook/internal/query"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env).Component("Export")

	if err := run(cfg, log); err != nil {
		log.Error("export failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Start(ctx)
	if err != nil {
		return err
	}
	if res.Notice != "" {
		log.Warn(res.Notice, "origin", res.Origin)
	}

	path := filepath.Join(cfg.ExportDir, catalog.ExportFilename)
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := a.Catalog.Export(f, query.Predicate{}, query.Order{Field: query.SortByName}); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Info("catalog exported", "path", path, "count", len(res.Items), "origin", res.Origin)
	return nil
}

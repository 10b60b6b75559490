package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tributary/app/api"
	"tributary/app/cfg"
	"tributary/app/database"
	"tributary/app/feed"
	"tributary/app/seed"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if c == nil {
		// Help was shown
		return
	}

	setupLogger(c.Debug)

	slog.Info("Starting Tributary", "version", c.Version)

	db, err := database.NewConnection(c.DataDir)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "schema_version", version, "dirty", dirty)

	categoryRepo := database.NewCategoryRepository(db)
	sourceRepo := database.NewSourceRepository(db)
	articleRepo := database.NewArticleRepository(db)
	streamRepo := database.NewStreamRepository(db)

	if err := seedIfEmpty(c, categoryRepo, sourceRepo); err != nil {
		slog.Error("Failed to seed database", "error", err)
		os.Exit(1)
	}

	client := feed.NewClient(c.UserAgent, time.Duration(c.FetchTimeout)*time.Second)
	parser := feed.NewParser()
	discoverer := feed.NewDiscoverer(client, parser, c.BridgeURL)

	store := feed.NewDBStore(db, sourceRepo, articleRepo)
	orchestrator := feed.NewOrchestrator(store, client, parser, c.WorkerCount)

	poller := feed.NewPoller(orchestrator, time.Duration(c.RefreshInterval)*time.Minute)
	poller.Start()
	defer poller.Stop()

	handler := api.NewHandler(db, categoryRepo, sourceRepo, articleRepo, streamRepo,
		client, discoverer, orchestrator, feed.NewExtractor())
	router := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", c.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
}

// seedIfEmpty bootstraps subscriptions from the seed file when the catalog
// has no sources at all. Feeds are registered as-is; the first refresh
// pass fetches them.
func seedIfEmpty(c *cfg.Cfg, categories *database.CategoryRepository, sources *database.SourceRepository) error {
	count, err := sources.GetSourceCount()
	if err != nil {
		return err
	}
	if count > 0 || c.SeedFile == "" {
		return nil
	}

	file, err := seed.Load(c.SeedFile)
	if err != nil {
		return err
	}
	if file == nil {
		return nil
	}

	added := 0
	for _, category := range file.Categories {
		record, err := categories.GetCategoryByName(category.Name)
		if err != nil {
			return err
		}
		if record == nil {
			record, err = categories.CreateCategory(category.Name)
			if err != nil {
				return err
			}
		}

		for _, source := range category.Sources {
			url := feed.NormalizeSourceURL(source.URL, c.BridgeURL)
			kind := string(feed.ClassifyURL(url))
			if _, err := sources.CreateSource(source.Title, url, kind, record.ID); err != nil {
				return fmt.Errorf("failed to seed %s: %w", source.URL, err)
			}
			added++
		}
	}

	slog.Info("Seeded subscriptions", "file", c.SeedFile, "sources", added)

	return nil
}

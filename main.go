// Command activityd runs the insect activity daemon: it ingests
// per-cycle observation records, rolls them up into hourly and daily
// activity summaries on a schedule, and serves the results over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/activity.report/internal/api"
	"github.com/banshee-data/activity.report/internal/config"
	"github.com/banshee-data/activity.report/internal/db"
	"github.com/banshee-data/activity.report/internal/insect/pipeline"
	"github.com/banshee-data/activity.report/internal/version"
)

var (
	listen     = flag.String("listen", ":8080", "Listen address")
	dbFile     = flag.String("db", "activity.db", "Path to the sqlite database")
	configFile = flag.String("config", "", "Path to a tuning JSON file (defaults apply when empty)")
	rollupNow  = flag.Bool("rollup-now", false, "Run one rollup for today at startup")
)

func main() {
	flag.Parse()

	log.Printf("activityd %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)

	cfg := config.EmptyTuningConfig()
	if *configFile != "" {
		loaded, err := config.LoadTuningConfig(*configFile)
		if err != nil {
			// Configuration failures abort before any processing.
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if err := database.MigrateUp(); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	worker := pipeline.NewRollupWorker(database, cfg)
	if *rollupNow {
		if err := worker.RunOnce(context.Background()); err != nil {
			log.Printf("startup rollup failed: %v", err)
		}
	}
	worker.Start()
	defer worker.Stop()

	server := api.NewServer(database, cfg)
	mux := server.ServeMux()
	database.AttachAdminRoutes(mux)

	httpServer := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(mux),
	}

	go func() {
		log.Printf("activityd listening on %s (db %s)", *listen, *dbFile)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Print("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
}

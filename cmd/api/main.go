package main

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"melomap/internal/catalog"
	"melomap/internal/config"
	database "melomap/internal/db"
	"melomap/internal/keywords"
	"melomap/internal/pipeline"
	"melomap/internal/storage"

	apiserver "melomap/internal/api/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Melomap API Server...")

	// 1. Setup Configuration
	cfg := config.Load()

	// 2. Initialize Infrastructure
	db := database.New(cfg)

	// 3. Run Database Migrations
	db.AutoMigrate()
	database.SeedDemoUser(db.DB)

	// 4. Storage
	store := storage.New(cfg)

	// 5. Pipeline wiring: keywording + Spotify adapters feed the assembler
	extractor := keywords.NewClient(
		cfg.Services.KeywordURL,
		cfg.Services.KeywordClientID,
		cfg.Services.KeywordAPIKey,
	)
	resolver := catalog.NewSpotifyClient(
		cfg.Services.SpotifyTokenURL,
		cfg.Services.SpotifySearchURL,
		cfg.Services.SpotifyClientID,
		cfg.Services.SpotifySecret,
	)
	assembler := pipeline.NewAssembler(
		extractor,
		resolver,
		catalog.NewCatalog(db.DB),
		pipeline.NewGormPostStore(db.DB),
	)

	// 6. Setup Metrics
	pipeline.RegisterMetrics()
	go func() {
		http.Handle("/_metrics", promhttp.Handler())
		log.Printf("Metrics exposed at http://localhost%s/_metrics", cfg.Server.MetricsPort)
		if err := http.ListenAndServe(cfg.Server.MetricsPort, nil); err != nil {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	// 7. Start Server
	srv := apiserver.New(cfg, db, store, assembler)

	log.Printf("API Server starting on %s", cfg.Server.Port)
	if err := srv.Start(cfg.Server.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/quizbook/quizbook/internal/api/http"
	"github.com/quizbook/quizbook/internal/bank"
	"github.com/quizbook/quizbook/internal/config"
	"github.com/quizbook/quizbook/internal/db"
	"github.com/quizbook/quizbook/internal/registry"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	// --- Bank ---
	manifestBytes, err := os.ReadFile(filepath.Join(cfg.BankDir, cfg.ManifestFile))
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}
	manifest, err := bank.ParseManifest(manifestBytes)
	if err != nil {
		log.Fatalf("parse manifest: %v", err)
	}
	b, err := bank.LoadBank(manifest, bank.DirLoader(cfg.BankDir))
	if err != nil {
		// the server refuses to start on an inconsistent bank; run
		// bankcheck for the full finding list and fix the data
		log.Fatalf("load bank: %v", err)
	}
	for _, issue := range b.Issues {
		log.Printf("skipped record: %s[%d]: %s", issue.File, issue.Index, issue.Reason)
	}
	log.Printf("bank loaded: %d questions in %d groups", b.Size(), len(b.Groups))

	reg := registry.New(db.NewKVStore(dbh))
	hist := db.NewSessionLog(dbh)
	mgr := api.NewManager()

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(ar chi.Router) {
		api.Mount(ar, b, mgr, reg, hist)
	})

	log.Printf("quizbookd listening on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal(err)
	}
}

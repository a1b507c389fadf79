package main

import (
	"context"
	"log"
	"net/http"

	"fintrack-server/src/api"
	"fintrack-server/src/config"
	"fintrack-server/src/db"
)

func main() {
	cfg := config.Load()

	// Connect to database
	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(context.Background(), cfg.DatabaseURL); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}

	// Router
	router := api.NewRouter(pool, cfg)

	log.Println("API server running on port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}

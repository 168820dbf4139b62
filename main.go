package main

import (
	"log"
	"net/http"

	"github.com/jalad-shrimali/lead-consolidator/config"
	"github.com/jalad-shrimali/lead-consolidator/handlers"
	"github.com/jalad-shrimali/lead-consolidator/preset"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := preset.Open(cfg.PresetDB)
	if err != nil {
		log.Fatalf("preset store: %v", err)
	}
	defer store.Close()

	mux := http.NewServeMux()
	handlers.New(cfg, store).Routes(mux)

	log.Println("Server started on", cfg.HTTPPort)
	log.Fatal(http.ListenAndServe(cfg.HTTPPort, mux))
}

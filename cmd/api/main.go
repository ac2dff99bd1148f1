package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"paperchat/internal/answer"
	"paperchat/internal/api"
	"paperchat/internal/auth"
	"paperchat/internal/citations"
	"paperchat/internal/config"
	"paperchat/internal/providers"
	"paperchat/internal/service"
	"paperchat/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	store, err := storage.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer store.Close()

	mgr, err := providers.NewManager(cfg)
	if err != nil {
		log.Fatalf("configure providers: %v", err)
	}
	engine := answer.NewEngine(mgr)
	svc := service.New(engine, citations.NewBuilder(engine))

	sessions := auth.NewMemoryStore(time.Duration(cfg.SessionTTLMinutes) * time.Minute)
	oauth := auth.NewOAuth(cfg)
	if !oauth.Configured() {
		log.Printf("google oauth not configured; /auth/login will be unavailable")
	}

	h := api.NewServer(cfg, store, sessions, oauth, svc)
	log.Printf("paperchat api listening on %s llm_providers=%q", cfg.APIAddr, cfg.LLMProviders)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}

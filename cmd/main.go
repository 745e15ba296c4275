package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"bitrix_activity/internal/bitrix"
	"bitrix_activity/internal/config"
	"bitrix_activity/internal/dict"
	"bitrix_activity/internal/repo"
	"bitrix_activity/internal/server"
	"bitrix_activity/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	bootCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("parse DATABASE_URL: %v", err)
	}
	tlsConf, err := cfg.PGTLSConfig()
	if err != nil {
		log.Fatalf("postgres tls material: %v", err)
	}
	if tlsConf != nil {
		poolCfg.ConnConfig.TLSConfig = tlsConf
	}

	pool, err := pgxpool.NewWithConfig(bootCtx, poolCfg)
	if err != nil {
		log.Fatalf("pgxpool.NewWithConfig: %v", err)
	}
	defer pool.Close()

	bx := bitrix.NewClient(cfg.BitrixWebhookBaseURL)
	dicts := dict.New()
	repository := repo.New(pool, dicts)

	// Database reachability is the only hard precondition.
	if err := repository.Ping(bootCtx); err != nil {
		log.Fatalf("database ping: %v", err)
	}
	if err := repository.Migrate(bootCtx); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Dictionary load happens before the listener starts so the first
	// webhook never races the cache; a failed load only degrades
	// list-field translation to NULL.
	if err := dicts.Load(bootCtx, bx); err != nil {
		log.Printf("WARN dictionary load failed, list fields will not be translated: %v", err)
	}

	events := webhook.NewService(bx, repository)

	var dedup *webhook.Deduper
	if cfg.DedupWindow > 0 {
		dedup = webhook.NewDeduper(cfg.DedupWindow)
		log.Printf("webhook dedup enabled, window=%s", cfg.DedupWindow)
	}

	httpServer := server.New(events, dedup)
	if err := httpServer.Start(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}

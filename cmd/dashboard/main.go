package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zupad/AFASX-Stock-Program/internal/app"
	"github.com/zupad/AFASX-Stock-Program/internal/config"
	"github.com/zupad/AFASX-Stock-Program/internal/dashboard"
	"github.com/zupad/AFASX-Stock-Program/internal/model"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	symbol, err := model.NormalizeSymbol(cfg.Analysis.Symbol)
	if err != nil {
		log.Fatalf("[FATAL] analysis.symbol: %v", err)
	}

	tr, cleanup := app.BuildTracker(cfg, prometheus.DefaultRegisterer)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := dashboard.NewHub(tr, symbol)
	go hub.Run(ctx)

	srv := dashboard.NewServer(cfg, tr, hub, prometheus.DefaultGatherer)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("[INFO] shutdown signal received, stopping...")
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("[FATAL] dashboard server: %v", err)
	}
	log.Println("[INFO] dashboard stopped")
}

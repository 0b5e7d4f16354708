package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zupad/AFASX-Stock-Program/internal/alert"
	"github.com/zupad/AFASX-Stock-Program/internal/app"
	"github.com/zupad/AFASX-Stock-Program/internal/cache"
	"github.com/zupad/AFASX-Stock-Program/internal/config"
	"github.com/zupad/AFASX-Stock-Program/internal/fetcher"
	"github.com/zupad/AFASX-Stock-Program/internal/metrics"
	"github.com/zupad/AFASX-Stock-Program/internal/render"
	"github.com/zupad/AFASX-Stock-Program/internal/scheduler"
	"github.com/zupad/AFASX-Stock-Program/internal/store"
	"github.com/zupad/AFASX-Stock-Program/internal/tracker"
)

const analyzeTimeout = 2 * time.Minute

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	godotenv.Load()

	args := os.Args[1:]
	cmd := "analyze"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

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

	switch cmd {
	case "analyze":
		runAnalyze(cfg, args)
	case "watch":
		runWatch(cfg, args)
	case "selftest":
		runSelftest(cfg)
	default:
		fmt.Fprintln(os.Stderr, "usage: tracker [analyze|watch|selftest] [flags]")
		os.Exit(2)
	}
}

func runAnalyze(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	symbol := fs.String("symbol", cfg.Analysis.Symbol, "ticker to analyze")
	period := fs.String("period", cfg.Analysis.Period, "lookback period (1mo, 3mo, 6mo, 1y, 2y, 5y, max)")
	fs.Parse(args)

	tr, cleanup := app.BuildTracker(cfg, prometheus.DefaultRegisterer)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	rep, err := tr.Analyze(ctx, *symbol, *period)
	if err != nil {
		log.Fatalf("[FATAL] analyze %s: %v", *symbol, err)
	}
	render.NewTableRenderer(os.Stdout).Render(rep)
}

func runWatch(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	symbol := fs.String("symbol", cfg.Analysis.Symbol, "ticker to watch")
	period := fs.String("period", cfg.Analysis.Period, "lookback period per run")
	fs.Parse(args)

	tr, cleanup := app.BuildTracker(cfg, prometheus.DefaultRegisterer)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, tr, *symbol, *period)
	if err := sched.Register(cfg.Schedule.WatchCron); err != nil {
		log.Fatalf("[FATAL] register watch task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing watch task now")
		go sched.RunNow()
	}

	log.Printf("[INFO] watching %s on cron %q. Press Ctrl+C to stop.", *symbol, cfg.Schedule.WatchCron)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
}

// runSelftest exercises the whole pipeline offline: synthetic bars, in-process
// cache, no persistence. Useful to verify a deployment without network access.
func runSelftest(cfg *config.Config) {
	tr := tracker.New(cfg,
		&fetcher.MockFetcher{Price: 7.45}, nil,
		store.NewNoop(), cache.NewMemoryCache(),
		metrics.New(prometheus.NewRegistry()),
		[]alert.Notifier{alert.NewLogNotifier()})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rep, err := tr.Analyze(ctx, cfg.Analysis.Symbol, cfg.Analysis.Period)
	if err != nil {
		log.Fatalf("[FATAL] selftest: %v", err)
	}
	render.NewTableRenderer(os.Stdout).Render(rep)
	log.Printf("[INFO] selftest passed: %d bars, %d indicator series", rep.Bars, len(rep.Indicators.Series))
}

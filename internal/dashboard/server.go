// Package dashboard serves the analysis pipeline over HTTP: a JSON API, a
// WebSocket quote stream, and the Prometheus scrape endpoint.
package dashboard

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zupad/AFASX-Stock-Program/internal/config"
	"github.com/zupad/AFASX-Stock-Program/internal/tracker"
)

// Server wires the gin engine, the tracker, and the quote hub.
type Server struct {
	Engine        *gin.Engine
	Tracker       *tracker.Tracker
	Hub           *Hub
	Addr          string
	DefaultPeriod string
}

// NewServer builds the engine with CORS, API routes, the WebSocket endpoint,
// and the metrics handler. Pass prometheus.DefaultGatherer outside of tests.
func NewServer(cfg *config.Config, tr *tracker.Tracker, hub *Hub, gatherer prometheus.Gatherer) *Server {
	r := gin.Default()
	r.SetTrustedProxies(nil)

	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Dashboard.AllowOrigins,
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Upgrade", "Connection"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	s := &Server{
		Engine:        r,
		Tracker:       tr,
		Hub:           hub,
		Addr:          cfg.Dashboard.ListenAddr,
		DefaultPeriod: cfg.Analysis.Period,
	}

	r.GET("/healthz", s.handleHealth)
	api := r.Group("/api")
	{
		api.GET("/report/:symbol", s.handleReport)
		api.GET("/history/:symbol", s.handleHistory)
		api.GET("/quote/:symbol", s.handleQuote)
		api.GET("/snapshots/:symbol", s.handleSnapshots)
	}
	r.GET("/ws", hub.HandleWS)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.Addr, Handler: s.Engine}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Printf("[INFO] dashboard listening on %s", s.Addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Println("[INFO] dashboard shutting down")
	return srv.Shutdown(shutCtx)
}

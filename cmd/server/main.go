package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parallel-timeline/internal/audio"
	"parallel-timeline/internal/navigation"
	"parallel-timeline/internal/platform/config"
	"parallel-timeline/internal/platform/logger"
	"parallel-timeline/internal/platform/metrics"
	"parallel-timeline/internal/session"
	"parallel-timeline/internal/timeline"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	timelinePath := config.GetEnv("TIMELINE_PATH", "timelines/timeline.json")
	appTitle := config.GetEnv("APP_TITLE", "Parallel Timeline")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	idleTimeout := config.GetEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute)
	reapInterval := config.GetEnvDuration("SESSION_REAP_INTERVAL", time.Minute)
	if reapInterval <= 0 {
		reapInterval = time.Minute
	}

	navCfg := navigation.DefaultConfig()
	navCfg.OverscrollBuffer = config.GetEnvInt("WHEEL_OVERSCROLL_BUFFER", navCfg.OverscrollBuffer)
	navCfg.SwipeThreshold = config.GetEnvFloat("SWIPE_THRESHOLD_PX", navCfg.SwipeThreshold)
	navCfg.SettleDebounce = config.GetEnvDuration("SCROLL_SETTLE_DEBOUNCE", navCfg.SettleDebounce)
	navCfg.MinScrollDeltaRatio = config.GetEnvFloat("SCROLL_MIN_DELTA_RATIO", navCfg.MinScrollDeltaRatio)
	volume := config.GetEnvFloat("AUDIO_DEFAULT_VOLUME", audio.DefaultVolume)

	log := logger.New(logLevel, logFormat)

	doc, err := timeline.LoadFile(timelinePath)
	if err != nil {
		log.Error("load timeline", "path", timelinePath, "error", err)
		os.Exit(1)
	}
	for _, issue := range timeline.Validate(doc) {
		log.Warn("timeline issue", "issue", issue.String())
	}
	tl := timeline.New(doc)

	met := metrics.New()
	repo := session.NewInMemoryRepository()
	svc := session.NewService(tl, repo, session.Config{
		Title:      appTitle,
		Navigation: navCfg,
		Volume:     volume,
	}, session.WithLogger(log), session.WithMetrics(met))
	h := session.NewHandler(svc, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() { met.SetActiveSessions(svc.ActiveCount()) }).ServeHTTP(w, r)
	})
	h.Register(r)

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	reapCtx, stopReaper := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(reapInterval)
		defer ticker.Stop()
		for {
			select {
			case <-reapCtx.Done():
				return
			case <-ticker.C:
				if n := svc.Reap(idleTimeout); n > 0 {
					log.Info("idle sessions reaped", "count", n)
				}
			}
		}
	}()

	log.Info("server starting",
		"port", port,
		"timeline", timelinePath,
		"pages", tl.PageCount(),
		"eras", len(tl.Eras),
		"app_tracks", len(tl.AppTracks),
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")
	stopReaper()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	svc.CloseAll()

	log.Info("server stopped")
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/veloji/blink/internal/adapters/http"
	wssignal "github.com/veloji/blink/internal/adapters/signal"
	"github.com/veloji/blink/internal/app"
	"github.com/veloji/blink/internal/config"
	"github.com/veloji/blink/internal/observe"
	"github.com/veloji/blink/internal/payments"
	"github.com/veloji/blink/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	var archive app.Archive
	var sweeper *cron.Cron
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			pingCancel()
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
		}
		pingCancel()
		log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")

		st := store.New(rdb)
		archive = st

		sweeper = cron.New()
		if _, err := sweeper.AddFunc("@midnight", func() {
			sweepCtx, sweepCancel := context.WithTimeout(context.Background(), time.Minute)
			defer sweepCancel()
			n, err := st.ExpireVIPs(sweepCtx)
			if err != nil {
				log.Error().Err(err).Msg("vip sweep failed")
				return
			}
			log.Info().Int("expired", n).Msg("vip sweep done")
		}); err != nil {
			log.Fatal().Err(err).Msg("failed to schedule vip sweep")
		}
		sweeper.Start()
	} else {
		log.Warn().Msg("no redis configured, reports/ratings/vip disabled")
	}

	metrics := observe.New()
	rooms := app.NewRooms(cfg.ChatDuration)
	selector := app.NewRandomSelector(time.Now().UnixNano())
	orch := app.NewOrchestrator(rooms, selector, archive, metrics)

	limiter := wssignal.NewMatchRateLimiter(cfg.MatchRateLimit, cfg.MatchRateWindow)
	ctl := wssignal.NewSignalWSController(orch, limiter)
	ctl.SendBuffer = cfg.SendBuffer
	pay := payments.New(cfg.StripeKey)

	r := router.SetupRouter(ctx, cfg, ctl, pay, metrics)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Blink server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	if sweeper != nil {
		sweeper.Stop()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DarkArtek/elena-118/internal/config"
	"github.com/DarkArtek/elena-118/internal/database"
	"github.com/DarkArtek/elena-118/internal/gemini"
	httpapi "github.com/DarkArtek/elena-118/internal/http"
	"github.com/DarkArtek/elena-118/internal/logger"
	"github.com/DarkArtek/elena-118/internal/repository"
	"github.com/DarkArtek/elena-118/internal/service"
	"github.com/DarkArtek/elena-118/internal/triage"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "elena-backend")
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	farmaciRepo := repository.NewFarmaciRepository(db, log)
	interventiRepo := repository.NewInterventiRepository(db, log)

	if n, err := farmaciRepo.Count(context.Background()); err == nil {
		log.Info("Drug registry loaded", zap.Int64("records", n))
	}

	geminiClient := gemini.NewClient(cfg.Gemini, log)
	if !geminiClient.Enabled() {
		log.Warn("GEMINI_API_KEY not set, running in offline mode")
	}

	classifier := triage.NewClassifier(log)
	analysisService := service.NewAnalysisService(classifier, geminiClient, interventiRepo, log)
	drugService := service.NewDrugService(farmaciRepo, geminiClient, log)

	feedClient := service.NewFeedClient(cfg.Loader.FeedURL, log)
	runLock := service.NewRedisRunLock(redisClient, cfg.Loader.LockTTL, log)
	loaderService := service.NewLoaderService(farmaciRepo, feedClient, runLock, cfg.Loader.BatchSize, log)

	dispatch := httpapi.NewDispatchHandler(analysisService, drugService, loaderService, log)
	router := httpapi.NewRouter(log)
	router.RegisterRoutes(dispatch)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Loader.Interval > 0 {
		go runLoaderScheduler(ctx, loaderService, cfg.Loader.Interval, log)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	log.Info("elena-backend started", zap.String("addr", cfg.HTTP.Addr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("Shutdown signal received")
		cancel()
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

// runLoaderScheduler esegue l'aggiornamento anagrafica a intervallo fisso.
// Un run concorrente (manuale o di un'altra replica) non è un errore.
func runLoaderScheduler(ctx context.Context, loader *service.LoaderService, interval time.Duration, log *zap.Logger) {
	log.Info("Feed loader scheduler enabled", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := loader.Run(ctx); err != nil && err != service.ErrRunInProgress {
				log.Error("Scheduled feed update failed", zap.Error(err))
			}
		}
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"curbfinder/internal/api"
	"curbfinder/internal/api/handlers"
	"curbfinder/internal/config"
	"curbfinder/internal/dataset"
	"curbfinder/internal/geo"
	"curbfinder/internal/pkg/logger"
	"curbfinder/internal/services"
	"curbfinder/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	// Initialize spatial index and services
	spatialIndex := geo.NewSpatialIndex(cfg.Index.Precision)
	coverage := geo.NewCoverageGenerator(cfg.Index.MaxCoverageCells)
	scorer := utils.NewCurbScoreCalculator(cfg.Scoring.DesignationWeight, cfg.Scoring.DistanceWeight)
	curbService := services.NewCurbService(spatialIndex, coverage, scorer, cfg.Search, log)

	if cfg.Dataset.Path != "" {
		records, loadErr := dataset.LoadFile(cfg.Dataset.Path)
		if loadErr != nil && len(records) == 0 {
			log.Fatal("failed to load dataset", zap.String("path", cfg.Dataset.Path), zap.Error(loadErr))
		}
		if loadErr != nil {
			log.Warn("dataset rows skipped", zap.Error(loadErr))
		}
		if _, err := curbService.Load(context.Background(), records); err != nil {
			log.Warn("curb records rejected", zap.Error(err))
		}
	}

	// Setup router
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	api.NewRouter(handlers.NewCurbHandler(curbService), log).Setup(engine)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting curbfinder server", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

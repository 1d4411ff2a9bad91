package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RIchpenny312/spy-options-api/internal/bucket"
	"github.com/RIchpenny312/spy-options-api/internal/client/provider"
	"github.com/RIchpenny312/spy-options-api/internal/config"
	cronrunner "github.com/RIchpenny312/spy-options-api/internal/cron"
	"github.com/RIchpenny312/spy-options-api/internal/db"
	"github.com/RIchpenny312/spy-options-api/internal/handler"
	"github.com/RIchpenny312/spy-options-api/internal/logger"
	gormrepository "github.com/RIchpenny312/spy-options-api/internal/repository/gorm"
	"github.com/RIchpenny312/spy-options-api/internal/service"
)

func main() {
	cfgPath := os.Getenv("SPY_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("SPY_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	loc, err := time.LoadLocation(cfg.Ingest.Timezone)
	if err != nil {
		logger.Fatal("invalid ingest timezone", zap.String("tz", cfg.Ingest.Timezone), zap.Error(err))
	}
	buckets := bucket.NewNormalizer(cfg.Ingest.BucketWidthMinutes, loc)

	providerHTTP := &http.Client{Timeout: cfg.Provider.Timeout}
	providerClient := provider.NewClient(providerHTTP, cfg.Provider.BaseURL, cfg.Provider.APIKey,
		cfg.Provider.Retries, cfg.Provider.RetryDelay)

	store := gormrepository.New(dbConn.Gorm)

	deltaEngine := &service.DeltaTrendEngine{
		Repo:           store,
		Logger:         logger,
		Buckets:        buckets,
		NeutralBand:    cfg.Signals.NeutralBand,
		BouncePctFloor: cfg.Signals.BouncePctFloor,
	}
	shiftDetector := &service.ShiftDetector{Repo: store, Logger: logger}
	darkPool := &service.DarkPoolAggregator{Repo: store, Logger: logger}
	rolling := &service.RollingAggregator{Repo: store, DefaultWindow: cfg.Signals.ShortWindow}
	ingest := &service.IngestService{
		Repo:        store,
		Provider:    providerClient,
		Buckets:     buckets,
		Logger:      logger,
		Deltas:      deltaEngine,
		Shifts:      shiftDetector,
		DarkPool:    darkPool,
		Symbols:     cfg.Ingest.Symbols,
		SnapshotRaw: cfg.Ingest.SnapshotRaw,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	defaultSymbol := ""
	if len(cfg.Ingest.Symbols) > 0 {
		defaultSymbol = cfg.Ingest.Symbols[0]
	}

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	metricsHandler := &handler.MetricsHandler{
		Repo:           store,
		Rolling:        rolling,
		Buckets:        buckets,
		DefaultSymbol:  defaultSymbol,
		ShortWindow:    cfg.Signals.ShortWindow,
		LongWindow:     cfg.Signals.LongWindow,
		IntradayWindow: cfg.Signals.IntradayWindow,
	}
	metricsHandler.Register(engine)
	shiftHandler := &handler.ShiftHandler{Repo: store, DefaultSymbol: defaultSymbol}
	shiftHandler.Register(engine)
	darkPoolHandler := &handler.DarkPoolHandler{
		DarkPool:          darkPool,
		Buckets:           buckets,
		DefaultWindowDays: cfg.DarkPool.WindowDays,
		DefaultLimit:      cfg.DarkPool.TopLevelsLimit,
		DefaultProximity:  cfg.DarkPool.Proximity,
	}
	darkPoolHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		if _, err := cronRunner.Add("ingest", cfg.Cron.Ingest, func(ctx context.Context) {
			ingest.RunCycle(ctx)
		}); err != nil {
			logger.Warn("cron register ingest failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()

		// First cycle runs immediately so the read API has data before the
		// first scheduled tick.
		go ingest.RunCycle(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

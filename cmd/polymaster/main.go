package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/bchung1201/PolyMaster/internal/catalog"
	clobclient "github.com/bchung1201/PolyMaster/internal/client/clob"
	gammaclient "github.com/bchung1201/PolyMaster/internal/client/gamma"
	llmclient "github.com/bchung1201/PolyMaster/internal/client/llm"
	newsclient "github.com/bchung1201/PolyMaster/internal/client/news"
	"github.com/bchung1201/PolyMaster/internal/config"
	cronrunner "github.com/bchung1201/PolyMaster/internal/cron"
	"github.com/bchung1201/PolyMaster/internal/db"
	"github.com/bchung1201/PolyMaster/internal/forecast"
	"github.com/bchung1201/PolyMaster/internal/gateway"
	"github.com/bchung1201/PolyMaster/internal/handler"
	"github.com/bchung1201/PolyMaster/internal/logger"
	gormrepository "github.com/bchung1201/PolyMaster/internal/repository/gorm"
	"github.com/bchung1201/PolyMaster/internal/risk"
	"github.com/bchung1201/PolyMaster/internal/service"
	"github.com/bchung1201/PolyMaster/internal/trading"

	_ "github.com/bchung1201/PolyMaster/docs"
)

func main() {
	cfgPath := os.Getenv("PM_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("PM_ENV_ONLY"); envOnlyRaw != "" {
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
	store := gormrepository.New(dbConn.Gorm)

	gammaHTTP := &http.Client{Timeout: cfg.Gamma.Timeout}
	gammaClient := gammaclient.NewClient(gammaHTTP, cfg.Gamma.BaseURL)
	gammaClient.SetRateLimit(cfg.Gamma.RatePerSec, cfg.Gamma.Burst)

	marketCatalog := &catalog.Catalog{
		Fetcher:   gammaClient,
		Logger:    logger,
		MarketTTL: cfg.Catalog.MarketTTL,
		EventTTL:  cfg.Catalog.EventTTL,
		PageLimit: cfg.Gamma.PageLimit,
	}

	clobHTTP := &http.Client{Timeout: cfg.Clob.Timeout}
	clobClient := clobclient.NewClient(clobHTTP, cfg.Clob.BaseURL, clobclient.Credentials{
		APIKey:     cfg.Clob.APIKey,
		APISecret:  cfg.Clob.APISecret,
		Passphrase: cfg.Clob.Passphrase,
		Address:    cfg.Clob.Funder,
	})

	var signer *clobclient.Signer
	if strings.TrimSpace(cfg.Clob.PrivateKey) != "" {
		signer, err = clobclient.NewSigner(cfg.Clob.PrivateKey, cfg.Clob.Funder)
		if err != nil {
			logger.Fatal("signer init failed", zap.Error(err))
		}
		logger.Info("order signer ready", zap.String("address", signer.Address()))
	} else {
		logger.Info("no private key configured, live order submission disabled")
	}
	venueGateway := &gateway.Clob{Client: clobClient, Signer: signer, Logger: logger}

	llmHTTP := &http.Client{Timeout: cfg.LLM.Timeout}
	llmClient := llmclient.NewClient(llmHTTP, cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Temperature)
	provider := &forecast.LLMProvider{
		Client:  llmClient,
		Logger:  logger,
		Default: cfg.Forecast.DefaultProbability,
		Timeout: cfg.Forecast.Timeout,
	}
	guarded := &forecast.Guarded{
		Provider: provider,
		Default:  cfg.Forecast.DefaultProbability,
		Logger:   logger,
	}

	newsHTTP := &http.Client{Timeout: cfg.News.Timeout}
	newsClient := newsclient.NewClient(newsHTTP, cfg.News.BaseURL, cfg.News.APIKey, cfg.News.PageSize)
	newsSvc := &service.NewsService{Client: newsClient, Repo: store, Logger: logger}

	orchestrator := &trading.Orchestrator{
		Catalog:   marketCatalog,
		Forecasts: guarded,
		Gateway:   venueGateway,
		Repo:      store,
		Risk: risk.Policy{
			MinOrderUSD: cfg.Risk.MinOrderUSD,
			MaxOrderUSD: cfg.Risk.MaxOrderUSD,
			MaxEdgeSize: cfg.Risk.MaxEdgeSize,
		},
		Headlines:    newsSvc,
		Logger:       logger,
		MinEdge:      cfg.Trading.MinEdge,
		BaseOrderUSD: cfg.Trading.BaseOrderUSD,
		MinVolume:    cfg.Trading.MinVolume,
		DryRun:       cfg.Trading.DryRun,
		ModelName:    cfg.LLM.Model,
	}

	priceStream := &service.PriceStreamService{
		Catalog:         marketCatalog,
		WSURL:           cfg.Clob.WSURL,
		MaxAssets:       cfg.PriceStream.MaxAssets,
		RefreshInterval: cfg.PriceStream.RefreshInterval,
		Logger:          logger,
	}
	autoTrader := &service.AutoTraderService{
		Orchestrator: orchestrator,
		Logger:       logger,
		Enabled:      cfg.AutoTrader.Enabled,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(handler.CORSMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	marketHandler := &handler.MarketHandler{
		Catalog: marketCatalog,
		Prices:  priceStream,
		Logger:  logger,
	}
	marketHandler.Register(engine)
	eventHandler := &handler.EventHandler{Catalog: marketCatalog}
	eventHandler.Register(engine)
	forecastHandler := &handler.ForecastHandler{
		Catalog:   marketCatalog,
		Forecasts: provider,
		Headlines: newsSvc,
		Logger:    logger,
	}
	forecastHandler.Register(engine)
	tradingHandler := &handler.TradingHandler{
		Orchestrator: orchestrator,
		Repo:         store,
		Gateway:      venueGateway,
		Logger:       logger,
	}
	tradingHandler.Register(engine)
	newsHandler := &handler.NewsHandler{Repo: store}
	newsHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	baseCtx := ctx

	// Warm the headline cache so the first cycles carry news context.
	if strings.TrimSpace(cfg.News.APIKey) != "" {
		logger.Info("running initial headline refresh")
		newsSvc.Refresh(baseCtx)
	}

	cronRunner := cronrunner.New(logger, baseCtx)
	if cfg.Cron.Enabled {
		if _, err := cronRunner.Add(cfg.Cron.AutoTrade, autoTrader.RunOnce); err != nil {
			logger.Warn("cron register auto trade failed", zap.Error(err))
		}
		if _, err := cronRunner.Add(cfg.Cron.NewsRefresh, newsSvc.Refresh); err != nil {
			logger.Warn("cron register news refresh failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	if cfg.PriceStream.Enabled {
		go func() {
			if err := priceStream.Run(baseCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("price stream stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 2)

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

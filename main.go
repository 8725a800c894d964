package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"

	"voyago/config"
	"voyago/cron"
	"voyago/database"
	leadRepoPkg "voyago/database/repository/lead"
	"voyago/middleware"
	"voyago/routes"
	"voyago/services/catalog"
	"voyago/services/crm"
	"voyago/services/dialog"
	"voyago/services/extractor"
	"voyago/services/intelligence"
	"voyago/services/search"
	"voyago/services/session"
	"voyago/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()
	utils.InitAnswerCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	leadRepo := leadRepoPkg.NewMongoLeadRepo()

	// vendor gateway and reference catalogs.
	vendor := search.NewTourvisorClient(
		config.AppConfig.TourvisorBaseURL,
		config.AppConfig.TourvisorAuthLogin,
		config.AppConfig.TourvisorAuthPass,
		time.Duration(config.AppConfig.TourvisorTimeout)*time.Second,
	)
	catalogSvc := catalog.NewCatalogService(vendor)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := catalogSvc.Refresh(ctx); err != nil {
			logger.Sugar().Warnf("main: catalog warm-up failed, seeded defaults stay active: %v", err)
		}
	}()

	searchSvc := search.NewSearchService(vendor, catalogSvc, config.AppConfig.MaxTourOffers)
	if n := config.AppConfig.PollIntervalSec; n > 0 {
		searchSvc.PollInterval = time.Duration(n) * time.Second
	}
	if n := config.AppConfig.MaxPollAttempts; n > 0 {
		searchSvc.MaxPollAttempts = n
	}
	if n := config.AppConfig.PollMinWaitSec; n > 0 {
		searchSvc.MinWait = time.Duration(n) * time.Second
	}

	// conversation state.
	sessionStore := session.NewRedisStore(utils.GetSessionCacheClient(),
		time.Duration(config.AppConfig.SessionTTLHours)*time.Hour)

	// language services. Without a Gemini key the keyword fallbacks carry
	// intent classification and FAQ floors alone.
	var llm intelligence.Generator
	if key := config.AppConfig.GeminiAPIKey; key != "" {
		gem, err := intelligence.NewGeminiClient(context.Background(), key, config.AppConfig.GeminiModel)
		if err != nil {
			logger.Sugar().Warnf("main: gemini unavailable, keyword fallbacks stay active: %v", err)
		} else {
			llm = gem
		}
	}
	answerCache := intelligence.NewAnswerCache(utils.GetAnswerCacheClient(), utils.AnswerCacheTTL)
	intelSvc := intelligence.NewIntelligenceService(llm, answerCache)

	// CRM lead hand-offs.
	queueClient := asynq.NewClient(utils.AsynqRedisOpt())
	defer queueClient.Close()
	leadSvc := crm.NewLeadService(leadRepo, queueClient)

	// conversation engine.
	dialogSvc := dialog.NewDialogService(sessionStore, extractor.New(), searchSvc, intelSvc, leadSvc)
	if n := config.AppConfig.PartySizeLimit; n > 0 {
		dialogSvc.PartyLimit = n
	}
	if n := config.AppConfig.HistoryWindow; n > 0 {
		dialogSvc.HistoryWindow = n
	}

	// background worker: lead hand-off notifications and catalog rebuilds.
	cron.InitQueueWorker(leadRepo, catalogSvc)

	routes.RegisterRoutes(router, dialogSvc, leadSvc)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetSessionCacheClient(), utils.GetAnswerCacheClient()},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	database.Disconnect()

	logger.Sugar().Info("main: server stopped gracefully")
}

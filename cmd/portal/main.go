package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/id-portal/api/swagger"
	"github.com/noah-isme/id-portal/internal/handler"
	internalmiddleware "github.com/noah-isme/id-portal/internal/middleware"
	"github.com/noah-isme/id-portal/internal/models"
	"github.com/noah-isme/id-portal/internal/registry"
	"github.com/noah-isme/id-portal/internal/repository"
	"github.com/noah-isme/id-portal/internal/service"
	"github.com/noah-isme/id-portal/pkg/cache"
	"github.com/noah-isme/id-portal/pkg/config"
	"github.com/noah-isme/id-portal/pkg/export"
	"github.com/noah-isme/id-portal/pkg/jobs"
	"github.com/noah-isme/id-portal/pkg/logger"
	corsmiddleware "github.com/noah-isme/id-portal/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/id-portal/pkg/middleware/requestid"
	"github.com/noah-isme/id-portal/pkg/storage"
)

// @title ID Portal API
// @version 1.0.0
// @description Backend for the ID application portal: admin dashboard, lost ID replacement and card previews
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close() //nolint:errcheck

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	registryClient := registry.NewClient(registry.ClientParams{
		Config:  registry.Config{BaseURL: cfg.Registry.BaseURL, Timeout: cfg.Registry.Timeout},
		Metrics: metricsSvc,
		Logger:  logr,
	})

	sessionRepo := repository.NewSessionRepository(redisClient, logr)
	flowRepo := repository.NewFlowRepository(redisClient, logr)

	validate := validator.New()
	sessionSvc := service.NewSessionService(sessionRepo, service.SessionServiceConfig{DefaultTTL: cfg.Session.TTL}, logr)
	authSvc := service.NewAuthService(registryClient, sessionSvc, validate, logr)

	boards := service.NewBoardRegistry()
	dashboardSvc := service.NewDashboardService(registryClient, boards, logr)
	sessionSvc.OnLogout(dashboardSvc.DropBoard)

	previewSvc := service.NewPreviewService(registryClient, export.NewCardSheetRenderer(), logr)
	trackingSvc := service.NewTrackingService(registryClient, logr)

	staging, err := storage.NewLocalStorage(cfg.Uploads.StagingDir)
	if err != nil {
		logr.Fatal("failed to prepare staging storage", zap.Error(err))
	}
	receiptStore, err := storage.NewLocalStorage(cfg.Receipts.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare receipt storage", zap.Error(err))
	}

	receiptSvc := service.NewReceiptService(service.ReceiptServiceParams{
		Flows:     flowRepo,
		Storage:   receiptStore,
		Renderer:  export.NewWaitingCardRenderer(),
		Signer:    storage.NewSignedURLSigner(cfg.Receipts.SignedURLSecret, cfg.Receipts.SignedURLTTL),
		URLPrefix: cfg.APIPrefix + "/receipts",
		Logger:    logr,
	})
	receiptQueue := jobs.NewQueue("receipts", receiptSvc.Handle, jobs.QueueConfig{
		Workers:    cfg.Receipts.WorkerConcurrency,
		MaxRetries: cfg.Receipts.WorkerRetries,
		Logger:     logr,
		Observer: func(job jobs.Job, outcome jobs.Outcome, err error) {
			metricsSvc.ObserveReceiptJob(job, outcome, err)
			receiptSvc.ObserveJob(job, outcome, err)
		},
	})
	receiptSvc.AttachQueue(receiptQueue)
	receiptQueue.Start(ctx)

	janitor := service.NewStorageJanitor(cfg.Receipts.Retention, logr,
		service.JanitorTarget{Name: "staging", Storage: staging},
		service.JanitorTarget{Name: "receipts", Storage: receiptStore},
		service.JanitorTarget{Name: "dashboard boards", Storage: boards, Retention: cfg.Session.TTL},
	)
	go janitor.Run(ctx, time.Hour)

	lostIDSvc := service.NewLostIDService(service.LostIDServiceParams{
		Flows:       flowRepo,
		Registry:    registryClient,
		Staging:     staging,
		Receipts:    receiptSvc,
		Metrics:     metricsSvc,
		Validator:   validate,
		Logger:      logr,
		FlowTTL:     cfg.LostID.FlowTTL,
		RenewalFee:  cfg.LostID.RenewalFee,
		MaxFileSize: cfg.Uploads.MaxFileSizeBytes,
	})

	authHandler := handler.NewAuthHandler(authSvc, sessionSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	previewHandler := handler.NewPreviewHandler(previewSvc)
	lostIDHandler := handler.NewLostIDHandler(lostIDSvc)
	receiptHandler := handler.NewReceiptHandler(receiptSvc)
	trackingHandler := handler.NewTrackingHandler(trackingSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, handler.PingFunc(func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}))

	r := gin.New()
	r.MaxMultipartMemory = cfg.Uploads.MaxFileSizeBytes
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metricsSvc != nil {
		r.Use(internalmiddleware.Metrics(metricsSvc))
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	authGroup := api.Group("/auth")
	authGroup.POST("/officer/login", authHandler.OfficerLogin)
	authGroup.POST("/officer/signup", authHandler.Signup)
	authGroup.POST("/admin/login", authHandler.AdminLogin)

	secured := api.Group("")
	secured.Use(internalmiddleware.Session(sessionSvc))
	secured.GET("/auth/me", authHandler.Me)
	secured.POST("/auth/logout", authHandler.Logout)

	api.GET("/track/:number", trackingHandler.Track)
	api.GET("/receipts/:token", receiptHandler.Download)

	admin := secured.Group("/admin")
	admin.Use(internalmiddleware.RequireRoles(models.RoleAdmin))
	admin.GET("/dashboard", dashboardHandler.Load)
	admin.GET("/applications/:id", dashboardHandler.ApplicationDetail)
	admin.GET("/applications/:id/card", previewHandler.Preview)
	admin.GET("/applications/:id/card.pdf", previewHandler.PDF)
	admin.POST("/applications/:id/approve", internalmiddleware.Audit(logr, "application.approve"), dashboardHandler.ApproveApplication)
	admin.POST("/applications/:id/reject", internalmiddleware.Audit(logr, "application.reject"), dashboardHandler.RejectApplication)
	admin.POST("/applications/:id/print", internalmiddleware.Audit(logr, "application.print"), dashboardHandler.PrintApplication)
	admin.POST("/applications/:id/dispatch", internalmiddleware.Audit(logr, "application.dispatch"), dashboardHandler.DispatchApplication)
	admin.POST("/officers/:id/approve", internalmiddleware.Audit(logr, "officer.approve"), dashboardHandler.ApproveOfficer)
	admin.POST("/officers/:id/reject", internalmiddleware.Audit(logr, "officer.reject"), dashboardHandler.RejectOfficer)
	admin.POST("/officers/:id/suspend", internalmiddleware.Audit(logr, "officer.suspend"), dashboardHandler.SuspendOfficer)
	admin.POST("/officers/:id/unsuspend", internalmiddleware.Audit(logr, "officer.unsuspend"), dashboardHandler.UnsuspendOfficer)
	admin.DELETE("/officers/:id", internalmiddleware.Audit(logr, "officer.delete"), dashboardHandler.DeleteOfficer)
	admin.POST("/constituencies", internalmiddleware.Audit(logr, "constituency.add"), dashboardHandler.AddConstituency)
	admin.DELETE("/constituencies/:id", internalmiddleware.Audit(logr, "constituency.delete"), dashboardHandler.DeleteConstituency)

	officer := secured.Group("")
	officer.Use(internalmiddleware.RequireRoles(models.RoleOfficer))
	officer.GET("/officer/applications", trackingHandler.OfficerApplications)
	officer.POST("/officer/applications/:id/card-arrived", internalmiddleware.Audit(logr, "card.arrived"), trackingHandler.CardArrived)
	officer.POST("/officer/applications/:id/card-collected", internalmiddleware.Audit(logr, "card.collected"), trackingHandler.CardCollected)

	flows := officer.Group("/lost-id/flows")
	flows.POST("", internalmiddleware.Audit(logr, "lostid.start"), lostIDHandler.Start)
	flows.GET("/:id", lostIDHandler.Get)
	flows.POST("/:id/search", lostIDHandler.Search)
	flows.PUT("/:id/documents/:kind", lostIDHandler.AttachDocument)
	flows.POST("/:id/submit", internalmiddleware.Audit(logr, "lostid.submit"), lostIDHandler.Submit)
	flows.POST("/:id/payment", internalmiddleware.Audit(logr, "lostid.payment"), lostIDHandler.Pay)
	flows.POST("/:id/confirm", internalmiddleware.Audit(logr, "lostid.confirm"), lostIDHandler.Confirm)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "registry", cfg.Registry.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	receiptQueue.Stop()
}

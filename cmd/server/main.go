// @title           RetouchLab Backend API
// @version         1.0.0
// @description     Backend API for a photo retouching studio: order intake with pay-per-photo checkout, VIP deferred billing with a monthly invoice sweep, promo and referral codes, order delivery, and the marketing-site content.

// @contact.name   API Support
// @contact.email  support@retouchlab.example

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"retouchlab-backend/internal/config"
	"retouchlab-backend/internal/database"
	"retouchlab-backend/internal/handlers"
	"retouchlab-backend/internal/middleware"
	"retouchlab-backend/internal/notify"
	"retouchlab-backend/internal/payments"
	"retouchlab-backend/internal/services"
	"retouchlab-backend/internal/supabase"
)

func main() {
	zapLogger, _ := zap.NewProduction()
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalw("configuration error", "error", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Migrations run against the same database the app uses, before any
	// client touches it.
	migrator, err := database.NewMigrator(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatalw("failed to initialize migrator", "error", err)
	}
	if err := migrator.Run(); err != nil {
		migrator.Close()
		logger.Fatalw("migration failed", "error", err)
	}
	migrator.Close()

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("failed to initialize database client", "error", err)
	}
	defer dbClient.Close()

	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		logger.Fatalw("failed to initialize supabase client", "error", err)
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseStorageBucket)
	if err != nil {
		logger.Fatalw("failed to initialize storage client", "error", err)
	}

	realtimeClient := supabase.NewRealtimeClient(supabaseClient.Supabase)
	paymentsClient := payments.NewClient(cfg.StripeSecretKey, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)
	mailClient := notify.NewClient(cfg.MailAPIBaseURL, cfg.MailAPIKey, cfg.MailFrom)
	if !mailClient.Enabled() {
		logger.Warn("mail API not configured, notifications disabled")
	}

	billingService := services.NewBillingService(dbClient, paymentsClient, mailClient, realtimeClient, logger)
	sweepService := services.NewSweepService(dbClient, mailClient, realtimeClient, logger)

	ordersHandler := handlers.NewOrdersHandler(billingService, dbClient, storageClient, logger)
	paymentsHandler := handlers.NewPaymentsHandler(billingService, logger)
	filesHandler := handlers.NewFilesHandler(dbClient, storageClient, realtimeClient, mailClient, logger)
	invoicesHandler := handlers.NewInvoicesHandler(dbClient, logger)
	billingAdminHandler := handlers.NewBillingAdminHandler(sweepService, logger)
	promosHandler := handlers.NewPromosHandler(dbClient, logger)
	referralsHandler := handlers.NewReferralsHandler(dbClient, logger)
	contentHandler := handlers.NewContentHandler(dbClient, storageClient, logger)
	clientsHandler := handlers.NewClientsHandler(dbClient, logger)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.GET("/health", handlers.HealthHandler)

	// Public marketing-site content, no auth.
	content := router.Group("/api/v1/content")
	content.GET("/examples", contentHandler.ListGalleryExamples)
	content.GET("/blog", contentHandler.ListBlogPosts)
	content.GET("/blog/:slug", contentHandler.GetBlogPost)
	content.GET("/homepage-images", contentHandler.ListHomepageImages)
	content.GET("/company", contentHandler.GetCompanyInfo)
	content.GET("/pricing", contentHandler.GetPricing)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.POST("/orders", ordersHandler.CreateOrder)
	api.GET("/orders", ordersHandler.ListOrders)
	api.GET("/orders/:order_id", ordersHandler.GetOrder)
	api.GET("/orders/:order_id/files", filesHandler.GetOrderFiles)

	api.POST("/payments/confirm", paymentsHandler.ConfirmPayment)

	api.GET("/invoices", invoicesHandler.ListMyInvoices)

	api.POST("/promos/redeem", promosHandler.Redeem)
	api.GET("/promos/balance", promosHandler.Balance)

	api.GET("/referrals/code", referralsHandler.MyCode)
	api.POST("/referrals/apply", referralsHandler.Apply)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin(dbClient))

	admin.GET("/orders", ordersHandler.AdminListOrders)
	admin.POST("/orders/:order_id/deliver", filesHandler.DeliverFiles)

	admin.GET("/invoices", invoicesHandler.AdminListInvoices)
	admin.POST("/invoices/:id/mark-paid", invoicesHandler.MarkPaid)
	admin.POST("/invoices/:id/mark-overdue", invoicesHandler.MarkOverdue)
	admin.POST("/invoices/:id/trash", invoicesHandler.Archive)
	admin.POST("/invoices/:id/restore", invoicesHandler.Restore)
	admin.DELETE("/invoices/:id", invoicesHandler.Delete)

	admin.POST("/billing/run-sweep", billingAdminHandler.RunSweep)
	admin.POST("/billing/reset", billingAdminHandler.ResetDeferredBilling)

	admin.GET("/promos", promosHandler.AdminList)
	admin.POST("/promos", promosHandler.AdminCreate)
	admin.PATCH("/promos/:id", promosHandler.AdminUpdate)
	admin.DELETE("/promos/:id", promosHandler.AdminDelete)

	admin.GET("/referrals", referralsHandler.AdminList)
	admin.POST("/referrals/:id/mark-paid", referralsHandler.MarkPaid)

	admin.GET("/clients", clientsHandler.List)
	admin.PATCH("/clients/:id", clientsHandler.Update)

	admin.POST("/content/examples", contentHandler.CreateGalleryExample)
	admin.DELETE("/content/examples/:id", contentHandler.DeleteGalleryExample)
	admin.POST("/content/examples/reorder", contentHandler.ReorderGalleryExamples)
	admin.GET("/content/blog", contentHandler.AdminListBlogPosts)
	admin.POST("/content/blog", contentHandler.CreateBlogPost)
	admin.PUT("/content/blog/:id", contentHandler.UpdateBlogPost)
	admin.DELETE("/content/blog/:id", contentHandler.DeleteBlogPost)
	admin.POST("/content/homepage-images", contentHandler.CreateHomepageImage)
	admin.DELETE("/content/homepage-images/:id", contentHandler.DeleteHomepageImage)
	admin.POST("/content/homepage-images/reorder", contentHandler.ReorderHomepageImages)
	admin.PUT("/content/company", contentHandler.UpdateCompanyInfo)
	admin.PUT("/content/pricing", contentHandler.UpdatePricing)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// The monthly sweep fires shortly after midnight on the first and bills
	// the month that just ended, so the reference time steps one day back.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.SweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := sweepService.Run(ctx, time.Now().AddDate(0, 0, -1)); err != nil {
			logger.Errorw("scheduled sweep failed", "error", err)
		}
	}); err != nil {
		logger.Fatalw("invalid sweep schedule", "schedule", cfg.SweepSchedule, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		scheduler.Start()
		<-ctx.Done()
		<-scheduler.Stop().Done()
		return nil
	})

	g.Go(func() error {
		logger.Infow("starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		logger.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatalw("application terminated with error", "error", err)
	}
}

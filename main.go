package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	svix "github.com/svix/svix-webhooks/go"
	"github.com/yourusername/rwa-intake/config"
	"github.com/yourusername/rwa-intake/handlers"
	"github.com/yourusername/rwa-intake/intake"
	"github.com/yourusername/rwa-intake/logging"
	"github.com/yourusername/rwa-intake/middleware"
	"github.com/yourusername/rwa-intake/migration"
	"github.com/yourusername/rwa-intake/notify"
	"github.com/yourusername/rwa-intake/users"
	"go.uber.org/zap"
)

type routes struct {
	earlyAccess *handlers.EarlyAccessHandler
	clerk       *handlers.ClerkWebhookHandler
	admin       *handlers.AdminHandler
}

func setupRouter(cfg *config.Config, log *zap.Logger, r routes) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS(cfg.AllowedOrigin))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "rwa-intake-api",
		})
	})

	api := router.Group("/api")
	{
		api.POST("/early-access", r.earlyAccess.Submit)
		api.POST("/early-access/confirmation", r.earlyAccess.SendConfirmation)

		if r.clerk != nil {
			api.POST("/webhooks/clerk", r.clerk.Clerk)
		}

		admin := api.Group("/admin", middleware.JwtAuthMiddleware(cfg), middleware.RequireRole("admin"))
		admin.POST("/migrations/early-access", r.admin.RunBackfill)
	}

	return router
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if !cfg.LogDev {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	dispatcher := notify.NewDispatcher(log, cfg.NotifyTimeout)

	var crm intake.CRM
	if cfg.CRMWebhookURL != "" {
		crm = notify.NewCRMClient(cfg.CRMWebhookURL, &http.Client{Timeout: cfg.NotifyTimeout})
	} else {
		log.Warn("N8N_WEBHOOK_URL not set, crm sync disabled")
	}

	var mailer intake.Mailer
	if cfg.ResendAPIKey != "" {
		mailer = notify.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom, cfg.NotifyTimeout)
	} else {
		log.Warn("RESEND_API_KEY not set, confirmation email disabled")
	}

	intakeSvc := intake.NewService(intake.NewGormStore(db), crm, mailer, dispatcher, log)
	userSvc := users.NewService(db, cfg.StellarNetwork, log)
	userSvc.Treasury = cfg.StellarTreasury
	if cfg.StellarTreasury == "" {
		log.Warn("STELLAR_TREASURY_ACCOUNT not set, wallets get no deposit address")
	}

	r := routes{
		earlyAccess: handlers.NewEarlyAccessHandler(intakeSvc, log),
		admin:       handlers.NewAdminHandler(migration.NewBackfill(db, userSvc, log), log),
	}
	if cfg.ClerkWebhookSecret != "" {
		wh, err := svix.NewWebhook(cfg.ClerkWebhookSecret)
		if err != nil {
			log.Fatal("invalid CLERK_WEBHOOK_SECRET", zap.Error(err))
		}
		r.clerk = handlers.NewClerkWebhookHandler(wh, userSvc, log)
	} else {
		log.Warn("CLERK_WEBHOOK_SECRET not set, auth webhook disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(cfg, log, r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("starting early access API server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	dispatcher.Wait()
}

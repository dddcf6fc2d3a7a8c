package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jls/financesuite/finance-backend/internal/config"
	"github.com/jls/financesuite/finance-backend/internal/handler"
	"github.com/jls/financesuite/finance-backend/internal/middleware"
	"github.com/jls/financesuite/finance-backend/internal/repository/postgres"
	"github.com/jls/financesuite/finance-backend/internal/repository/storage"
	"github.com/jls/financesuite/finance-backend/internal/service"
	"github.com/jls/financesuite/finance-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	companyRepo := postgres.NewCompanyRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	loanRepo := postgres.NewLoanRepository(pool)
	partnerTxRepo := postgres.NewPartnerTransactionRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	alertRepo := postgres.NewAlertRepository(pool)

	// Photo storage is optional; without credentials uploads are disabled
	var photoStorage storage.PhotoRepository
	if cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "" {
		s3Repo, err := storage.NewS3PhotoRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize photo storage")
		}
		photoStorage = s3Repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Photo storage initialized")
	} else {
		log.Warn().Msg("S3 credentials not set, photo uploads disabled")
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, companyRepo)
	companyService := service.NewCompanyService(companyRepo)
	customerService := service.NewCustomerService(customerRepo, loanRepo)
	loanService := service.NewLoanService(loanRepo, customerRepo)
	ledgerService := service.NewLedgerService(loanRepo, partnerTxRepo, expenseRepo)
	treasuryService := service.NewTreasuryService(partnerTxRepo, expenseRepo)
	reportService := service.NewReportService(loanRepo, customerRepo, companyRepo)
	photoService := service.NewPhotoService(photoStorage)
	alertScheduler := service.NewAlertScheduler(loanRepo, alertRepo)

	// WebSocket hub broadcasts domain events to connected dashboards
	hub := websocket.NewHub()
	loanService.SetEventPublisher(hub)
	treasuryService.SetEventPublisher(hub)

	// Create company provider adapter for auth middleware and the WebSocket
	// validator; both resolve the caller's company from the token subject.
	companyProvider := &companyProviderAdapter{authService: authService}

	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, companyProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket JWT validator")
	}

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, companyProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	companyHandler := handler.NewCompanyHandler(companyService)
	customerHandler := handler.NewCustomerHandler(customerService, photoService)
	loanHandler := handler.NewLoanHandler(loanService, alertScheduler)
	treasuryHandler := handler.NewTreasuryHandler(treasuryService)
	dashboardHandler := handler.NewDashboardHandler(ledgerService, alertRepo)
	reportHandler := handler.NewReportHandler(reportService)
	wsHandler := handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// WebSocket endpoint (token auth via query param)
	e.GET("/ws", wsHandler.HandleWS)

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, authHandler, companyHandler, customerHandler, loanHandler, treasuryHandler, dashboardHandler, reportHandler)

	// Background reminder sync keeps scheduled alerts aligned with the
	// schedules as days roll over.
	alertWorker := service.NewAlertWorker(alertScheduler, companyRepo, log.Logger, service.AlertWorkerConfig{
		Interval: cfg.AlertSyncInterval,
	})
	alertWorker.Start(context.Background())

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	alertWorker.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// companyProviderAdapter adapts AuthService to middleware.CompanyProvider
type companyProviderAdapter struct {
	authService *service.AuthService
}

// GetCompanyByAuth0ID implements middleware.CompanyProvider
func (a *companyProviderAdapter) GetCompanyByAuth0ID(auth0ID string) (int32, error) {
	company, err := a.authService.GetCompanyByAuth0ID(auth0ID)
	if err != nil {
		return 0, err
	}
	return company.ID, nil
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}

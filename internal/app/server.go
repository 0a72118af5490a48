// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"life_lesson_backend/internal/config"
	"life_lesson_backend/internal/firebase"
	"life_lesson_backend/internal/jobs"
	"life_lesson_backend/internal/lesson"
	"life_lesson_backend/internal/middleware"
	"life_lesson_backend/internal/payment"
	"life_lesson_backend/internal/report"
	"life_lesson_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	userHandler    *user.Handler
	lessonHandler  *lesson.Handler
	reportHandler  *report.Handler
	paymentHandler *payment.Handler

	reportCleanupJob *jobs.ReportCleanupJob

	authMW      gin.HandlerFunc
	adminRoleMW gin.HandlerFunc
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	userHandler *user.Handler,
	lessonHandler *lesson.Handler,
	reportHandler *report.Handler,
	paymentHandler *payment.Handler,
	reportCleanupJob *jobs.ReportCleanupJob,
	firebaseService *firebase.Service,
	userService user.Service,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Stripe-Signature", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.Authenticate(firebaseService, logger.Named("AuthMiddleware"))
	adminRoleMW := middleware.RequireAdmin(userService, logger.Named("AdminMiddleware"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Life Lesson API is healthy!"})
	})

	v1 := router.Group("/api/v1")

	userHandler.RegisterRoutes(v1, authMW, adminRoleMW)
	lessonHandler.RegisterRoutes(v1, authMW, adminRoleMW)
	reportHandler.RegisterRoutes(v1, authMW, adminRoleMW)
	paymentHandler.RegisterRoutes(v1, authMW)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:       httpServer,
		router:           router,
		cfg:              cfg,
		logger:           logger,
		userHandler:      userHandler,
		lessonHandler:    lessonHandler,
		reportHandler:    reportHandler,
		paymentHandler:   paymentHandler,
		reportCleanupJob: reportCleanupJob,
		authMW:           authMW,
		adminRoleMW:      adminRoleMW,
	}, nil
}

func (s *Server) Start() error {
	if s.reportCleanupJob != nil {
		if err := s.reportCleanupJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start report cleanup job", zap.Error(err))
		}
	} else {
		s.logger.Info("Report cleanup job is not configured, skipping start.")
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.reportCleanupJob != nil {
		s.reportCleanupJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

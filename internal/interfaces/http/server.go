// Package http is the Presenter boundary: it translates HTTP requests
// into debt service calls and pushes collection snapshots to connected
// clients.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haekalr/kasbon/internal/debt"
	"github.com/haekalr/kasbon/internal/export"
	"github.com/haekalr/kasbon/internal/stream"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server wires the gin router around the debt service.
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	handler    *Handler
	logger     *zap.Logger
}

// NewServer creates the HTTP server and its routes.
func NewServer(
	config ServerConfig,
	service *debt.Service,
	hub *stream.Hub,
	excel *export.ExcelWriter,
	gateSecret string,
	maxPhotoBytes int64,
	logger *zap.Logger,
) *Server {
	handler := NewHandler(service, hub, excel, gateSecret, maxPhotoBytes, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "kasbon",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/debts", handler.ListDebts)
		api.GET("/debts/stream", handler.StreamDebts)
		api.GET("/debts/export", handler.ExportDebts)
		api.POST("/debts", handler.SubmitDebt)
		api.PUT("/debts/:id", handler.EditDebt)
		api.DELETE("/debts/:id", handler.DeleteDebt)
		api.POST("/photos", handler.UploadPhoto)
	}

	return &Server{
		config: config,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
		},
		handler: handler,
		logger:  logger,
	}
}

// ListenAndServe starts serving. It blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests. SSE streams end when their client
// contexts are cancelled.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// loggingMiddleware logs each request with zap.
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

// corsMiddleware allows the browser form to talk to the API from any
// origin; this is a personal tool, not a multi-tenant service.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Action-Password")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

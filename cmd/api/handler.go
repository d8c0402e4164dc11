package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	deviceDelivery "todo-backend/internal/device/delivery"
	deviceRepo "todo-backend/internal/device/repository"
	taskDelivery "todo-backend/internal/task/delivery"
	taskUsecasePkg "todo-backend/internal/task/usecase"
	"todo-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	taskHandler     *taskDelivery.TaskHandler
	deviceHandler   *deviceDelivery.DeviceHandler
	settingsHandler *SettingsHandler
	allowedOrigins  []string
	logger          zerolog.Logger
}

func NewHandler(taskUc taskUsecasePkg.TaskUsecase, devices deviceRepo.DeviceRepository, cfg *config.Config, pushEnabled bool, logger zerolog.Logger) *Handler {
	return &Handler{
		taskHandler:     taskDelivery.NewTaskHandler(taskUc),
		deviceHandler:   deviceDelivery.NewDeviceHandler(devices),
		settingsHandler: NewSettingsHandler(cfg, pushEnabled),
		allowedOrigins:  cfg.CORSAllowedOrigins,
		logger:          logger,
	}
}

// Router builds the gin engine with middleware and routes
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger))

	r.Use(corsMiddleware(h.allowedOrigins))

	SetupRoutes(r, h.taskHandler, h.deviceHandler, h.settingsHandler)
	return r
}

// Start serves until ctx is done, then shuts down gracefully
func (h *Handler) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info().Str("addr", addr).Msg("api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	h.logger.Info().Msg("api stopped")
	return nil
}

// corsMiddleware answers browsers only for allowlisted origins. Requests from
// any other origin are refused before reaching a handler, so a foreign page
// cannot trigger mutations with simple requests either. Requests without an
// Origin header (curl, the CLI) pass through untouched.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			c.Next()
			return
		}

		c.Writer.Header().Add("Vary", "Origin")
		if !originAllowed(origin, allowed) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "origin not allowed"})
			return
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// originAllowed matches exact origins, "*", and patterns ending in ":*"
// which accept any port on that scheme and host.
func originAllowed(origin string, allowed []string) bool {
	for _, pattern := range allowed {
		if pattern == "*" || pattern == origin {
			return true
		}
		base, ok := strings.CutSuffix(pattern, ":*")
		if !ok {
			continue
		}
		if origin == base {
			return true
		}
		port, ok := strings.CutPrefix(origin, base+":")
		if ok && port != "" && strings.Trim(port, "0123456789") == "" {
			return true
		}
	}
	return false
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := logger.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

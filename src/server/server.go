package server

import (
	"BikeSharingDashboard/src/dashboard"
	"BikeSharingDashboard/src/storage"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// NewRouter 配置路由
func NewRouter(store *dashboard.Store, logger *storage.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	h := &handler{store: store, logger: logger}
	r.GET("/", h.page)
	r.GET("/api/summary", h.summary)
	r.GET("/charts/:file", h.chartPNG)
	r.GET("/export.xlsx", h.exportXLSX)
	r.GET("/logs", h.logs)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		s := store.Get()
		if s == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"range":     s.Bounds().String(),
			"loaded_at": s.Dataset().LoadedAt.Format(time.RFC3339),
		})
	})
	return r
}

// RequestLogger 请求日志写入storage.Logger
func RequestLogger(logger *storage.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		msg := fmt.Sprintf("[HTTP] %s %s %d %v %s",
			c.Request.Method, c.Request.URL.RequestURI(), c.Writer.Status(), time.Since(start), c.ClientIP())
		switch {
		case c.Writer.Status() >= 500:
			logger.Error(msg)
		case c.Writer.Status() >= 400:
			logger.Warning(msg)
		default:
			logger.Debug(msg)
		}
	}
}

// Run 启动HTTP服务，ctx取消后优雅关闭
func Run(ctx context.Context, addr string, h http.Handler, logger *storage.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("HTTP服务启动: %s", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("HTTP服务关闭中")
	return srv.Shutdown(shutdownCtx)
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"redditsave/pkg/logger"
)

// Server serves an archive location read-only
type Server struct {
	root   string
	engine *gin.Engine
	logger logger.Logger
}

// New creates a Server for root, which must be a directory
func New(root string, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive location: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(log), readOnly(), hideDotfiles())
	engine.StaticFS("/", gin.Dir(root, true))

	return &Server{root: root, engine: engine, logger: log}, nil
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoWithFields("Serving archive", map[string]interface{}{
			"root": s.root,
			"addr": addr,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	}
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.LogRequest(log, c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			float64(time.Since(start).Microseconds())/1000)
	}
}

func readOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead:
			c.Next()
		default:
			c.Header("Allow", "GET, HEAD")
			c.AbortWithStatus(http.StatusMethodNotAllowed)
		}
	}
}

// hideDotfiles keeps run state and the lock file private
func hideDotfiles() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, segment := range strings.Split(c.Request.URL.Path, "/") {
			if strings.HasPrefix(segment, ".") {
				c.AbortWithStatus(http.StatusNotFound)
				return
			}
		}
		c.Next()
	}
}

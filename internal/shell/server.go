// Package shell serves the application's pages over HTTP on the local machine.
//
// Every page resolves through the router against the process session: guarded sections answer
// 302 to /login when the session may not see them, whichever page was asked for. A few pages
// also carry data fetched from the API on the user's behalf.
package shell

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/shiplabel-dev/shiplabel/internal/app"
	"github.com/shiplabel-dev/shiplabel/internal/router"
)

const shutdownTimeout = 10 * time.Second

// Server represents the local HTTP shell
type Server struct {
	router  *gin.Engine
	app     *app.App
	addr    string
	origins []string
	logger  zerolog.Logger
	version string
}

// New creates a shell serving a's session
func New(a *app.App, logger zerolog.Logger, version string) *Server {
	s := &Server{
		app:     a,
		addr:    a.Config.Shell.Addr,
		origins: a.Config.Shell.AllowedOrigins,
		logger:  logger,
		version: version,
	}
	s.setupRouter()
	return s
}

// Handler returns the shell's HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	if len(s.origins) > 0 {
		s.router.Use(cors.New(cors.Config{
			AllowOrigins:     s.origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
			ExposeHeaders:    []string{"Content-Length", "Location"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/session", s.getSession)

	// Public pages
	for _, r := range s.app.Router.Public() {
		s.router.GET(r.Path, s.page)
	}
	s.router.POST(router.PathLogin, s.login)
	s.router.POST(router.PathRegister, s.register)
	s.router.POST("/logout", s.logout)

	// Guarded sections
	data := s.dataPages()
	for _, sec := range s.app.Router.Sections() {
		group := s.router.Group(sec.Prefix)
		group.Use(GuardMiddleware(s.app, s.logger))

		group.GET("", s.page)
		for _, r := range sec.Routes {
			if h, ok := data[sec.Path(r.Page)]; ok {
				group.GET("/"+r.Path, h)
				continue
			}
			group.GET("/"+r.Path, s.page)
		}
	}

	mainGroup := s.router.Group(router.PrefixMain)
	mainGroup.Use(GuardMiddleware(s.app, s.logger))
	mainGroup.POST("/"+router.PageOrderLabel, s.createShipment)

	adminGroup := s.router.Group(router.PrefixAdmin)
	adminGroup.Use(GuardMiddleware(s.app, s.logger))
	adminGroup.PUT("/"+router.PageUsers+"/:id", s.updateUser)
	adminGroup.DELETE("/"+router.PageUsers+"/:id", s.deleteUser)

	// Unknown paths still run the section guard first
	s.router.NoRoute(s.notFound)
}

// dataPages are the pages that carry API data, by absolute path
func (s *Server) dataPages() map[string]gin.HandlerFunc {
	return map[string]gin.HandlerFunc{
		router.PrefixMain + "/" + router.PageOrders:     s.ordersPage,
		router.PrefixMain + "/" + router.PageOrderLabel: s.orderLabelPage,
		router.PrefixAdmin + "/" + router.PageUsers:     s.usersPage,
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "shiplabel-shell",
		"version":   s.version,
	})
}

// Run listens on the configured address and serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       300 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("Starting HTTP shell")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down HTTP shell...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP shell")
		return err
	}

	s.logger.Info().Msg("HTTP shell shutdown complete")
	return nil
}

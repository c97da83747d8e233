package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/memmap/internal/codec"
	"github.com/danmuck/memmap/internal/config"
	"github.com/danmuck/memmap/internal/logging"
	"github.com/danmuck/memmap/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Server exposes elaboration, conversion and schema export over HTTP.
type Server struct {
	Name     string
	Addr     string
	Appeared time.Time

	cfg           config.ServiceConfig
	defaultFormat codec.Format
	router        *gin.Engine
}

func New(cfg config.ServiceConfig) (*Server, error) {
	if err := config.ValidateServiceConfig(cfg); err != nil {
		return nil, err
	}
	format, err := codec.ParseFormat(cfg.DefaultFormat)
	if err != nil {
		return nil, err
	}
	if format == codec.FormatAuto {
		format = codec.FormatJSON
	}

	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestID())
	r.Use(observability.RequestLogger(logging.Component("http")))
	r.Use(observability.RequestMetricsMiddleware(cfg.Name))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  normalizeOrigins(cfg.CorsOrigins),
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type", observability.RequestIDHeader},
		ExposeHeaders: []string{observability.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		Name:          cfg.Name,
		Addr:          cfg.Addr,
		Appeared:      time.Now(),
		cfg:           cfg,
		defaultFormat: format,
		router:        r,
	}
	s.RegisterRoutes()
	return s, nil
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("service", s.Name).Str("addr", s.Addr).Msg("memmap service started")
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

	timeout := s.cfg.ShutdownTimeout()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	log.Info().Str("service", s.Name).Msg("memmap service stopping")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}

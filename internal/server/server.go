package server

import (
	"time"

	"github.com/danmuck/pgmctl/internal/observability"
	"github.com/danmuck/pgmctl/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const Version = "0.1.0"

// Server exposes the decode service over HTTP.
type Server struct {
	Addr     string
	Appeared time.Time

	svc    *service.Service
	router *gin.Engine
}

func Appear(svc *service.Service) *Server {
	observability.RegisterMetrics()
	cfg := svc.Config()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Content-Encoding"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		Addr:     cfg.HTTPAddr,
		Appeared: time.Now(),
		svc:      svc,
		router:   r,
	}
	s.RegisterRoutes()
	return s
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) Serve() error {
	log.Info().Str("addr", s.Addr).Msg("pgmctl server listening")
	return s.router.Run(s.Addr)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}

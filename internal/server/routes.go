package server

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/danmuck/pgmctl/internal/auth"
	"github.com/danmuck/pgmctl/internal/pgm"
	"github.com/danmuck/pgmctl/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	contentTypePGM = "image/x-portable-graymap"
	httpSource     = "http"
)

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": "pgmctl",
			"version": Version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	decode := s.router.Group("/")
	if token := s.svc.Config().AuthToken; token != "" {
		decode.Use(auth.Require(auth.StaticToken{Token: token}))
	}
	decode.Use(limitBody(s.svc.Config().MaxBodyBytes))

	// Body is a PGM stream, optionally gzip or zstd compressed.
	decode.POST("/decode", func(c *gin.Context) {
		report, err := s.svc.Inspect(httpSource, c.Request.Body)
		if err != nil {
			c.JSON(statusFor(err), report)
			return
		}
		c.JSON(http.StatusOK, report)
	})

	decode.POST("/frames/:index", func(c *gin.Context) {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil || index < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "index must be a non-negative integer"})
			return
		}
		img, declared, err := s.svc.Frame(httpSource, c.Request.Body, index)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error(), "kind": pgm.Kind(err)})
			return
		}
		var buf bytes.Buffer
		if err := pgm.WriteFrame(&buf, img, declared); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": pgm.Kind(err)})
			return
		}
		c.Data(http.StatusOK, contentTypePGM, buf.Bytes())
	})
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrFrameNotFound):
		return http.StatusNotFound
	case errors.Is(err, pgm.ErrIO):
		return http.StatusBadRequest
	case errors.Is(err, pgm.ErrBadFormatString),
		errors.Is(err, pgm.ErrBadNumericValue),
		errors.Is(err, pgm.ErrBadCommentString),
		errors.Is(err, pgm.ErrBadDataContent):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

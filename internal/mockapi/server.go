package mockapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roach88/storefront/internal/backend"
)

// Server serves a Store over HTTP with json-server compatible routes:
//
//	GET /products    paginated, filtered product list + X-Total-Count
//	GET /categories  distinct category labels
//	GET /brands      distinct brand labels
type Server struct {
	store   *Store
	logger  *slog.Logger
	latency time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithLatency delays every response by d, or until the client goes away.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

// NewServer creates a Server for store.
func NewServer(store *Store, opts ...Option) *Server {
	s := &Server{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the gin engine. The caller owns gin.SetMode.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests(), s.delay())

	r.GET("/products", s.listProducts)
	r.GET("/categories", s.listLabels(s.store.Categories))
	r.GET("/brands", s.listLabels(s.store.Brands))
	return r
}

func (s *Server) listProducts(c *gin.Context) {
	items, total, err := s.store.Query(c.Request.URL.Query())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrBadQuery) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.Header(backend.TotalCountHeader, strconv.Itoa(total))
	c.Header("Access-Control-Expose-Headers", backend.TotalCountHeader)
	c.JSON(http.StatusOK, items)
}

func (s *Server) listLabels(labels func() []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, labels())
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) delay() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.latency <= 0 {
			return
		}
		t := time.NewTimer(s.latency)
		defer t.Stop()
		select {
		case <-t.C:
		case <-c.Request.Context().Done():
			c.Abort()
		}
	}
}

package server

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ironsheep/edgecam/internal/publish"
	"github.com/ironsheep/edgecam/internal/settings"
)

// Defaults for Config fields left at their zero value.
const (
	DefaultAddr           = ":8081"
	DefaultJPEGQuality    = 80
	DefaultStreamInterval = 50 * time.Millisecond
	shutdownTimeout       = 5 * time.Second
)

// Config tunes the HTTP server.
type Config struct {
	// Addr is the listen address, e.g. ":8081".
	Addr string `yaml:"listen"`

	// PreviewQuality is the JPEG quality of /preview.jpg.
	PreviewQuality int `yaml:"preview_quality"`

	// StreamInterval is how often /stream polls for a new frame.
	StreamInterval time.Duration `yaml:"stream_interval"`
}

// Snapshotter returns the last presented surface image, or nil.
type Snapshotter interface {
	Snapshot() image.Image
}

// Deps are the components the handlers read and write.
type Deps struct {
	Publisher *publish.Publisher
	Settings  *settings.Channel

	// Stats, when set, backs GET /stats.
	Stats func() interface{}

	// Preview, when set, backs GET /preview.jpg.
	Preview Snapshotter

	Logger *zap.Logger
}

// Server is the HTTP interface of the edge camera.
type Server struct {
	cfg      Config
	pub      *publish.Publisher
	settings *settings.Channel
	stats    func() interface{}
	preview  Snapshotter
	log      *zap.Logger
	engine   *gin.Engine

	mu       sync.Mutex
	listener net.Listener
	closing  chan struct{}
}

// New creates a server and registers its routes.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Publisher == nil {
		return nil, errors.New("server: publisher is required")
	}
	if deps.Settings == nil {
		return nil, errors.New("server: settings channel is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.PreviewQuality <= 0 {
		cfg.PreviewQuality = DefaultJPEGQuality
	}
	if cfg.StreamInterval <= 0 {
		cfg.StreamInterval = DefaultStreamInterval
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		pub:      deps.Publisher,
		settings: deps.Settings,
		stats:    deps.Stats,
		preview:  deps.Preview,
		log:      log,
		closing:  make(chan struct{}),
	}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(recovery(s.log), requestLogger(s.log), cors())

	r.GET("/frame.jpg", s.handleFrame)
	r.GET("/status", s.handleStatus)
	r.POST("/settings", s.handleSettings)
	r.GET("/stats", s.handleStats)
	r.GET("/preview.jpg", s.handlePreview)
	r.GET("/stream", s.handleStream)
	r.NoRoute(s.handleFallback)
	return r
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Listen binds the listen address and clears the publisher to idle.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.pub.Reset()
	s.log.Info("http server listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or "" before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve handles requests until ctx is cancelled, then shuts down gracefully.
// Listen must have succeeded first.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("server: Serve called before Listen")
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	// websocket connections are hijacked and not tracked by Shutdown
	close(s.closing)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("http shutdown incomplete", zap.Error(err))
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	s.log.Info("http server stopped")
	return nil
}

package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/xmlrpc/codec"
	"github.com/kbukum/xmlrpc/component"
	"github.com/kbukum/xmlrpc/logger"
	"github.com/kbukum/xmlrpc/observability"
	"github.com/kbukum/xmlrpc/server/endpoint"
	"github.com/kbukum/xmlrpc/server/middleware"
	"github.com/kbukum/xmlrpc/util"
)

// Server serves XML-RPC calls on a Gin engine.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger
	codec      codec.Codec
	methods    *Methods
	tracer     trace.Tracer
	metrics    *observability.RPCMetrics
	checker    endpoint.HealthChecker
	tp         trace.TracerProvider
	mp         metric.MeterProvider

	mu       sync.RWMutex
	listener net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithCodec replaces the XML codec.
func WithCodec(c codec.Codec) Option {
	return func(s *Server) { s.codec = c }
}

// WithTracerProvider sets the tracer provider. Defaults to the otel global.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) { s.tp = tp }
}

// WithMeterProvider sets the meter provider. Defaults to the otel global.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Server) { s.mp = mp }
}

// WithHealthChecker sets what /health reports. Defaults to the server's own
// health.
func WithHealthChecker(checker endpoint.HealthChecker) Option {
	return func(s *Server) { s.checker = checker }
}

// New creates a server with the standard middleware, the /health and
// /version endpoints, and the RPC endpoint at cfg.Path.
func New(cfg Config, log *logger.Logger, opts ...Option) (*Server, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	// Gin's debug output follows the server logger's level.
	if log.Zerolog().GetLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:  gin.New(),
		config:  cfg,
		log:     log.WithComponent("xmlrpc-server"),
		methods: NewMethods(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.codec == nil {
		s.codec = codec.NewXML()
	}
	if s.tp == nil {
		s.tp = otel.GetTracerProvider()
	}
	if s.mp == nil {
		s.mp = otel.GetMeterProvider()
	}
	if s.checker == nil {
		s.checker = func(ctx context.Context) []component.Health {
			return []component.Health{s.Health(ctx)}
		}
	}
	s.tracer = s.tp.Tracer(observability.InstrumentationName)
	metrics, err := observability.NewRPCMetrics(s.mp.Meter(observability.InstrumentationName), observability.SideServer)
	if err != nil {
		return nil, err
	}
	s.metrics = metrics

	if err := s.routes(); err != nil {
		return nil, err
	}

	var handler http.Handler = s.engine
	if !cfg.TLS.IsEnabled() {
		// h2c serves HTTP/2 cleartext alongside HTTP/1.1.
		handler = h2c.NewHandler(s.engine, &http2.Server{
			MaxConcurrentStreams: 250,
			IdleTimeout:          time.Duration(cfg.IdleTimeout) * time.Second,
		})
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}
	return s, nil
}

func (s *Server) routes() error {
	s.engine.Use(
		middleware.Recovery(s.log, s.codec),
		middleware.RequestID(),
		middleware.RequestLogger(s.log),
	)
	s.engine.GET("/health", endpoint.Health("xmlrpc", s.checker))
	s.engine.GET("/version", endpoint.Version())

	limit, err := util.ParseSize(s.config.MaxBodySize)
	if err != nil {
		return err
	}
	chain := []gin.HandlerFunc{middleware.BodySizeLimit(limit)}
	switch s.config.Auth.Mode {
	case AuthBasic:
		chain = append(chain, middleware.BasicAuth(s.config.Auth.Realm, s.config.Auth.Users))
	case AuthDigest:
		chain = append(chain, middleware.DigestAuth(middleware.DigestConfig{
			Realm: s.config.Auth.Realm,
			Users: s.config.Auth.Users,
		}))
	}
	chain = append(chain, s.handleRPC)
	s.engine.POST(s.config.Path, chain...)

	return s.methods.Register("system.listMethods", func(context.Context, []any) (any, error) {
		return s.methods.Names(), nil
	})
}

// Register adds a method.
func (s *Server) Register(name string, h HandlerFunc) error {
	if err := s.methods.Register(name, h); err != nil {
		return err
	}
	s.log.Debug("Method registered", logger.Fields(logger.FieldMethod, name))
	return nil
}

// Methods returns the method registry.
func (s *Server) Methods() *Methods { return s.methods }

// Handler returns the root handler, for use with httptest.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	if s.config.TLS.IsEnabled() {
		tlsCfg, err := s.config.TLS.ServerConfig()
		if err != nil {
			_ = ln.Close()
			return err
		}
		ln = tls.NewListener(ln, tlsCfg)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("XML-RPC server started", logger.Fields(
		"addr", ln.Addr().String(),
		"path", s.config.Path,
		"auth", s.config.Auth.Mode,
	))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down XML-RPC server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s.mu.Lock()
	s.listener = nil
	s.mu.Unlock()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// URL returns the RPC endpoint URL.
func (s *Server) URL() string {
	scheme := "http"
	if s.config.TLS.IsEnabled() {
		scheme = "https"
	}
	return scheme + "://" + s.Addr() + s.config.Path
}

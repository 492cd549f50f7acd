package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jackzampolin/slidedeck/internal/api"
	"github.com/jackzampolin/slidedeck/internal/config"
	"github.com/jackzampolin/slidedeck/internal/deck"
	"github.com/jackzampolin/slidedeck/internal/home"
	"github.com/jackzampolin/slidedeck/internal/layout"
	"github.com/jackzampolin/slidedeck/internal/llmcall"
	"github.com/jackzampolin/slidedeck/internal/manual"
	"github.com/jackzampolin/slidedeck/internal/prompts"
	"github.com/jackzampolin/slidedeck/internal/providers"
	"github.com/jackzampolin/slidedeck/internal/server/endpoints"
	"github.com/jackzampolin/slidedeck/internal/svcctx"
)

// Server is the slidedeck HTTP server.
// It loads the template once on start and serves every deck from that index.
type Server struct {
	httpServer *http.Server
	registry   *providers.Registry
	prompts    *prompts.Resolver
	recorder   *llmcall.Recorder
	configMgr  *config.Manager
	home       *home.Dir
	logger     *slog.Logger

	templatePath string
	manualPath   string

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// TemplatePath is the .pptx/.potx master. Defaults to defaults.template
	// resolved against the masters directory.
	TemplatePath string
	// ManualPath is the slide manual. Defaults to defaults.manual; when the
	// file is missing a manual is drafted from the template.
	ManualPath string
	// Home is the slidedeck home directory (decks, uploads, call log)
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		h, err := home.New("")
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.Home = h
	}
	if err := cfg.Home.EnsureExists(); err != nil {
		return nil, err
	}

	defaults := config.DefaultConfig().Defaults
	if cfg.ConfigManager != nil {
		defaults = cfg.ConfigManager.Get().Defaults
	}
	if cfg.TemplatePath == "" {
		cfg.TemplatePath = cfg.Home.MasterPath(defaults.Template)
	}
	if cfg.ManualPath == "" {
		cfg.ManualPath = cfg.Home.MasterPath(defaults.Manual)
	}

	// Create provider registry
	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)

	// If config manager provided, set up providers and hot reload
	if cfg.ConfigManager != nil {
		registry.Reload(cfg.ConfigManager.Get().ToProviderRegistryConfig())

		// Watch for config changes
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			registry.Reload(c.ToProviderRegistryConfig())
			cfg.Logger.Info("provider registry reloaded from config")
		})
	}

	s := &Server{
		registry:     registry,
		prompts:      prompts.NewResolver(cfg.Home.PromptsDir(), cfg.Logger),
		recorder:     llmcall.NewRecorder(cfg.Home.CallLogPath(), cfg.Logger),
		configMgr:    cfg.ConfigManager,
		home:         cfg.Home,
		logger:       cfg.Logger,
		templatePath: cfg.TemplatePath,
		manualPath:   cfg.ManualPath,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = endpoints.NewSet().Registry()

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Init loads the template and manual and makes the template-backed
// endpoints available. Start calls it; tests serving Handler call it directly.
func (s *Server) Init() error {
	s.logger.Info("loading template", "path", s.templatePath)
	index, err := layout.Load(s.templatePath)
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}
	s.logger.Info("template loaded",
		"layouts", len(index.Layouts()),
		"default_layout", index.Default().Name)

	m, err := s.loadManual(index)
	if err != nil {
		return err
	}

	services := &svcctx.Services{
		Assembler:    deck.New(index, s.logger),
		TemplatePath: s.templatePath,
		Manual:       m,
		Registry:     s.registry,
		Prompts:      s.prompts,
		Recorder:     s.recorder,
		ConfigMgr:    s.configMgr,
		Logger:       s.logger,
		Home:         s.home,
	}

	s.mu.Lock()
	s.services = services
	s.mu.Unlock()
	return nil
}

// loadManual reads the manual, drafting one from the template when the
// file does not exist.
func (s *Server) loadManual(index *layout.Index) (*manual.Manual, error) {
	m, err := manual.Load(s.manualPath)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("manual not found, drafting from template", "path", s.manualPath)
		return manual.FromIndex(index), nil
	}
	if err != nil {
		return nil, err
	}
	for _, skipped := range m.Skipped {
		s.logger.Warn("skipped manual line", "line", skipped.Line, "error", skipped.Err)
	}
	for _, issue := range m.Check(index) {
		s.logger.Warn("manual does not match template", "layout", issue.Layout, "issue", issue.Message)
	}
	return m, nil
}

// Start loads the template and serves HTTP.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.Init(); err != nil {
		s.setNotRunning()
		return err
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown gracefully stops the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// Services returns the services handed to handlers, or nil before Init.
func (s *Server) Services() *svcctx.Services {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.services
}

// withServices wraps a handler to enrich the request context with services.
// Before Init only the home directory, registry and config are available.
func (s *Server) withServices(next http.Handler) http.Handler {
	early := &svcctx.Services{
		Registry:  s.registry,
		Prompts:   s.prompts,
		Recorder:  s.recorder,
		ConfigMgr: s.configMgr,
		Logger:    s.logger,
		Home:      s.home,
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		services := s.Services()
		if services == nil {
			services = early
		}
		ctx := svcctx.WithServices(r.Context(), services)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the template has been loaded.
// Returns 503 Service Unavailable otherwise.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Services() == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}

package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackzampolin/slidedeck/internal/config"
	"github.com/jackzampolin/slidedeck/internal/home"
	"github.com/jackzampolin/slidedeck/internal/testutil"
)

func newLifecycleServer(t *testing.T, cfg testutil.ServerConfig) *Server {
	t.Helper()
	h, err := home.New(cfg.HomeDir)
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}
	mgr, err := config.NewManager(cfg.ConfigFile)
	if err != nil {
		t.Fatalf("config.NewManager() error = %v", err)
	}
	srv, err := New(Config{
		Host:          cfg.Host,
		Port:          cfg.Port,
		TemplatePath:  testutil.WriteTemplate(t, testutil.TemplateOptions{}),
		Home:          h,
		ConfigManager: mgr,
		Logger:        cfg.Logger,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv
}

func TestServer_Lifecycle(t *testing.T) {
	cfg := testutil.NewServerConfig(t)
	if err := config.WriteDefault(cfg.ConfigFile); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	srv := newLifecycleServer(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()
	running := &testutil.StartServer{Cancel: cancel, Done: done}

	if err := testutil.WaitForServer(cfg.URL(), 10*time.Second); err != nil {
		running.Stop()
		t.Fatalf("server did not start: %v", err)
	}

	t.Run("running", func(t *testing.T) {
		if !srv.IsRunning() {
			t.Error("IsRunning() = false while serving")
		}
	})

	t.Run("layouts served", func(t *testing.T) {
		resp, err := testutil.HTTPClient().Get(cfg.URL() + "/api/layouts")
		if err != nil {
			t.Fatalf("GET /api/layouts failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("double start", func(t *testing.T) {
		if err := srv.Start(context.Background()); err == nil {
			t.Error("second Start() should fail")
		}
	})

	cancel()
	if err := testutil.WaitForShutdown(done, 10*time.Second); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}

func TestServer_StartFailsWithoutTemplate(t *testing.T) {
	cfg := testutil.NewServerConfig(t)
	h, err := home.New(cfg.HomeDir)
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}
	srv, err := New(Config{
		Host:         cfg.Host,
		Port:         cfg.Port,
		TemplatePath: filepath.Join(cfg.HomeDir, "missing.pptx"),
		Home:         h,
		Logger:       cfg.Logger,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Start(ctx); err == nil {
		t.Fatal("Start() should fail without a template")
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true after failed start")
	}
}

func TestServer_ConfigReloadUpdatesRegistry(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := testutil.NewServerConfig(t)
	if err := os.WriteFile(cfg.ConfigFile, []byte("defaults:\n  llm_provider: openai\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	srv := newLifecycleServer(t, cfg)

	if got := srv.Registry().List(); len(got) != 0 {
		t.Fatalf("providers = %v, want none without an API key", got)
	}

	srv.configMgr.WatchConfig()
	time.Sleep(100 * time.Millisecond)

	updated := "llm_providers:\n  local:\n    type: mock\n    enabled: true\n"
	if err := os.WriteFile(cfg.ConfigFile, []byte(updated), 0o644); err != nil {
		t.Fatalf("failed to update config: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := srv.Registry().Get("local"); err == nil {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Errorf("providers = %v, want local registered after reload", srv.Registry().List())
}

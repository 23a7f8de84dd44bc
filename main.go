// pattern: Imperative Shell
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"agentdesk/internal/assistant"
	"agentdesk/internal/config"
	"agentdesk/internal/gitstate"
	"agentdesk/internal/instance"
	"agentdesk/internal/logging"
	"agentdesk/internal/watcher"
	"agentdesk/internal/web"
	"agentdesk/internal/workspace"
)

var version = "dev"

func main() {
	configPath := flag.StringP("config", "c", "", "config file (default: ~/.config/agentdesk/config.yaml)")
	projectRoot := flag.String("root", "", "project root (overrides config)")
	bind := flag.String("bind", "", "bind address (overrides config)")
	port := flag.Int("port", -1, "listen port (overrides config, 0 = ephemeral)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
	if *projectRoot != "" {
		cfg.ProjectRoot = *projectRoot
	}
	if *bind != "" {
		cfg.Web.Bind = *bind
	}
	if *port >= 0 {
		cfg.Web.Port = *port
	}

	os.Exit(run(cfg))
}

// loadConfig loads the configuration from the given path or default
// location.
func loadConfig(configPath string) (config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

func run(cfg config.Config) int {
	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Acquire single-instance lock
	fl, err := instance.Lock(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer instance.Cleanup(dataDir, fl)

	logManager, err := logging.NewManager(logging.Config{
		FilePath:   filepath.Join(dataDir, "agentdesk.log"),
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Level:      cfg.Log.Level,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer func() { _ = logManager.Close() }()

	appLogger := logManager.For("app")
	appLogger.Info("agentdesk starting", "version", version)

	root := cfg.ResolveProjectRoot()
	resolver := workspace.NewResolver(root, cfg.EditablePaths, cfg.Ignore)
	engine := gitstate.NewEngine(root, gitstate.NewClient(), logManager.For("git"))

	server := web.New(web.Config{Bind: cfg.Web.Bind, Port: cfg.Web.Port}, resolver, engine, logManager)

	ln, err := server.Listen()
	if err != nil {
		appLogger.Error("web server listen error", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Advertise bound address for external tools
	if err := instance.WritePort(dataDir, server.Addr()); err != nil {
		appLogger.Error("failed to write port file", "error", err)
	}

	fw, err := watcher.New(resolver, logManager.For("workspace"), server.NotifyChange)
	if err != nil {
		appLogger.Warn("file watcher unavailable (continuing without change events)", "error", err)
	} else {
		fw.Start()
		defer func() { _ = fw.Close() }()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Assistant.Command != "" {
		supervisor := assistant.NewSupervisor(assistant.Config{
			Command:    cfg.Assistant.Command,
			Args:       cfg.Assistant.Args,
			Dir:        root,
			MaxRetries: cfg.Assistant.MaxRetries,
		}, logManager.For("assistant"))
		if err := supervisor.Start(ctx); err != nil {
			appLogger.Warn("assistant failed to start (continuing without it)", "error", err)
		} else {
			defer func() { _ = supervisor.Stop() }()
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ln)
	}()

	fmt.Printf("agentdesk listening on http://%s (project %s)\n", server.Addr(), root)

	select {
	case <-ctx.Done():
		appLogger.Info("shutdown requested")
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			appLogger.Error("web server error", "error", err)
			return 1
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("web server shutdown error", "error", err)
	}

	appLogger.Info("agentdesk stopped")
	return 0
}

// Package main provides the entry point for storyloop-service.
//
// storyloop-service is a companion process providing:
// - Read-only REST API for visualization front-ends
// - MCP server so coding agents can drive the loop as a tool provider
//
// Usage:
//
//	storyloop-service                Start the API server (default)
//	storyloop-service serve          Start the API server
//	storyloop-service mcp            Start MCP server (stdio mode)
//	storyloop-service version        Show version
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/storyloop/internal/api"
	"github.com/ternarybob/storyloop/internal/config"
	"github.com/ternarybob/storyloop/internal/logger"
	"github.com/ternarybob/storyloop/internal/loop"
	"github.com/ternarybob/storyloop/internal/mcp"
)

// version is set via -ldflags at build time
var version = "dev"

func main() {
	// Set version in API package
	api.SetVersion(version)

	if len(os.Args) < 2 {
		// Default: start the API server
		if err := cmdServe(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var err error
	switch os.Args[1] {
	case "serve", "start":
		err = cmdServe()
	case "mcp", "mcp-server":
		err = cmdMCP()
	case "version", "-v", "--version":
		cmdVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`storyloop-service - Read-only API and MCP server for storyloop

Usage:
  storyloop-service [command]

Commands:
  serve         Start the API server (default)
  mcp           Start MCP server (stdio mode for agent integration)
  version       Show version information
  help          Show this help

Configuration:
  Config file: storyloop.toml in the working directory

Examples:
  storyloop-service                 Start the API server
  storyloop-service mcp             Start MCP server for a coding agent
  curl localhost:8430/status        Check loop status
  curl localhost:8430/stories       List stories`)
}

func cmdVersion() {
	fmt.Printf("storyloop-service version %s\n", version)
}

func cmdServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.SetupLogger(cfg)
	defer logger.Stop()

	l := loop.New(cfg)
	apiServer := api.NewServer(cfg, l)

	server := &http.Server{
		Addr:    cfg.Address(),
		Handler: apiServer.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	log.Info().Str("address", cfg.Address()).Msg("storyloop-service started")
	fmt.Printf("storyloop-service v%s started on %s\n", version, cfg.Address())
	fmt.Printf("Status: http://%s/status\n", cfg.Address())
	fmt.Printf("Stories: http://%s/stories\n", cfg.Address())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-sigCh:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Msg("storyloop-service stopped")
	return nil
}

func cmdMCP() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// MCP speaks JSON-RPC on stdout; keep logs off it.
	cfg.Logging.Output = []string{"file"}
	logger.SetupLogger(cfg)
	defer logger.Stop()

	l := loop.New(cfg)
	mcpServer := mcp.NewServer(l, version)

	fmt.Fprintf(os.Stderr, "[storyloop-service] MCP server started (stdio)\n")
	return mcpServer.ServeStdio()
}

func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

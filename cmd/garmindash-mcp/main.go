package main

import (
	"flag"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"garmindash/internal/config"
	"garmindash/internal/mcp"
	"garmindash/internal/paths"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// stdout carries the protocol; everything we say goes to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("garmindash-mcp starting", "version", Version)

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	p, err := paths.New(cfg.Home)
	if err != nil {
		log.Error("failed to resolve layout", "error", err)
		os.Exit(1)
	}
	log.Info("layout resolved", "home", p.Home, "db", p.DBPath())

	s := mcp.New(p, Version, log)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}

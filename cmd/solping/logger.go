package main

import (
	"io"
	"log/slog"
	"net/url"

	"github.com/nic0-dev/solping/service/config"
)

// setupLogger creates a structured logger with the given log level.
func setupLogger(levelStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	return slog.New(slog.NewJSONHandler(w, opts))
}

// endpointLabel names the RPC endpoint for metrics and logs without leaking
// API keys carried in the URL.
func endpointLabel(cfg *config.Config) string {
	if cfg.RPCURL == config.ClusterRPCURLs[cfg.Cluster] {
		return cfg.Cluster
	}
	if u, err := url.Parse(cfg.RPCURL); err == nil && u.Host != "" {
		return u.Host
	}
	return "custom"
}

// Package main is the headless server: it runs the simulation and streams
// it to browser viewers over WebSocket.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/torus-drive/internal/config"
	"github.com/Faultbox/torus-drive/internal/landscape"
	"github.com/Faultbox/torus-drive/internal/logger"
	"github.com/Faultbox/torus-drive/internal/sim"
	"github.com/Faultbox/torus-drive/internal/transport/ws"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := landscape.NewLoader(cfg.Landscape)
	loader.Start(ctx)

	srv := ws.NewServer(cfg.Server, sim.New(cfg, loader))
	logger.Info("=== torusd ===",
		zap.String("listen", cfg.Server.Listen),
		zap.Int("tick_rate", cfg.Server.TickRate),
		zap.String("height_map", cfg.Landscape.HeightMap))

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shut down")
}

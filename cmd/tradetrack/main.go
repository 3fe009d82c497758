package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"tradetrack/internal/app"
	"tradetrack/internal/config"
	"tradetrack/internal/logger"
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	defaultCfg := os.Getenv("TRADETRACK_CONFIG")
	if defaultCfg == "" {
		defaultCfg = "configs/config.yaml"
	}
	cfgPath := flag.String("config", defaultCfg, "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if err := setupLogOutput(cfg.App.LogPath); err != nil {
		log.Fatalf("init log output failed: %v", err)
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.Infof("config loaded env=%s config=%s", cfg.App.Env, *cfgPath)

	a, err := app.New(cfg, *cfgPath)
	if err != nil {
		log.Fatalf("init app failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := a.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("run failed: %v", err)
	}
}

func setupLogOutput(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return err
	}
	fileWriter := &lumberjack.Logger{
		Filename:   trimmed,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
	return nil
}

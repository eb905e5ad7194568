package main

//	@title			Notebook Relay API
//	@version		0.1.0
//	@description	HTTP relay between notebook front ends, an LLM provider and a code runner.
//	@BasePath		/

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/HerbHall/notebookrelay/api/swagger"
	"github.com/HerbHall/notebookrelay/internal/config"
	relayllm "github.com/HerbHall/notebookrelay/internal/llm"
	"github.com/HerbHall/notebookrelay/internal/runner"
	"github.com/HerbHall/notebookrelay/internal/server"
	"github.com/HerbHall/notebookrelay/internal/version"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Println(version.Info())
		return
	}

	configPath := flag.String("config", "", "path to configuration file")
	envFile := flag.String("env-file", ".env", "path to a dotenv file loaded before the environment is read")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Load configuration (before logger, so log level/format can be configured).
	v, err := config.Load(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Decode(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("notebook relay starting", zap.String("version", version.Short()))

	if f := v.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", f),
		)
	} else {
		logger.Info("no configuration file found, using defaults and environment",
			zap.String("component", "config"),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// An unreachable provider is not fatal: chat answers 500 until restart,
	// while health, models and execute keep working.
	provider, err := relayllm.Connect(ctx, cfg.Provider, logger.Named("llm"))
	if err != nil {
		logger.Warn("LLM provider unavailable, starting in degraded mode",
			zap.String("provider", cfg.Provider.Name),
			zap.Error(err),
		)
	}

	codeRunner, err := runner.New(cfg.Runner, logger.Named("runner"))
	if err != nil {
		logger.Error("failed to create code runner", zap.Error(err))
		closeProvider(provider, logger)
		os.Exit(1)
	}
	logger.Info("code runner ready", zap.String("runner", codeRunner.Name()))

	srv := server.New(cfg.Server, cfg.CORS, server.Deps{
		Provider: provider,
		Runner:   codeRunner,
		LLM:      cfg.Provider,
	}, logger.Named("http"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("notebook relay ready", zap.String("addr", cfg.Server.Addr()))

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	closeProvider(provider, logger)

	logger.Info("notebook relay stopped")
	if exitCode != 0 {
		_ = logger.Sync()
		os.Exit(exitCode)
	}
}

// closeProvider releases provider resources such as the Gemini client.
func closeProvider(p any, logger *zap.Logger) {
	c, ok := p.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn("closing LLM provider", zap.Error(err))
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-triage/internal/config"
	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/mikey/llm-email-triage/internal/di"
	"github.com/mikey/llm-email-triage/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	triageRunner ports.TriageRunner,
	completer core.TextCompleter,
	cacheRepo core.ResultCache,
) error {
	defer logger.Sync()

	if err := triageRunner.Start(); err != nil {
		logger.Error("Failed to start runner", zap.Error(err))
		return err
	}

	// Cancel in-flight stages on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Shutting down...")
		cancel()
	}()

	rawText, err := readEmail(cfg, logger)
	if err != nil {
		logger.Error("Failed to read email", zap.Error(err))
		return err
	}

	_, err = triageRunner.ProcessEmail(ctx, rawText)
	if err != nil {
		logger.Error("Failed to process email", zap.Error(err))
	}

	if stopErr := triageRunner.Stop(); stopErr != nil {
		logger.Error("Failed to stop runner", zap.Error(stopErr))
	}

	// Close any resources that need closing
	if closer, ok := completer.(interface{ Close() error }); ok {
		if cerr := closer.Close(); cerr != nil {
			logger.Error("Failed to close LLM client", zap.Error(cerr))
		}
	}
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	return err
}

// readEmail reads the raw email body from the configured input file, or
// stdin when no file is configured.
func readEmail(cfg *config.Config, logger *zap.Logger) (string, error) {
	inputFile := cfg.GetString("input.file")
	if inputFile == "" {
		logger.Info("Reading email from stdin")
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	logger.Info("Reading email from file", zap.String("file", inputFile))
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(data), nil
}

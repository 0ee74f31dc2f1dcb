package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-triage/internal/config"
	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/mikey/llm-email-triage/internal/factory"
	"github.com/mikey/llm-email-triage/internal/logging"
	"github.com/mikey/llm-email-triage/internal/ports"
	"github.com/mikey/llm-email-triage/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
// for the config-file-driven binary.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStageFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewRunnerFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register inference gateway
	if err := container.Provide(func(f *factory.LLMFactory) (core.TextCompleter, error) {
		return f.CreateTextCompleter()
	}); err != nil {
		return nil, err
	}

	// Register result cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.ResultCache, error) {
		return f.CreateResultCache()
	}); err != nil {
		return nil, err
	}

	// Register triage service
	if err := container.Provide(newTriageService); err != nil {
		return nil, err
	}

	// Register runner
	if err := container.Provide(func(f *factory.RunnerFactory) (ports.TriageRunner, error) {
		return f.CreateTriageRunner()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// newTriageService assembles the orchestrator from the stage and cache
// factories.
func newTriageService(
	cfg *config.Config,
	logger *zap.Logger,
	stages *factory.StageFactory,
	caches *factory.CacheFactory,
	cache core.ResultCache,
) (*core.TriageService, error) {
	cacheTTL, err := caches.GetCacheTTL()
	if err != nil {
		return nil, err
	}
	triageCfg := cfg.GetTriage()

	return core.NewTriageService(
		stages.CreateAnalyzer(),
		stages.CreateClassifier(),
		stages.CreateSummarizer(),
		stages.CreateDrafter(),
		cache,
		logger,
		caches.IsCacheEnabled(),
		cacheTTL,
		triageCfg.MaxRetries,
		triageCfg.StageTimeout,
	), nil
}

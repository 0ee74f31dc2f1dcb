package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-triage/internal/adapters/runner"
	"github.com/mikey/llm-email-triage/internal/config"
	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/mikey/llm-email-triage/internal/ports"
)

// RunnerFactory creates triage runners based on configuration.
type RunnerFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.TriageService
}

// NewRunnerFactory creates a new runner factory.
func NewRunnerFactory(cfg *config.Config, logger *zap.Logger, service *core.TriageService) *RunnerFactory {
	return &RunnerFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateTriageRunner creates a runner based on the configuration.
func (f *RunnerFactory) CreateTriageRunner() (ports.TriageRunner, error) {
	runnerType := f.cfg.GetTriage().RunnerType

	switch runnerType {
	case "cli":
		return runner.NewCliRunner(
			f.service,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		)
	default:
		return nil, fmt.Errorf("unsupported runner type: %s", runnerType)
	}
}

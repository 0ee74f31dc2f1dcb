package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/llm-email-triage/internal/config"
	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/mikey/llm-email-triage/internal/triage"
	"github.com/mikey/llm-email-triage/internal/utils"
)

// StageFactory builds the four inference stages over one gateway client.
type StageFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	completer     core.TextCompleter
	textProcessor *utils.TextProcessor
	maxBodySize   int
}

// NewStageFactory creates a new stage factory.
func NewStageFactory(
	cfg *config.Config,
	logger *zap.Logger,
	completer core.TextCompleter,
	textProcessor *utils.TextProcessor,
	llmFactory *LLMFactory,
) (*StageFactory, error) {
	maxBodySize, err := llmFactory.MaxBodySize()
	if err != nil {
		return nil, err
	}
	return &StageFactory{
		cfg:           cfg,
		logger:        logger,
		completer:     completer,
		textProcessor: textProcessor,
		maxBodySize:   maxBodySize,
	}, nil
}

// CreateAnalyzer creates the urgency analyzer stage.
func (f *StageFactory) CreateAnalyzer() core.UrgencyAnalyzer {
	return triage.NewAnalyzer(f.completer, f.textProcessor, f.maxBodySize, f.logger)
}

// CreateClassifier creates the classifier stage.
func (f *StageFactory) CreateClassifier() core.Classifier {
	return triage.NewClassifier(f.completer, f.textProcessor, f.maxBodySize, f.logger)
}

// CreateSummarizer creates the summarizer stage.
func (f *StageFactory) CreateSummarizer() core.Summarizer {
	return triage.NewSummarizer(f.completer, f.textProcessor, f.maxBodySize, f.logger)
}

// CreateDrafter creates the reply drafter stage.
func (f *StageFactory) CreateDrafter() core.ReplyDrafter {
	return triage.NewDrafter(f.completer, f.textProcessor, f.maxBodySize, f.logger)
}

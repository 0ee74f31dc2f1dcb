package triage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/mikey/llm-email-triage/internal/utils"
)

// Analyzer determines email urgency through the inference gateway.
type Analyzer struct {
	completer     core.TextCompleter
	textProcessor *utils.TextProcessor
	maxBodySize   int
	logger        *zap.Logger
}

// NewAnalyzer creates a new urgency analyzer.
func NewAnalyzer(completer core.TextCompleter, textProcessor *utils.TextProcessor, maxBodySize int, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		completer:     completer,
		textProcessor: textProcessor,
		maxBodySize:   maxBodySize,
		logger:        logger,
	}
}

// Analyze judges whether the email needs immediate attention.
func (a *Analyzer) Analyze(ctx context.Context, email core.EmailContent) (core.UrgencyFinding, error) {
	body := a.textProcessor.ProcessText(email.Body(), a.maxBodySize)
	prompt := fmt.Sprintf(urgencyPromptFormat, body)

	out, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		return core.UrgencyFinding{}, err
	}

	finding := ParseUrgencyResponse(out)
	a.logger.Debug("urgency analysis complete",
		zap.Bool("is_urgent", finding.IsUrgent),
		zap.String("reason", finding.Reason))
	return finding, nil
}

package triage

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/mikey/llm-email-triage/internal/utils"
)

// Summarizer produces a short synopsis of an email. The 2-3 sentence
// target is advisory; the returned text is not machine-verified.
type Summarizer struct {
	completer     core.TextCompleter
	textProcessor *utils.TextProcessor
	maxBodySize   int
	logger        *zap.Logger
}

// NewSummarizer creates a new summarizer.
func NewSummarizer(completer core.TextCompleter, textProcessor *utils.TextProcessor, maxBodySize int, logger *zap.Logger) *Summarizer {
	return &Summarizer{
		completer:     completer,
		textProcessor: textProcessor,
		maxBodySize:   maxBodySize,
		logger:        logger,
	}
}

// Summarize returns a concise synopsis of the email.
func (s *Summarizer) Summarize(ctx context.Context, email core.EmailContent) (string, error) {
	body := s.textProcessor.ProcessText(email.Body(), s.maxBodySize)
	prompt := fmt.Sprintf(summaryPromptFormat, body)

	out, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(out)
	s.logger.Debug("summary generated", zap.Int("length", len(summary)))
	return summary, nil
}

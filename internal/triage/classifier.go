package triage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/mikey/llm-email-triage/internal/utils"
)

// Classifier assigns one category from the closed set. Whatever the
// model answers, callers always receive a valid Category.
type Classifier struct {
	completer     core.TextCompleter
	textProcessor *utils.TextProcessor
	maxBodySize   int
	logger        *zap.Logger
}

// NewClassifier creates a new classifier.
func NewClassifier(completer core.TextCompleter, textProcessor *utils.TextProcessor, maxBodySize int, logger *zap.Logger) *Classifier {
	return &Classifier{
		completer:     completer,
		textProcessor: textProcessor,
		maxBodySize:   maxBodySize,
		logger:        logger,
	}
}

// Classify returns the email's category.
func (c *Classifier) Classify(ctx context.Context, email core.EmailContent) (core.Category, error) {
	body := c.textProcessor.ProcessText(email.Body(), c.maxBodySize)
	prompt := fmt.Sprintf(classifyPromptFormat, body)

	out, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		return core.CategoryOther, err
	}

	category := CanonicalCategory(out)
	c.logger.Debug("classification complete",
		zap.String("category", string(category)),
		zap.String("raw", out))
	return category, nil
}

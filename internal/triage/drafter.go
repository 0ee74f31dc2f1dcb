package triage

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-triage/internal/core"
	"github.com/mikey/llm-email-triage/internal/utils"
)

// Drafter writes a professional reply to an email. The category and
// urgency finding, when available, steer the tone of the draft. The
// spam-skip policy lives in the orchestrator, not here.
type Drafter struct {
	completer     core.TextCompleter
	textProcessor *utils.TextProcessor
	maxBodySize   int
	logger        *zap.Logger
}

// NewDrafter creates a new reply drafter.
func NewDrafter(completer core.TextCompleter, textProcessor *utils.TextProcessor, maxBodySize int, logger *zap.Logger) *Drafter {
	return &Drafter{
		completer:     completer,
		textProcessor: textProcessor,
		maxBodySize:   maxBodySize,
		logger:        logger,
	}
}

// Draft produces a reply to the email.
func (d *Drafter) Draft(ctx context.Context, email core.EmailContent, category core.Category, urgency *core.UrgencyFinding) (string, error) {
	tone, ok := toneGuides[string(category)]
	if !ok {
		tone = toneGuides[string(core.CategoryOther)]
	}

	hint := ""
	if urgency != nil && urgency.IsUrgent {
		hint = urgentDraftHint
	}

	body := d.textProcessor.ProcessText(email.Body(), d.maxBodySize)
	prompt := fmt.Sprintf(draftPromptFormat, body, tone, hint)

	out, err := d.completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(out)
	d.logger.Debug("reply drafted",
		zap.String("tone", tone),
		zap.Int("length", len(reply)))
	return reply, nil
}

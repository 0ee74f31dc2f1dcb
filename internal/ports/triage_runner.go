package ports

import (
	"context"

	"github.com/mikey/llm-email-triage/internal/core"
)

// TriageRunner is the outer surface that feeds emails into the pipeline
// and presents the results.
type TriageRunner interface {
	// ProcessEmail triages one raw email body and presents the result.
	ProcessEmail(ctx context.Context, rawText string) (*core.AnalysisResult, error)

	// Start prepares the runner.
	Start() error

	// Stop releases any resources held by the runner.
	Stop() error
}

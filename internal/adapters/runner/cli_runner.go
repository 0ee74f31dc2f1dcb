package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-triage/internal/core"
)

// CliRunner feeds one email through the triage service and prints the
// Summary / Classification / Draft Reply / Notification block.
type CliRunner struct {
	service *core.TriageService
	logger  *zap.Logger
	verbose bool
}

// NewCliRunner creates a new CLI runner.
func NewCliRunner(service *core.TriageService, logger *zap.Logger, verbose bool) (*CliRunner, error) {
	return &CliRunner{
		service: service,
		logger:  logger,
		verbose: verbose,
	}, nil
}

// ProcessEmail triages one email and prints the result.
func (r *CliRunner) ProcessEmail(ctx context.Context, rawText string) (*core.AnalysisResult, error) {
	if r.verbose {
		preview := rawText
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\n=== Email ===\n%s\n", preview)
	}

	startTime := time.Now()
	result, err := r.service.ProcessEmail(ctx, rawText)
	if err != nil {
		r.logger.Error("failed to triage email", zap.Error(err))
		return nil, err
	}
	duration := time.Since(startTime)

	if result.ShouldNotify() {
		email, _ := core.NewEmailContent(rawText)
		printAlertBanner(email.Subject())
	}

	fmt.Print(FormatResult(result, rawText))
	fmt.Printf("Processing time: %v\n", duration)

	if r.verbose {
		fmt.Print(FormatStageReport(result))
	}

	return result, nil
}

// Start is a no-op for the CLI runner.
func (r *CliRunner) Start() error {
	return nil
}

// Stop is a no-op for the CLI runner.
func (r *CliRunner) Stop() error {
	return nil
}

// FormatResult renders the result block shown to end users. Fields whose
// stage failed are presented as explicitly unavailable, never as silent
// empty strings.
func FormatResult(result *core.AnalysisResult, rawText string) string {
	var b strings.Builder

	b.WriteString("\n=== Result ===\n")
	b.WriteString("Summary: " + stageValue(result.Summarizer, result.Summary) + "\n")
	b.WriteString("Classification: " + stageValue(result.Classifier, string(result.Category)) + "\n")

	switch {
	case result.Drafter.State == core.StageSkipped:
		b.WriteString("Draft Reply: (skipped: " + result.Drafter.Reason + ")\n")
	default:
		b.WriteString("Draft Reply: " + stageValue(result.Drafter, result.DraftReply) + "\n")
	}

	b.WriteString("Notification: " + notificationText(result, rawText) + "\n")
	b.WriteString("Status: " + string(result.State) + "\n")
	return b.String()
}

// FormatStageReport renders per-stage statuses for verbose output.
func FormatStageReport(result *core.AnalysisResult) string {
	var b strings.Builder
	b.WriteString("\n=== Stages ===\n")
	for _, name := range []core.StageName{core.StageAnalyzer, core.StageClassifier, core.StageSummarizer, core.StageDrafter} {
		status := result.Stage(name)
		b.WriteString(fmt.Sprintf("%-10s %s", name, status.State))
		if status.Reason != "" {
			b.WriteString(" (" + status.Reason + ")")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// notificationText produces the urgency alert line. It fires only when
// the analyzer succeeded and found the email urgent.
func notificationText(result *core.AnalysisResult, rawText string) string {
	if !result.ShouldNotify() {
		return "None"
	}
	email, err := core.NewEmailContent(rawText)
	if err != nil {
		return "None"
	}
	return "IMPORTANT EMAIL ALERT: " + email.Subject()
}

// stageValue returns the produced value or an unavailable marker.
func stageValue(status core.StageStatus, value string) string {
	if status.Succeeded() {
		return value
	}
	return fmt.Sprintf("(unavailable: %s)", status.Reason)
}

func printAlertBanner(subject string) {
	line := strings.Repeat("=", 70)
	fmt.Printf("\n%s\n", line)
	fmt.Println("URGENT EMAIL ALERT")
	fmt.Println(line)
	fmt.Printf("Time: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Printf("Important email received: %s\n", subject)
	fmt.Printf("%s\n\n", line)
}

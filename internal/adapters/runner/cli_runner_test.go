package runner

import (
	"strings"
	"testing"

	"github.com/mikey/llm-email-triage/internal/core"
)

func completeResult() *core.AnalysisResult {
	return &core.AnalysisResult{
		Digest:     "abc",
		Urgency:    core.UrgencyFinding{IsUrgent: false},
		Category:   core.CategoryWork,
		Summary:    "A colleague asks for the quarterly report.",
		DraftReply: "I'll send it over by end of day.",
		Analyzer:   core.StageStatus{State: core.StageSucceeded},
		Classifier: core.StageStatus{State: core.StageSucceeded},
		Summarizer: core.StageStatus{State: core.StageSucceeded},
		Drafter:    core.StageStatus{State: core.StageSucceeded},
		State:      core.StateComplete,
	}
}

func TestFormatResultComplete(t *testing.T) {
	out := FormatResult(completeResult(), "Quarterly report\nCould you send it over?")

	for _, want := range []string{
		"Summary: A colleague asks for the quarterly report.",
		"Classification: Work",
		"Draft Reply: I'll send it over by end of day.",
		"Notification: None",
		"Status: complete",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatResultUrgentNotification(t *testing.T) {
	result := completeResult()
	result.Urgency = core.UrgencyFinding{IsUrgent: true, Reason: "deadline"}

	out := FormatResult(result, "Server down\nProduction is on fire.")
	if !strings.Contains(out, "Notification: IMPORTANT EMAIL ALERT: Server down") {
		t.Errorf("expected alert with subject line:\n%s", out)
	}
}

func TestFormatResultNoAlertWhenAnalyzerFailed(t *testing.T) {
	result := completeResult()
	result.Urgency = core.UrgencyFinding{IsUrgent: true}
	result.Analyzer = core.StageStatus{
		State:     core.StageFailed,
		ErrorKind: core.ErrorKindProvider,
		Reason:    "provider test: refused",
	}
	result.State = core.StatePartiallyFailed

	out := FormatResult(result, "Anything")
	if !strings.Contains(out, "Notification: None") {
		t.Errorf("a failed analyzer must not produce an alert:\n%s", out)
	}
	if !strings.Contains(out, "Status: partially_failed") {
		t.Errorf("expected partially_failed status:\n%s", out)
	}
}

func TestFormatResultUnavailableFields(t *testing.T) {
	result := completeResult()
	result.Summary = ""
	result.Summarizer = core.StageStatus{
		State:     core.StageFailed,
		ErrorKind: core.ErrorKindTimeout,
		Reason:    "context deadline exceeded",
	}
	result.State = core.StatePartiallyFailed

	out := FormatResult(result, "Anything")
	if !strings.Contains(out, "Summary: (unavailable: context deadline exceeded)") {
		t.Errorf("failed stage should render as unavailable:\n%s", out)
	}
}

func TestFormatResultSkippedDraft(t *testing.T) {
	result := completeResult()
	result.Category = core.CategorySpam
	result.DraftReply = ""
	result.Drafter = core.StageStatus{State: core.StageSkipped, Reason: "no reply drafted for spam"}

	out := FormatResult(result, "You won a prize!")
	if !strings.Contains(out, "Draft Reply: (skipped: no reply drafted for spam)") {
		t.Errorf("skipped drafter should render its reason:\n%s", out)
	}
}

func TestFormatStageReport(t *testing.T) {
	result := completeResult()
	result.Drafter = core.StageStatus{
		State:     core.StageFailed,
		ErrorKind: core.ErrorKindProvider,
		Reason:    "provider test: refused",
	}

	out := FormatStageReport(result)
	for _, want := range []string{"analyzer", "classifier", "summarizer", "drafter", "failed (provider test: refused)"} {
		if !strings.Contains(out, want) {
			t.Errorf("stage report missing %q:\n%s", want, out)
		}
	}
}

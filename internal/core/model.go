package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// EmailContent is the raw text body of a single email. It is immutable
// once constructed and always non-empty.
type EmailContent struct {
	body string
}

// NewEmailContent validates and wraps a raw email body.
func NewEmailContent(raw string) (EmailContent, error) {
	if strings.TrimSpace(raw) == "" {
		return EmailContent{}, ErrEmptyEmail
	}
	return EmailContent{body: raw}, nil
}

// Body returns the raw email text.
func (e EmailContent) Body() string {
	return e.body
}

// Digest returns a stable SHA-256 hex digest of the body, used as the
// cache key for triage results.
func (e EmailContent) Digest() string {
	sum := sha256.Sum256([]byte(e.body))
	return hex.EncodeToString(sum[:])
}

// Subject returns the first non-blank line of the body, truncated for
// use in notifications. Emails here carry no parsed headers, so the
// first line is the best available stand-in for a subject.
func (e EmailContent) Subject() string {
	const maxSubjectLen = 60
	for _, line := range strings.Split(e.body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > maxSubjectLen {
			return line[:maxSubjectLen] + "..."
		}
		return line
	}
	return "New Email"
}

// Category is the closed set of email classifications.
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategorySpam     Category = "Spam"
	CategoryOther    Category = "Other"
)

// Categories lists every valid category in canonical order.
func Categories() []Category {
	return []Category{CategoryWork, CategoryPersonal, CategorySpam, CategoryOther}
}

// IsValid checks if the category is a member of the closed set.
func (c Category) IsValid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategorySpam, CategoryOther:
		return true
	}
	return false
}

// UrgencyFinding is the analyzer's verdict for one email.
type UrgencyFinding struct {
	IsUrgent bool
	Reason   string
}

// StageName identifies one of the four inference stages.
type StageName string

const (
	StageAnalyzer   StageName = "analyzer"
	StageClassifier StageName = "classifier"
	StageSummarizer StageName = "summarizer"
	StageDrafter    StageName = "drafter"
)

// StageState is the outcome of a single stage.
type StageState string

const (
	StageSucceeded StageState = "succeeded"
	StageFailed    StageState = "failed"
	StageSkipped   StageState = "skipped"
)

// ErrorKind categorizes why a stage failed.
type ErrorKind string

const (
	ErrorKindNone     ErrorKind = ""
	ErrorKindProvider ErrorKind = "provider"
	ErrorKindTimeout  ErrorKind = "timeout"
)

// StageStatus records what happened to one stage during a pipeline run.
type StageStatus struct {
	State     StageState `json:"state"`
	ErrorKind ErrorKind  `json:"error_kind,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// Succeeded reports whether the stage produced a usable value.
func (s StageStatus) Succeeded() bool {
	return s.State == StageSucceeded
}

// TerminalState is the overall outcome of a pipeline run.
type TerminalState string

const (
	StateComplete        TerminalState = "complete"
	StatePartiallyFailed TerminalState = "partially_failed"
)

// AnalysisResult is the completed record of one triage run. It is owned
// by the caller and never mutated after ProcessEmail returns. A field is
// meaningful only when its stage status reports success (or, for the
// draft, an intentional skip).
type AnalysisResult struct {
	Digest     string         `json:"digest"`
	Urgency    UrgencyFinding `json:"urgency"`
	Category   Category       `json:"category"`
	Summary    string         `json:"summary"`
	DraftReply string         `json:"draft_reply"`

	Analyzer   StageStatus `json:"analyzer"`
	Classifier StageStatus `json:"classifier"`
	Summarizer StageStatus `json:"summarizer"`
	Drafter    StageStatus `json:"drafter"`

	State       TerminalState `json:"state"`
	ProcessedAt time.Time     `json:"processed_at"`
}

// Stage returns the status for the named stage.
func (r *AnalysisResult) Stage(name StageName) StageStatus {
	switch name {
	case StageAnalyzer:
		return r.Analyzer
	case StageClassifier:
		return r.Classifier
	case StageSummarizer:
		return r.Summarizer
	case StageDrafter:
		return r.Drafter
	}
	return StageStatus{}
}

// ShouldNotify reports whether the urgent-email alert may fire. A failed
// analyzer never produces an alert; the default is silence.
func (r *AnalysisResult) ShouldNotify() bool {
	return r.Analyzer.Succeeded() && r.Urgency.IsUrgent
}

// CacheEntry is a stored triage result keyed by email digest.
type CacheEntry struct {
	Digest    string
	Result    *AnalysisResult
	CreatedAt time.Time
	ExpiresAt time.Time
}

package core

import (
	"context"
)

// TextCompleter is the sole abstraction over the hosted text-completion
// capability. Implementations make exactly one outbound call per
// invocation and never retry; retry policy belongs to the orchestrator.
type TextCompleter interface {
	// Complete sends a prompt and returns the model's text response.
	Complete(ctx context.Context, prompt string) (string, error)
}

// UrgencyAnalyzer judges whether an email needs immediate attention.
type UrgencyAnalyzer interface {
	Analyze(ctx context.Context, email EmailContent) (UrgencyFinding, error)
}

// Classifier assigns exactly one category from the closed set.
type Classifier interface {
	Classify(ctx context.Context, email EmailContent) (Category, error)
}

// Summarizer produces a short synopsis of an email.
type Summarizer interface {
	Summarize(ctx context.Context, email EmailContent) (string, error)
}

// ReplyDrafter writes a draft response. Category and urgency are hints
// for tone; either may be absent when the sibling stage failed.
type ReplyDrafter interface {
	Draft(ctx context.Context, email EmailContent, category Category, urgency *UrgencyFinding) (string, error)
}

// ResultCache stores completed triage results keyed by email digest.
type ResultCache interface {
	// Get retrieves a cached entry, or an error on miss or expiry.
	Get(ctx context.Context, digest string) (*CacheEntry, error)

	// Set stores a cache entry.
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry.
	Delete(ctx context.Context, digest string) error

	// Cleanup removes expired entries.
	Cleanup(ctx context.Context) error
}

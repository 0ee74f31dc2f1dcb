package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubAnalyzer struct {
	finding UrgencyFinding
	errs    []error
	calls   int32
	block   bool
}

func (s *stubAnalyzer) Analyze(ctx context.Context, email EmailContent) (UrgencyFinding, error) {
	n := atomic.AddInt32(&s.calls, 1)
	if s.block {
		<-ctx.Done()
		return UrgencyFinding{}, ctx.Err()
	}
	if int(n) <= len(s.errs) && s.errs[n-1] != nil {
		return UrgencyFinding{}, s.errs[n-1]
	}
	return s.finding, nil
}

type stubClassifier struct {
	category Category
	err      error
	calls    int32
}

func (s *stubClassifier) Classify(ctx context.Context, email EmailContent) (Category, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return CategoryOther, s.err
	}
	return s.category, nil
}

type stubSummarizer struct {
	summary string
	err     error
	calls   int32
}

func (s *stubSummarizer) Summarize(ctx context.Context, email EmailContent) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.summary, s.err
}

type stubDrafter struct {
	draft string
	err   error
	calls int32
}

func (s *stubDrafter) Draft(ctx context.Context, email EmailContent, category Category, urgency *UrgencyFinding) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.draft, s.err
}

type stubCache struct {
	entries map[string]*CacheEntry
	sets    int32
	gets    int32
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]*CacheEntry)}
}

func (s *stubCache) Get(ctx context.Context, digest string) (*CacheEntry, error) {
	atomic.AddInt32(&s.gets, 1)
	entry, ok := s.entries[digest]
	if !ok {
		return nil, errors.New("not found")
	}
	return entry, nil
}

func (s *stubCache) Set(ctx context.Context, entry *CacheEntry) error {
	atomic.AddInt32(&s.sets, 1)
	s.entries[entry.Digest] = entry
	return nil
}

func (s *stubCache) Delete(ctx context.Context, digest string) error {
	delete(s.entries, digest)
	return nil
}

func (s *stubCache) Cleanup(ctx context.Context) error { return nil }

func newTestService(
	analyzer UrgencyAnalyzer,
	classifier Classifier,
	summarizer Summarizer,
	drafter ReplyDrafter,
	cache ResultCache,
	cacheEnabled bool,
) *TriageService {
	return NewTriageService(
		analyzer, classifier, summarizer, drafter,
		cache, zap.NewNop(),
		cacheEnabled, time.Hour,
		2, time.Second,
	)
}

func TestProcessEmailAllStagesSucceed(t *testing.T) {
	analyzer := &stubAnalyzer{finding: UrgencyFinding{IsUrgent: true, Reason: "deadline today"}}
	classifier := &stubClassifier{category: CategoryWork}
	summarizer := &stubSummarizer{summary: "Project update with a deadline."}
	drafter := &stubDrafter{draft: "Thanks, I'll get back to you today."}

	svc := newTestService(analyzer, classifier, summarizer, drafter, nil, false)
	result, err := svc.ProcessEmail(context.Background(), "Project update\nThe deadline is today.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.State != StateComplete {
		t.Errorf("expected state %q, got %q", StateComplete, result.State)
	}
	if !result.Urgency.IsUrgent {
		t.Error("expected urgent finding")
	}
	if result.Category != CategoryWork {
		t.Errorf("expected category Work, got %q", result.Category)
	}
	if result.Summary != summarizer.summary {
		t.Errorf("summary mismatch: %q", result.Summary)
	}
	if result.DraftReply != drafter.draft {
		t.Errorf("draft mismatch: %q", result.DraftReply)
	}
	for _, name := range []StageName{StageAnalyzer, StageClassifier, StageSummarizer, StageDrafter} {
		if !result.Stage(name).Succeeded() {
			t.Errorf("expected stage %q to succeed, got %+v", name, result.Stage(name))
		}
	}
}

func TestProcessEmailEmptyInput(t *testing.T) {
	analyzer := &stubAnalyzer{}
	classifier := &stubClassifier{category: CategoryWork}
	summarizer := &stubSummarizer{}
	drafter := &stubDrafter{}

	svc := newTestService(analyzer, classifier, summarizer, drafter, nil, false)
	result, err := svc.ProcessEmail(context.Background(), "   \n ")
	if !errors.Is(err, ErrEmptyEmail) {
		t.Fatalf("expected ErrEmptyEmail, got %v", err)
	}
	if result != nil {
		t.Error("expected nil result for invalid input")
	}
	if analyzer.calls != 0 || classifier.calls != 0 || summarizer.calls != 0 || drafter.calls != 0 {
		t.Error("no stage should run for invalid input")
	}
}

func TestProcessEmailSpamSkipsDraft(t *testing.T) {
	analyzer := &stubAnalyzer{finding: UrgencyFinding{IsUrgent: false, Reason: "bulk mail"}}
	classifier := &stubClassifier{category: CategorySpam}
	summarizer := &stubSummarizer{summary: "Unsolicited offer."}
	drafter := &stubDrafter{draft: "should never survive"}

	svc := newTestService(analyzer, classifier, summarizer, drafter, nil, false)
	result, err := svc.ProcessEmail(context.Background(), "Congratulations, you won!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Category != CategorySpam {
		t.Errorf("expected category Spam, got %q", result.Category)
	}
	if result.Drafter.State != StageSkipped {
		t.Errorf("expected drafter to be skipped, got %+v", result.Drafter)
	}
	if result.DraftReply != "" {
		t.Errorf("expected empty draft for spam, got %q", result.DraftReply)
	}
	if result.State != StateComplete {
		t.Errorf("skipped drafter should not degrade state, got %q", result.State)
	}
}

func TestProcessEmailDraftsWhenClassifierFails(t *testing.T) {
	analyzer := &stubAnalyzer{finding: UrgencyFinding{IsUrgent: false}}
	classifier := &stubClassifier{err: NewPermanentProviderError("test", errors.New("bad response"))}
	summarizer := &stubSummarizer{summary: "A short note."}
	drafter := &stubDrafter{draft: "Thanks for reaching out."}

	svc := newTestService(analyzer, classifier, summarizer, drafter, nil, false)
	result, err := svc.ProcessEmail(context.Background(), "Hi there, quick question for you.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Classifier.State != StageFailed {
		t.Errorf("expected classifier failure, got %+v", result.Classifier)
	}
	if result.Category != CategoryOther {
		t.Errorf("failed classifier should leave category Other, got %q", result.Category)
	}
	if !result.Drafter.Succeeded() {
		t.Errorf("drafter should run when the classifier failed, got %+v", result.Drafter)
	}
	if result.DraftReply != drafter.draft {
		t.Errorf("draft mismatch: %q", result.DraftReply)
	}
	if result.State != StatePartiallyFailed {
		t.Errorf("expected partially failed state, got %q", result.State)
	}
}

func TestProcessEmailAnalyzerFailureIsFailSafe(t *testing.T) {
	provErr := NewPermanentProviderError("test", errors.New("refused"))
	analyzer := &stubAnalyzer{errs: []error{provErr, provErr}}
	classifier := &stubClassifier{category: CategoryPersonal}
	summarizer := &stubSummarizer{summary: "Catching up."}
	drafter := &stubDrafter{draft: "Great to hear from you!"}

	svc := newTestService(analyzer, classifier, summarizer, drafter, nil, false)
	result, err := svc.ProcessEmail(context.Background(), "Hey! Long time no see.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Urgency.IsUrgent {
		t.Error("failed analyzer must never report urgent")
	}
	if result.Analyzer.State != StageFailed || result.Analyzer.ErrorKind != ErrorKindProvider {
		t.Errorf("unexpected analyzer status: %+v", result.Analyzer)
	}
	if result.ShouldNotify() {
		t.Error("no notification may fire off a failed analyzer")
	}
	if result.State != StatePartiallyFailed {
		t.Errorf("expected partially failed state, got %q", result.State)
	}
	if analyzer.calls != 1 {
		t.Errorf("permanent errors must not be retried, got %d calls", analyzer.calls)
	}
}

func TestProcessEmailRetriesTransientErrors(t *testing.T) {
	analyzer := &stubAnalyzer{
		finding: UrgencyFinding{IsUrgent: false, Reason: "routine"},
		errs:    []error{NewProviderError("test", errors.New("throttled"))},
	}
	classifier := &stubClassifier{category: CategoryWork}
	summarizer := &stubSummarizer{summary: "Routine status mail."}
	drafter := &stubDrafter{draft: "Acknowledged."}

	svc := newTestService(analyzer, classifier, summarizer, drafter, nil, false)
	result, err := svc.ProcessEmail(context.Background(), "Weekly status report attached.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if analyzer.calls != 2 {
		t.Errorf("expected one retry after a transient error, got %d calls", analyzer.calls)
	}
	if !result.Analyzer.Succeeded() {
		t.Errorf("analyzer should succeed on retry, got %+v", result.Analyzer)
	}
	if result.State != StateComplete {
		t.Errorf("expected complete state, got %q", result.State)
	}
}

func TestProcessEmailAllStagesFailed(t *testing.T) {
	provErr := NewPermanentProviderError("test", errors.New("unreachable"))
	analyzer := &stubAnalyzer{errs: []error{provErr, provErr}}
	classifier := &stubClassifier{err: provErr}
	summarizer := &stubSummarizer{err: provErr}
	drafter := &stubDrafter{err: provErr}

	svc := newTestService(analyzer, classifier, summarizer, drafter, nil, false)
	result, err := svc.ProcessEmail(context.Background(), "Any email at all.")
	if !errors.Is(err, ErrAllStagesFailed) {
		t.Fatalf("expected ErrAllStagesFailed, got %v", err)
	}
	if result != nil {
		t.Error("expected nil result when every stage failed")
	}
}

func TestProcessEmailStageTimeout(t *testing.T) {
	analyzer := &stubAnalyzer{block: true}
	classifier := &stubClassifier{category: CategoryWork}
	summarizer := &stubSummarizer{summary: "Slow provider test."}
	drafter := &stubDrafter{draft: "On it."}

	svc := NewTriageService(
		analyzer, classifier, summarizer, drafter,
		nil, zap.NewNop(),
		false, 0,
		1, 10*time.Millisecond,
	)

	result, err := svc.ProcessEmail(context.Background(), "This one hangs the analyzer.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Analyzer.State != StageFailed {
		t.Fatalf("expected analyzer failure, got %+v", result.Analyzer)
	}
	if result.Analyzer.ErrorKind != ErrorKindTimeout {
		t.Errorf("expected timeout error kind, got %q", result.Analyzer.ErrorKind)
	}
	if result.State != StatePartiallyFailed {
		t.Errorf("expected partially failed state, got %q", result.State)
	}
}

func TestProcessEmailCacheHit(t *testing.T) {
	analyzer := &stubAnalyzer{finding: UrgencyFinding{IsUrgent: false}}
	classifier := &stubClassifier{category: CategoryWork}
	summarizer := &stubSummarizer{summary: "First pass."}
	drafter := &stubDrafter{draft: "Reply."}
	cache := newStubCache()

	svc := newTestService(analyzer, classifier, summarizer, drafter, cache, true)

	first, err := svc.ProcessEmail(context.Background(), "Same email twice.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected one cache write, got %d", cache.sets)
	}

	second, err := svc.ProcessEmail(context.Background(), "Same email twice.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Digest != first.Digest {
		t.Error("cache hit should return the stored result")
	}
	if analyzer.calls != 1 || classifier.calls != 1 {
		t.Error("stages should not re-run on a cache hit")
	}
}

func TestProcessEmailPartialResultNotCached(t *testing.T) {
	provErr := NewPermanentProviderError("test", errors.New("refused"))
	analyzer := &stubAnalyzer{errs: []error{provErr, provErr}}
	classifier := &stubClassifier{category: CategoryWork}
	summarizer := &stubSummarizer{summary: "Partial run."}
	drafter := &stubDrafter{draft: "Reply."}
	cache := newStubCache()

	svc := newTestService(analyzer, classifier, summarizer, drafter, cache, true)
	result, err := svc.ProcessEmail(context.Background(), "Analyzer is down for this one.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State != StatePartiallyFailed {
		t.Fatalf("expected partially failed state, got %q", result.State)
	}
	if cache.sets != 0 {
		t.Errorf("partial results must not be cached, got %d writes", cache.sets)
	}
}

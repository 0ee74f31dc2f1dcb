package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TriageService runs the four inference stages over one email and
// assembles a single AnalysisResult. The analyzer, classifier and
// summarizer are mutually independent and run concurrently; the drafter
// consults the classifier's outcome only for the spam-skip policy.
type TriageService struct {
	analyzer     UrgencyAnalyzer
	classifier   Classifier
	summarizer   Summarizer
	drafter      ReplyDrafter
	cache        ResultCache
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
	maxRetries   int
	stageTimeout time.Duration
}

// NewTriageService creates a new triage service.
func NewTriageService(
	analyzer UrgencyAnalyzer,
	classifier Classifier,
	summarizer Summarizer,
	drafter ReplyDrafter,
	cache ResultCache,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	maxRetries int,
	stageTimeout time.Duration,
) *TriageService {
	return &TriageService{
		analyzer:     analyzer,
		classifier:   classifier,
		summarizer:   summarizer,
		drafter:      drafter,
		cache:        cache,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
		maxRetries:   maxRetries,
		stageTimeout: stageTimeout,
	}
}

// ProcessEmail triages one raw email body. The returned result always
// matches the data model regardless of stage outcomes; hard errors are
// limited to invalid input and a run where every stage failed.
func (s *TriageService) ProcessEmail(ctx context.Context, rawText string) (*AnalysisResult, error) {
	email, err := NewEmailContent(rawText)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled && s.cache != nil {
		if entry, cerr := s.cache.Get(ctx, email.Digest()); cerr == nil && entry.Result != nil {
			s.logger.Debug("cache hit for email", zap.String("digest", email.Digest()))
			return entry.Result, nil
		}
	}

	result := &AnalysisResult{
		Digest:      email.Digest(),
		Category:    CategoryOther,
		ProcessedAt: time.Now(),
	}

	var (
		wg sync.WaitGroup

		urgency UrgencyFinding
		urgErr  error

		category Category
		catErr   error

		summary string
		sumErr  error

		draft      string
		draftErr   error
		draftSkip  bool
		classified = make(chan struct{})
		analyzed   = make(chan struct{})
	)

	wg.Add(4)

	go func() {
		defer wg.Done()
		defer close(analyzed)
		urgErr = s.runStage(ctx, StageAnalyzer, func(stageCtx context.Context) error {
			var err error
			urgency, err = s.analyzer.Analyze(stageCtx, email)
			return err
		})
	}()

	go func() {
		defer wg.Done()
		defer close(classified)
		catErr = s.runStage(ctx, StageClassifier, func(stageCtx context.Context) error {
			var err error
			category, err = s.classifier.Classify(stageCtx, email)
			return err
		})
	}()

	go func() {
		defer wg.Done()
		sumErr = s.runStage(ctx, StageSummarizer, func(stageCtx context.Context) error {
			var err error
			summary, err = s.summarizer.Summarize(stageCtx, email)
			return err
		})
	}()

	go func() {
		defer wg.Done()

		// If the classifier has already landed, apply the spam-skip up
		// front and save the provider call. Otherwise draft
		// unconditionally; a late Spam verdict discards the draft below.
		toneCategory := CategoryOther
		var toneUrgency *UrgencyFinding
		select {
		case <-classified:
			if catErr == nil {
				if category == CategorySpam {
					draftSkip = true
					return
				}
				toneCategory = category
			}
		default:
		}
		select {
		case <-analyzed:
			if urgErr == nil {
				u := urgency
				toneUrgency = &u
			}
		default:
		}

		draftErr = s.runStage(ctx, StageDrafter, func(stageCtx context.Context) error {
			var err error
			draft, err = s.drafter.Draft(stageCtx, email, toneCategory, toneUrgency)
			return err
		})
	}()

	wg.Wait()

	result.Analyzer = statusFromError(urgErr)
	if urgErr == nil {
		result.Urgency = urgency
	}

	result.Classifier = statusFromError(catErr)
	if catErr == nil {
		result.Category = category
	}

	result.Summarizer = statusFromError(sumErr)
	if sumErr == nil {
		result.Summary = summary
	}

	switch {
	case draftSkip || (catErr == nil && category == CategorySpam):
		// Drafting replies to spam is disallowed; a draft produced
		// before the classifier finished is discarded.
		result.Drafter = StageStatus{State: StageSkipped, Reason: "no reply drafted for spam"}
	case draftErr != nil:
		result.Drafter = statusFromError(draftErr)
	default:
		result.Drafter = StageStatus{State: StageSucceeded}
		result.DraftReply = draft
	}

	failed := 0
	for _, name := range []StageName{StageAnalyzer, StageClassifier, StageSummarizer, StageDrafter} {
		if result.Stage(name).State == StageFailed {
			failed++
		}
	}

	if failed == 4 {
		s.logger.Error("every triage stage failed, gateway unusable",
			zap.String("digest", result.Digest))
		return nil, fmt.Errorf("%w: %v", ErrAllStagesFailed, urgErr)
	}

	if failed > 0 {
		result.State = StatePartiallyFailed
		s.logger.Warn("triage completed with stage failures",
			zap.String("digest", result.Digest),
			zap.Int("failed_stages", failed))
	} else {
		result.State = StateComplete
	}

	if s.cacheEnabled && s.cache != nil && result.State == StateComplete {
		entry := &CacheEntry{
			Digest:    result.Digest,
			Result:    result,
			CreatedAt: time.Now(),
			ExpiresAt: time.Now().Add(s.cacheTTL),
		}
		if cerr := s.cache.Set(ctx, entry); cerr != nil {
			s.logger.Error("failed to update result cache", zap.Error(cerr))
		}
	}

	return result, nil
}

// runStage executes one stage with its timeout and bounded retry.
// Only transient provider errors are retried; parse ambiguity never
// reaches here because the stages resolve it with conservative defaults.
func (s *TriageService) runStage(ctx context.Context, name StageName, fn func(context.Context) error) error {
	attempts := s.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		stageCtx := ctx
		var cancel context.CancelFunc
		if s.stageTimeout > 0 {
			stageCtx, cancel = context.WithTimeout(ctx, s.stageTimeout)
		}

		err := fn(stageCtx)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return nil
		}

		lastErr = err
		if !IsTransient(err) || ctx.Err() != nil {
			break
		}
		s.logger.Debug("retrying stage after transient provider error",
			zap.String("stage", string(name)),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	s.logger.Warn("stage failed",
		zap.String("stage", string(name)),
		zap.Error(lastErr))
	return lastErr
}

// statusFromError converts a stage error into its recorded status.
func statusFromError(err error) StageStatus {
	if err == nil {
		return StageStatus{State: StageSucceeded}
	}
	kind := ErrorKindProvider
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = ErrorKindTimeout
	}
	return StageStatus{
		State:     StageFailed,
		ErrorKind: kind,
		Reason:    err.Error(),
	}
}

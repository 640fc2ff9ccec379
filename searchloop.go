package qsearch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

/*
SearchLoop repeats a Procedure against one simulator and target until it
reports a match. Every attempt is reported before the loop decides whether
to continue. A "not found" outcome is retried; an error from the procedure
is not.
*/
type SearchLoop struct {
	procedure Procedure
	reporter  Reporter
	policy    *RetryPolicy
	metrics   *Metrics
	logger    *log.Logger
}

// SearchLoopOption configures a SearchLoop.
type SearchLoopOption func(*SearchLoop)

// WithRetryPolicy bounds the loop. Without it the loop never gives up.
func WithRetryPolicy(policy *RetryPolicy) SearchLoopOption {
	return func(l *SearchLoop) {
		l.policy = policy
	}
}

func WithMetrics(metrics *Metrics) SearchLoopOption {
	return func(l *SearchLoop) {
		l.metrics = metrics
	}
}

func WithLogger(logger *log.Logger) SearchLoopOption {
	return func(l *SearchLoop) {
		l.logger = logger
	}
}

func NewSearchLoop(procedure Procedure, reporter Reporter, opts ...SearchLoopOption) *SearchLoop {
	l := &SearchLoop{
		procedure: procedure,
		reporter:  reporter,
		metrics:   NewMetrics(),
		logger:    log.New(io.Discard),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Metrics returns the loop's metrics.
func (l *SearchLoop) Metrics() *Metrics {
	return l.metrics
}

/*
SearchUntilFound runs attempts until one is found, the retry policy is
exhausted, the context ends, or the procedure fails. sim must stay live
and owned by the caller for the whole call.
*/
func (l *SearchLoop) SearchUntilFound(ctx context.Context, sim *Simulator, target int64) (Outcome, error) {
	if l.policy != nil && l.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.policy.Timeout)
		defer cancel()
	}

	for attempt := 1; ; attempt++ {
		if attempt > 1 {
			if err := l.wait(ctx, attempt-1); err != nil {
				return Outcome{}, err
			}
		}

		if err := ctx.Err(); err != nil {
			return Outcome{}, fmt.Errorf("search for %d stopped before attempt %d: %w", target, attempt, err)
		}

		startTime := time.Now()

		outcome, err := l.procedure.Attempt(ctx, sim, target)
		if err != nil {
			l.metrics.recordFault()
			l.logger.Error("attempt failed", "target", target, "attempt", attempt, "err", err)
			return Outcome{}, fmt.Errorf("search attempt %d for %d: %w", attempt, target, err)
		}

		l.metrics.recordAttempt(startTime, outcome.Found)

		if err := l.reporter.Report(Attempt{Number: attempt, Target: target, Outcome: outcome}); err != nil {
			return Outcome{}, fmt.Errorf("report attempt %d: %w", attempt, err)
		}

		if outcome.Found {
			l.logger.Debug("preimage found", "target", target, "candidate", outcome.Candidate, "attempts", attempt)
			return outcome, nil
		}

		if l.policy.exhausted(attempt) {
			l.metrics.recordExhausted()
			l.logger.Warn("giving up", "target", target, "attempts", attempt)
			return Outcome{}, fmt.Errorf("no preimage of %d after %d attempts: %w", target, attempt, ErrAttemptsExhausted)
		}
	}
}

func (l *SearchLoop) wait(ctx context.Context, attempt int) error {
	delay := l.policy.delay(attempt)
	if delay <= 0 {
		return nil
	}

	l.logger.Debug("retrying", "attempt", attempt+1, "delay", delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("search stopped while backing off: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

package retry

import (
	"context"
	"time"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// Executor retries an operation while its errors classify as transient.
// It holds no per-call state and is safe for concurrent use.
type Executor struct {
	classifier pgbulk.ErrorClassifier
	strategy   pgbulk.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithOnRetry registers a callback invoked before each retry wait.
func WithOnRetry(callback func(attempt int, err error, delay time.Duration)) ExecutorOption {
	return func(e *Executor) { e.onRetry = callback }
}

// NewExecutor creates a retry executor. Panics if classifier or strategy is nil.
func NewExecutor(classifier pgbulk.ErrorClassifier, strategy pgbulk.BackoffStrategy, opts ...ExecutorOption) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	e := &Executor{classifier: classifier, strategy: strategy}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewDefaultExecutor retries transient PostgreSQL failures with the default
// backoff. Retries are reported to logger at verbose level.
func NewDefaultExecutor(logger pgbulk.Logger) *Executor {
	strategy := NewExponentialBackoff(pgbulk.DefaultRetryMaxAttempts,
		WithInitialDelay(pgbulk.DefaultRetryInitialDelay),
		WithMaxDelay(pgbulk.DefaultRetryMaxDelay),
	)
	var opts []ExecutorOption
	if logger != nil {
		opts = append(opts, WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Verbose("attempt %d failed: %v (retrying in %v)", attempt+1, err, delay.Round(time.Millisecond))
		}))
	}
	return NewExecutor(NewPostgreSQLErrorClassifier(), strategy, opts...)
}

// Execute runs operation, retrying transient failures. It returns nil on
// success, the first fatal error, or the last error once retries are exhausted.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	err := operation(ctx)
	maxAttempts := e.strategy.MaxAttempts()

	for attempt := 0; err != nil && e.classifier.IsTransient(err); attempt++ {
		if maxAttempts >= 0 && attempt >= maxAttempts {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = operation(ctx)
	}
	return err
}

// Do is Execute for operations producing a value.
func Do[T any](ctx context.Context, e *Executor, operation func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := e.Execute(ctx, func(ctx context.Context) error {
		v, err := operation(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

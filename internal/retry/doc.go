// Package retry retries transient database failures with exponential backoff.
//
//	executor := retry.NewDefaultExecutor(logger)
//	conn, err := retry.Do(ctx, executor, func(ctx context.Context) (*pgx.Conn, error) {
//	    return pgx.Connect(ctx, connStr)
//	})
//
// Only establishing connections is retried. A COPY that fails mid-stream is
// never replayed: the server discarded it and the caller decides what to do.
package retry
